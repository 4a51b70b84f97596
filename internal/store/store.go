package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hrishiii27/shopify-insights/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetTenantByID retrieves a tenant by ID
func (s *Store) GetTenantByID(ctx context.Context, id int64) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.GetContext(ctx, &tenant, "SELECT * FROM tenants WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tenant not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetTenantByAPIKey retrieves a tenant by its dashboard API key.
// Returns nil without error when no tenant matches.
func (s *Store) GetTenantByAPIKey(ctx context.Context, apiKey string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.GetContext(ctx, &tenant, "SELECT * FROM tenants WHERE api_key = $1", apiKey)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetActiveTenants retrieves all tenants eligible for the scheduled sweep
func (s *Store) GetActiveTenants(ctx context.Context) ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := s.db.SelectContext(ctx, &tenants,
		"SELECT * FROM tenants WHERE is_active = TRUE ORDER BY id")
	return tenants, err
}

// CreateTenant registers a new tenant
func (s *Store) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (name, shop_domain, api_key, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, tenant, query,
		tenant.Name, tenant.ShopDomain, tenant.APIKey, tenant.IsActive)
}

// UpdateTenantAccessToken stores the external access credential for a
// tenant. No upstream validation happens here; the first sync attempt
// validates it.
func (s *Store) UpdateTenantAccessToken(ctx context.Context, tenantID int64, token string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE tenants SET access_token = $1, updated_at = NOW() WHERE id = $2",
		token, tenantID)
	return err
}

// UpdateTenantLastSync stamps the tenant's last sync time
func (s *Store) UpdateTenantLastSync(ctx context.Context, tenantID int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE tenants SET last_sync_at = $1, updated_at = NOW() WHERE id = $2",
		at, tenantID)
	return err
}
