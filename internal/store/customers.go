package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hrishiii27/shopify-insights/internal/models"
)

// UpsertCustomer inserts or updates a customer by its natural key
// (tenant_id, external_id). On conflict the mutable fields are
// overwritten; external_created_at is preserved from the first insert.
// The local id is written back into customer.
func (s *Store) UpsertCustomer(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (
			tenant_id, external_id, email, first_name, last_name, phone,
			tags, total_spent, orders_count, external_created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (tenant_id, external_id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			phone = EXCLUDED.phone,
			tags = EXCLUDED.tags,
			total_spent = EXCLUDED.total_spent,
			orders_count = EXCLUDED.orders_count,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		customer.TenantID, customer.ExternalID, customer.Email,
		customer.FirstName, customer.LastName, customer.Phone,
		customer.Tags, customer.TotalSpent, customer.OrdersCount,
		customer.ExternalCreatedAt,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}
	return nil
}

// GetCustomerByExternalID retrieves a customer by its natural key
func (s *Store) GetCustomerByExternalID(ctx context.Context, tenantID, externalID int64) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.GetContext(ctx, &customer,
		"SELECT * FROM customers WHERE tenant_id = $1 AND external_id = $2",
		tenantID, externalID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("customer not found: %d", externalID)
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// CountCustomers returns the number of customers for a tenant
func (s *Store) CountCustomers(ctx context.Context, tenantID int64) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM customers WHERE tenant_id = $1", tenantID)
	return count, err
}

// CustomerRFMRow is one customer joined with their most recent order
// date, the input row for segmentation.
type CustomerRFMRow struct {
	ExternalID  int64        `db:"external_id"`
	Email       string       `db:"email"`
	FirstName   string       `db:"first_name"`
	LastName    string       `db:"last_name"`
	TotalSpent  float64      `db:"total_spent"`
	OrdersCount int          `db:"orders_count"`
	LastOrderAt sql.NullTime `db:"last_order_at"`
}

// GetCustomerRFMRows returns every customer for a tenant with the date
// of their most recent order (null when they have never ordered).
func (s *Store) GetCustomerRFMRows(ctx context.Context, tenantID int64) ([]CustomerRFMRow, error) {
	query := `
		SELECT c.external_id, c.email, c.first_name, c.last_name,
		       c.total_spent, c.orders_count,
		       MAX(o.processed_at) AS last_order_at
		FROM customers c
		LEFT JOIN orders o ON o.customer_id = c.id AND o.tenant_id = c.tenant_id
		WHERE c.tenant_id = $1
		GROUP BY c.id
		ORDER BY c.id`

	var rows []CustomerRFMRow
	err := s.db.SelectContext(ctx, &rows, query, tenantID)
	return rows, err
}
