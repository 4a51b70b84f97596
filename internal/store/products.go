package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hrishiii27/shopify-insights/internal/models"
)

// UpsertProduct inserts or updates a product by its natural key
// (tenant_id, external_id)
func (s *Store) UpsertProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (
			tenant_id, external_id, title, vendor, product_type, status,
			price, compare_at_price, inventory_quantity, image_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (tenant_id, external_id) DO UPDATE SET
			title = EXCLUDED.title,
			vendor = EXCLUDED.vendor,
			product_type = EXCLUDED.product_type,
			status = EXCLUDED.status,
			price = EXCLUDED.price,
			compare_at_price = EXCLUDED.compare_at_price,
			inventory_quantity = EXCLUDED.inventory_quantity,
			image_url = EXCLUDED.image_url,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		product.TenantID, product.ExternalID, product.Title, product.Vendor,
		product.ProductType, product.Status, product.Price, product.CompareAtPrice,
		product.InventoryQuantity, product.ImageURL,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

// GetProductByExternalID retrieves a product by its natural key
func (s *Store) GetProductByExternalID(ctx context.Context, tenantID, externalID int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"SELECT * FROM products WHERE tenant_id = $1 AND external_id = $2",
		tenantID, externalID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product not found: %d", externalID)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CountProducts returns the number of products for a tenant
func (s *Store) CountProducts(ctx context.Context, tenantID int64) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM products WHERE tenant_id = $1", tenantID)
	return count, err
}
