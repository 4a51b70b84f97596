package store

import (
	"context"
	"fmt"
	"time"

	"github.com/hrishiii27/shopify-insights/internal/models"
)

// UpsertOrderTx upserts an order by its natural key and fully replaces
// its line items, atomically. Existing line items for the order are
// deleted and the current set inserted; stale line items never survive
// a re-sync. The local order id is written back into order.
func (s *Store) UpsertOrderTx(ctx context.Context, order *models.Order, items []models.OrderLineItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (
			tenant_id, external_id, customer_id, order_number,
			total_price, subtotal_price, total_tax, total_discounts,
			currency, financial_status, fulfillment_status, processed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (tenant_id, external_id) DO UPDATE SET
			customer_id = EXCLUDED.customer_id,
			order_number = EXCLUDED.order_number,
			total_price = EXCLUDED.total_price,
			subtotal_price = EXCLUDED.subtotal_price,
			total_tax = EXCLUDED.total_tax,
			total_discounts = EXCLUDED.total_discounts,
			currency = EXCLUDED.currency,
			financial_status = EXCLUDED.financial_status,
			fulfillment_status = EXCLUDED.fulfillment_status,
			processed_at = EXCLUDED.processed_at,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowxContext(ctx, query,
		order.TenantID, order.ExternalID, order.CustomerID, order.OrderNumber,
		order.TotalPrice, order.SubtotalPrice, order.TotalTax, order.TotalDiscounts,
		order.Currency, order.FinancialStatus, order.FulfillmentStatus, order.ProcessedAt,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert order: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM order_line_items WHERE order_id = $1", order.ID); err != nil {
		return fmt.Errorf("failed to delete line items: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_line_items (
				order_id, external_id, product_external_id,
				variant_external_id, title, quantity, price
			) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			items[i].OrderID, items[i].ExternalID, items[i].ProductExternalID,
			items[i].VariantExternalID, items[i].Title, items[i].Quantity, items[i].Price)
		if err != nil {
			return fmt.Errorf("failed to insert line item: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrderLineItems retrieves all line items for an order
func (s *Store) GetOrderLineItems(ctx context.Context, orderID int64) ([]models.OrderLineItem, error) {
	var items []models.OrderLineItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_line_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// CountOrders returns the number of orders for a tenant
func (s *Store) CountOrders(ctx context.Context, tenantID int64) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM orders WHERE tenant_id = $1", tenantID)
	return count, err
}

// TotalRevenue returns the summed order total for a tenant
func (s *Store) TotalRevenue(ctx context.Context, tenantID int64) (float64, error) {
	var total float64
	err := s.db.GetContext(ctx, &total,
		"SELECT COALESCE(SUM(total_price), 0) FROM orders WHERE tenant_id = $1", tenantID)
	return total, err
}

// DailyRevenue is one day's aggregated order totals
type DailyRevenue struct {
	Day        time.Time `db:"day"`
	Revenue    float64   `db:"revenue"`
	OrderCount int       `db:"order_count"`
}

// GetDailyRevenue aggregates order totals into daily buckets since the
// given time. Only days that have at least one order produce a bucket.
func (s *Store) GetDailyRevenue(ctx context.Context, tenantID int64, since time.Time) ([]DailyRevenue, error) {
	query := `
		SELECT DATE_TRUNC('day', processed_at) AS day,
		       SUM(total_price) AS revenue,
		       COUNT(*) AS order_count
		FROM orders
		WHERE tenant_id = $1 AND processed_at >= $2
		GROUP BY day
		ORDER BY day`

	var buckets []DailyRevenue
	err := s.db.SelectContext(ctx, &buckets, query, tenantID, since)
	return buckets, err
}

// RecentOrderRow is an order joined with its customer's name for
// dashboard listings. Guest orders have no customer row.
type RecentOrderRow struct {
	ExternalID   int64     `db:"external_id" json:"external_id"`
	OrderNumber  string    `db:"order_number" json:"order_number"`
	TotalPrice   float64   `db:"total_price" json:"total_price"`
	Currency     string    `db:"currency" json:"currency"`
	CustomerName string    `db:"customer_name" json:"customer_name"`
	ProcessedAt  time.Time `db:"processed_at" json:"processed_at"`
}

// GetRecentOrders returns the most recent orders for a tenant with a
// guest-aware customer name projection.
func (s *Store) GetRecentOrders(ctx context.Context, tenantID int64, limit int) ([]RecentOrderRow, error) {
	query := `
		SELECT o.external_id, o.order_number, o.total_price, o.currency,
		       COALESCE(NULLIF(TRIM(c.first_name || ' ' || c.last_name), ''), 'Guest') AS customer_name,
		       o.processed_at
		FROM orders o
		LEFT JOIN customers c ON c.id = o.customer_id
		WHERE o.tenant_id = $1
		ORDER BY o.processed_at DESC
		LIMIT $2`

	var rows []RecentOrderRow
	err := s.db.SelectContext(ctx, &rows, query, tenantID, limit)
	return rows, err
}
