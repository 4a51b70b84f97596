package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Tenant represents a connected store. All domain rows are scoped by
// the tenant id; natural keys are only unique within one tenant.
type Tenant struct {
	ID            int64          `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	ShopDomain    string         `db:"shop_domain" json:"shop_domain"`
	AccessToken   sql.NullString `db:"access_token" json:"-"`
	APIKey        string         `db:"api_key" json:"-"`
	WebhookSecret sql.NullString `db:"webhook_secret" json:"-"`
	IsActive      bool           `db:"is_active" json:"is_active"`
	LastSyncAt    sql.NullTime   `db:"last_sync_at" json:"last_sync_at"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// Connected reports whether the tenant has an access token stored.
func (t *Tenant) Connected() bool {
	return t.AccessToken.Valid && t.AccessToken.String != ""
}

// Customer mirrors one external customer record. TotalSpent and
// OrdersCount are taken verbatim from the external payload, never
// recomputed from local order history.
type Customer struct {
	ID                int64     `db:"id" json:"id"`
	TenantID          int64     `db:"tenant_id" json:"tenant_id"`
	ExternalID        int64     `db:"external_id" json:"external_id"`
	Email             string    `db:"email" json:"email"`
	FirstName         string    `db:"first_name" json:"first_name"`
	LastName          string    `db:"last_name" json:"last_name"`
	Phone             string    `db:"phone" json:"phone"`
	Tags              string    `db:"tags" json:"tags"`
	TotalSpent        float64   `db:"total_spent" json:"total_spent"`
	OrdersCount       int       `db:"orders_count" json:"orders_count"`
	ExternalCreatedAt time.Time `db:"external_created_at" json:"external_created_at"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// Order mirrors one external order. CustomerID is null for guest
// orders. ProcessedAt is the order timestamp used for all time-bucketed
// aggregation.
type Order struct {
	ID                int64         `db:"id" json:"id"`
	TenantID          int64         `db:"tenant_id" json:"tenant_id"`
	ExternalID        int64         `db:"external_id" json:"external_id"`
	CustomerID        sql.NullInt64 `db:"customer_id" json:"customer_id"`
	OrderNumber       string        `db:"order_number" json:"order_number"`
	TotalPrice        float64       `db:"total_price" json:"total_price"`
	SubtotalPrice     float64       `db:"subtotal_price" json:"subtotal_price"`
	TotalTax          float64       `db:"total_tax" json:"total_tax"`
	TotalDiscounts    float64       `db:"total_discounts" json:"total_discounts"`
	Currency          string        `db:"currency" json:"currency"`
	FinancialStatus   string        `db:"financial_status" json:"financial_status"`
	FulfillmentStatus string        `db:"fulfillment_status" json:"fulfillment_status"`
	ProcessedAt       time.Time     `db:"processed_at" json:"processed_at"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}

// OrderLineItem is a child of Order. Line items are fully replaced on
// every order upsert, so the stored set always reflects the most
// recently synced payload.
type OrderLineItem struct {
	ID                int64         `db:"id" json:"id"`
	OrderID           int64         `db:"order_id" json:"order_id"`
	ExternalID        int64         `db:"external_id" json:"external_id"`
	ProductExternalID sql.NullInt64 `db:"product_external_id" json:"product_external_id"`
	VariantExternalID sql.NullInt64 `db:"variant_external_id" json:"variant_external_id"`
	Title             string        `db:"title" json:"title"`
	Quantity          int           `db:"quantity" json:"quantity"`
	Price             float64       `db:"price" json:"price"`
}

// Product mirrors one external product. Price, compare-at price and
// inventory are read from the first variant only.
type Product struct {
	ID                int64           `db:"id" json:"id"`
	TenantID          int64           `db:"tenant_id" json:"tenant_id"`
	ExternalID        int64           `db:"external_id" json:"external_id"`
	Title             string          `db:"title" json:"title"`
	Vendor            string          `db:"vendor" json:"vendor"`
	ProductType       string          `db:"product_type" json:"product_type"`
	Status            string          `db:"status" json:"status"`
	Price             float64         `db:"price" json:"price"`
	CompareAtPrice    sql.NullFloat64 `db:"compare_at_price" json:"compare_at_price"`
	InventoryQuantity int             `db:"inventory_quantity" json:"inventory_quantity"`
	ImageURL          string          `db:"image_url" json:"image_url"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// Event is an append-only record of a cart/checkout occurrence. Events
// are never updated or deleted here.
type Event struct {
	ID        int64           `db:"id" json:"id"`
	TenantID  int64           `db:"tenant_id" json:"tenant_id"`
	Topic     string          `db:"topic" json:"topic"`
	Source    string          `db:"source" json:"source"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Event sources
const (
	EventSourceWebhook   = "webhook"
	EventSourceSynthetic = "synthetic"
)

// SyncLog records one (tenant, type) sync attempt. A row is created in
// the running state and takes exactly one terminal transition.
type SyncLog struct {
	ID          int64          `db:"id" json:"id"`
	TenantID    int64          `db:"tenant_id" json:"tenant_id"`
	SyncType    string         `db:"sync_type" json:"sync_type"`
	Status      string         `db:"status" json:"status"`
	ItemsSynced int            `db:"items_synced" json:"items_synced"`
	Error       sql.NullString `db:"error" json:"error,omitempty"`
	StartedAt   time.Time      `db:"started_at" json:"started_at"`
	CompletedAt sql.NullTime   `db:"completed_at" json:"completed_at"`
}

// Sync log statuses
const (
	SyncStatusRunning   = "running"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

// Sync record types
const (
	SyncTypeCustomers = "customers"
	SyncTypeOrders    = "orders"
	SyncTypeProducts  = "products"
)

// AllSyncTypes lists every record type a full sync run covers, in sync
// order (customers before orders so order reconciliation finds its
// owners already present).
var AllSyncTypes = []string{SyncTypeCustomers, SyncTypeOrders, SyncTypeProducts}
