package models

import (
	"strconv"
	"time"
)

// External payload types for the Shopify Admin REST API. Money fields
// arrive as decimal strings; ParseMoney converts them.

// ShopifyCustomer is one customer record as returned by the external
// API, or embedded inside an order payload (embedded customers may
// carry only a subset of these fields).
type ShopifyCustomer struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	Tags        string    `json:"tags"`
	TotalSpent  string    `json:"total_spent"`
	OrdersCount int       `json:"orders_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// ShopifyOrder is one order record. Customer is nil for guest orders.
type ShopifyOrder struct {
	ID                int64              `json:"id"`
	OrderNumber       int64              `json:"order_number"`
	Name              string             `json:"name"`
	TotalPrice        string             `json:"total_price"`
	SubtotalPrice     string             `json:"subtotal_price"`
	TotalTax          string             `json:"total_tax"`
	TotalDiscounts    string             `json:"total_discounts"`
	Currency          string             `json:"currency"`
	FinancialStatus   string             `json:"financial_status"`
	FulfillmentStatus string             `json:"fulfillment_status"`
	ProcessedAt       *time.Time        `json:"processed_at"`
	CreatedAt         time.Time         `json:"created_at"`
	Customer          *ShopifyCustomer  `json:"customer"`
	LineItems         []ShopifyLineItem `json:"line_items"`
}

// ShopifyLineItem is one line of an order payload.
type ShopifyLineItem struct {
	ID        int64  `json:"id"`
	ProductID *int64 `json:"product_id"`
	VariantID *int64 `json:"variant_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// ShopifyProduct is one product record.
type ShopifyProduct struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Vendor      string           `json:"vendor"`
	ProductType string           `json:"product_type"`
	Status      string           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	Variants    []ShopifyVariant `json:"variants"`
	Image       *ShopifyImage    `json:"image"`
	Images      []ShopifyImage   `json:"images"`
}

// ShopifyVariant carries the price and stock fields. Only the first
// variant of a product is used.
type ShopifyVariant struct {
	ID                int64  `json:"id"`
	Price             string `json:"price"`
	CompareAtPrice    string `json:"compare_at_price"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

// ShopifyImage is a product image reference.
type ShopifyImage struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
}

// ParseMoney converts an external decimal string to a float64. Empty
// and unparseable values become 0; the external system owns the data,
// a bad money string should not fail the whole record.
func ParseMoney(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
