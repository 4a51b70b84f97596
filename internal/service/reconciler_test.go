package service

import (
	"testing"
	"time"

	"github.com/hrishiii27/shopify-insights/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapCustomer(t *testing.T) {
	createdAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	payload := &models.ShopifyCustomer{
		ID:          12345,
		Email:       "jane@example.com",
		FirstName:   "Jane",
		LastName:    "Doe",
		Phone:       "+15551234567",
		Tags:        "vip, wholesale",
		TotalSpent:  "199.65",
		OrdersCount: 4,
		CreatedAt:   createdAt,
	}

	customer, err := mapCustomer(7, payload)
	require.NoError(t, err)

	assert.Equal(t, int64(7), customer.TenantID)
	assert.Equal(t, int64(12345), customer.ExternalID)
	assert.Equal(t, "jane@example.com", customer.Email)
	assert.Equal(t, "vip, wholesale", customer.Tags)
	assert.Equal(t, 199.65, customer.TotalSpent)
	assert.Equal(t, 4, customer.OrdersCount)
	assert.Equal(t, createdAt, customer.ExternalCreatedAt)
}

func TestMapCustomerMissingID(t *testing.T) {
	_, err := mapCustomer(7, &models.ShopifyCustomer{Email: "no-id@example.com"})
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = mapCustomer(7, nil)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestMapOrder(t *testing.T) {
	processedAt := time.Date(2024, 3, 2, 15, 30, 0, 0, time.UTC)
	productID := int64(555)
	variantID := int64(556)
	payload := &models.ShopifyOrder{
		ID:                9001,
		Name:              "#1042",
		TotalPrice:        "125.50",
		SubtotalPrice:     "110.00",
		TotalTax:          "15.50",
		TotalDiscounts:    "0.00",
		Currency:          "USD",
		FinancialStatus:   "paid",
		FulfillmentStatus: "fulfilled",
		ProcessedAt:       &processedAt,
		LineItems: []models.ShopifyLineItem{
			{ID: 1, ProductID: &productID, VariantID: &variantID, Title: "Widget", Quantity: 2, Price: "55.00"},
			{ID: 2, Title: "Gift wrap", Quantity: 1, Price: "0.00"},
		},
	}

	order, items, err := mapOrder(3, payload)
	require.NoError(t, err)

	assert.Equal(t, int64(3), order.TenantID)
	assert.Equal(t, int64(9001), order.ExternalID)
	assert.Equal(t, "#1042", order.OrderNumber)
	assert.Equal(t, 125.50, order.TotalPrice)
	assert.Equal(t, "paid", order.FinancialStatus)
	assert.Equal(t, processedAt, order.ProcessedAt)
	assert.False(t, order.CustomerID.Valid, "guest order keeps a null customer reference")

	require.Len(t, items, 2)
	assert.Equal(t, int64(555), items[0].ProductExternalID.Int64)
	assert.True(t, items[0].ProductExternalID.Valid)
	assert.Equal(t, 55.0, items[0].Price)
	assert.False(t, items[1].ProductExternalID.Valid)
}

func TestMapOrderFallbacks(t *testing.T) {
	createdAt := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	payload := &models.ShopifyOrder{
		ID:          9002,
		OrderNumber: 1043,
		CreatedAt:   createdAt,
	}

	order, items, err := mapOrder(3, payload)
	require.NoError(t, err)
	assert.Equal(t, "#1043", order.OrderNumber)
	assert.Equal(t, createdAt, order.ProcessedAt)
	assert.Empty(t, items)
}

func TestMapOrderMissingID(t *testing.T) {
	_, _, err := mapOrder(3, &models.ShopifyOrder{Name: "#1"})
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestMapProduct(t *testing.T) {
	payload := &models.ShopifyProduct{
		ID:          777,
		Title:       "Espresso Beans",
		Vendor:      "Roastery",
		ProductType: "Coffee",
		Status:      "active",
		Variants: []models.ShopifyVariant{
			{ID: 1, Price: "18.00", CompareAtPrice: "22.00", InventoryQuantity: 40},
			{ID: 2, Price: "34.00", InventoryQuantity: 5},
		},
		Image: &models.ShopifyImage{Src: "https://cdn.example.com/beans.jpg"},
	}

	product, err := mapProduct(11, payload)
	require.NoError(t, err)

	// First variant only.
	assert.Equal(t, 18.0, product.Price)
	assert.True(t, product.CompareAtPrice.Valid)
	assert.Equal(t, 22.0, product.CompareAtPrice.Float64)
	assert.Equal(t, 40, product.InventoryQuantity)
	assert.Equal(t, "https://cdn.example.com/beans.jpg", product.ImageURL)
}

func TestMapProductImageFallback(t *testing.T) {
	payload := &models.ShopifyProduct{
		ID:     778,
		Title:  "Mug",
		Images: []models.ShopifyImage{{Src: "https://cdn.example.com/mug-1.jpg"}, {Src: "https://cdn.example.com/mug-2.jpg"}},
	}

	product, err := mapProduct(11, payload)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/mug-1.jpg", product.ImageURL)
	assert.Equal(t, 0.0, product.Price)
	assert.False(t, product.CompareAtPrice.Valid)
}

func TestMapProductMissingID(t *testing.T) {
	_, err := mapProduct(11, &models.ShopifyProduct{Title: "Nameless"})
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestParseMoney(t *testing.T) {
	assert.Equal(t, 199.65, models.ParseMoney("199.65"))
	assert.Equal(t, 0.0, models.ParseMoney(""))
	assert.Equal(t, 0.0, models.ParseMoney("not-a-number"))
}
