package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hrishiii27/shopify-insights/internal/models"
	"github.com/hrishiii27/shopify-insights/internal/store"
	"github.com/hrishiii27/shopify-insights/internal/util"

	"go.uber.org/zap"
)

// Reconciler converts external records into local upserts. The pull
// sync and the webhook path both go through these methods, so the field
// mapping cannot drift between the two entry points.
type Reconciler struct {
	store  *store.Store
	logger *zap.Logger
}

// NewReconciler creates a new reconciler
func NewReconciler(store *store.Store) *Reconciler {
	return &Reconciler{
		store:  store,
		logger: util.GetLogger(),
	}
}

// ReconcileCustomer upserts one external customer. total_spent and
// orders_count mirror the external payload verbatim; they are never
// recomputed from local order history.
func (r *Reconciler) ReconcileCustomer(ctx context.Context, tenantID int64, payload *models.ShopifyCustomer) error {
	ctx, span := util.StartSpan(ctx, "Reconciler.ReconcileCustomer")
	defer span.End()

	customer, err := mapCustomer(tenantID, payload)
	if err != nil {
		return err
	}
	return r.store.UpsertCustomer(ctx, customer)
}

// ReconcileOrder upserts one external order: owning customer first
// (when embedded), then the order row, then a full line-item
// replacement. Guest orders keep a null customer reference.
func (r *Reconciler) ReconcileOrder(ctx context.Context, tenantID int64, payload *models.ShopifyOrder) error {
	ctx, span := util.StartSpan(ctx, "Reconciler.ReconcileOrder")
	defer span.End()

	order, items, err := mapOrder(tenantID, payload)
	if err != nil {
		return err
	}

	if payload.Customer != nil && payload.Customer.ID != 0 {
		// Embedded customer data may be sparser than a full customer
		// sync; the upsert semantics are the same.
		customer, err := mapCustomer(tenantID, payload.Customer)
		if err != nil {
			return err
		}
		if err := r.store.UpsertCustomer(ctx, customer); err != nil {
			return err
		}
		order.CustomerID = sql.NullInt64{Int64: customer.ID, Valid: true}
	}

	return r.store.UpsertOrderTx(ctx, order, items)
}

// ReconcileProduct upserts one external product
func (r *Reconciler) ReconcileProduct(ctx context.Context, tenantID int64, payload *models.ShopifyProduct) error {
	ctx, span := util.StartSpan(ctx, "Reconciler.ReconcileProduct")
	defer span.End()

	product, err := mapProduct(tenantID, payload)
	if err != nil {
		return err
	}
	return r.store.UpsertProduct(ctx, product)
}

// RecordEvent appends one cart/checkout occurrence. Events are never
// upserted; every delivery is a new row.
func (r *Reconciler) RecordEvent(ctx context.Context, tenantID int64, topic, source string, payload []byte) error {
	ctx, span := util.StartSpan(ctx, "Reconciler.RecordEvent")
	defer span.End()

	event := &models.Event{
		TenantID: tenantID,
		Topic:    topic,
		Source:   source,
		Payload:  payload,
	}
	return r.store.InsertEvent(ctx, event)
}

// mapCustomer maps an external customer payload onto the local model
func mapCustomer(tenantID int64, payload *models.ShopifyCustomer) (*models.Customer, error) {
	if payload == nil || payload.ID == 0 {
		return nil, fmt.Errorf("%w: customer missing external id", ErrMalformedRecord)
	}

	externalCreatedAt := payload.CreatedAt
	if externalCreatedAt.IsZero() {
		externalCreatedAt = time.Now()
	}

	return &models.Customer{
		TenantID:          tenantID,
		ExternalID:        payload.ID,
		Email:             payload.Email,
		FirstName:         payload.FirstName,
		LastName:          payload.LastName,
		Phone:             payload.Phone,
		Tags:              payload.Tags,
		TotalSpent:        models.ParseMoney(payload.TotalSpent),
		OrdersCount:       payload.OrdersCount,
		ExternalCreatedAt: externalCreatedAt,
	}, nil
}

// mapOrder maps an external order payload onto the local model and its
// line items. The owning customer is resolved separately.
func mapOrder(tenantID int64, payload *models.ShopifyOrder) (*models.Order, []models.OrderLineItem, error) {
	if payload == nil || payload.ID == 0 {
		return nil, nil, fmt.Errorf("%w: order missing external id", ErrMalformedRecord)
	}

	processedAt := payload.CreatedAt
	if payload.ProcessedAt != nil && !payload.ProcessedAt.IsZero() {
		processedAt = *payload.ProcessedAt
	}

	orderNumber := payload.Name
	if orderNumber == "" {
		orderNumber = fmt.Sprintf("#%d", payload.OrderNumber)
	}

	order := &models.Order{
		TenantID:          tenantID,
		ExternalID:        payload.ID,
		OrderNumber:       orderNumber,
		TotalPrice:        models.ParseMoney(payload.TotalPrice),
		SubtotalPrice:     models.ParseMoney(payload.SubtotalPrice),
		TotalTax:          models.ParseMoney(payload.TotalTax),
		TotalDiscounts:    models.ParseMoney(payload.TotalDiscounts),
		Currency:          payload.Currency,
		FinancialStatus:   payload.FinancialStatus,
		FulfillmentStatus: payload.FulfillmentStatus,
		ProcessedAt:       processedAt,
	}

	items := make([]models.OrderLineItem, 0, len(payload.LineItems))
	for _, li := range payload.LineItems {
		item := models.OrderLineItem{
			ExternalID: li.ID,
			Title:      li.Title,
			Quantity:   li.Quantity,
			Price:      models.ParseMoney(li.Price),
		}
		if li.ProductID != nil {
			item.ProductExternalID = sql.NullInt64{Int64: *li.ProductID, Valid: true}
		}
		if li.VariantID != nil {
			item.VariantExternalID = sql.NullInt64{Int64: *li.VariantID, Valid: true}
		}
		items = append(items, item)
	}

	return order, items, nil
}

// mapProduct maps an external product payload onto the local model.
// Price, compare-at price and inventory come from the first variant
// only; image from the top-level image, else the first of images.
func mapProduct(tenantID int64, payload *models.ShopifyProduct) (*models.Product, error) {
	if payload == nil || payload.ID == 0 {
		return nil, fmt.Errorf("%w: product missing external id", ErrMalformedRecord)
	}

	product := &models.Product{
		TenantID:    tenantID,
		ExternalID:  payload.ID,
		Title:       payload.Title,
		Vendor:      payload.Vendor,
		ProductType: payload.ProductType,
		Status:      payload.Status,
	}

	if len(payload.Variants) > 0 {
		first := payload.Variants[0]
		product.Price = models.ParseMoney(first.Price)
		if first.CompareAtPrice != "" {
			product.CompareAtPrice = sql.NullFloat64{
				Float64: models.ParseMoney(first.CompareAtPrice),
				Valid:   true,
			}
		}
		product.InventoryQuantity = first.InventoryQuantity
	}

	if payload.Image != nil && payload.Image.Src != "" {
		product.ImageURL = payload.Image.Src
	} else if len(payload.Images) > 0 {
		product.ImageURL = payload.Images[0].Src
	}

	return product, nil
}
