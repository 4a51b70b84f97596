package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hrishiii27/shopify-insights/internal/models"
	"github.com/hrishiii27/shopify-insights/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Webhook topics recognized by the push reconciliation path.
const (
	topicCustomersCreate = "customers/create"
	topicCustomersUpdate = "customers/update"
	topicOrdersCreate    = "orders/create"
	topicOrdersUpdate    = "orders/update"
	topicProductsCreate  = "products/create"
	topicProductsUpdate  = "products/update"
	topicCartsCreate     = "carts/create"
	topicCartsUpdate     = "carts/update"
	topicCheckoutsCreate = "checkouts/create"
	topicCheckoutsDelete = "checkouts/delete"
)

// webhookDedupTTL bounds how long a delivery id is remembered.
const webhookDedupTTL = 24 * time.Hour

// handleWebhook receives one push delivery. Whatever goes wrong
// (unknown tenant, bad signature, malformed payload, storage failure),
// the endpoint acknowledges with 200 so the external system does not
// retry-storm; failures are logged and the record dropped.
func (h *Handler) handleWebhook(c *gin.Context) {
	ack := func() { c.JSON(http.StatusOK, gin.H{"received": true}) }

	topic := c.GetHeader("X-Shopify-Topic")
	util.WebhooksReceivedTotal.WithLabelValues(topic).Inc()

	tenantID, err := strconv.ParseInt(c.Param("tenantID"), 10, 64)
	if err != nil {
		util.WebhooksRejectedTotal.WithLabelValues("bad_tenant").Inc()
		h.logger.Warn("Webhook with invalid tenant id", zap.String("raw", c.Param("tenantID")))
		ack()
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		util.WebhooksRejectedTotal.WithLabelValues("read_error").Inc()
		h.logger.Warn("Failed to read webhook body", zap.Int64("tenant_id", tenantID), zap.Error(err))
		ack()
		return
	}

	ctx := c.Request.Context()
	tenant, err := h.store.GetTenantByID(ctx, tenantID)
	if err != nil {
		util.WebhooksRejectedTotal.WithLabelValues("unknown_tenant").Inc()
		h.logger.Warn("Webhook for unknown tenant", zap.Int64("tenant_id", tenantID), zap.Error(err))
		ack()
		return
	}

	secret := h.webhookSecret
	if tenant.WebhookSecret.Valid && tenant.WebhookSecret.String != "" {
		secret = tenant.WebhookSecret.String
	}
	if !VerifyWebhookSignature(secret, body, c.GetHeader("X-Shopify-Hmac-Sha256")) {
		util.WebhooksRejectedTotal.WithLabelValues("bad_signature").Inc()
		h.logger.Warn("Webhook signature verification failed",
			zap.Int64("tenant_id", tenantID),
			zap.String("topic", topic))
		ack()
		return
	}

	// Redeliveries of the same delivery id are acknowledged without
	// reprocessing. A redis failure falls through to processing; the
	// upserts are idempotent anyway.
	deliveryID := c.GetHeader("X-Shopify-Webhook-Id")
	marked := false
	if deliveryID != "" {
		fresh, err := h.redis.MarkWebhookDelivery(ctx, deliveryID, webhookDedupTTL)
		if err != nil {
			h.logger.Warn("Webhook dedup unavailable", zap.Error(err))
		} else if !fresh {
			h.logger.Info("Duplicate webhook delivery",
				zap.Int64("tenant_id", tenantID),
				zap.String("delivery_id", deliveryID))
			ack()
			return
		} else {
			marked = true
		}
	}

	if err := h.applyWebhook(ctx, tenantID, topic, body); err != nil {
		util.WebhooksRejectedTotal.WithLabelValues("apply_error").Inc()
		h.logger.Warn("Failed to apply webhook",
			zap.Int64("tenant_id", tenantID),
			zap.String("topic", topic),
			zap.Error(err))
		// Forget the delivery mark so a redelivery is not swallowed
		// as a duplicate of this failed attempt.
		if marked {
			if err := h.redis.ForgetWebhookDelivery(ctx, deliveryID); err != nil {
				h.logger.Warn("Failed to forget webhook delivery",
					zap.String("delivery_id", deliveryID),
					zap.Error(err))
			}
		}
		ack()
		return
	}

	ack()
}

// applyWebhook routes one verified delivery through the shared
// reconciliation engine. Unrecognized topics are ignored.
func (h *Handler) applyWebhook(ctx context.Context, tenantID int64, topic string, body []byte) error {
	switch topic {
	case topicCustomersCreate, topicCustomersUpdate:
		var payload models.ShopifyCustomer
		if err := json.Unmarshal(body, &payload); err != nil {
			return err
		}
		if err := h.reconciler.ReconcileCustomer(ctx, tenantID, &payload); err != nil {
			return err
		}
		util.RecordsReconciledTotal.WithLabelValues(models.SyncTypeCustomers, "webhook").Inc()

	case topicOrdersCreate, topicOrdersUpdate:
		var payload models.ShopifyOrder
		if err := json.Unmarshal(body, &payload); err != nil {
			return err
		}
		if err := h.reconciler.ReconcileOrder(ctx, tenantID, &payload); err != nil {
			return err
		}
		util.RecordsReconciledTotal.WithLabelValues(models.SyncTypeOrders, "webhook").Inc()

	case topicProductsCreate, topicProductsUpdate:
		var payload models.ShopifyProduct
		if err := json.Unmarshal(body, &payload); err != nil {
			return err
		}
		if err := h.reconciler.ReconcileProduct(ctx, tenantID, &payload); err != nil {
			return err
		}
		util.RecordsReconciledTotal.WithLabelValues(models.SyncTypeProducts, "webhook").Inc()

	case topicCartsCreate, topicCartsUpdate, topicCheckoutsCreate, topicCheckoutsDelete:
		if err := h.reconciler.RecordEvent(ctx, tenantID, topic, models.EventSourceWebhook, body); err != nil {
			return err
		}

	default:
		h.logger.Info("Ignoring unrecognized webhook topic",
			zap.Int64("tenant_id", tenantID),
			zap.String("topic", topic))
		return nil
	}

	if err := h.publisher.PublishWebhookReceived(ctx, tenantID, topic); err != nil {
		h.logger.Error("Failed to publish WebhookReceived event", zap.Error(err))
	}
	return nil
}

// VerifyWebhookSignature checks the HMAC-SHA256 signature computed over
// the raw request body. The comparison is constant-time.
func VerifyWebhookSignature(secret string, body []byte, headerSignature string) bool {
	if secret == "" || headerSignature == "" {
		return false
	}

	provided, err := base64.StdEncoding.DecodeString(headerSignature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	return hmac.Equal(expected, provided)
}
