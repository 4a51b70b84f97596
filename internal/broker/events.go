package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/hrishiii27/shopify-insights/internal/models"

	"github.com/google/uuid"
)

// EventPublisher publishes sync lifecycle events for downstream
// consumers. Publish failures never fail the sync they describe.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// PublishSyncStarted publishes a SyncStarted event
func (ep *EventPublisher) PublishSyncStarted(ctx context.Context, tenantID int64, syncType string, syncLogID int64) error {
	event := &models.SyncStartedEvent{
		BaseEvent: newBaseEvent(models.EventTypeSyncStarted),
		TenantID:  tenantID,
		SyncType:  syncType,
		SyncLogID: syncLogID,
	}
	return ep.producer.PublishEvent(ctx, tenantKey(tenantID), event)
}

// PublishSyncCompleted publishes a SyncCompleted event
func (ep *EventPublisher) PublishSyncCompleted(ctx context.Context, tenantID int64, syncType string, syncLogID int64, itemsSynced int) error {
	event := &models.SyncCompletedEvent{
		BaseEvent:   newBaseEvent(models.EventTypeSyncCompleted),
		TenantID:    tenantID,
		SyncType:    syncType,
		SyncLogID:   syncLogID,
		ItemsSynced: itemsSynced,
	}
	return ep.producer.PublishEvent(ctx, tenantKey(tenantID), event)
}

// PublishSyncFailed publishes a SyncFailed event
func (ep *EventPublisher) PublishSyncFailed(ctx context.Context, tenantID int64, syncType string, syncLogID int64, reason string) error {
	event := &models.SyncFailedEvent{
		BaseEvent: newBaseEvent(models.EventTypeSyncFailed),
		TenantID:  tenantID,
		SyncType:  syncType,
		SyncLogID: syncLogID,
		Reason:    reason,
	}
	return ep.producer.PublishEvent(ctx, tenantKey(tenantID), event)
}

// PublishWebhookReceived publishes a WebhookReceived event
func (ep *EventPublisher) PublishWebhookReceived(ctx context.Context, tenantID int64, topic string) error {
	event := &models.WebhookReceivedEvent{
		BaseEvent: newBaseEvent(models.EventTypeWebhookReceived),
		TenantID:  tenantID,
		Topic:     topic,
	}
	return ep.producer.PublishEvent(ctx, tenantKey(tenantID), event)
}

func tenantKey(tenantID int64) string {
	return fmt.Sprintf("tenant-%d", tenantID)
}
