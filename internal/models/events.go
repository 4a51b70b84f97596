package models

import "time"

// Event types published to the sync-events topic
const (
	EventTypeSyncStarted     = "SYNC_STARTED"
	EventTypeSyncCompleted   = "SYNC_COMPLETED"
	EventTypeSyncFailed      = "SYNC_FAILED"
	EventTypeWebhookReceived = "WEBHOOK_RECEIVED"
)

// BaseEvent contains common fields for all published events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// SyncStartedEvent published when a (tenant, type) sync run begins
type SyncStartedEvent struct {
	BaseEvent
	TenantID  int64  `json:"tenant_id"`
	SyncType  string `json:"sync_type"`
	SyncLogID int64  `json:"sync_log_id"`
}

// SyncCompletedEvent published when a sync run finishes successfully
type SyncCompletedEvent struct {
	BaseEvent
	TenantID    int64  `json:"tenant_id"`
	SyncType    string `json:"sync_type"`
	SyncLogID   int64  `json:"sync_log_id"`
	ItemsSynced int    `json:"items_synced"`
}

// SyncFailedEvent published when a sync run fails
type SyncFailedEvent struct {
	BaseEvent
	TenantID  int64  `json:"tenant_id"`
	SyncType  string `json:"sync_type"`
	SyncLogID int64  `json:"sync_log_id"`
	Reason    string `json:"reason"`
}

// WebhookReceivedEvent published for every accepted webhook delivery
type WebhookReceivedEvent struct {
	BaseEvent
	TenantID int64  `json:"tenant_id"`
	Topic    string `json:"topic"`
}
