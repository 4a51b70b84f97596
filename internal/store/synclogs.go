package store

import (
	"context"
	"fmt"

	"github.com/hrishiii27/shopify-insights/internal/models"
)

// CreateSyncLog opens a sync log row in the running state
func (s *Store) CreateSyncLog(ctx context.Context, tenantID int64, syncType string) (*models.SyncLog, error) {
	query := `
		INSERT INTO sync_logs (tenant_id, sync_type, status)
		VALUES ($1, $2, $3)
		RETURNING id, started_at`

	syncLog := &models.SyncLog{
		TenantID: tenantID,
		SyncType: syncType,
		Status:   models.SyncStatusRunning,
	}
	err := s.db.QueryRowxContext(ctx, query,
		tenantID, syncType, models.SyncStatusRunning,
	).Scan(&syncLog.ID, &syncLog.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync log: %w", err)
	}
	return syncLog, nil
}

// CompleteSyncLog transitions a running sync log to completed with the
// item count. Terminal rows are immutable: the status guard makes a
// second transition a no-op.
func (s *Store) CompleteSyncLog(ctx context.Context, syncLogID int64, itemsSynced int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sync_logs
		SET status = $1, items_synced = $2, completed_at = NOW()
		WHERE id = $3 AND status = $4`,
		models.SyncStatusCompleted, itemsSynced, syncLogID, models.SyncStatusRunning)
	return err
}

// FailSyncLog transitions a running sync log to failed with the error
// text, subject to the same immutability guard.
func (s *Store) FailSyncLog(ctx context.Context, syncLogID int64, errText string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sync_logs
		SET status = $1, error = $2, completed_at = NOW()
		WHERE id = $3 AND status = $4`,
		models.SyncStatusFailed, errText, syncLogID, models.SyncStatusRunning)
	return err
}

// GetRecentSyncLogs returns the most recent sync log entries for a tenant
func (s *Store) GetRecentSyncLogs(ctx context.Context, tenantID int64, limit int) ([]models.SyncLog, error) {
	var logs []models.SyncLog
	err := s.db.SelectContext(ctx, &logs,
		"SELECT * FROM sync_logs WHERE tenant_id = $1 ORDER BY started_at DESC LIMIT $2",
		tenantID, limit)
	return logs, err
}

// HasRunningSync reports whether the tenant has a sync log still in the
// running state
func (s *Store) HasRunningSync(ctx context.Context, tenantID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM sync_logs WHERE tenant_id = $1 AND status = $2)",
		tenantID, models.SyncStatusRunning)
	return exists, err
}
