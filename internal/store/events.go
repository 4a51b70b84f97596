package store

import (
	"context"
	"fmt"

	"github.com/hrishiii27/shopify-insights/internal/models"
)

// InsertEvent appends one domain event. Events are append-only; there
// is no update or delete path.
func (s *Store) InsertEvent(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (tenant_id, topic, source, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := s.db.QueryRowxContext(ctx, query,
		event.TenantID, event.Topic, event.Source, event.Payload,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// GetRecentEvents returns the most recent events for a tenant
func (s *Store) GetRecentEvents(ctx context.Context, tenantID int64, limit int) ([]models.Event, error) {
	var events []models.Event
	err := s.db.SelectContext(ctx, &events,
		"SELECT * FROM events WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2",
		tenantID, limit)
	return events, err
}
