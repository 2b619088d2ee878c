package repository

import (
	"context"

	"webpulse/backend/internal/event/domain"
)

// Repository defines persistence for tracking events. Events are append-only;
// nothing in this service deletes them.
type Repository interface {
	// InsertBatch persists the events best-effort: a failure on one row must
	// not abort the others. Returns how many rows were actually inserted;
	// per-row failures are logged, not returned.
	InsertBatch(ctx context.Context, events []*domain.TrackingEvent) (int, error)
	// ExistingKeys returns the subset of keys that already exist for the user.
	ExistingKeys(ctx context.Context, userID string, keys []string) (map[string]bool, error)
	// ListByDay returns the user's events for the UTC calendar day (YYYY-MM-DD),
	// ordered by creation time. Day membership uses the client-reported start
	// time when present, else the server timestamp.
	ListByDay(ctx context.Context, userID, date string) ([]*domain.TrackingEvent, error)
	// CountByType returns lifetime event counts per type for the user.
	CountByType(ctx context.Context, userID string) ([]domain.TypeCount, error)
}
