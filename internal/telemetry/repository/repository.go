package repository

import (
	"context"

	"webpulse/backend/internal/telemetry/domain"
)

// Repository defines persistence for activity telemetry events.
type Repository interface {
	// Save persists one activity event. Sets a.ID on success.
	Save(ctx context.Context, a *domain.Activity) error
	// ListRecent returns up to limit events for the user, newest first.
	ListRecent(ctx context.Context, userID string, limit int) ([]*domain.Activity, error)
}
