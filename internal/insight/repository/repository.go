package repository

import (
	"context"

	"webpulse/backend/internal/insight/domain"
)

// Repository defines persistence for generated insights.
type Repository interface {
	// Insert persists a new insight row.
	Insert(ctx context.Context, in *domain.Insight) error
	// Update rewrites title, body, tags, signature, and updated_at of the row
	// with in.ID.
	Update(ctx context.Context, in *domain.Insight) error
	// LatestForDate returns the most recently updated insight for
	// (userID, date), or nil if none exists.
	LatestForDate(ctx context.Context, userID, date string) (*domain.Insight, error)
	// ListRecent returns up to limit insights for the user across all dates,
	// most recently updated first.
	ListRecent(ctx context.Context, userID string, limit int) ([]*domain.Insight, error)
	// TrimForDate hard-deletes all but the keep most recently updated rows
	// for (userID, date). Returns how many rows were deleted.
	TrimForDate(ctx context.Context, userID, date string, keep int) (int64, error)
}
