package repository

import (
	"context"

	"webpulse/backend/internal/metric/domain"
)

// Repository defines persistence for daily metric rollups.
type Repository interface {
	// Get returns the metric for (userID, date), or nil if not computed yet.
	Get(ctx context.Context, userID, date string) (*domain.DailyMetric, error)
	// Upsert overwrites the whole row for (m.UserID, m.Date).
	Upsert(ctx context.Context, m *domain.DailyMetric) error
	// ListRange returns metrics for dates in [from, to] (YYYY-MM-DD,
	// inclusive), newest first. Days with no row are simply absent.
	ListRange(ctx context.Context, userID, from, to string) ([]*domain.DailyMetric, error)
}
