package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"webpulse/backend/internal/telemetry/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an activity repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save persists the activity event. It sets a.ID on success.
func (r *PostgresRepository) Save(ctx context.Context, a *domain.Activity) error {
	days, err := json.Marshal(daysOrEmpty(a.Days))
	if err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO activity_log (user_id, event_type, source, received, stored, days, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		a.UserID, a.EventType, a.Source, a.Received, a.Stored, days, a.CreatedAt.UTC(),
	).Scan(&a.ID)
}

// ListRecent returns up to limit activity events for the user, newest first.
func (r *PostgresRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*domain.Activity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, event_type, source, received, stored, days, created_at
		FROM activity_log WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Activity
	for rows.Next() {
		var a domain.Activity
		var days []byte
		if err := rows.Scan(&a.ID, &a.UserID, &a.EventType, &a.Source,
			&a.Received, &a.Stored, &days, &a.CreatedAt); err != nil {
			return nil, err
		}
		if len(days) > 0 {
			if err := json.Unmarshal(days, &a.Days); err != nil {
				return nil, err
			}
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func daysOrEmpty(days []string) []string {
	if days == nil {
		return []string{}
	}
	return days
}
