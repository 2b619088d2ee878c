package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"webpulse/backend/internal/insight/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an insight repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert persists a new insight row.
func (r *PostgresRepository) Insert(ctx context.Context, in *domain.Insight) error {
	tags, err := json.Marshal(tagsOrEmpty(in.Tags))
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO insights
			(id, user_id, metric_date, title, body, tags, metric_signature, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		in.ID, in.UserID, in.MetricDate, in.Title, in.Body, tags,
		in.MetricSignature, in.CreatedAt.UTC(), in.UpdatedAt.UTC())
	return err
}

// Update rewrites title, body, tags, signature, and updated_at of the row
// with in.ID.
func (r *PostgresRepository) Update(ctx context.Context, in *domain.Insight) error {
	tags, err := json.Marshal(tagsOrEmpty(in.Tags))
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE insights SET title = $2, body = $3, tags = $4, metric_signature = $5, updated_at = $6
		WHERE id = $1`,
		in.ID, in.Title, in.Body, tags, in.MetricSignature, in.UpdatedAt.UTC())
	return err
}

// LatestForDate returns the most recently updated insight for (userID, date),
// or nil if none exists.
func (r *PostgresRepository) LatestForDate(ctx context.Context, userID, date string) (*domain.Insight, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, metric_date, title, body, tags, metric_signature, created_at, updated_at
		FROM insights WHERE user_id = $1 AND metric_date = $2
		ORDER BY updated_at DESC LIMIT 1`, userID, date)
	in, err := scanInsight(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return in, nil
}

// ListRecent returns up to limit insights for the user across all dates,
// most recently updated first.
func (r *PostgresRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*domain.Insight, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, metric_date, title, body, tags, metric_signature, created_at, updated_at
		FROM insights WHERE user_id = $1
		ORDER BY updated_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Insight
	for rows.Next() {
		in, err := scanInsight(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// TrimForDate hard-deletes all but the keep most recently updated rows for
// (userID, date). Returns how many rows were deleted.
func (r *PostgresRepository) TrimForDate(ctx context.Context, userID, date string, keep int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM insights
		WHERE user_id = $1 AND metric_date = $2 AND id NOT IN (
			SELECT id FROM insights
			WHERE user_id = $1 AND metric_date = $2
			ORDER BY updated_at DESC LIMIT $3
		)`, userID, date, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInsight(s scanner) (*domain.Insight, error) {
	var in domain.Insight
	var tags []byte
	err := s.Scan(&in.ID, &in.UserID, &in.MetricDate, &in.Title, &in.Body,
		&tags, &in.MetricSignature, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &in.Tags); err != nil {
			return nil, err
		}
	}
	return &in, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
