package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"webpulse/backend/internal/event/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an event repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// InsertBatch persists the events one by one. A failed row is logged and
// skipped; the remaining rows are still inserted. Returns the number of rows
// actually written. The error return is reserved for context cancellation.
func (r *PostgresRepository) InsertBatch(ctx context.Context, events []*domain.TrackingEvent) (int, error) {
	stored := 0
	for _, e := range events {
		if err := ctx.Err(); err != nil {
			return stored, err
		}
		metadata, err := json.Marshal(metadataOrEmpty(e.Metadata))
		if err != nil {
			log.Printf("event: marshal metadata for %s: %v", e.ID, err)
			continue
		}
		var key sql.NullString
		if e.IdempotencyKey != "" {
			key = sql.NullString{String: e.IdempotencyKey, Valid: true}
		}
		var startedAt sql.NullTime
		if e.StartedAt != nil {
			startedAt = sql.NullTime{Time: e.StartedAt.UTC(), Valid: true}
		}
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO tracking_events
				(id, user_id, event_type, duration_ms, scroll_distance, url, domain, metadata, started_at, created_at, idempotency_key)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			e.ID, e.UserID, string(e.Type), e.DurationMs, e.ScrollDistance,
			e.URL, e.Domain, metadata, startedAt, e.CreatedAt.UTC(), key)
		if err != nil {
			log.Printf("event: insert %s failed: %v", e.ID, err)
			continue
		}
		stored++
	}
	return stored, nil
}

// ExistingKeys returns which of the given idempotency keys already exist for
// the user. Missing keys are simply absent from the result map.
func (r *PostgresRepository) ExistingKeys(ctx context.Context, userID string, keys []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return existing, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT idempotency_key FROM tracking_events
		WHERE user_id = $1 AND idempotency_key = ANY($2)`, userID, keys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		existing[key] = true
	}
	return existing, rows.Err()
}

// ListByDay returns the user's events for the UTC calendar day, ordered by
// creation time. Day membership uses started_at when the client reported one,
// else created_at, so backdated events land on the day they describe.
func (r *PostgresRepository) ListByDay(ctx context.Context, userID, date string) ([]*domain.TrackingEvent, error) {
	start, end, err := dayBounds(date)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, event_type, duration_ms, scroll_distance, url, domain, metadata, started_at, created_at, idempotency_key
		FROM tracking_events
		WHERE user_id = $1
		  AND COALESCE(started_at, created_at) >= $2
		  AND COALESCE(started_at, created_at) < $3
		ORDER BY created_at`, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.TrackingEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountByType returns lifetime event counts per type for the user.
func (r *PostgresRepository) CountByType(ctx context.Context, userID string) ([]domain.TypeCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT event_type, COUNT(*) FROM tracking_events
		WHERE user_id = $1 GROUP BY event_type`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TypeCount
	for rows.Next() {
		var tc domain.TypeCount
		var typ string
		if err := rows.Scan(&typ, &tc.Count); err != nil {
			return nil, err
		}
		tc.Type = domain.EventType(typ)
		out = append(out, tc)
	}
	return out, rows.Err()
}

func scanEvent(rows *sql.Rows) (*domain.TrackingEvent, error) {
	var e domain.TrackingEvent
	var typ string
	var metadata []byte
	var startedAt sql.NullTime
	var key sql.NullString
	err := rows.Scan(&e.ID, &e.UserID, &typ, &e.DurationMs, &e.ScrollDistance,
		&e.URL, &e.Domain, &metadata, &startedAt, &e.CreatedAt, &key)
	if err != nil {
		return nil, err
	}
	e.Type = domain.EventType(typ)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
			return nil, err
		}
	}
	if startedAt.Valid {
		t := startedAt.Time
		e.StartedAt = &t
	}
	if key.Valid {
		e.IdempotencyKey = key.String
	}
	return &e, nil
}

func metadataOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// dayBounds returns the UTC range [00:00:00, next day 00:00:00) for a
// YYYY-MM-DD date.
func dayBounds(date string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return start, start.AddDate(0, 0, 1), nil
}
