package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"webpulse/backend/internal/metric/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a daily-metric repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the metric for (userID, date), or nil if not computed yet.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) Get(ctx context.Context, userID, date string) (*domain.DailyMetric, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, metric_date, scroll_distance, active_minutes, idle_minutes, click_count,
		       domain_breakdown, hour_breakdown, last_computed_at
		FROM daily_metrics WHERE user_id = $1 AND metric_date = $2`, userID, date)
	m, err := scanMetric(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// Upsert overwrites the whole row for (m.UserID, m.Date). The breakdown
// columns are replaced, never merged.
func (r *PostgresRepository) Upsert(ctx context.Context, m *domain.DailyMetric) error {
	domains, err := json.Marshal(domainsOrEmpty(m.DomainBreakdown))
	if err != nil {
		return err
	}
	hours, err := json.Marshal(hoursOrEmpty(m.HourBreakdown))
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO daily_metrics
			(user_id, metric_date, scroll_distance, active_minutes, idle_minutes, click_count,
			 domain_breakdown, hour_breakdown, last_computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, metric_date) DO UPDATE SET
			scroll_distance = EXCLUDED.scroll_distance,
			active_minutes = EXCLUDED.active_minutes,
			idle_minutes = EXCLUDED.idle_minutes,
			click_count = EXCLUDED.click_count,
			domain_breakdown = EXCLUDED.domain_breakdown,
			hour_breakdown = EXCLUDED.hour_breakdown,
			last_computed_at = EXCLUDED.last_computed_at`,
		m.UserID, m.Date, m.Totals.ScrollDistance, m.Totals.ActiveMinutes,
		m.Totals.IdleMinutes, m.Totals.ClickCount, domains, hours,
		m.LastComputedAt.UTC())
	return err
}

// ListRange returns metrics for dates in [from, to] inclusive, newest first.
func (r *PostgresRepository) ListRange(ctx context.Context, userID, from, to string) ([]*domain.DailyMetric, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, metric_date, scroll_distance, active_minutes, idle_minutes, click_count,
		       domain_breakdown, hour_breakdown, last_computed_at
		FROM daily_metrics
		WHERE user_id = $1 AND metric_date >= $2 AND metric_date <= $3
		ORDER BY metric_date DESC`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.DailyMetric
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanMetric(s scanner) (*domain.DailyMetric, error) {
	var m domain.DailyMetric
	var domains, hours []byte
	err := s.Scan(&m.UserID, &m.Date, &m.Totals.ScrollDistance, &m.Totals.ActiveMinutes,
		&m.Totals.IdleMinutes, &m.Totals.ClickCount, &domains, &hours, &m.LastComputedAt)
	if err != nil {
		return nil, err
	}
	if len(domains) > 0 {
		if err := json.Unmarshal(domains, &m.DomainBreakdown); err != nil {
			return nil, err
		}
	}
	if len(hours) > 0 {
		if err := json.Unmarshal(hours, &m.HourBreakdown); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

func domainsOrEmpty(d []domain.DomainEntry) []domain.DomainEntry {
	if d == nil {
		return []domain.DomainEntry{}
	}
	return d
}

func hoursOrEmpty(h map[int]int64) map[int]int64 {
	if h == nil {
		return map[int]int64{}
	}
	return h
}
