package service

import (
	"context"
	"sort"
	"strings"
	"time"

	eventdomain "webpulse/backend/internal/event/domain"
	"webpulse/backend/internal/metric/domain"
)

// StalenessThreshold is how old today's rollup may be before a summary read
// recomputes it synchronously.
const StalenessThreshold = 2 * time.Minute

// dateFormat is the UTC calendar day form used as the aggregation key.
const dateFormat = "2006-01-02"

// EventSource is the slice of the event store the aggregator reads.
type EventSource interface {
	ListByDay(ctx context.Context, userID, date string) ([]*eventdomain.TrackingEvent, error)
	CountByType(ctx context.Context, userID string) ([]eventdomain.TypeCount, error)
}

// Repository is the metric persistence the aggregator writes.
type Repository interface {
	Get(ctx context.Context, userID, date string) (*domain.DailyMetric, error)
	Upsert(ctx context.Context, m *domain.DailyMetric) error
	ListRange(ctx context.Context, userID, from, to string) ([]*domain.DailyMetric, error)
}

// Aggregator recomputes daily metric rollups from stored tracking events.
// Every recompute is whole-day from source events, so concurrent or repeated
// invocations with the same inputs are idempotent in result.
type Aggregator struct {
	events  EventSource
	metrics Repository
	now     func() time.Time
}

// NewAggregator returns an Aggregator over the given event source and metric store.
func NewAggregator(events EventSource, metrics Repository) *Aggregator {
	return &Aggregator{events: events, metrics: metrics, now: time.Now}
}

// Aggregate recomputes the full rollup for (userID, date) from the day's
// events and upserts it. Errors come only from the persistence layer; the
// computation itself cannot fail.
func (a *Aggregator) Aggregate(ctx context.Context, userID, date string) (*domain.DailyMetric, error) {
	events, err := a.events.ListByDay(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	m := Compute(userID, date, events, a.now().UTC())
	if err := a.metrics.Upsert(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Summary returns today's rollup (recomputed first when missing or older than
// StalenessThreshold), the last seven days of rollups, and lifetime per-type
// event counters.
func (a *Aggregator) Summary(ctx context.Context, userID string) (*domain.Summary, error) {
	now := a.now().UTC()
	today := now.Format(dateFormat)

	m, err := a.metrics.Get(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	if m == nil || now.Sub(m.LastComputedAt) > StalenessThreshold {
		m, err = a.Aggregate(ctx, userID, today)
		if err != nil {
			return nil, err
		}
	}

	weekStart := now.AddDate(0, 0, -6).Format(dateFormat)
	weekly, err := a.metrics.ListRange(ctx, userID, weekStart, today)
	if err != nil {
		return nil, err
	}

	counts, err := a.events.CountByType(ctx, userID)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]int64, len(counts))
	for _, tc := range counts {
		totals[string(tc.Type)] = tc.Count
	}

	return &domain.Summary{Today: m, Weekly: weekly, Totals: totals}, nil
}

// Compute reduces one day's events into a DailyMetric. Pure: the same events
// always yield the same totals and breakdowns, regardless of when or how
// often it runs.
func Compute(userID, date string, events []*eventdomain.TrackingEvent, computedAt time.Time) *domain.DailyMetric {
	m := &domain.DailyMetric{
		UserID:         userID,
		Date:           date,
		HourBreakdown:  map[int]int64{},
		LastComputedAt: computedAt,
	}

	type domainAgg struct {
		durationMs     int64
		scrollDistance int64
	}
	domains := map[string]*domainAgg{}

	var activeMs, idleMs int64
	for _, e := range events {
		if e.ScrollDistance > 0 {
			m.Totals.ScrollDistance += e.ScrollDistance
		}
		switch {
		case e.Type == eventdomain.EventTypeIdle:
			idleMs += e.DurationMs
		case e.DurationMs > 0:
			activeMs += e.DurationMs
		}
		if e.Type == eventdomain.EventTypeClick {
			m.Totals.ClickCount++
		}

		key := strings.ToLower(e.Domain)
		agg := domains[key]
		if agg == nil {
			agg = &domainAgg{}
			domains[key] = agg
		}
		agg.durationMs += e.DurationMs
		if e.ScrollDistance > 0 {
			agg.scrollDistance += e.ScrollDistance
		}

		if e.DurationMs > 0 {
			m.HourBreakdown[e.CreatedAt.UTC().Hour()] += e.DurationMs
		}
	}
	m.Totals.ActiveMinutes = float64(activeMs) / 60000
	m.Totals.IdleMinutes = float64(idleMs) / 60000

	for name, agg := range domains {
		if agg.durationMs <= 0 && agg.scrollDistance <= 0 {
			continue
		}
		m.DomainBreakdown = append(m.DomainBreakdown, domain.DomainEntry{
			Domain:         name,
			DurationMs:     agg.durationMs,
			ScrollDistance: agg.scrollDistance,
		})
	}
	sort.Slice(m.DomainBreakdown, func(i, j int) bool {
		a, b := m.DomainBreakdown[i], m.DomainBreakdown[j]
		if a.DurationMs != b.DurationMs {
			return a.DurationMs > b.DurationMs
		}
		return a.Domain < b.Domain
	})
	if len(m.DomainBreakdown) > domain.MaxDomainEntries {
		m.DomainBreakdown = m.DomainBreakdown[:domain.MaxDomainEntries]
	}

	return m
}
