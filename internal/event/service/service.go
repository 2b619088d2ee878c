package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"webpulse/backend/internal/event/domain"
	metricdomain "webpulse/backend/internal/metric/domain"
	userdomain "webpulse/backend/internal/user/domain"
)

// Sentinel errors for the ingestion service; the handler maps them to HTTP codes.
var (
	ErrEmptyBatch       = errors.New("event batch is empty")
	ErrUnknownEventType = errors.New("unknown event type")
	ErrUserNotFound     = errors.New("user not found")
)

// dateFormat is the UTC calendar day form used as the aggregation key.
const dateFormat = "2006-01-02"

// EventInput is one event descriptor submitted by a client.
type EventInput struct {
	Type           domain.EventType
	DurationMs     int64
	ScrollDistance int64
	URL            string
	Domain         string
	Metadata       map[string]string
	StartedAt      *time.Time
	IdempotencyKey string
}

// RecordResult describes what a RecordEvents call actually stored.
type RecordResult struct {
	Stored         int
	AcceptedKeys   []string
	TrackingPaused bool
}

// UserStore is the slice of the user repository the ingestion service needs:
// the pause gate and the presence write.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	UpdatePresence(ctx context.Context, userID string, p userdomain.Presence, status userdomain.AccountStatus) error
}

// EventStore is the event persistence the ingestion service writes.
type EventStore interface {
	InsertBatch(ctx context.Context, events []*domain.TrackingEvent) (int, error)
	ExistingKeys(ctx context.Context, userID string, keys []string) (map[string]bool, error)
}

// Aggregator recomputes the daily rollup for one impacted day.
type Aggregator interface {
	Aggregate(ctx context.Context, userID, date string) (*metricdomain.DailyMetric, error)
}

// ActivityEmitter publishes a best-effort ingestion telemetry event. May be nil.
type ActivityEmitter interface {
	EmitIngestion(ctx context.Context, userID string, received, stored int, days []string)
}

// Service ingests batches of tracking events: pause gate, best-effort
// idempotent dedup, impacted-day recompute, and the presence side effect.
type Service struct {
	events     EventStore
	users      UserStore
	aggregator Aggregator
	emitter    ActivityEmitter
	now        func() time.Time
}

// NewService returns an ingestion service. emitter may be nil; then no
// activity telemetry is published.
func NewService(events EventStore, users UserStore, aggregator Aggregator, emitter ActivityEmitter) *Service {
	return &Service{events: events, users: users, aggregator: aggregator, emitter: emitter, now: time.Now}
}

// RecordEvents validates the pause gate, deduplicates keyed events, persists
// the batch best-effort, recomputes every impacted day, and updates the
// user's presence snapshot.
//
// Dedup is check-then-insert: two concurrent calls with the same key can both
// observe it missing and both insert. That duplicate is accepted; dedup here
// is best-effort, not exactly-once.
func (s *Service) RecordEvents(ctx context.Context, userID string, inputs []EventInput) (*RecordResult, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyBatch
	}
	for _, in := range inputs {
		if !in.Type.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, in.Type)
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	// Paused is a hard gate: nothing is written, not even presence.
	if user.TrackingPaused {
		return &RecordResult{Stored: 0, AcceptedKeys: []string{}, TrackingPaused: true}, nil
	}

	now := s.now().UTC()
	events := make([]*domain.TrackingEvent, 0, len(inputs))
	for _, in := range inputs {
		events = append(events, &domain.TrackingEvent{
			ID:             uuid.NewString(),
			UserID:         userID,
			Type:           in.Type,
			DurationMs:     in.DurationMs,
			ScrollDistance: in.ScrollDistance,
			URL:            in.URL,
			Domain:         in.Domain,
			Metadata:       in.Metadata,
			StartedAt:      in.StartedAt,
			CreatedAt:      now,
			IdempotencyKey: in.IdempotencyKey,
		})
	}

	var unkeyed []*domain.TrackingEvent
	keyed := make([]*domain.TrackingEvent, 0)
	keys := make([]string, 0)
	seen := map[string]bool{}
	for _, e := range events {
		if e.IdempotencyKey == "" {
			unkeyed = append(unkeyed, e)
			continue
		}
		// Within one batch the first occurrence of a key wins.
		if seen[e.IdempotencyKey] {
			continue
		}
		seen[e.IdempotencyKey] = true
		keyed = append(keyed, e)
		keys = append(keys, e.IdempotencyKey)
	}

	existing, err := s.events.ExistingKeys(ctx, userID, keys)
	if err != nil {
		return nil, err
	}
	missingKeyed := make([]*domain.TrackingEvent, 0, len(keyed))
	for _, e := range keyed {
		if !existing[e.IdempotencyKey] {
			missingKeyed = append(missingKeyed, e)
		}
	}

	// Two sub-batches so a failure in one cannot abort the other; per-row
	// failures inside each are already tolerated by the store.
	unkeyedStored, err := s.events.InsertBatch(ctx, unkeyed)
	if err != nil {
		return nil, err
	}
	if _, err := s.events.InsertBatch(ctx, missingKeyed); err != nil {
		return nil, err
	}

	// Every key submitted is now considered accepted, whether it was already
	// present or just inserted.
	accepted := make([]string, len(keys))
	copy(accepted, keys)
	stored := unkeyedStored + len(accepted)

	days := impactedDays(now, inputs)
	for _, date := range days {
		if _, err := s.aggregator.Aggregate(ctx, userID, date); err != nil {
			return nil, fmt.Errorf("aggregate %s: %w", date, err)
		}
	}

	s.updatePresence(ctx, userID, events[len(events)-1])

	if s.emitter != nil {
		s.emitter.EmitIngestion(ctx, userID, len(inputs), stored, days)
	}

	return &RecordResult{
		Stored:       stored,
		AcceptedKeys: accepted,
	}, nil
}

// impactedDays is {today} plus the day of every client-reported start time,
// deduplicated, in first-seen order.
func impactedDays(now time.Time, inputs []EventInput) []string {
	days := []string{now.Format(dateFormat)}
	seen := map[string]bool{days[0]: true}
	for _, in := range inputs {
		if in.StartedAt == nil {
			continue
		}
		d := in.StartedAt.UTC().Format(dateFormat)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	return days
}

// updatePresence refreshes the user's presence snapshot from the batch's last
// event. Best-effort: failures are logged and swallowed.
func (s *Service) updatePresence(ctx context.Context, userID string, last *domain.TrackingEvent) {
	at := last.CreatedAt
	p := userdomain.Presence{
		LastEventAt:        &at,
		LastEventType:      string(last.Type),
		LastURL:            last.URL,
		LastDomain:         last.Domain,
		LastDurationMs:     last.DurationMs,
		LastScrollDistance: last.ScrollDistance,
	}
	if err := s.users.UpdatePresence(ctx, userID, p, userdomain.AccountStatusActive); err != nil {
		log.Printf("ingest: presence update for %s failed: %v", userID, err)
	}
}
