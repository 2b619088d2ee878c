package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"webpulse/backend/internal/event/domain"
	metricdomain "webpulse/backend/internal/metric/domain"
	userdomain "webpulse/backend/internal/user/domain"
)

// fakeEventStore implements EventStore in memory.
type fakeEventStore struct {
	events  []*domain.TrackingEvent
	listErr error
}

func (f *fakeEventStore) InsertBatch(ctx context.Context, events []*domain.TrackingEvent) (int, error) {
	if f.listErr != nil {
		return 0, f.listErr
	}
	f.events = append(f.events, events...)
	return len(events), nil
}

func (f *fakeEventStore) ExistingKeys(ctx context.Context, userID string, keys []string) (map[string]bool, error) {
	existing := map[string]bool{}
	for _, e := range f.events {
		if e.UserID != userID || e.IdempotencyKey == "" {
			continue
		}
		for _, k := range keys {
			if e.IdempotencyKey == k {
				existing[k] = true
			}
		}
	}
	return existing, nil
}

// fakeUserStore implements UserStore in memory.
type fakeUserStore struct {
	user        *userdomain.User
	presence    *userdomain.Presence
	status      userdomain.AccountStatus
	presenceErr error
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	return f.user, nil
}

func (f *fakeUserStore) UpdatePresence(ctx context.Context, userID string, p userdomain.Presence, status userdomain.AccountStatus) error {
	if f.presenceErr != nil {
		return f.presenceErr
	}
	f.presence = &p
	f.status = status
	return nil
}

// fakeAggregator records which days were recomputed.
type fakeAggregator struct {
	days []string
	err  error
}

func (f *fakeAggregator) Aggregate(ctx context.Context, userID, date string) (*metricdomain.DailyMetric, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.days = append(f.days, date)
	return &metricdomain.DailyMetric{UserID: userID, Date: date}, nil
}

func newTestService() (*Service, *fakeEventStore, *fakeUserStore, *fakeAggregator) {
	events := &fakeEventStore{}
	users := &fakeUserStore{user: &userdomain.User{ID: "u1"}}
	agg := &fakeAggregator{}
	s := NewService(events, users, agg, nil)
	s.now = func() time.Time { return time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC) }
	return s, events, users, agg
}

func TestRecordEvents_EmptyBatch(t *testing.T) {
	s, _, _, _ := newTestService()
	_, err := s.RecordEvents(context.Background(), "u1", nil)
	if !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("err = %v, want ErrEmptyBatch", err)
	}
}

func TestRecordEvents_UnknownType(t *testing.T) {
	s, _, _, _ := newTestService()
	_, err := s.RecordEvents(context.Background(), "u1", []EventInput{{Type: "hover"}})
	if !errors.Is(err, ErrUnknownEventType) {
		t.Errorf("err = %v, want ErrUnknownEventType", err)
	}
}

func TestRecordEvents_PauseGate(t *testing.T) {
	s, events, users, agg := newTestService()
	users.user.TrackingPaused = true

	res, err := s.RecordEvents(context.Background(), "u1", []EventInput{
		{Type: domain.EventTypeClick, Domain: "a.com"},
	})
	if err != nil {
		t.Fatalf("RecordEvents: %v", err)
	}
	if !res.TrackingPaused {
		t.Error("TrackingPaused should be true")
	}
	if res.Stored != 0 {
		t.Errorf("Stored = %d, want 0", res.Stored)
	}
	if len(events.events) != 0 {
		t.Errorf("%d events stored, want 0", len(events.events))
	}
	if len(agg.days) != 0 {
		t.Error("no aggregation should run while paused")
	}
	if users.presence != nil {
		t.Error("presence must not be touched while paused")
	}
}

func TestRecordEvents_KeyedIdempotency(t *testing.T) {
	s, events, _, _ := newTestService()
	batch := []EventInput{
		{Type: domain.EventTypeClick, Domain: "a.com", IdempotencyKey: "k1"},
	}

	first, err := s.RecordEvents(context.Background(), "u1", batch)
	if err != nil {
		t.Fatalf("first RecordEvents: %v", err)
	}
	second, err := s.RecordEvents(context.Background(), "u1", batch)
	if err != nil {
		t.Fatalf("second RecordEvents: %v", err)
	}

	if first.Stored != 1 || second.Stored != 1 {
		t.Errorf("Stored = %d then %d, want 1 and 1", first.Stored, second.Stored)
	}
	if len(first.AcceptedKeys) != 1 || first.AcceptedKeys[0] != "k1" {
		t.Errorf("first AcceptedKeys = %v, want [k1]", first.AcceptedKeys)
	}
	if len(second.AcceptedKeys) != 1 || second.AcceptedKeys[0] != "k1" {
		t.Errorf("second AcceptedKeys = %v, want [k1]", second.AcceptedKeys)
	}
	if len(events.events) != 1 {
		t.Errorf("%d events stored, want 1 (no duplicate)", len(events.events))
	}
}

func TestRecordEvents_UnkeyedNoDedup(t *testing.T) {
	s, events, _, _ := newTestService()
	batch := []EventInput{{Type: domain.EventTypeScroll, Domain: "a.com", ScrollDistance: 100}}

	if _, err := s.RecordEvents(context.Background(), "u1", batch); err != nil {
		t.Fatalf("RecordEvents: %v", err)
	}
	if _, err := s.RecordEvents(context.Background(), "u1", batch); err != nil {
		t.Fatalf("RecordEvents: %v", err)
	}
	if len(events.events) != 2 {
		t.Errorf("%d events stored, want 2 (unkeyed events are never deduplicated)", len(events.events))
	}
}

func TestRecordEvents_ImpactedDays(t *testing.T) {
	s, _, _, agg := newTestService()
	yesterday := time.Date(2026, 8, 19, 23, 0, 0, 0, time.UTC)

	_, err := s.RecordEvents(context.Background(), "u1", []EventInput{
		{Type: domain.EventTypeClick, Domain: "a.com"},
		{Type: domain.EventTypeScroll, Domain: "a.com", StartedAt: &yesterday},
	})
	if err != nil {
		t.Fatalf("RecordEvents: %v", err)
	}

	want := []string{"2026-08-20", "2026-08-19"}
	if len(agg.days) != len(want) {
		t.Fatalf("aggregated days = %v, want %v", agg.days, want)
	}
	for i := range want {
		if agg.days[i] != want[i] {
			t.Errorf("aggregated days = %v, want %v", agg.days, want)
			break
		}
	}
}

func TestRecordEvents_PresenceFromLastEvent(t *testing.T) {
	s, _, users, _ := newTestService()

	_, err := s.RecordEvents(context.Background(), "u1", []EventInput{
		{Type: domain.EventTypeClick, Domain: "a.com", URL: "https://a.com/x"},
		{Type: domain.EventTypeScroll, Domain: "b.com", URL: "https://b.com/y", ScrollDistance: 500, DurationMs: 900},
	})
	if err != nil {
		t.Fatalf("RecordEvents: %v", err)
	}

	if users.presence == nil {
		t.Fatal("presence should be updated")
	}
	if users.presence.LastEventType != "scroll" {
		t.Errorf("LastEventType = %q, want %q", users.presence.LastEventType, "scroll")
	}
	if users.presence.LastDomain != "b.com" {
		t.Errorf("LastDomain = %q, want %q", users.presence.LastDomain, "b.com")
	}
	if users.presence.LastScrollDistance != 500 {
		t.Errorf("LastScrollDistance = %d, want 500", users.presence.LastScrollDistance)
	}
	if users.status != userdomain.AccountStatusActive {
		t.Errorf("account status = %q, want active", users.status)
	}
}

func TestRecordEvents_PresenceFailureSwallowed(t *testing.T) {
	s, _, users, _ := newTestService()
	users.presenceErr = errors.New("user store down")

	res, err := s.RecordEvents(context.Background(), "u1", []EventInput{
		{Type: domain.EventTypeClick, Domain: "a.com"},
	})
	if err != nil {
		t.Fatalf("RecordEvents should swallow presence errors, got %v", err)
	}
	if res.Stored != 1 {
		t.Errorf("Stored = %d, want 1", res.Stored)
	}
}

func TestRecordEvents_AggregationErrorPropagates(t *testing.T) {
	s, _, _, agg := newTestService()
	agg.err = errors.New("metric store down")

	_, err := s.RecordEvents(context.Background(), "u1", []EventInput{
		{Type: domain.EventTypeClick, Domain: "a.com"},
	})
	if err == nil {
		t.Fatal("aggregation errors should propagate")
	}
}
