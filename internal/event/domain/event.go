package domain

import "time"

// EventType classifies a browsing interaction.
type EventType string

const (
	EventTypeScroll EventType = "scroll"
	EventTypeClick  EventType = "click"
	EventTypeIdle   EventType = "idle"
	EventTypeFocus  EventType = "focus"
	EventTypeBlur   EventType = "blur"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeScroll, EventTypeClick, EventTypeIdle, EventTypeFocus, EventTypeBlur:
		return true
	}
	return false
}

// TrackingEvent is an immutable browsing interaction fact. Once stored it is
// never mutated; dedup is enforced only when IdempotencyKey is set, scoped to
// (UserID, IdempotencyKey).
type TrackingEvent struct {
	ID             string
	UserID         string
	Type           EventType
	DurationMs     int64
	ScrollDistance int64
	URL            string
	Domain         string
	Metadata       map[string]string
	StartedAt      *time.Time // client-reported start; nil if not supplied
	CreatedAt      time.Time  // server timestamp
	IdempotencyKey string     // "" when the caller supplied none
}

// TypeCount is a lifetime per-type event counter for one user.
type TypeCount struct {
	Type  EventType
	Count int64
}
