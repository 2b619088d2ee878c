package domain

import "time"

// AccountStatus is the user's denormalized activity status.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
)

// Presence is the denormalized last-known-activity snapshot on the user
// record, updated best-effort as a side effect of event ingestion.
type Presence struct {
	LastEventAt        *time.Time `json:"lastEventAt,omitempty"`
	LastEventType      string     `json:"lastEventType,omitempty"`
	LastURL            string     `json:"lastUrl,omitempty"`
	LastDomain         string     `json:"lastDomain,omitempty"`
	LastDurationMs     int64      `json:"lastDurationMs,omitempty"`
	LastScrollDistance int64      `json:"lastScrollDistance,omitempty"`
}

// User is the slice of the profile subsystem's user record this service reads
// and writes: the tracking pause gate and the presence snapshot. Everything
// else about the user is owned by the profile subsystem.
type User struct {
	ID             string
	TrackingPaused bool
	Presence       Presence
	AccountStatus  AccountStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
