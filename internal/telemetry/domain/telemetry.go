package domain

import "time"

// Activity is one best-effort activity telemetry event. The JSON form is the
// Kafka wire format; the worker and the Loki labels parse these field names.
type Activity struct {
	ID        int64     `json:"-"`
	UserID    string    `json:"userId"`
	EventType string    `json:"eventType"` // e.g. "ingestion"
	Source    string    `json:"source"`    // e.g. "api"
	Received  int       `json:"received"`
	Stored    int       `json:"stored"`
	Days      []string  `json:"days"` // impacted YYYY-MM-DD days
	CreatedAt time.Time `json:"createdAt"`
}
