package domain

import "time"

// MaxDomainEntries caps the per-day domain breakdown.
const MaxDomainEntries = 25

// Totals holds the per-day rollup counters.
type Totals struct {
	ScrollDistance int64   `json:"scrollDistance"`
	ActiveMinutes  float64 `json:"activeMinutes"`
	IdleMinutes    float64 `json:"idleMinutes"`
	ClickCount     int64   `json:"clickCount"`
}

// DomainEntry is one domain's share of a day, ordered descending by DurationMs
// in the breakdown.
type DomainEntry struct {
	Domain         string `json:"domain"`
	DurationMs     int64  `json:"durationMs"`
	ScrollDistance int64  `json:"scrollDistance"`
}

// DailyMetric is the mutable rollup for one (user, UTC calendar day). It is
// always a pure function of that day's TrackingEvents: the aggregator fully
// recomputes and overwrites it, never patches it incrementally.
type DailyMetric struct {
	UserID string
	// Date is the UTC calendar day in YYYY-MM-DD form.
	Date   string
	Totals Totals
	// DomainBreakdown holds at most MaxDomainEntries entries, sorted
	// descending by DurationMs.
	DomainBreakdown []DomainEntry
	// HourBreakdown maps hour-of-day (0-23) to summed DurationMs. Sparse:
	// only hours with activity are present.
	HourBreakdown  map[int]int64
	LastComputedAt time.Time
}

// Summary is the read-path response: today's metric (nil when absent), the
// last seven days of rollups, and lifetime per-type event counters.
type Summary struct {
	Today  *DailyMetric
	Weekly []*DailyMetric
	Totals map[string]int64
}
