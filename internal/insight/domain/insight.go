package domain

import "time"

// DefaultRetention is how many insights are kept per (user, metric date);
// older rows are hard-deleted by the trim step.
const DefaultRetention = 10

// Insight is a generated natural-language summary of one day's metrics.
// MetricSignature is the content hash of the DailyMetric state the body was
// produced from; for a given (user, date) at most one row carries a particular
// signature at a time.
type Insight struct {
	ID         string
	UserID     string
	Title      string
	Body       string
	MetricDate string // YYYY-MM-DD
	Tags       []string
	// MetricSignature is a hex SHA-256 over the signature-relevant subset of
	// the day's metric content (no timestamps or identifiers).
	MetricSignature string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
