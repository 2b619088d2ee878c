package telemetry

import (
	"context"
	"time"

	"webpulse/backend/internal/telemetry/domain"
)

// sourceAPI marks events emitted by the HTTP ingestion path.
const sourceAPI = "api"

// Recorder bridges ingestion to the telemetry pipeline: it builds Activity
// events and emits them asynchronously to every configured emitter.
type Recorder struct {
	emitters []EventEmitter
	now      func() time.Time
}

// NewRecorder returns a Recorder fanning out to the given emitters. Nil
// emitters are skipped, so callers can pass optional sinks unconditionally.
func NewRecorder(emitters ...EventEmitter) *Recorder {
	r := &Recorder{now: time.Now}
	for _, e := range emitters {
		if e != nil {
			r.emitters = append(r.emitters, e)
		}
	}
	return r
}

// EmitIngestion publishes one activity event describing an ingestion call.
// Fire-and-forget; never blocks the request path.
func (r *Recorder) EmitIngestion(ctx context.Context, userID string, received, stored int, days []string) {
	event := &domain.Activity{
		UserID:    userID,
		EventType: "ingestion",
		Source:    sourceAPI,
		Received:  received,
		Stored:    stored,
		Days:      days,
		CreatedAt: r.now().UTC(),
	}
	for _, e := range r.emitters {
		EmitAsync(e, ctx, event)
	}
}
