package telemetry

import (
	"context"

	"webpulse/backend/internal/telemetry/domain"
)

// EventEmitter emits activity events (e.g. to Kafka or OTel Logs). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *domain.Activity) error
}
