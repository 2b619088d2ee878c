package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"webpulse/backend/internal/event/domain"
	"webpulse/backend/internal/event/service"
	"webpulse/backend/internal/server/httpx"
	"webpulse/backend/internal/server/middleware"
)

// maxBatchSize bounds one ingestion call.
const maxBatchSize = 500

// Recorder is the slice of the ingestion service the handler calls.
type Recorder interface {
	RecordEvents(ctx context.Context, userID string, inputs []service.EventInput) (*service.RecordResult, error)
}

// Handler exposes event ingestion over HTTP.
type Handler struct {
	events Recorder
}

// NewHandler returns a new ingestion HTTP handler.
func NewHandler(events Recorder) *Handler {
	return &Handler{events: events}
}

// Register mounts the ingestion routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/events", h.recordEvents)
}

type eventPayload struct {
	Type           string            `json:"type"`
	DurationMs     int64             `json:"durationMs"`
	ScrollDistance int64             `json:"scrollDistance"`
	URL            string            `json:"url"`
	Domain         string            `json:"domain"`
	Metadata       map[string]string `json:"metadata"`
	StartedAt      *time.Time        `json:"startedAt"`
	IdempotencyKey string            `json:"idempotencyKey"`
}

type recordEventsRequest struct {
	Events []eventPayload `json:"events"`
}

type recordEventsResponse struct {
	Stored         int      `json:"stored"`
	AcceptedKeys   []string `json:"acceptedKeys"`
	TrackingPaused bool     `json:"trackingPaused"`
}

func (h *Handler) recordEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "missing authentication")
		return
	}

	var req recordEventsRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Events) > maxBatchSize {
		httpx.Error(w, http.StatusBadRequest, "batch too large")
		return
	}

	inputs := make([]service.EventInput, 0, len(req.Events))
	for _, e := range req.Events {
		inputs = append(inputs, service.EventInput{
			Type:           domain.EventType(e.Type),
			DurationMs:     e.DurationMs,
			ScrollDistance: e.ScrollDistance,
			URL:            e.URL,
			Domain:         e.Domain,
			Metadata:       e.Metadata,
			StartedAt:      e.StartedAt,
			IdempotencyKey: e.IdempotencyKey,
		})
	}

	result, err := h.events.RecordEvents(r.Context(), userID, inputs)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrEmptyBatch), errors.Is(err, service.ErrUnknownEventType):
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, service.ErrUserNotFound):
		httpx.Error(w, http.StatusNotFound, "user not found")
		return
	default:
		log.Printf("ingest: record events for %s failed: %v", userID, err)
		httpx.Error(w, http.StatusInternalServerError, "failed to record events")
		return
	}

	httpx.JSON(w, http.StatusOK, recordEventsResponse{
		Stored:         result.Stored,
		AcceptedKeys:   result.AcceptedKeys,
		TrackingPaused: result.TrackingPaused,
	})
}
