package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"webpulse/backend/internal/insight/domain"
	"webpulse/backend/internal/insight/service"
	"webpulse/backend/internal/server/httpx"
	"webpulse/backend/internal/server/middleware"
)

const maxListLimit = 50

// InsightEngine is the slice of the generation engine the handler calls.
type InsightEngine interface {
	Generate(ctx context.Context, userID, date string, regenerate bool) (*domain.Insight, error)
	GetLatest(ctx context.Context, userID string, limit int) ([]*domain.Insight, error)
}

// Handler exposes insight generation and listing over HTTP.
type Handler struct {
	insights InsightEngine
}

// NewHandler returns a new insight HTTP handler.
func NewHandler(insights InsightEngine) *Handler {
	return &Handler{insights: insights}
}

// Register mounts the insight routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/insights", h.list)
	r.Post("/v1/insights/generate", h.generate)
}

type insightPayload struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	MetricDate string    `json:"metricDate"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toInsightPayload(in *domain.Insight) *insightPayload {
	p := &insightPayload{
		ID:         in.ID,
		Title:      in.Title,
		Body:       in.Body,
		MetricDate: in.MetricDate,
		Tags:       in.Tags,
		CreatedAt:  in.CreatedAt,
		UpdatedAt:  in.UpdatedAt,
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "missing authentication")
		return
	}

	limit := domain.DefaultRetention
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			httpx.Error(w, http.StatusBadRequest, "limit must be between 1 and 50")
			return
		}
		limit = n
	}

	rows, err := h.insights.GetLatest(r.Context(), userID, limit)
	if err != nil {
		log.Printf("insight: list for %s failed: %v", userID, err)
		httpx.Error(w, http.StatusInternalServerError, "failed to list insights")
		return
	}

	out := make([]*insightPayload, 0, len(rows))
	for _, in := range rows {
		out = append(out, toInsightPayload(in))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"insights": out})
}

type generateRequest struct {
	Date       string `json:"date"`
	Regenerate bool   `json:"regenerate"`
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "missing authentication")
		return
	}

	var req generateRequest
	if r.ContentLength != 0 {
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.Date != "" {
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			httpx.Error(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}

	in, err := h.insights.Generate(r.Context(), userID, req.Date, req.Regenerate)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrMetricsNotReady):
		httpx.Error(w, http.StatusConflict, "no metrics recorded for this date yet")
		return
	default:
		log.Printf("insight: generate for %s failed: %v", userID, err)
		httpx.Error(w, http.StatusInternalServerError, "failed to generate insight")
		return
	}

	httpx.JSON(w, http.StatusOK, toInsightPayload(in))
}
