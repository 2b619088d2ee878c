package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"webpulse/backend/internal/metric/domain"
	"webpulse/backend/internal/server/httpx"
	"webpulse/backend/internal/server/middleware"
)

// SummaryProvider is the slice of the aggregator the handler calls.
type SummaryProvider interface {
	Summary(ctx context.Context, userID string) (*domain.Summary, error)
}

// Handler exposes the metrics read path over HTTP.
type Handler struct {
	metrics SummaryProvider
}

// NewHandler returns a new metrics HTTP handler.
func NewHandler(metrics SummaryProvider) *Handler {
	return &Handler{metrics: metrics}
}

// Register mounts the metrics routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/metrics/summary", h.summary)
}

type dailyMetricPayload struct {
	Date            string               `json:"date"`
	Totals          domain.Totals        `json:"totals"`
	DomainBreakdown []domain.DomainEntry `json:"domainBreakdown"`
	HourBreakdown   map[int]int64        `json:"hourBreakdown"`
	LastComputedAt  time.Time            `json:"lastComputedAt"`
}

type summaryResponse struct {
	Today  *dailyMetricPayload   `json:"today"`
	Weekly []*dailyMetricPayload `json:"weekly"`
	Totals map[string]int64      `json:"totals"`
}

func toMetricPayload(m *domain.DailyMetric) *dailyMetricPayload {
	if m == nil {
		return nil
	}
	p := &dailyMetricPayload{
		Date:            m.Date,
		Totals:          m.Totals,
		DomainBreakdown: m.DomainBreakdown,
		HourBreakdown:   m.HourBreakdown,
		LastComputedAt:  m.LastComputedAt,
	}
	if p.DomainBreakdown == nil {
		p.DomainBreakdown = []domain.DomainEntry{}
	}
	if p.HourBreakdown == nil {
		p.HourBreakdown = map[int]int64{}
	}
	return p
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "missing authentication")
		return
	}

	s, err := h.metrics.Summary(r.Context(), userID)
	if err != nil {
		log.Printf("metric: summary for %s failed: %v", userID, err)
		httpx.Error(w, http.StatusInternalServerError, "failed to load summary")
		return
	}

	resp := summaryResponse{
		Today:  toMetricPayload(s.Today),
		Weekly: make([]*dailyMetricPayload, 0, len(s.Weekly)),
		Totals: s.Totals,
	}
	for _, m := range s.Weekly {
		resp.Weekly = append(resp.Weekly, toMetricPayload(m))
	}
	if resp.Totals == nil {
		resp.Totals = map[string]int64{}
	}
	httpx.JSON(w, http.StatusOK, resp)
}
