package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"webpulse/backend/internal/server/httpx"
)

// pingTimeout bounds the database probe so a wedged pool cannot hang the
// health endpoint.
const pingTimeout = 2 * time.Second

// Pinger is the slice of *sql.DB the health check needs.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler serves liveness/readiness for load balancers and CI.
type Handler struct {
	db Pinger
}

// NewHandler returns a new health HTTP handler. db may be nil; then only
// process liveness is reported.
func NewHandler(db Pinger) *Handler {
	return &Handler{db: db}
}

// Register mounts the health route on r. Unauthenticated.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.healthz)
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "db": err.Error()})
			return
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
