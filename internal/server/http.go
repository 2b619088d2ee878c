package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	eventhandler "webpulse/backend/internal/event/handler"
	healthhandler "webpulse/backend/internal/health/handler"
	insighthandler "webpulse/backend/internal/insight/handler"
	metrichandler "webpulse/backend/internal/metric/handler"
	"webpulse/backend/internal/security"
	"webpulse/backend/internal/server/middleware"
)

// Deps holds the dependencies for the HTTP router.
//
// Route → handler mapping:
//   - POST /v1/events            → internal/event/handler
//   - GET  /v1/metrics/summary   → internal/metric/handler
//   - GET  /v1/insights          → internal/insight/handler
//   - POST /v1/insights/generate → internal/insight/handler
//   - GET  /healthz              → internal/health/handler (unauthenticated)
type Deps struct {
	// Tokens verifies Bearer access tokens for all /v1 routes.
	Tokens *security.TokenVerifier
	// Events records ingestion batches.
	Events eventhandler.Recorder
	// Metrics serves the summary read path.
	Metrics metrichandler.SummaryProvider
	// Insights generates and lists insights.
	Insights insighthandler.InsightEngine
	// HealthPinger is used by /healthz for readiness (e.g. *sql.DB). If nil, the DB ping is skipped.
	HealthPinger healthhandler.Pinger
}

// NewRouter builds the chi router with all routes and middleware registered.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	healthhandler.NewHandler(deps.HealthPinger).Register(r)

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.Auth(deps.Tokens))
		eventhandler.NewHandler(deps.Events).Register(pr)
		metrichandler.NewHandler(deps.Metrics).Register(pr)
		insighthandler.NewHandler(deps.Insights).Register(pr)
	})

	return r
}
