package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anhkhoa289/vote-anti-trick/app"
	"github.com/anhkhoa289/vote-anti-trick/handlers"
	"github.com/anhkhoa289/vote-anti-trick/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware. Request ids and request logging come from the observer.
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(deps.Config.Server.RequestTimeout))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "traceparent", "tracestate", "baggage"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoints
	health := handlers.NewHealthHandler(deps.DB.DB, deps.Logger.Zap())
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	if deps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{Registry: deps.Registry}))
	}

	obs := deps.Observer
	infrastructures := handlers.NewInfrastructureHandler(deps.VotingService)
	votes := handlers.NewVoteHandler(deps.VotingService)

	r.Route("/api/infrastructures", func(r chi.Router) {
		r.Get("/", obs.Wrap(infrastructures.List, "GET /api/infrastructures"))
		r.Post("/", obs.Wrap(infrastructures.Create, "POST /api/infrastructures"))
		r.Get("/{id}", obs.Wrap(infrastructures.Get, "GET /api/infrastructures/:id"))
		r.Post("/{id}/vote", obs.Wrap(votes.Cast, "POST /api/infrastructures/:id/vote"))
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusNotFound, "endpoint not found", "")
	})

	return r
}
