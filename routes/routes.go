package routes

import (
	"net/http"
	"time"

	"github.com/apptly/aimetrics/app"
	"github.com/apptly/aimetrics/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware: the chat application posts metrics from
	// another origin, so the service accepts cross-origin requests.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	healthHandler := handlers.NewHealthHandler(deps.SQLDB(), deps.DatabaseConfigured(), deps.Logger)
	trackHandler := handlers.NewTrackHandler(deps.Metrics, deps.Collectors, deps.Logger)
	refreshHandler := handlers.NewRefreshHandler(deps.Metrics, deps.Logger)

	// Service info and health
	r.Get("/", healthHandler.HandleRoot)
	r.Get("/health", healthHandler.HandleHealth)
	r.Get("/health/ready", healthHandler.HandleReadiness)

	// Metrics intake
	r.Post("/track", trackHandler.HandleTrack)
	r.Post("/refresh-metrics", refreshHandler.HandleRefresh)

	// Prometheus exposition - industry standard format
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
