package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/apptly/aimetrics/utils"
	"go.uber.org/zap"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status             string            `json:"status"`
	Service            string            `json:"service"`
	Timestamp          string            `json:"timestamp"`
	Monitoring         string            `json:"monitoring"`
	DatabaseConfigured bool              `json:"database_configured"`
	DatabaseEnabled    bool              `json:"database_enabled"`
	Checks             map[string]string `json:"checks,omitempty"`
}

// ServiceInfoResponse describes the service and its endpoints
type ServiceInfoResponse struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
	Timestamp string            `json:"timestamp"`
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	db           *sql.DB // nil when the database is disabled
	dbConfigured bool
	logger       *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *sql.DB, dbConfigured bool, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:           db,
		dbConfigured: dbConfigured,
		logger:       logger,
	}
}

// HandleRoot handles GET /
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, ServiceInfoResponse{
		Service: "MLOps Monitoring Service",
		Version: "1.0.0",
		Endpoints: map[string]string{
			"health":             "/health",
			"track_metrics":      "/track (POST)",
			"refresh_metrics":    "/refresh-metrics (POST)",
			"prometheus_metrics": "/metrics",
			"root":               "/",
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleHealth handles GET /health
// Basic health check - always returns 200 if service is running
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:             "healthy",
		Service:            "mlops-service",
		Timestamp:          time.Now().UTC().Format(time.RFC3339),
		Monitoring:         "prometheus",
		DatabaseConfigured: h.dbConfigured,
		DatabaseEnabled:    h.db != nil,
	})
}

// HandleReadiness handles GET /health/ready
// Readiness check - validates that all dependencies are available
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	if h.db == nil {
		checks["database"] = "disabled"
	} else if err := h.checkDatabase(ctx); err != nil {
		h.logger.Warn("database health check failed", zap.Error(err))
		checks["database"] = "unhealthy"
		allHealthy = false
	} else {
		checks["database"] = "healthy"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	_ = utils.WriteJSON(w, httpStatus, HealthResponse{
		Status:             status,
		Service:            "mlops-service",
		Timestamp:          time.Now().UTC().Format(time.RFC3339),
		Monitoring:         "prometheus",
		DatabaseConfigured: h.dbConfigured,
		DatabaseEnabled:    h.db != nil,
		Checks:             checks,
	})
}

// checkDatabase checks database connectivity
func (h *HealthHandler) checkDatabase(ctx context.Context) error {
	if err := h.db.PingContext(ctx); err != nil {
		return err
	}

	var result int
	if err := h.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return err
	}

	return nil
}
