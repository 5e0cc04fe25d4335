package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/apptly/aimetrics/repositories"
	"github.com/apptly/aimetrics/utils"
	"go.uber.org/zap"
)

// refreshHistoryLimit caps how many recent records a refresh inspects.
const refreshHistoryLimit = 100

// RefreshRequest is the short signal the reporter sends after a publish.
type RefreshRequest struct {
	Trigger string `json:"trigger"`
}

// RefreshResponse acknowledges a refresh signal.
type RefreshResponse struct {
	Status           string `json:"status"`
	Message          string `json:"message"`
	RecordsAvailable int    `json:"records_available"`
	Timestamp        string `json:"timestamp"`
}

// RefreshHandler handles new-data signals from reporters by re-reading
// recent history from the store.
type RefreshHandler struct {
	repo   repositories.MetricsRepository // nil when the database is disabled
	logger *zap.Logger
}

// NewRefreshHandler creates a new RefreshHandler
func NewRefreshHandler(repo repositories.MetricsRepository, logger *zap.Logger) *RefreshHandler {
	return &RefreshHandler{
		repo:   repo,
		logger: logger,
	}
}

// HandleRefresh handles POST /refresh-metrics
func (h *RefreshHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	// The trigger payload is informational; an empty body is accepted.
	_ = json.NewDecoder(r.Body).Decode(&req)

	if h.repo == nil {
		h.logger.Debug("database disabled, nothing to refresh")
		_ = utils.WriteJSON(w, http.StatusOK, RefreshResponse{
			Status:    "success",
			Message:   "Database disabled, nothing to refresh",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	metrics, err := h.repo.Recent(r.Context(), refreshHistoryLimit)
	if err != nil {
		h.logger.Error("failed to refresh metrics from database",
			zap.Error(err),
			zap.String("trigger", req.Trigger))
		_ = utils.WriteInternalServerError(w, "Failed to refresh metrics")
		return
	}

	h.logger.Info("metrics refreshed from database",
		zap.Int("records", len(metrics)),
		zap.String("trigger", req.Trigger))

	_ = utils.WriteJSON(w, http.StatusOK, RefreshResponse{
		Status:           "success",
		Message:          "Metrics refreshed",
		RecordsAvailable: len(metrics),
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
	})
}
