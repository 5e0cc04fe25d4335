package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/apptly/aimetrics/models"
	"github.com/apptly/aimetrics/promstats"
	"github.com/apptly/aimetrics/repositories"
	"github.com/apptly/aimetrics/utils"
	"go.uber.org/zap"
)

// requiredTrackFields must be present in every /track payload.
var requiredTrackFields = []string{"business_id", "session_id", "response_time_ms", "tokens_used"}

// TrackResponse is the acknowledgement returned to the reporter.
type TrackResponse struct {
	Status            string `json:"status"`
	Message           string `json:"message"`
	PrometheusUpdated bool   `json:"prometheus_updated"`
	Timestamp         string `json:"timestamp"`
}

// TrackHandler receives metrics records from the chat application.
type TrackHandler struct {
	repo       repositories.MetricsRepository // nil when the database is disabled
	collectors *promstats.Collectors
	logger     *zap.Logger
}

// NewTrackHandler creates a new TrackHandler
func NewTrackHandler(repo repositories.MetricsRepository, collectors *promstats.Collectors, logger *zap.Logger) *TrackHandler {
	return &TrackHandler{
		repo:       repo,
		collectors: collectors,
		logger:     logger,
	}
}

// HandleTrack handles POST /track
func (h *TrackHandler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil || len(raw) == 0 {
		_ = utils.WriteBadRequest(w, "No metrics data provided", nil)
		return
	}

	for _, field := range requiredTrackFields {
		if _, ok := raw[field]; !ok {
			_ = utils.WriteBadRequest(w, "Missing required field: "+field, nil)
			return
		}
	}

	metric := &models.AIMetric{}
	if err := unmarshalFields(raw, metric); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid metrics payload", nil)
		return
	}

	if err := utils.ValidateStruct(metric); err != nil {
		details := make(map[string]interface{})
		for field, msg := range utils.GetValidationFields(err) {
			details[field] = msg
		}
		_ = utils.WriteBadRequest(w, "Invalid metrics payload", details)
		return
	}

	// Update Prometheus first, then store; the two are independent and
	// the counters must move even when the database is disabled.
	h.collectors.Observe(metric)

	if h.repo != nil {
		if _, err := h.repo.Insert(r.Context(), metric); err != nil {
			h.logger.Error("failed to store metrics",
				zap.Error(err),
				zap.String("business_id", metric.BusinessID))
			_ = utils.WriteInternalServerError(w, "Failed to store metrics")
			return
		}
	} else {
		h.logger.Debug("database disabled, skipping metrics storage")
	}

	h.logger.Info("metrics tracked",
		zap.String("business_id", metric.BusinessID),
		zap.String("session_id", metric.SessionID),
		zap.Int("tokens_used", metric.TokensUsed))

	_ = utils.WriteJSON(w, http.StatusOK, TrackResponse{
		Status:            "success",
		Message:           "Metrics tracked successfully",
		PrometheusUpdated: true,
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
	})
}

// unmarshalFields decodes the raw field map into the metric struct.
func unmarshalFields(raw map[string]json.RawMessage, metric *models.AIMetric) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, metric)
}
