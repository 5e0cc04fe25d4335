package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/apptly/aimetrics/models"
	"github.com/apptly/aimetrics/repositories"
	"go.uber.org/zap"
)

// metricColumns is the column list shared by every query, in insert order.
const metricColumns = `business_id, conversation_id, session_id,
	       response_time_ms, success_rate, user_satisfaction,
	       tokens_used, prompt_tokens, completion_tokens, api_cost_usd, model_name,
	       intent_detected, appointment_requested, appointment_booked, human_handoff_requested,
	       user_message_length, ai_response_length, response_type`

// MetricsRepository implements the repositories.MetricsRepository interface
type MetricsRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewMetricsRepository creates a new metrics repository
func NewMetricsRepository(db *DB, logger *zap.Logger) repositories.MetricsRepository {
	return &MetricsRepository{
		db:     db,
		logger: logger,
	}
}

// Insert stores a metrics record. The store assigns id and created_at;
// the input record is never mutated, the returned copy carries the
// assigned identity.
func (r *MetricsRepository) Insert(ctx context.Context, metric *models.AIMetric) (*models.AIMetric, error) {
	query := `
		INSERT INTO ai_metrics (` + metricColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		)
		RETURNING id, created_at
	`

	stored := *metric
	err := r.db.QueryRowContext(ctx, query,
		metric.BusinessID,
		nullableString(metric.ConversationID),
		metric.SessionID,
		metric.ResponseTimeMs,
		metric.SuccessRateOrDefault(),
		metric.UserSatisfaction,
		metric.TokensUsed,
		metric.PromptTokens,
		metric.CompletionTokens,
		metric.APICostUSD,
		metric.Model(),
		metric.IntentDetected,
		metric.AppointmentRequested,
		metric.BookedOrDefault(),
		metric.HumanHandoffRequested,
		metric.UserMessageLength,
		metric.AIResponseLength,
		metric.ResponseType,
	).Scan(&stored.ID, &stored.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to insert metrics record: %w", err)
	}

	r.logger.Debug("metrics record inserted",
		zap.Int64("id", stored.ID),
		zap.String("business_id", stored.BusinessID))
	return &stored, nil
}

// Recent returns the most recent records, newest first.
func (r *MetricsRepository) Recent(ctx context.Context, limit int) ([]*models.AIMetric, error) {
	query := `
		SELECT id, created_at, ` + metricColumns + `
		FROM ai_metrics
		ORDER BY created_at DESC
		LIMIT $1
	`

	return r.queryMetrics(ctx, query, limit)
}

// Since returns records created at or after the cutoff, newest first.
func (r *MetricsRepository) Since(ctx context.Context, cutoff time.Time, limit int) ([]*models.AIMetric, error) {
	query := `
		SELECT id, created_at, ` + metricColumns + `
		FROM ai_metrics
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	return r.queryMetrics(ctx, query, cutoff, limit)
}

// queryMetrics is a helper method to query multiple metrics records
func (r *MetricsRepository) queryMetrics(ctx context.Context, query string, args ...interface{}) ([]*models.AIMetric, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics records: %w", err)
	}
	defer rows.Close()

	var metrics []*models.AIMetric
	for rows.Next() {
		metric := &models.AIMetric{}
		var conversationID *string
		var successRate *float64
		var booked *bool
		err := rows.Scan(
			&metric.ID,
			&metric.CreatedAt,
			&metric.BusinessID,
			&conversationID,
			&metric.SessionID,
			&metric.ResponseTimeMs,
			&successRate,
			&metric.UserSatisfaction,
			&metric.TokensUsed,
			&metric.PromptTokens,
			&metric.CompletionTokens,
			&metric.APICostUSD,
			&metric.ModelName,
			&metric.IntentDetected,
			&metric.AppointmentRequested,
			&booked,
			&metric.HumanHandoffRequested,
			&metric.UserMessageLength,
			&metric.AIResponseLength,
			&metric.ResponseType,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metrics record: %w", err)
		}
		if conversationID != nil {
			metric.ConversationID = *conversationID
		}
		metric.SuccessRate = successRate
		metric.AppointmentBooked = booked
		metrics = append(metrics, metric)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating metrics rows: %w", err)
	}

	return metrics, nil
}

// nullableString maps "" to NULL for optional varchar columns.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
