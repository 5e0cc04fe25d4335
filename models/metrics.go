package models

import (
	"time"
)

// DefaultModelName is recorded when a caller does not name the model
// that served the interaction.
const DefaultModelName = "gemini-1.5-flash"

// AIMetric is the unit of telemetry for a single AI interaction.
// The record is immutable once constructed: the reporter only
// serializes it, and durable identity (ID, CreatedAt) is assigned by
// the persistence store, never by the caller.
type AIMetric struct {
	// Durable identity, assigned by the store on insert.
	ID        int64      `json:"id,omitempty" db:"id"`
	CreatedAt *time.Time `json:"created_at,omitempty" db:"created_at"`

	// Identity
	BusinessID     string `json:"business_id" db:"business_id" validate:"required"`
	SessionID      string `json:"session_id" db:"session_id" validate:"required"`
	ConversationID string `json:"conversation_id,omitempty" db:"conversation_id"`

	// Performance
	ResponseTimeMs   int      `json:"response_time_ms" db:"response_time_ms" validate:"gte=0"`
	SuccessRate      *float64 `json:"success_rate,omitempty" db:"success_rate" validate:"omitempty,gte=0,lte=1"`
	UserSatisfaction *float64 `json:"user_satisfaction,omitempty" db:"user_satisfaction" validate:"omitempty,gte=0,lte=1"`

	// AI usage
	TokensUsed       int     `json:"tokens_used" db:"tokens_used" validate:"gte=0"`
	PromptTokens     *int    `json:"prompt_tokens,omitempty" db:"prompt_tokens" validate:"omitempty,gte=0"`
	CompletionTokens *int    `json:"completion_tokens,omitempty" db:"completion_tokens" validate:"omitempty,gte=0"`
	APICostUSD       float64 `json:"api_cost_usd" db:"api_cost_usd" validate:"gte=0"`
	ModelName        string  `json:"model_name" db:"model_name"`

	// Business signals
	IntentDetected        string `json:"intent_detected" db:"intent_detected"`
	AppointmentRequested  bool   `json:"appointment_requested" db:"appointment_requested"`
	HumanHandoffRequested bool   `json:"human_handoff_requested" db:"human_handoff_requested"`
	AppointmentBooked     *bool  `json:"appointment_booked,omitempty" db:"appointment_booked"`

	// Message shape
	UserMessageLength int    `json:"user_message_length" db:"user_message_length" validate:"gte=0"`
	AIResponseLength  int    `json:"ai_response_length" db:"ai_response_length" validate:"gte=0"`
	ResponseType      string `json:"response_type" db:"response_type"`
}

// TableName returns the table name for the AIMetric model
func (AIMetric) TableName() string {
	return "ai_metrics"
}

// Model returns the model name, falling back to DefaultModelName.
func (m *AIMetric) Model() string {
	if m.ModelName == "" {
		return DefaultModelName
	}
	return m.ModelName
}

// SuccessRateOrDefault returns the success rate, defaulting to 1.0
// when the caller did not report one.
func (m *AIMetric) SuccessRateOrDefault() float64 {
	if m.SuccessRate == nil {
		return 1.0
	}
	return *m.SuccessRate
}

// BookedOrDefault returns the appointment_booked flag, defaulting to false.
func (m *AIMetric) BookedOrDefault() bool {
	if m.AppointmentBooked == nil {
		return false
	}
	return *m.AppointmentBooked
}
