package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIMetric_JSONFieldNames(t *testing.T) {
	rate := 0.95
	booked := true
	metric := &AIMetric{
		BusinessID:            "biz-1",
		SessionID:             "sess-1",
		ConversationID:        "conv-1",
		ResponseTimeMs:        820,
		SuccessRate:           &rate,
		TokensUsed:            412,
		APICostUSD:            0.000077,
		ModelName:             "gemini-1.5-flash",
		IntentDetected:        "book_appointment",
		AppointmentRequested:  true,
		HumanHandoffRequested: false,
		AppointmentBooked:     &booked,
		UserMessageLength:     64,
		AIResponseLength:      180,
		ResponseType:          "answer",
	}

	data, err := json.Marshal(metric)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))

	for _, key := range []string{
		"business_id", "session_id", "conversation_id",
		"response_time_ms", "success_rate",
		"tokens_used", "api_cost_usd", "model_name",
		"intent_detected", "appointment_requested",
		"human_handoff_requested", "appointment_booked",
		"user_message_length", "ai_response_length", "response_type",
	} {
		assert.Contains(t, fields, key)
	}

	// Identity is assigned by the store, not the caller
	assert.NotContains(t, fields, "id")
	assert.NotContains(t, fields, "created_at")

	// Optional fields absent from the record are omitted entirely
	assert.NotContains(t, fields, "prompt_tokens")
	assert.NotContains(t, fields, "completion_tokens")
	assert.NotContains(t, fields, "user_satisfaction")
}

func TestAIMetric_Defaults(t *testing.T) {
	metric := &AIMetric{BusinessID: "biz-1", SessionID: "sess-1"}

	assert.Equal(t, DefaultModelName, metric.Model())
	assert.Equal(t, 1.0, metric.SuccessRateOrDefault())
	assert.False(t, metric.BookedOrDefault())

	rate := 0.5
	booked := true
	metric.ModelName = "gpt-4o-mini"
	metric.SuccessRate = &rate
	metric.AppointmentBooked = &booked

	assert.Equal(t, "gpt-4o-mini", metric.Model())
	assert.Equal(t, 0.5, metric.SuccessRateOrDefault())
	assert.True(t, metric.BookedOrDefault())
}
