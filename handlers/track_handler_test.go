package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/apptly/aimetrics/models"
	"github.com/apptly/aimetrics/promstats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRepo implements repositories.MetricsRepository for handler tests.
type fakeRepo struct {
	insertErr error
	recentErr error
	stored    []*models.AIMetric
}

func (f *fakeRepo) Insert(_ context.Context, metric *models.AIMetric) (*models.AIMetric, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	now := time.Now()
	stored := *metric
	stored.ID = int64(len(f.stored) + 1)
	stored.CreatedAt = &now
	f.stored = append(f.stored, &stored)
	return &stored, nil
}

func (f *fakeRepo) Recent(context.Context, int) ([]*models.AIMetric, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	return f.stored, nil
}

func (f *fakeRepo) Since(context.Context, time.Time, int) ([]*models.AIMetric, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	return f.stored, nil
}

const validTrackBody = `{
	"business_id": "biz-1",
	"session_id": "sess-1",
	"response_time_ms": 820,
	"success_rate": 0.95,
	"tokens_used": 412,
	"api_cost_usd": 0.000077,
	"model_name": "gemini-1.5-flash",
	"intent_detected": "book_appointment",
	"appointment_requested": true,
	"human_handoff_requested": false,
	"user_message_length": 64,
	"ai_response_length": 180,
	"response_type": "answer"
}`

func newTrackFixture(repo *fakeRepo) *TrackHandler {
	collectors := promstats.New(prometheus.NewRegistry())
	if repo == nil {
		// A nil interface, not a typed-nil *fakeRepo, models the
		// database-disabled deployment.
		return NewTrackHandler(nil, collectors, zap.NewNop())
	}
	return NewTrackHandler(repo, collectors, zap.NewNop())
}

func TestHandleTrack(t *testing.T) {
	t.Run("stores a valid record", func(t *testing.T) {
		repo := &fakeRepo{}
		handler := newTrackFixture(repo)

		req := httptest.NewRequest(http.MethodPost, "/track", strings.NewReader(validTrackBody))
		w := httptest.NewRecorder()

		handler.HandleTrack(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp TrackResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "success", resp.Status)
		assert.True(t, resp.PrometheusUpdated)
		assert.NotEmpty(t, resp.Timestamp)

		require.Len(t, repo.stored, 1)
		assert.Equal(t, "biz-1", repo.stored[0].BusinessID)
		assert.Equal(t, 412, repo.stored[0].TokensUsed)
	})

	t.Run("rejects an empty body", func(t *testing.T) {
		handler := newTrackFixture(&fakeRepo{})

		req := httptest.NewRequest(http.MethodPost, "/track", strings.NewReader(""))
		w := httptest.NewRecorder()

		handler.HandleTrack(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		for _, missing := range []string{"business_id", "session_id", "response_time_ms", "tokens_used"} {
			t.Run(missing, func(t *testing.T) {
				var fields map[string]json.RawMessage
				require.NoError(t, json.Unmarshal([]byte(validTrackBody), &fields))
				delete(fields, missing)
				body, err := json.Marshal(fields)
				require.NoError(t, err)

				repo := &fakeRepo{}
				handler := newTrackFixture(repo)

				req := httptest.NewRequest(http.MethodPost, "/track", strings.NewReader(string(body)))
				w := httptest.NewRecorder()

				handler.HandleTrack(w, req)

				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Contains(t, w.Body.String(), missing)
				assert.Empty(t, repo.stored)
			})
		}
	})

	t.Run("rejects out-of-range values", func(t *testing.T) {
		body := strings.Replace(validTrackBody, `"success_rate": 0.95`, `"success_rate": 1.5`, 1)

		handler := newTrackFixture(&fakeRepo{})

		req := httptest.NewRequest(http.MethodPost, "/track", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.HandleTrack(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("reports storage failures", func(t *testing.T) {
		handler := newTrackFixture(&fakeRepo{insertErr: errors.New("connection refused")})

		req := httptest.NewRequest(http.MethodPost, "/track", strings.NewReader(validTrackBody))
		w := httptest.NewRecorder()

		handler.HandleTrack(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Failed to store metrics")
	})

	t.Run("succeeds without a database", func(t *testing.T) {
		handler := newTrackFixture(nil)

		req := httptest.NewRequest(http.MethodPost, "/track", strings.NewReader(validTrackBody))
		w := httptest.NewRecorder()

		handler.HandleTrack(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
