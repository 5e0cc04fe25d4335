package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/apptly/aimetrics/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleRefresh(t *testing.T) {
	t.Run("reports available records", func(t *testing.T) {
		repo := &fakeRepo{stored: []*models.AIMetric{
			{BusinessID: "biz-1", SessionID: "sess-1"},
			{BusinessID: "biz-1", SessionID: "sess-2"},
		}}
		handler := NewRefreshHandler(repo, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/refresh-metrics",
			strings.NewReader(`{"trigger": "new_metrics"}`))
		w := httptest.NewRecorder()

		handler.HandleRefresh(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp RefreshResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "success", resp.Status)
		assert.Equal(t, 2, resp.RecordsAvailable)
	})

	t.Run("accepts an empty body", func(t *testing.T) {
		handler := NewRefreshHandler(&fakeRepo{}, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/refresh-metrics", strings.NewReader(""))
		w := httptest.NewRecorder()

		handler.HandleRefresh(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("succeeds without a database", func(t *testing.T) {
		handler := NewRefreshHandler(nil, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/refresh-metrics",
			strings.NewReader(`{"trigger": "new_metrics"}`))
		w := httptest.NewRecorder()

		handler.HandleRefresh(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp RefreshResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "success", resp.Status)
		assert.Equal(t, 0, resp.RecordsAvailable)
	})

	t.Run("reports database failures", func(t *testing.T) {
		handler := NewRefreshHandler(&fakeRepo{recentErr: errors.New("connection refused")}, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/refresh-metrics",
			strings.NewReader(`{"trigger": "new_metrics"}`))
		w := httptest.NewRecorder()

		handler.HandleRefresh(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
