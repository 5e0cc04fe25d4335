// Package reporter delivers telemetry for a single AI interaction to
// the persistence store and the monitoring service. Delivery is
// best-effort by design: every failure is logged and swallowed at this
// package's boundary so telemetry can never break the product flow.
package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/apptly/aimetrics/config"
	"github.com/apptly/aimetrics/models"
	"github.com/apptly/aimetrics/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	trackPath   = "/track"
	refreshPath = "/refresh-metrics"

	// persistTimeout bounds the store insert, matching the outbound
	// publish timeout class.
	persistTimeout = 5 * time.Second
)

// refreshSignal is the short payload sent to /refresh-metrics after a
// successful publish, telling the monitoring service new data arrived.
type refreshSignal struct {
	Trigger string `json:"trigger"`
}

// Reporter persists and publishes metrics records. Steps run
// sequentially (persist, publish, refresh signal) and independently:
// a persistence failure never suppresses the publish, and a refresh
// failure never affects either. No step is retried.
type Reporter struct {
	store          repositories.MetricsRepository
	client         *http.Client
	baseURL        string
	trackTimeout   time.Duration
	refreshTimeout time.Duration
	logger         *zap.Logger

	wg sync.WaitGroup
}

// New creates a Reporter. The store may be nil, in which case the
// persist step is skipped (database-disabled deployments).
func New(store repositories.MetricsRepository, cfg config.ReporterConfig, logger *zap.Logger) *Reporter {
	return &Reporter{
		store:          store,
		client:         &http.Client{},
		baseURL:        cfg.BaseURL,
		trackTimeout:   cfg.TrackTimeout,
		refreshTimeout: cfg.RefreshTimeout,
		logger:         logger,
	}
}

// ReportAsync submits the record for delivery on a detached goroutine
// and returns immediately. The caller's latency never depends on
// telemetry; failures surface only in the log.
func (r *Reporter) ReportAsync(metric *models.AIMetric) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.Report(context.Background(), metric)
	}()
}

// Report delivers one record synchronously: persist, publish, then
// refresh signal. It never returns an error and never panics past its
// boundary, regardless of which steps fail.
func (r *Reporter) Report(ctx context.Context, metric *models.AIMetric) {
	log := r.logger.With(
		zap.String("delivery_id", uuid.New().String()),
		zap.String("business_id", metric.BusinessID),
		zap.String("session_id", metric.SessionID),
	)

	// Persist and publish are independent concerns: a store failure
	// must not cost us the monitoring data point, and vice versa.
	r.bestEffort(log, "persist", func() error {
		return r.persist(ctx, metric)
	})

	published := r.bestEffort(log, "publish", func() error {
		return r.publish(ctx, metric)
	})

	// The refresh signal only makes sense after new data arrived.
	if published {
		r.bestEffortWarn(log, "refresh", func() error {
			return r.refresh(ctx)
		})
	}
}

// Wait blocks until all in-flight async reports have finished. Used
// during graceful shutdown and in tests.
func (r *Reporter) Wait() {
	r.wg.Wait()
}

// bestEffort runs one delivery step and absorbs every failure mode,
// including panics. This is the single place the "never escape to the
// caller" contract is enforced; the steps themselves just return errors.
func (r *Reporter) bestEffort(log *zap.Logger, step string, fn func() error) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("telemetry step panicked", zap.String("step", step), zap.Any("panic", rec))
			ok = false
		}
	}()

	if err := fn(); err != nil {
		log.Error("telemetry step failed", zap.String("step", step), zap.Error(err))
		return false
	}
	return true
}

// bestEffortWarn is bestEffort at Warn severity, for secondary steps.
func (r *Reporter) bestEffortWarn(log *zap.Logger, step string, fn func() error) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Warn("telemetry step panicked", zap.String("step", step), zap.Any("panic", rec))
			ok = false
		}
	}()

	if err := fn(); err != nil {
		log.Warn("telemetry step failed", zap.String("step", step), zap.Error(err))
		return false
	}
	return true
}

// persist stores the record through the injected repository.
func (r *Reporter) persist(ctx context.Context, metric *models.AIMetric) error {
	if r.store == nil {
		r.logger.Debug("metrics store not configured, skipping persist")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	stored, err := r.store.Insert(ctx, metric)
	if err != nil {
		return fmt.Errorf("insert metrics record: %w", err)
	}

	r.logger.Debug("metrics record persisted", zap.Int64("id", stored.ID))
	return nil
}

// publish POSTs the full record to the monitoring endpoint.
func (r *Reporter) publish(ctx context.Context, metric *models.AIMetric) error {
	ctx, cancel := context.WithTimeout(ctx, r.trackTimeout)
	defer cancel()

	body, err := json.Marshal(metric)
	if err != nil {
		return fmt.Errorf("marshal metrics record: %w", err)
	}

	status, respBody, err := r.post(ctx, r.baseURL+trackPath, body)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", trackPath, err)
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("publish to %s: unexpected status %d", trackPath, status)
	}

	// The response carries a status field; log it, nothing more.
	var ack struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(respBody, &ack); err == nil && ack.Status != "" {
		r.logger.Debug("metrics published", zap.String("status", ack.Status))
	}
	return nil
}

// refresh POSTs the new-data signal to the monitoring endpoint.
func (r *Reporter) refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.refreshTimeout)
	defer cancel()

	body, err := json.Marshal(refreshSignal{Trigger: "new_metrics"})
	if err != nil {
		return fmt.Errorf("marshal refresh signal: %w", err)
	}

	status, _, err := r.post(ctx, r.baseURL+refreshPath, body)
	if err != nil {
		return fmt.Errorf("signal %s: %w", refreshPath, err)
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("signal %s: unexpected status %d", refreshPath, status)
	}
	return nil
}

// post issues one JSON POST and returns the status code and body.
func (r *Reporter) post(ctx context.Context, url string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}
