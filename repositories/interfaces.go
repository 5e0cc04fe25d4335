package repositories

import (
	"context"
	"time"

	"github.com/apptly/aimetrics/models"
)

// MetricsRepository is the abstract metrics store consumed by the
// reporter and the tracking handler. The reporter depends on this
// interface only, injected at construction time, so telemetry and
// persistence stay decoupled.
type MetricsRepository interface {
	// Insert stores a metrics record and returns the stored copy with
	// the assigned id and created_at timestamp.
	Insert(ctx context.Context, metric *models.AIMetric) (*models.AIMetric, error)

	// Recent returns the most recent records, newest first.
	Recent(ctx context.Context, limit int) ([]*models.AIMetric, error)

	// Since returns records created at or after the given time, newest first.
	Since(ctx context.Context, cutoff time.Time, limit int) ([]*models.AIMetric, error)
}
