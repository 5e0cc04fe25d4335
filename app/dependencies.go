package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/apptly/aimetrics/config"
	"github.com/apptly/aimetrics/promstats"
	"github.com/apptly/aimetrics/repositories"
	"github.com/apptly/aimetrics/repositories/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Dependencies holds all monitoring-service dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger
	DB     *postgres.DB // nil when the database is disabled

	// Repositories
	Metrics repositories.MetricsRepository // nil when the database is disabled

	// Prometheus collectors
	Collectors *promstats.Collectors
}

// NewDependencies creates and wires up all application dependencies.
// Collectors register against the default Prometheus registerer so the
// /metrics endpoint can serve them.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	return newDependencies(ctx, cfg, logger, prometheus.DefaultRegisterer)
}

func newDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*Dependencies, error) {
	deps := &Dependencies{
		Config:     cfg,
		Logger:     logger,
		Collectors: promstats.New(reg),
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Re-read recent history on startup so the service knows what the
	// store holds before fresh traffic arrives. Best-effort: a cold
	// database is not a reason to refuse to start.
	deps.warmFromDatabase(ctx)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL connection and schema when enabled
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	if !cfg.Database.Enabled {
		d.Logger.Info("database operations disabled, running stateless")
		return nil
	}

	db, err := postgres.NewDB(cfg.Database, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	if err := db.InitSchema(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	d.DB = db
	d.Metrics = postgres.NewMetricsRepository(db, d.Logger)
	return nil
}

// warmFromDatabase loads recent metrics history on startup, logging
// the outcome either way.
func (d *Dependencies) warmFromDatabase(ctx context.Context) {
	if d.Metrics == nil {
		d.Logger.Info("database disabled, skipping metrics warm-up")
		return
	}

	metrics, err := d.Metrics.Recent(ctx, 100)
	if err != nil {
		d.Logger.Warn("could not load metrics history, starting fresh", zap.Error(err))
		return
	}

	d.Logger.Info("loaded metrics history", zap.Int("records", len(metrics)))
}

// SQLDB exposes the raw connection pool for health checks.
// Returns nil when the database is disabled.
func (d *Dependencies) SQLDB() *sql.DB {
	if d.DB == nil {
		return nil
	}
	return d.DB.DB
}

// DatabaseConfigured reports whether a database target was configured,
// independent of whether operations are enabled.
func (d *Dependencies) DatabaseConfigured() bool {
	return d.Config.Database.ConnectionString != "" || d.Config.Database.Host != ""
}

// Close releases all held resources
func (d *Dependencies) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
