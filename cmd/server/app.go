package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/snowflake"
	"github.com/robfig/cron/v3"

	"github.com/mnemoapp/mnemo-api/internal/config"
	"github.com/mnemoapp/mnemo-api/internal/platform/postgres"
	"github.com/mnemoapp/mnemo-api/internal/platform/sqlite"
	"github.com/mnemoapp/mnemo-api/internal/service/insights"
	"github.com/mnemoapp/mnemo-api/internal/service/review"
	"github.com/mnemoapp/mnemo-api/internal/store"
)

// application holds the wired components of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	cardStore  store.CardStateStore
	logStore   store.ReviewLogStore
	paramStore store.ParametersStore

	reviewService   review.ReviewService
	insightsService insights.InsightsService

	cron *cron.Cron
}

// newApplication opens the database, runs migrations where applicable, and
// wires stores, services and the periodic optimizer job.
func newApplication(cfg *config.Config, appLogger *slog.Logger) (*application, error) {
	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	app := &application{
		config: cfg,
		logger: appLogger,
		db:     db,
	}

	switch cfg.Database.Driver {
	case "postgres":
		if err := runMigrations(db, appLogger); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		app.cardStore = postgres.NewCardStateStore(db, appLogger)
		app.logStore = postgres.NewReviewLogStore(db, appLogger)
		app.paramStore = postgres.NewParametersStore(db, appLogger)
	case "sqlite":
		// Schema is applied on open; no migration step.
		app.cardStore = sqlite.NewCardStateStore(db, appLogger)
		app.logStore = sqlite.NewReviewLogStore(db, appLogger)
		app.paramStore = sqlite.NewParametersStore(db, appLogger)
	default:
		_ = db.Close()
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	node, err := snowflake.NewNode(cfg.Scheduler.NodeID)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}

	app.reviewService = review.NewReviewService(
		db, app.cardStore, app.logStore, app.paramStore, node, appLogger)
	app.insightsService = insights.NewInsightsService(
		app.logStore, app.paramStore, appLogger)

	if err := app.setupCron(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return app, nil
}

// setupCron registers the periodic parameter-optimization job. An empty
// schedule disables the job.
func (app *application) setupCron() error {
	schedule := app.config.Scheduler.OptimizeCron
	if schedule == "" {
		app.logger.Info("Periodic parameter optimization disabled")
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx := context.Background()
		result, err := app.insightsService.OptimizeParameters(ctx)
		if err != nil {
			app.logger.Error("Scheduled parameter optimization failed", "error", err)
			return
		}
		app.logger.Info("Scheduled parameter optimization finished",
			"optimized", result.Optimized,
			"review_count", result.ReviewCount,
			"message", result.Message)
	})
	if err != nil {
		return fmt.Errorf("invalid optimize_cron schedule %q: %w", schedule, err)
	}

	app.cron = c
	app.logger.Info("Periodic parameter optimization scheduled", "cron", schedule)
	return nil
}

// Run starts the cron scheduler and the HTTP server, blocking until
// shutdown.
func (app *application) Run(ctx context.Context) error {
	if app.cron != nil {
		app.cron.Start()
	}

	return app.startHTTPServer(ctx, app.setupRouter())
}

// Close releases the application's resources. Safe to call more than once.
func (app *application) Close() {
	if app.cron != nil {
		app.cron.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database", "error", err)
		}
		app.db = nil
	}
}
