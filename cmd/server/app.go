package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/adeotasks/adeo-api/internal/config"
	"github.com/adeotasks/adeo-api/internal/domain/recurrence"
	"github.com/adeotasks/adeo-api/internal/notify"
	"github.com/adeotasks/adeo-api/internal/platform/postgres"
	"github.com/adeotasks/adeo-api/internal/reminder"
	"github.com/adeotasks/adeo-api/internal/service"
	"github.com/adeotasks/adeo-api/internal/store"
	"golang.org/x/sync/errgroup"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	taskStore store.TaskStore
	listStore store.ListStore

	// Services
	taskService service.TaskService
	listService service.ListService

	// Reminder delivery
	notifier notify.Notifier
	poller   *reminder.Poller
}

// newApplication creates a new application instance with all dependencies initialized.
// db may be nil in tests that only exercise routing.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.listStore = postgres.NewPostgresListStore(db, logger)
	tx := store.NewSQLTransactor(db, app.taskStore, app.listStore)

	if err := app.initServices(tx); err != nil {
		return nil, err
	}

	logger.Info("Application initialized successfully",
		slog.Bool("reminders_enabled", app.notifier.Enabled()))
	return app, nil
}

// initServices builds everything above the store layer.
func (app *application) initServices(tx store.Transactor) error {
	reminderCfg, err := reminder.ConfigFrom(app.config.Reminder)
	if err != nil {
		return fmt.Errorf("failed to configure reminders: %w", err)
	}

	series := service.NewSeriesGenerator(recurrence.NewEvaluator(), reminderCfg.Location, app.logger)

	app.taskService, err = service.NewTaskService(app.taskStore, tx, series, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}

	app.listService, err = service.NewListService(app.listStore, tx, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create list service: %w", err)
	}

	if app.notifier == nil {
		app.notifier = notify.ForPlatform(app.config.Reminder, runtime.GOOS, app.logger)
	}
	app.poller = reminder.NewPoller(app.taskStore, app.notifier, reminderCfg, app.logger)

	return nil
}

// Run serves HTTP and, when a notifier is available, runs the reminder
// poller until ctx is cancelled or either of them fails.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.startHTTPServer(gctx, router)
	})

	if app.notifier.Enabled() {
		g.Go(func() error {
			if err := app.poller.Start(gctx); err != nil {
				return fmt.Errorf("failed to start reminder poller: %w", err)
			}
			<-gctx.Done()
			app.poller.Stop()
			return nil
		})
	} else {
		app.logger.Info("Reminder poller disabled: no notification agent on this platform")
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	app.logger.Info("Application shutdown completed")
	return nil
}
