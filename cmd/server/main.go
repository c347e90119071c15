// Package main implements the entry point for the Adeo API server, which
// serves the task and list API and delivers due reminders in the background.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/adeotasks/adeo-api/internal/config"
	"github.com/adeotasks/adeo-api/internal/platform/logger"
)

// options holds the command line flags.
type options struct {
	configPath string
	migrateCmd string
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("adeo-api", flag.ContinueOnError)

	var opts options
	fs.StringVar(&opts.configPath, "config", "", "path to a config file (default: ./config.yaml when present)")
	fs.StringVar(&opts.migrateCmd, "migrate", "",
		"run a migration command (up, down, status, version, redo, reset) and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.migrateCmd != "" && !isMigrationCommand(opts.migrateCmd) {
		return options{}, fmt.Errorf("unknown migration command %q", opts.migrateCmd)
	}
	return opts, nil
}

// main is the entry point for the adeo-api server.
func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid arguments: %v", err)
	}

	if err := run(opts); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}

// run loads configuration, connects to the database, applies migrations,
// and serves until SIGINT or SIGTERM.
func run(opts options) error {
	cfg, err := loadAppConfig(opts.configPath)
	if err != nil {
		return err
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := setupAppDatabase(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}()

	if opts.migrateCmd != "" {
		return runMigrations(ctx, db, opts.migrateCmd, appLogger)
	}

	if err := runMigrations(ctx, db, "up", appLogger); err != nil {
		return err
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

// loadAppConfig loads the application configuration from the config file and
// environment variables.
func loadAppConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		slog.String("host", cfg.Server.Host),
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	return cfg, nil
}
