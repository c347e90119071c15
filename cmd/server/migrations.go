package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/adeotasks/adeo-api/internal/platform/postgres/migrations"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
)

var migrationCommands = []string{"up", "down", "status", "version", "redo", "reset"}

func isMigrationCommand(cmd string) bool {
	return slices.Contains(migrationCommands, cmd)
}

// slogGooseLogger adapts the goose logger interface to use slog
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements the goose.Logger Printf method by forwarding messages to slog.Info
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf implements the goose.Logger Fatalf method by forwarding error messages to slog.Error.
// It does not exit; the failure is returned to the caller by goose.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// runMigrations executes a goose command against the embedded migrations.
func runMigrations(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	if !isMigrationCommand(command) {
		return fmt.Errorf("unknown migration command %q", command)
	}

	migrationLogger := logger.With(
		slog.String("component", "migrations"),
		slog.String("correlation_id", uuid.NewString()),
		slog.String("command", command))

	goose.SetLogger(&slogGooseLogger{logger: migrationLogger})
	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(migrations.TableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	start := time.Now()
	if err := goose.RunContext(ctx, command, db, "."); err != nil {
		migrationLogger.Error("Migration failed", slog.String("error", err.Error()))
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	migrationLogger.Info("Migration completed",
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}
