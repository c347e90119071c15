package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/adeotasks/adeo-api/internal/api"
	"github.com/adeotasks/adeo-api/internal/api/shared"
	"github.com/adeotasks/adeo-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{name: "no flags", args: nil, want: options{}},
		{name: "config path", args: []string{"-config", "/etc/adeo.yaml"}, want: options{configPath: "/etc/adeo.yaml"}},
		{name: "migrate up", args: []string{"-migrate", "up"}, want: options{migrateCmd: "up"}},
		{name: "migrate unknown", args: []string{"-migrate", "sideways"}, wantErr: true},
		{name: "unknown flag", args: []string{"-verbose"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseFlags(tc.args)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIsMigrationCommand(t *testing.T) {
	for _, cmd := range []string{"up", "down", "status", "version", "redo", "reset"} {
		assert.True(t, isMigrationCommand(cmd), cmd)
	}
	assert.False(t, isMigrationCommand(""))
	assert.False(t, isMigrationCommand("UP"))
	assert.False(t, isMigrationCommand("create"))
}

func TestSlogGooseLogger(t *testing.T) {
	var buf bytes.Buffer
	l := &slogGooseLogger{logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	l.Printf("OK   %s\n", "00001_create_tasks.sql")
	l.Fatalf("failed: %v", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, `"level":"INFO"`)
	assert.Contains(t, out, `"msg":"OK   00001_create_tasks.sql"`)
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, `"msg":"failed: boom"`)
}

func TestRunMigrations_UnknownCommand(t *testing.T) {
	err := runMigrations(context.Background(), nil, "sideways", slog.New(slog.DiscardHandler))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host: "127.0.0.1", Port: 8080, LogLevel: "info", ShutdownTimeoutSeconds: 1,
		},
		Reminder: config.ReminderConfig{
			PollIntervalSeconds:  30,
			GracePeriodSeconds:   300,
			NotifyTimeoutSeconds: 5,
			AgentHost:            "127.0.0.1",
			AgentPort:            7777,
			Title:                "Adeo Reminder",
			Platform:             "linux",
			AgentPlatform:        config.DefaultAgentPlatform,
			Timezone:             "UTC",
		},
	}
}

func TestNewApplication(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	t.Run("wires services", func(t *testing.T) {
		app, err := newApplication(testConfig(), slog.New(slog.DiscardHandler), db)
		require.NoError(t, err)

		assert.NotNil(t, app.taskService)
		assert.NotNil(t, app.listService)
		assert.NotNil(t, app.poller)
		assert.False(t, app.notifier.Enabled(), "no agent off its platform")
		assert.Equal(t, "UTC", app.poller.Config().Location.String())
	})

	t.Run("bad timezone", func(t *testing.T) {
		cfg := testConfig()
		cfg.Reminder.Timezone = "Mars/Olympus_Mons"

		_, err := newApplication(cfg, slog.New(slog.DiscardHandler), db)
		assert.Error(t, err)
	})
}

func TestSetupRouter(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	app, err := newApplication(testConfig(), slog.New(slog.DiscardHandler), db)
	require.NoError(t, err)
	router := app.setupRouter()

	t.Run("health", func(t *testing.T) {
		mock.ExpectPing()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(shared.TraceIDHeader))

		var body api.HealthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, "disabled", body.Reminder)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("health with database down", func(t *testing.T) {
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nothing", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad task id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/api/tasks/abc/done", bytes.NewBufferString(`{"done":true}`))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStartHTTPServer_ShutsDownOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Port = 0
	app := &application{config: cfg, logger: slog.New(slog.DiscardHandler)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := app.startHTTPServer(ctx, http.NotFoundHandler())
	assert.NoError(t, err)
}
