package main

import (
	"net/http"

	"github.com/adeotasks/adeo-api/internal/api"
	apiMiddleware "github.com/adeotasks/adeo-api/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)

	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	listHandler := api.NewListHandler(app.listService, app.logger)
	api.RegisterRoutes(r, taskHandler, listHandler)

	var pinger api.Pinger
	if app.db != nil {
		pinger = app.db
	}
	healthHandler := api.NewHealthHandler(pinger, app.notifier.Enabled(), app.logger)
	r.Get("/health", healthHandler.Health)

	return r
}
