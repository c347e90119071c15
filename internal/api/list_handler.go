package api

import (
	"log/slog"
	"net/http"

	"github.com/adeotasks/adeo-api/internal/api/shared"
	"github.com/adeotasks/adeo-api/internal/platform/logger"
	"github.com/adeotasks/adeo-api/internal/service"
)

// ListHandler handles list-related HTTP requests
type ListHandler struct {
	lists  service.ListService
	logger *slog.Logger
}

// NewListHandler creates a new ListHandler
func NewListHandler(lists service.ListService, logger *slog.Logger) *ListHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ListHandler")
	}

	return &ListHandler{
		lists:  lists,
		logger: logger.With(slog.String("component", "list_handler")),
	}
}

// ListLists handles GET /api/lists requests
func (h *ListHandler) ListLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.lists.ListLists(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load lists")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, listsToResponse(lists))
}

// CreateList handles POST /api/lists requests
func (h *ListHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateListRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	list, err := h.lists.CreateList(r.Context(), req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create list")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, listToResponse(list))
}

// RenameList handles PATCH /api/lists/{id}/name requests
func (h *ListHandler) RenameList(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, log)
	if !ok {
		return
	}

	var req RenameListRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	if err := h.lists.RenameList(r.Context(), id, req.Name); err != nil {
		HandleAPIError(w, r, err, "Failed to rename list")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteList handles DELETE /api/lists/{id} requests.
// Tasks in the list are deleted with it.
func (h *ListHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, log)
	if !ok {
		return
	}

	if err := h.lists.DeleteList(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete list")
		return
	}

	log.Info("list deleted", slog.Int64("list_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// ReorderLists handles POST /api/lists/order requests
func (h *ListHandler) ReorderLists(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ReorderRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	if err := h.lists.ReorderLists(r.Context(), req.IDs); err != nil {
		HandleAPIError(w, r, err, "Failed to reorder lists")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
