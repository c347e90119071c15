package api

import (
	"log/slog"
	"net/http"

	"github.com/adeotasks/adeo-api/internal/api/shared"
	"github.com/adeotasks/adeo-api/internal/domain"
	"github.com/adeotasks/adeo-api/internal/platform/logger"
	"github.com/adeotasks/adeo-api/internal/service"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /api/tasks requests
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListTasks(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// CreateTask handles POST /api/tasks requests
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), req.Text, req.ListID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// SetDone handles PATCH /api/tasks/{id}/done requests
func (h *TaskHandler) SetDone(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, log)
	if !ok {
		return
	}

	var req SetDoneRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, err := h.tasks.SetTaskDone(r.Context(), id, *req.Done)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateText handles PATCH /api/tasks/{id}/text requests
func (h *TaskHandler) UpdateText(w http.ResponseWriter, r *http.Request) {
	var req UpdateTextRequest
	h.update(w, r, &req, func(id int64) (*domain.Task, error) {
		return h.tasks.UpdateText(r.Context(), id, req.Text)
	})
}

// UpdateDetails handles PATCH /api/tasks/{id}/details requests
func (h *TaskHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	var req UpdateDetailsRequest
	h.update(w, r, &req, func(id int64) (*domain.Task, error) {
		return h.tasks.UpdateDetails(r.Context(), id, req.Details)
	})
}

// UpdateList handles PATCH /api/tasks/{id}/list requests
func (h *TaskHandler) UpdateList(w http.ResponseWriter, r *http.Request) {
	var req UpdateListRequest
	h.update(w, r, &req, func(id int64) (*domain.Task, error) {
		return h.tasks.UpdateList(r.Context(), id, req.ListID)
	})
}

// UpdatePriority handles PATCH /api/tasks/{id}/priority requests
func (h *TaskHandler) UpdatePriority(w http.ResponseWriter, r *http.Request) {
	var req UpdatePriorityRequest
	h.update(w, r, &req, func(id int64) (*domain.Task, error) {
		return h.tasks.UpdatePriority(r.Context(), id, req.Priority)
	})
}

// UpdateReminder handles PATCH /api/tasks/{id}/reminder requests
func (h *TaskHandler) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	var req UpdateReminderRequest
	h.update(w, r, &req, func(id int64) (*domain.Task, error) {
		return h.tasks.UpdateReminder(r.Context(), id, req.Date, req.Time)
	})
}

// UpdateRepeat handles PATCH /api/tasks/{id}/repeat requests
func (h *TaskHandler) UpdateRepeat(w http.ResponseWriter, r *http.Request) {
	var req UpdateRepeatRequest
	h.update(w, r, &req, func(id int64) (*domain.Task, error) {
		return h.tasks.UpdateRepeatRule(r.Context(), id, req.Rule, req.Start)
	})
}

// ReorderTasks handles POST /api/tasks/order requests
func (h *TaskHandler) ReorderTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ReorderRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	if err := h.tasks.ReorderTasks(r.Context(), req.IDs); err != nil {
		HandleAPIError(w, r, err, "Failed to reorder tasks")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// update runs the shared flow of the single-field PATCH endpoints: parse the
// id, decode req, apply, and respond with the updated task.
func (h *TaskHandler) update(w http.ResponseWriter, r *http.Request, req any, apply func(id int64) (*domain.Task, error)) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, log)
	if !ok {
		return
	}
	if !decodeAndValidate(w, r, req, log) {
		return
	}

	task, err := apply(id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}
