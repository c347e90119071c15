package api

import (
	"github.com/adeotasks/adeo-api/internal/domain"
	"github.com/adeotasks/adeo-api/internal/domain/recurrence"
)

// Common request/response structures

// CreateTaskRequest defines the payload for POST /api/tasks.
type CreateTaskRequest struct {
	Text   string `json:"text"   validate:"required"`
	ListID *int64 `json:"listId" validate:"omitempty,gt=0"`
}

// SetDoneRequest defines the payload for PATCH /api/tasks/{id}/done.
type SetDoneRequest struct {
	Done *bool `json:"done" validate:"required"`
}

// UpdateTextRequest defines the payload for PATCH /api/tasks/{id}/text.
type UpdateTextRequest struct {
	Text string `json:"text" validate:"required"`
}

// UpdateDetailsRequest defines the payload for PATCH /api/tasks/{id}/details.
// An empty string clears the details.
type UpdateDetailsRequest struct {
	Details string `json:"details"`
}

// UpdateListRequest defines the payload for PATCH /api/tasks/{id}/list.
// A null listId moves the task out of any list.
type UpdateListRequest struct {
	ListID *int64 `json:"listId" validate:"omitempty,gt=0"`
}

// UpdatePriorityRequest defines the payload for PATCH /api/tasks/{id}/priority.
type UpdatePriorityRequest struct {
	Priority string `json:"priority" validate:"required,oneof=none low medium high"`
}

// UpdateReminderRequest defines the payload for PATCH /api/tasks/{id}/reminder.
// Null or blank fields clear the corresponding part of the reminder.
type UpdateReminderRequest struct {
	Date *string `json:"date"`
	Time *string `json:"time"`
}

// UpdateRepeatRequest defines the payload for PATCH /api/tasks/{id}/repeat.
type UpdateRepeatRequest struct {
	Rule  *string `json:"rule"`
	Start *string `json:"start"`
}

// ReorderRequest defines the payload for the order endpoints.
type ReorderRequest struct {
	IDs []int64 `json:"ids" validate:"required,unique,dive,gt=0"`
}

// CreateListRequest defines the payload for POST /api/lists.
type CreateListRequest struct {
	Name string `json:"name" validate:"required"`
}

// RenameListRequest defines the payload for PATCH /api/lists/{id}/name.
type RenameListRequest struct {
	Name string `json:"name" validate:"required"`
}

// TaskResponse is the JSON representation of a task.
type TaskResponse struct {
	ID           int64   `json:"id"`
	Text         string  `json:"text"`
	Details      string  `json:"details"`
	Done         bool    `json:"done"`
	Position     int     `json:"position"`
	ListID       *int64  `json:"listId"`
	Priority     string  `json:"priority"`
	ReminderDate *string `json:"reminderDate"`
	ReminderTime *string `json:"reminderTime"`
	RepeatRule   *string `json:"repeatRule"`
	RepeatStart  *string `json:"repeatStart"`
	SeriesID     *int64  `json:"seriesId"`

	// RepeatLabel is a short human description of RepeatRule.
	RepeatLabel string `json:"repeatLabel,omitempty"`
}

// ListResponse is the JSON representation of a list.
type ListResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

func taskToResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:           task.ID,
		Text:         task.Text,
		Details:      task.Details,
		Done:         task.Done,
		Position:     task.Position,
		ListID:       task.ListID,
		Priority:     string(task.Priority),
		ReminderDate: task.ReminderDate,
		ReminderTime: task.ReminderTime,
		RepeatRule:   task.RepeatRule,
		RepeatStart:  task.RepeatStart,
		SeriesID:     task.SeriesID,
	}
	if task.IsRepeating() {
		resp.RepeatLabel = recurrence.Describe(*task.RepeatRule)
	}
	return resp
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, taskToResponse(task))
	}
	return out
}

func listToResponse(list *domain.List) ListResponse {
	return ListResponse{ID: list.ID, Name: list.Name, Position: list.Position}
}

func listsToResponse(lists []*domain.List) []ListResponse {
	out := make([]ListResponse, 0, len(lists))
	for _, list := range lists {
		out = append(out, listToResponse(list))
	}
	return out
}
