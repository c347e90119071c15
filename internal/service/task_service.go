package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/adeotasks/adeo-api/internal/domain"
	"github.com/adeotasks/adeo-api/internal/domain/recurrence"
	"github.com/adeotasks/adeo-api/internal/platform/logger"
	"github.com/adeotasks/adeo-api/internal/store"
)

// TaskService provides task-related operations
type TaskService interface {
	// CreateTask adds a plain task at the end of the global order.
	CreateTask(ctx context.Context, text string, listID *int64) (*domain.Task, error)

	// ListTasks returns every task ordered by position, then id.
	ListTasks(ctx context.Context) ([]*domain.Task, error)

	// SetTaskDone toggles the done flag. Completing a pending repeating task
	// also generates the next instance of its series, atomically.
	SetTaskDone(ctx context.Context, id int64, done bool) (*domain.Task, error)

	UpdateText(ctx context.Context, id int64, text string) (*domain.Task, error)
	UpdateDetails(ctx context.Context, id int64, details string) (*domain.Task, error)
	UpdateList(ctx context.Context, id int64, listID *int64) (*domain.Task, error)
	UpdatePriority(ctx context.Context, id int64, priority string) (*domain.Task, error)

	// UpdateReminder replaces the reminder; blank values clear a field.
	UpdateReminder(ctx context.Context, id int64, date, clock *string) (*domain.Task, error)

	// UpdateRepeatRule replaces the rule and anchor date; blank values clear a field.
	UpdateRepeatRule(ctx context.Context, id int64, rule, start *string) (*domain.Task, error)

	// ReorderTasks assigns positions 0..n-1 in the given order.
	ReorderTasks(ctx context.Context, orderedIDs []int64) error
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	tasks     store.TaskStore
	tx        store.Transactor
	series    *SeriesGenerator
	evaluator recurrence.Evaluator
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tasks store.TaskStore,
	tx store.Transactor,
	series *SeriesGenerator,
	logger *slog.Logger,
) (TaskService, error) {
	if tasks == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "tasks cannot be nil"}
	}
	if tx == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "transactor cannot be nil"}
	}
	if series == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "series generator cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:     tasks,
		tx:        tx,
		series:    series,
		evaluator: series.evaluator,
		logger:    logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.
func (s *taskServiceImpl) CreateTask(ctx context.Context, text string, listID *int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(text, listID, s.series.now())
	if err != nil {
		return nil, err
	}
	task.Position = -1

	if err := s.tasks.Create(ctx, task); err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	log.Info("task created", slog.Int64("task_id", task.ID))
	return task, nil
}

// ListTasks implements TaskService.
func (s *taskServiceImpl) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, NewTaskServiceError("list_tasks", "failed to load tasks", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

// SetTaskDone implements TaskService.
func (s *taskServiceImpl) SetTaskDone(ctx context.Context, id int64, done bool) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.Int64("task_id", id))

	var updated *domain.Task
	err := s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		task, err := st.Tasks.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if err := st.Tasks.SetDone(ctx, id, done); err != nil {
			return err
		}

		if done && !task.Done {
			if _, err := s.series.Complete(ctx, st.Tasks, task); err != nil {
				return err
			}
		}

		updated, err = st.Tasks.GetByID(ctx, id)
		return err
	})
	if err != nil {
		log.Error("failed to set task done", slog.Bool("done", done), slog.String("error", err.Error()))
		return nil, NewTaskServiceError("set_done", "failed to update task", err)
	}

	return updated, nil
}

// UpdateText implements TaskService.
func (s *taskServiceImpl) UpdateText(ctx context.Context, id int64, text string) (*domain.Task, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, domain.ErrEmptyTaskText
	}
	return s.update(ctx, id, "update_text", func(ctx context.Context) error {
		return s.tasks.UpdateText(ctx, id, trimmed)
	})
}

// UpdateDetails implements TaskService.
func (s *taskServiceImpl) UpdateDetails(ctx context.Context, id int64, details string) (*domain.Task, error) {
	return s.update(ctx, id, "update_details", func(ctx context.Context) error {
		return s.tasks.UpdateDetails(ctx, id, details)
	})
}

// UpdateList implements TaskService.
func (s *taskServiceImpl) UpdateList(ctx context.Context, id int64, listID *int64) (*domain.Task, error) {
	return s.update(ctx, id, "update_list", func(ctx context.Context) error {
		return s.tasks.UpdateList(ctx, id, listID)
	})
}

// UpdatePriority implements TaskService.
func (s *taskServiceImpl) UpdatePriority(ctx context.Context, id int64, priority string) (*domain.Task, error) {
	p, err := domain.ParsePriority(priority)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, id, "update_priority", func(ctx context.Context) error {
		return s.tasks.UpdatePriority(ctx, id, p)
	})
}

// UpdateReminder implements TaskService.
func (s *taskServiceImpl) UpdateReminder(ctx context.Context, id int64, date, clock *string) (*domain.Task, error) {
	date, clock = domain.NormalizeOptional(date), domain.NormalizeOptional(clock)

	if date != nil {
		if err := domain.ValidateDate(*date); err != nil {
			return nil, domain.NewValidationError("reminderDate", "is invalid", err)
		}
	}
	if clock != nil {
		if err := domain.ValidateTime(*clock); err != nil {
			return nil, domain.NewValidationError("reminderTime", "is invalid", err)
		}
	}

	return s.update(ctx, id, "update_reminder", func(ctx context.Context) error {
		return s.tasks.UpdateReminder(ctx, id, date, clock)
	})
}

// UpdateRepeatRule implements TaskService.
func (s *taskServiceImpl) UpdateRepeatRule(ctx context.Context, id int64, rule, start *string) (*domain.Task, error) {
	rule, start = domain.NormalizeOptional(rule), domain.NormalizeOptional(start)

	if rule != nil {
		if err := s.evaluator.Validate(*rule); err != nil {
			return nil, domain.NewValidationError("repeatRule", "is invalid", domain.ErrInvalidRepeatRule)
		}
	}
	if start != nil {
		if err := domain.ValidateDate(*start); err != nil {
			return nil, domain.NewValidationError("repeatStart", "is invalid", err)
		}
	}

	return s.update(ctx, id, "update_repeat", func(ctx context.Context) error {
		return s.tasks.UpdateRepeat(ctx, id, rule, start)
	})
}

// ReorderTasks implements TaskService.
func (s *taskServiceImpl) ReorderTasks(ctx context.Context, orderedIDs []int64) error {
	err := s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		return st.Tasks.UpdatePositions(ctx, orderedIDs)
	})
	if err != nil {
		return NewTaskServiceError("reorder_tasks", "failed to reorder tasks", err)
	}
	return nil
}

// update applies a single-field change and returns the task as stored.
func (s *taskServiceImpl) update(
	ctx context.Context,
	id int64,
	operation string,
	apply func(ctx context.Context) error,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := apply(ctx); err != nil {
		log.Debug("task update failed",
			slog.String("operation", operation),
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return nil, NewTaskServiceError(operation, "failed to update task", err)
	}

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, NewTaskServiceError(operation, "failed to reload task", err)
	}
	return task, nil
}
