package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/adeotasks/adeo-api/internal/domain"
	"github.com/adeotasks/adeo-api/internal/platform/logger"
	"github.com/adeotasks/adeo-api/internal/store"
)

const taskColumns = `
	id, text, details, done, position, list_id, priority,
	reminder_date, reminder_time, repeat_rule, repeat_start,
	series_id, completion_state, completed_at, created_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO tasks (
			text, details, done, position, list_id, priority,
			reminder_date, reminder_time, repeat_rule, repeat_start,
			series_id, completion_state, completed_at, created_at
		)
		VALUES (
			$1, $2, $3,
			CASE WHEN $4::integer < 0
				THEN COALESCE((SELECT MAX(position) FROM tasks), -1) + 1
				ELSE $4::integer END,
			$5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
		RETURNING id, position
	`

	err := s.db.QueryRowContext(
		ctx,
		query,
		task.Text,
		task.Details,
		task.Done,
		task.Position,
		task.ListID,
		string(task.Priority),
		task.ReminderDate,
		task.ReminderTime,
		task.RepeatRule,
		task.RepeatStart,
		task.SeriesID,
		string(task.CompletionState),
		task.CompletedAt,
		task.CreatedAt,
	).Scan(&task.ID, &task.Position)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("task references a missing list", slog.String("error", err.Error()))
			return fmt.Errorf("%w: list not found", store.ErrInvalidEntity)
		}
		log.Error("failed to create task", slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Debug("task created",
		slog.Int64("task_id", task.ID),
		slog.Int("position", task.Position))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	return s.get(ctx, id, false)
}

// GetByIDForUpdate implements store.TaskStore.GetByIDForUpdate
func (s *PostgresTaskStore) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Task, error) {
	return s.get(ctx, id, true)
}

func (s *PostgresTaskStore) get(ctx context.Context, id int64, lock bool) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, MapError(err)
	}

	return task, nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY position ASC, id ASC`
	return s.query(ctx, "list tasks", query)
}

// FindReminderCandidates implements store.TaskStore.FindReminderCandidates
func (s *PostgresTaskStore) FindReminderCandidates(ctx context.Context) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE done = FALSE
			AND reminder_date IS NOT NULL
			AND reminder_time IS NOT NULL
		ORDER BY id ASC
	`
	return s.query(ctx, "find reminder candidates", query)
}

func (s *PostgresTaskStore) query(ctx context.Context, op, query string, args ...any) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to "+op, slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Error("failed to iterate task rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return tasks, nil
}

// MaxPosition implements store.TaskStore.MaxPosition
func (s *PostgresTaskStore) MaxPosition(ctx context.Context) (int, error) {
	var position int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) FROM tasks`).Scan(&position)
	if err != nil {
		return 0, MapError(err)
	}
	return position, nil
}

// SetDone implements store.TaskStore.SetDone
func (s *PostgresTaskStore) SetDone(ctx context.Context, id int64, done bool) error {
	return s.exec(ctx, id, "set done", `UPDATE tasks SET done = $2 WHERE id = $1`, done)
}

// SetSeriesID implements store.TaskStore.SetSeriesID
func (s *PostgresTaskStore) SetSeriesID(ctx context.Context, id int64, seriesID int64) error {
	return s.exec(ctx, id, "set series", `UPDATE tasks SET series_id = $2 WHERE id = $1`, seriesID)
}

// MarkCompletedGenerated implements store.TaskStore.MarkCompletedGenerated
// The state predicate in the UPDATE makes the transition a compare-and-set.
func (s *PostgresTaskStore) MarkCompletedGenerated(ctx context.Context, id int64, completedAt time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET completion_state = $2, completed_at = $3
		WHERE id = $1 AND completion_state = $4
	`,
		id,
		string(domain.CompletionGenerated),
		completedAt,
		string(domain.CompletionPending),
	)
	if err != nil {
		log.Error("failed to mark task completed",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrAlreadyCompleted); err != nil {
		if !errors.Is(err, store.ErrAlreadyCompleted) {
			return err
		}
		var exists bool
		if qErr := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id,
		).Scan(&exists); qErr != nil {
			return MapError(qErr)
		}
		if !exists {
			return store.ErrTaskNotFound
		}
		log.Debug("task already completed", slog.Int64("task_id", id))
		return store.ErrAlreadyCompleted
	}

	return nil
}

// UpdateText implements store.TaskStore.UpdateText
func (s *PostgresTaskStore) UpdateText(ctx context.Context, id int64, text string) error {
	return s.exec(ctx, id, "update text", `UPDATE tasks SET text = $2 WHERE id = $1`, text)
}

// UpdateDetails implements store.TaskStore.UpdateDetails
func (s *PostgresTaskStore) UpdateDetails(ctx context.Context, id int64, details string) error {
	return s.exec(ctx, id, "update details", `UPDATE tasks SET details = $2 WHERE id = $1`, details)
}

// UpdateList implements store.TaskStore.UpdateList
func (s *PostgresTaskStore) UpdateList(ctx context.Context, id int64, listID *int64) error {
	err := s.exec(ctx, id, "update list", `UPDATE tasks SET list_id = $2 WHERE id = $1`, listID)
	if IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: list not found", store.ErrInvalidEntity)
	}
	return err
}

// UpdatePriority implements store.TaskStore.UpdatePriority
func (s *PostgresTaskStore) UpdatePriority(ctx context.Context, id int64, priority domain.Priority) error {
	return s.exec(ctx, id, "update priority",
		`UPDATE tasks SET priority = $2 WHERE id = $1`, string(priority))
}

// UpdateReminder implements store.TaskStore.UpdateReminder
func (s *PostgresTaskStore) UpdateReminder(ctx context.Context, id int64, date, clock *string) error {
	return s.exec(ctx, id, "update reminder",
		`UPDATE tasks SET reminder_date = $2, reminder_time = $3 WHERE id = $1`, date, clock)
}

// UpdateRepeat implements store.TaskStore.UpdateRepeat
func (s *PostgresTaskStore) UpdateRepeat(ctx context.Context, id int64, rule, start *string) error {
	return s.exec(ctx, id, "update repeat",
		`UPDATE tasks SET repeat_rule = $2, repeat_start = $3 WHERE id = $1`, rule, start)
}

// UpdatePositions implements store.TaskStore.UpdatePositions
func (s *PostgresTaskStore) UpdatePositions(ctx context.Context, orderedIDs []int64) error {
	for position, id := range orderedIDs {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE tasks SET position = $2 WHERE id = $1`, id, position,
		); err != nil {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to reorder tasks",
				slog.String("error", err.Error()),
				slog.Int64("task_id", id))
			return MapError(err)
		}
	}
	return nil
}

// exec runs a single-row UPDATE and reports ErrTaskNotFound when nothing matched.
// The original driver error stays in the chain so callers can inspect it.
func (s *PostgresTaskStore) exec(ctx context.Context, id int64, op, query string, args ...any) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		log.Error("failed to "+op,
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		if IsForeignKeyViolation(err) {
			return err
		}
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		log.Debug("task not found", slog.String("operation", op), slog.Int64("task_id", id))
		return err
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task            domain.Task
		listID          sql.NullInt64
		priority        string
		reminderDate    sql.NullString
		reminderTime    sql.NullString
		repeatRule      sql.NullString
		repeatStart     sql.NullString
		seriesID        sql.NullInt64
		completionState string
		completedAt     sql.NullTime
	)

	if err := row.Scan(
		&task.ID,
		&task.Text,
		&task.Details,
		&task.Done,
		&task.Position,
		&listID,
		&priority,
		&reminderDate,
		&reminderTime,
		&repeatRule,
		&repeatStart,
		&seriesID,
		&completionState,
		&completedAt,
		&task.CreatedAt,
	); err != nil {
		return nil, err
	}

	task.ListID = nullInt64(listID)
	task.Priority = domain.Priority(priority)
	task.ReminderDate = nullString(reminderDate)
	task.ReminderTime = nullString(reminderTime)
	task.RepeatRule = nullString(repeatRule)
	task.RepeatStart = nullString(repeatStart)
	task.SeriesID = nullInt64(seriesID)
	task.CompletionState = domain.CompletionState(completionState)
	if completedAt.Valid {
		at := completedAt.Time.UTC()
		task.CompletedAt = &at
	}
	task.CreatedAt = task.CreatedAt.UTC()

	return &task, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	i := v.Int64
	return &i
}
