package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/adeotasks/adeo-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// It is a narrow row-level accessor: equality and ordering predicates only.
type TaskStore interface {
	// Create inserts a new task and sets its ID. When task.Position is
	// negative the store appends it after the current maximum position.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// GetByIDForUpdate retrieves a task and locks its row until the
	// surrounding transaction ends. Outside a transaction it behaves like
	// GetByID.
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Task, error)

	// List returns every task ordered by position, then id.
	List(ctx context.Context) ([]*domain.Task, error)

	// FindReminderCandidates returns undone tasks that have both a reminder
	// date and a reminder time.
	FindReminderCandidates(ctx context.Context) ([]*domain.Task, error)

	// MaxPosition returns the highest task position, or -1 when empty.
	MaxPosition(ctx context.Context) (int, error)

	// SetDone updates only the done flag.
	SetDone(ctx context.Context, id int64, done bool) error

	// SetSeriesID anchors a task to a series.
	SetSeriesID(ctx context.Context, id int64, seriesID int64) error

	// MarkCompletedGenerated moves a task from CompletionPending to
	// CompletionGenerated and stamps completedAt. The transition happens at
	// most once; if the task is no longer pending ErrAlreadyCompleted is
	// returned and nothing changes.
	MarkCompletedGenerated(ctx context.Context, id int64, completedAt time.Time) error

	UpdateText(ctx context.Context, id int64, text string) error
	UpdateDetails(ctx context.Context, id int64, details string) error
	UpdateList(ctx context.Context, id int64, listID *int64) error
	UpdatePriority(ctx context.Context, id int64, priority domain.Priority) error

	// UpdateReminder replaces both reminder fields; nil clears a field.
	UpdateReminder(ctx context.Context, id int64, date, clock *string) error

	// UpdateRepeat replaces the rule and anchor date; nil clears a field.
	UpdateRepeat(ctx context.Context, id int64, rule, start *string) error

	// UpdatePositions assigns position i to orderedIDs[i]. Unknown IDs are ignored.
	UpdatePositions(ctx context.Context, orderedIDs []int64) error

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
