package store

import (
	"context"
	"database/sql"

	"github.com/adeotasks/adeo-api/internal/domain"
)

// ListStore defines the interface for list data persistence.
type ListStore interface {
	// Create inserts a list after the current maximum position and sets its ID and Position.
	Create(ctx context.Context, list *domain.List) error

	// List returns every list ordered by position, then id.
	List(ctx context.Context) ([]*domain.List, error)

	// MaxPosition returns the highest list position, or -1 when empty.
	MaxPosition(ctx context.Context) (int, error)

	// UpdateName renames a list. Returns ErrListNotFound if it does not exist.
	UpdateName(ctx context.Context, id int64, name string) error

	// Delete removes a list together with all of its tasks.
	Delete(ctx context.Context, id int64) error

	// UpdatePositions assigns position i to orderedIDs[i]. Unknown IDs are ignored.
	UpdatePositions(ctx context.Context, orderedIDs []int64) error

	// WithTx returns a new ListStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ListStore
}
