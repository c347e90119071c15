package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/adeotasks/adeo-api/internal/domain"
	"github.com/adeotasks/adeo-api/internal/platform/logger"
	"github.com/adeotasks/adeo-api/internal/store"
)

// PostgresListStore implements the store.ListStore interface
// using a PostgreSQL database as the storage backend.
type PostgresListStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresListStore creates a new PostgreSQL implementation of the ListStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresListStore(db store.DBTX, logger *slog.Logger) *PostgresListStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresListStore{
		db:     db,
		logger: logger.With(slog.String("component", "list_store")),
	}
}

// Ensure PostgresListStore implements store.ListStore interface
var _ store.ListStore = (*PostgresListStore)(nil)

// WithTx implements store.ListStore.WithTx
func (s *PostgresListStore) WithTx(tx *sql.Tx) store.ListStore {
	return &PostgresListStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.ListStore.Create
func (s *PostgresListStore) Create(ctx context.Context, list *domain.List) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := list.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO lists (name, position, created_at)
		VALUES ($1, COALESCE((SELECT MAX(position) FROM lists), -1) + 1, $2)
		RETURNING id, position
	`
	if err := s.db.QueryRowContext(ctx, query, list.Name, list.CreatedAt).
		Scan(&list.ID, &list.Position); err != nil {
		log.Error("failed to create list", slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Debug("list created", slog.Int64("list_id", list.ID))
	return nil
}

// List implements store.ListStore.List
func (s *PostgresListStore) List(ctx context.Context) ([]*domain.List, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, position, created_at
		FROM lists
		ORDER BY position ASC, id ASC
	`)
	if err != nil {
		log.Error("failed to list lists", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var lists []*domain.List
	for rows.Next() {
		var list domain.List
		if err := rows.Scan(&list.ID, &list.Name, &list.Position, &list.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		list.CreatedAt = list.CreatedAt.UTC()
		lists = append(lists, &list)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return lists, nil
}

// MaxPosition implements store.ListStore.MaxPosition
func (s *PostgresListStore) MaxPosition(ctx context.Context) (int, error) {
	var position int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) FROM lists`).Scan(&position)
	if err != nil {
		return 0, MapError(err)
	}
	return position, nil
}

// UpdateName implements store.ListStore.UpdateName
func (s *PostgresListStore) UpdateName(ctx context.Context, id int64, name string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `UPDATE lists SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		log.Error("failed to rename list",
			slog.String("error", err.Error()),
			slog.Int64("list_id", id))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrListNotFound)
}

// Delete implements store.ListStore.Delete
// Tasks in the list are removed by the ON DELETE CASCADE foreign key.
func (s *PostgresListStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM lists WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete list",
			slog.String("error", err.Error()),
			slog.Int64("list_id", id))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrListNotFound); err != nil {
		return err
	}

	log.Info("list deleted", slog.Int64("list_id", id))
	return nil
}

// UpdatePositions implements store.ListStore.UpdatePositions
func (s *PostgresListStore) UpdatePositions(ctx context.Context, orderedIDs []int64) error {
	for position, id := range orderedIDs {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE lists SET position = $2 WHERE id = $1`, id, position,
		); err != nil {
			return MapError(err)
		}
	}
	return nil
}
