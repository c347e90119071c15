package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/adeotasks/adeo-api/internal/domain"
	"github.com/adeotasks/adeo-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newListStoreMock(t *testing.T) (*PostgresListStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return NewPostgresListStore(db, nil), mock
}

func TestPostgresListStore_Create(t *testing.T) {
	s, mock := newListStoreMock(t)

	list, err := domain.NewList(" Groceries ")
	require.NoError(t, err)

	mock.ExpectQuery("INSERT INTO lists").
		WithArgs("Groceries", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "position"}).AddRow(int64(3), 2))

	require.NoError(t, s.Create(context.Background(), list))
	assert.Equal(t, int64(3), list.ID)
	assert.Equal(t, 2, list.Position)
}

func TestPostgresListStore_List(t *testing.T) {
	s, mock := newListStoreMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM lists ORDER BY position ASC, id ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "position", "created_at"}).
			AddRow(int64(2), "Work", 0, createdAt).
			AddRow(int64(1), "Home", 1, createdAt))

	lists, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "Work", lists[0].Name)
	assert.Equal(t, "Home", lists[1].Name)
}

func TestPostgresListStore_UpdateName(t *testing.T) {
	query := regexp.QuoteMeta("UPDATE lists SET name = $2 WHERE id = $1")

	t.Run("renames", func(t *testing.T) {
		s, mock := newListStoreMock(t)
		mock.ExpectExec(query).WithArgs(int64(1), "Errands").WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.UpdateName(context.Background(), 1, "Errands"))
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newListStoreMock(t)
		mock.ExpectExec(query).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.UpdateName(context.Background(), 1, "Errands"), store.ErrListNotFound)
	})
}

func TestPostgresListStore_Delete(t *testing.T) {
	query := regexp.QuoteMeta("DELETE FROM lists WHERE id = $1")

	t.Run("deletes", func(t *testing.T) {
		s, mock := newListStoreMock(t)
		mock.ExpectExec(query).WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.Delete(context.Background(), 4))
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newListStoreMock(t)
		mock.ExpectExec(query).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Delete(context.Background(), 4), store.ErrListNotFound)
	})

	t.Run("driver error", func(t *testing.T) {
		s, mock := newListStoreMock(t)
		mock.ExpectExec(query).WillReturnError(errors.New("connection lost"))

		assert.ErrorContains(t, s.Delete(context.Background(), 4), "connection lost")
	})
}

func TestPostgresListStore_UpdatePositions(t *testing.T) {
	s, mock := newListStoreMock(t)

	query := regexp.QuoteMeta("UPDATE lists SET position = $2 WHERE id = $1")
	mock.ExpectExec(query).WithArgs(int64(2), 0).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs(int64(1), 1).WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, s.UpdatePositions(context.Background(), []int64{2, 1}))
}
