package service

import (
	"context"
	"log/slog"

	"github.com/adeotasks/adeo-api/internal/domain"
	"github.com/adeotasks/adeo-api/internal/platform/logger"
	"github.com/adeotasks/adeo-api/internal/store"
)

// ListService provides list-related operations
type ListService interface {
	CreateList(ctx context.Context, name string) (*domain.List, error)
	ListLists(ctx context.Context) ([]*domain.List, error)
	RenameList(ctx context.Context, id int64, name string) error

	// DeleteList removes the list together with all of its tasks.
	DeleteList(ctx context.Context, id int64) error

	ReorderLists(ctx context.Context, orderedIDs []int64) error
}

type listServiceImpl struct {
	lists  store.ListStore
	tx     store.Transactor
	logger *slog.Logger
}

// NewListService creates a new ListService.
func NewListService(lists store.ListStore, tx store.Transactor, logger *slog.Logger) (ListService, error) {
	if lists == nil {
		return nil, &ListServiceError{Operation: "create_service", Message: "lists cannot be nil"}
	}
	if tx == nil {
		return nil, &ListServiceError{Operation: "create_service", Message: "transactor cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &listServiceImpl{
		lists:  lists,
		tx:     tx,
		logger: logger.With(slog.String("component", "list_service")),
	}, nil
}

// CreateList implements ListService.
func (s *listServiceImpl) CreateList(ctx context.Context, name string) (*domain.List, error) {
	list, err := domain.NewList(name)
	if err != nil {
		return nil, err
	}

	if err := s.lists.Create(ctx, list); err != nil {
		return nil, NewListServiceError("create_list", "failed to save list", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("list created", slog.Int64("list_id", list.ID))
	return list, nil
}

// ListLists implements ListService.
func (s *listServiceImpl) ListLists(ctx context.Context) ([]*domain.List, error) {
	lists, err := s.lists.List(ctx)
	if err != nil {
		return nil, NewListServiceError("list_lists", "failed to load lists", err)
	}
	if lists == nil {
		lists = []*domain.List{}
	}
	return lists, nil
}

// RenameList implements ListService.
func (s *listServiceImpl) RenameList(ctx context.Context, id int64, name string) error {
	trimmed, err := domain.NormalizeListName(name)
	if err != nil {
		return err
	}

	if err := s.lists.UpdateName(ctx, id, trimmed); err != nil {
		return NewListServiceError("rename_list", "failed to rename list", err)
	}
	return nil
}

// DeleteList implements ListService.
func (s *listServiceImpl) DeleteList(ctx context.Context, id int64) error {
	err := s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		return st.Lists.Delete(ctx, id)
	})
	if err != nil {
		return NewListServiceError("delete_list", "failed to delete list", err)
	}
	return nil
}

// ReorderLists implements ListService.
func (s *listServiceImpl) ReorderLists(ctx context.Context, orderedIDs []int64) error {
	err := s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		return st.Lists.UpdatePositions(ctx, orderedIDs)
	})
	if err != nil {
		return NewListServiceError("reorder_lists", "failed to reorder lists", err)
	}
	return nil
}
