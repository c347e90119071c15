package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/adeotasks/adeo-api/internal/domain"
	"github.com/adeotasks/adeo-api/internal/store"
)

// MemoryStore is an in-memory backing for store.TaskStore, store.ListStore
// and store.Transactor. InTx runs one transaction at a time and restores the
// previous state when fn fails, which is enough to model row locking and
// rollback in service tests.
type MemoryStore struct {
	// Function fields override the default behaviour when set.
	CreateTaskFn             func(ctx context.Context, task *domain.Task) error
	FindReminderCandidatesFn func(ctx context.Context) ([]*domain.Task, error)

	txMu sync.Mutex
	mu   sync.Mutex

	tasks      map[int64]*domain.Task
	lists      map[int64]*domain.List
	nextTaskID int64
	nextListID int64

	// Call tracking for verification
	Transactions int
	Rollbacks    int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: make(map[int64]*domain.Task),
		lists: make(map[int64]*domain.List),
	}
}

// Tasks returns the task store view.
func (m *MemoryStore) Tasks() *MemoryTaskStore { return &MemoryTaskStore{m: m} }

// Lists returns the list store view.
func (m *MemoryStore) Lists() *MemoryListStore { return &MemoryListStore{m: m} }

var _ store.Transactor = (*MemoryStore)(nil)

// InTx implements store.Transactor.
func (m *MemoryStore) InTx(ctx context.Context, fn func(ctx context.Context, s store.Stores) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	m.Transactions++
	tasks, lists := m.snapshot()
	nextTask, nextList := m.nextTaskID, m.nextListID
	m.mu.Unlock()

	if err := fn(ctx, store.Stores{Tasks: m.Tasks(), Lists: m.Lists()}); err != nil {
		m.mu.Lock()
		m.tasks, m.lists = tasks, lists
		m.nextTaskID, m.nextListID = nextTask, nextList
		m.Rollbacks++
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *MemoryStore) snapshot() (map[int64]*domain.Task, map[int64]*domain.List) {
	tasks := make(map[int64]*domain.Task, len(m.tasks))
	for id, t := range m.tasks {
		tasks[id] = t.Clone()
	}
	lists := make(map[int64]*domain.List, len(m.lists))
	for id, l := range m.lists {
		c := *l
		lists[id] = &c
	}
	return tasks, lists
}

// AllTasks returns a copy of every stored task ordered by id.
func (m *MemoryStore) AllTasks() []*domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PutTask stores a copy of task as-is, assigning an ID when it has none.
func (m *MemoryStore) PutTask(task *domain.Task) *domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	if task.ID == 0 {
		m.nextTaskID++
		task.ID = m.nextTaskID
	} else if task.ID > m.nextTaskID {
		m.nextTaskID = task.ID
	}
	m.tasks[task.ID] = task.Clone()
	return task
}

// MemoryTaskStore implements store.TaskStore on top of a MemoryStore.
type MemoryTaskStore struct {
	m *MemoryStore
}

var _ store.TaskStore = (*MemoryTaskStore)(nil)

// WithTx implements store.TaskStore. The memory store has no SQL transactions.
func (s *MemoryTaskStore) WithTx(*sql.Tx) store.TaskStore { return s }

// Create implements store.TaskStore.
func (s *MemoryTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if s.m.CreateTaskFn != nil {
		if err := s.m.CreateTaskFn(ctx, task); err != nil {
			return err
		}
	}
	if err := task.Validate(); err != nil {
		return err
	}

	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if task.ListID != nil {
		if _, ok := s.m.lists[*task.ListID]; !ok {
			return store.ErrInvalidEntity
		}
	}
	if task.Position < 0 {
		task.Position = s.maxPositionLocked() + 1
	}

	s.m.nextTaskID++
	task.ID = s.m.nextTaskID
	s.m.tasks[task.ID] = task.Clone()
	return nil
}

func (s *MemoryTaskStore) maxPositionLocked() int {
	highest := -1
	for _, t := range s.m.tasks {
		if t.Position > highest {
			highest = t.Position
		}
	}
	return highest
}

// GetByID implements store.TaskStore.
func (s *MemoryTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	t, ok := s.m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return t.Clone(), nil
}

// GetByIDForUpdate implements store.TaskStore. InTx already serializes
// transactions, so no extra locking is needed.
func (s *MemoryTaskStore) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Task, error) {
	return s.GetByID(ctx, id)
}

// List implements store.TaskStore.
func (s *MemoryTaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	out := make([]*domain.Task, 0, len(s.m.tasks))
	for _, t := range s.m.tasks {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// FindReminderCandidates implements store.TaskStore.
func (s *MemoryTaskStore) FindReminderCandidates(ctx context.Context) ([]*domain.Task, error) {
	if s.m.FindReminderCandidatesFn != nil {
		return s.m.FindReminderCandidatesFn(ctx)
	}

	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	var out []*domain.Task
	for _, t := range s.m.tasks {
		if !t.Done && t.ReminderDate != nil && t.ReminderTime != nil {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MaxPosition implements store.TaskStore.
func (s *MemoryTaskStore) MaxPosition(ctx context.Context) (int, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.maxPositionLocked(), nil
}

func (s *MemoryTaskStore) update(id int64, fn func(t *domain.Task) error) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	t, ok := s.m.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	return fn(t)
}

// SetDone implements store.TaskStore.
func (s *MemoryTaskStore) SetDone(ctx context.Context, id int64, done bool) error {
	return s.update(id, func(t *domain.Task) error { t.Done = done; return nil })
}

// SetSeriesID implements store.TaskStore.
func (s *MemoryTaskStore) SetSeriesID(ctx context.Context, id int64, seriesID int64) error {
	return s.update(id, func(t *domain.Task) error { t.SeriesID = &seriesID; return nil })
}

// MarkCompletedGenerated implements store.TaskStore.
func (s *MemoryTaskStore) MarkCompletedGenerated(ctx context.Context, id int64, completedAt time.Time) error {
	return s.update(id, func(t *domain.Task) error {
		if t.CompletionState != domain.CompletionPending {
			return store.ErrAlreadyCompleted
		}
		t.CompletionState = domain.CompletionGenerated
		t.CompletedAt = &completedAt
		return nil
	})
}

// UpdateText implements store.TaskStore.
func (s *MemoryTaskStore) UpdateText(ctx context.Context, id int64, text string) error {
	return s.update(id, func(t *domain.Task) error { t.Text = text; return nil })
}

// UpdateDetails implements store.TaskStore.
func (s *MemoryTaskStore) UpdateDetails(ctx context.Context, id int64, details string) error {
	return s.update(id, func(t *domain.Task) error { t.Details = details; return nil })
}

// UpdateList implements store.TaskStore.
func (s *MemoryTaskStore) UpdateList(ctx context.Context, id int64, listID *int64) error {
	return s.update(id, func(t *domain.Task) error {
		if listID != nil {
			if _, ok := s.m.lists[*listID]; !ok {
				return store.ErrInvalidEntity
			}
			v := *listID
			listID = &v
		}
		t.ListID = listID
		return nil
	})
}

// UpdatePriority implements store.TaskStore.
func (s *MemoryTaskStore) UpdatePriority(ctx context.Context, id int64, priority domain.Priority) error {
	return s.update(id, func(t *domain.Task) error { t.Priority = priority; return nil })
}

// UpdateReminder implements store.TaskStore.
func (s *MemoryTaskStore) UpdateReminder(ctx context.Context, id int64, date, clock *string) error {
	return s.update(id, func(t *domain.Task) error {
		t.ReminderDate = copyString(date)
		t.ReminderTime = copyString(clock)
		return nil
	})
}

// UpdateRepeat implements store.TaskStore.
func (s *MemoryTaskStore) UpdateRepeat(ctx context.Context, id int64, rule, start *string) error {
	return s.update(id, func(t *domain.Task) error {
		t.RepeatRule = copyString(rule)
		t.RepeatStart = copyString(start)
		return nil
	})
}

// UpdatePositions implements store.TaskStore.
func (s *MemoryTaskStore) UpdatePositions(ctx context.Context, orderedIDs []int64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	for position, id := range orderedIDs {
		if t, ok := s.m.tasks[id]; ok {
			t.Position = position
		}
	}
	return nil
}

// MemoryListStore implements store.ListStore on top of a MemoryStore.
type MemoryListStore struct {
	m *MemoryStore
}

var _ store.ListStore = (*MemoryListStore)(nil)

// WithTx implements store.ListStore.
func (s *MemoryListStore) WithTx(*sql.Tx) store.ListStore { return s }

// Create implements store.ListStore.
func (s *MemoryListStore) Create(ctx context.Context, list *domain.List) error {
	if err := list.Validate(); err != nil {
		return err
	}

	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	s.m.nextListID++
	list.ID = s.m.nextListID
	list.Position = s.maxPositionLocked() + 1
	c := *list
	s.m.lists[list.ID] = &c
	return nil
}

// List implements store.ListStore.
func (s *MemoryListStore) List(ctx context.Context) ([]*domain.List, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	out := make([]*domain.List, 0, len(s.m.lists))
	for _, l := range s.m.lists {
		c := *l
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryListStore) maxPositionLocked() int {
	highest := -1
	for _, l := range s.m.lists {
		if l.Position > highest {
			highest = l.Position
		}
	}
	return highest
}

// MaxPosition implements store.ListStore.
func (s *MemoryListStore) MaxPosition(ctx context.Context) (int, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.maxPositionLocked(), nil
}

// UpdateName implements store.ListStore.
func (s *MemoryListStore) UpdateName(ctx context.Context, id int64, name string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	l, ok := s.m.lists[id]
	if !ok {
		return store.ErrListNotFound
	}
	l.Name = name
	return nil
}

// Delete implements store.ListStore and cascades to the list's tasks.
func (s *MemoryListStore) Delete(ctx context.Context, id int64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if _, ok := s.m.lists[id]; !ok {
		return store.ErrListNotFound
	}
	delete(s.m.lists, id)
	for taskID, t := range s.m.tasks {
		if t.ListID != nil && *t.ListID == id {
			delete(s.m.tasks, taskID)
		}
	}
	return nil
}

// UpdatePositions implements store.ListStore.
func (s *MemoryListStore) UpdatePositions(ctx context.Context, orderedIDs []int64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	for position, id := range orderedIDs {
		if l, ok := s.m.lists[id]; ok {
			l.Position = position
		}
	}
	return nil
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
