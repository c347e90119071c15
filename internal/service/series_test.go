package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adeotasks/adeo-api/internal/domain"
	"github.com/adeotasks/adeo-api/internal/domain/recurrence"
	"github.com/adeotasks/adeo-api/internal/mocks"
	"github.com/adeotasks/adeo-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func int64Ptr(i int64) *int64 { return &i }

func repeatingTask(rule, date, clock string) *domain.Task {
	task := &domain.Task{
		Text:            "Water plants",
		Details:         "both balconies",
		Priority:        domain.PriorityHigh,
		CompletionState: domain.CompletionPending,
		RepeatRule:      strPtr(rule),
	}
	if date != "" {
		task.ReminderDate = strPtr(date)
	}
	if clock != "" {
		task.ReminderTime = strPtr(clock)
	}
	return task
}

func newTestGenerator(now time.Time) *SeriesGenerator {
	g := NewSeriesGenerator(recurrence.NewEvaluator(), time.UTC, nil)
	g.SetClock(func() time.Time { return now })
	return g
}

// completeInTx runs Complete the way SetTaskDone does.
func completeInTx(t *testing.T, db *mocks.MemoryStore, g *SeriesGenerator, id int64) (*domain.Task, error) {
	t.Helper()

	var successor *domain.Task
	err := db.InTx(context.Background(), func(ctx context.Context, st store.Stores) error {
		task, err := st.Tasks.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		successor, err = g.Complete(ctx, st.Tasks, task)
		return err
	})
	return successor, err
}

func TestSeriesGenerator_Complete(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	t.Run("weekly rule carries fields and time of day", func(t *testing.T) {
		db := mocks.NewMemoryStore()
		list := &domain.List{Name: "Home"}
		require.NoError(t, db.Lists().Create(context.Background(), list))

		task := repeatingTask("FREQ=WEEKLY", "2024-03-10", "07:45")
		task.ListID = int64Ptr(list.ID)
		task.Position = 4
		db.PutTask(task)

		successor, err := completeInTx(t, db, newTestGenerator(now), task.ID)
		require.NoError(t, err)
		require.NotNil(t, successor)

		assert.Equal(t, "Water plants", successor.Text)
		assert.Equal(t, "both balconies", successor.Details)
		assert.Equal(t, domain.PriorityHigh, successor.Priority)
		assert.Equal(t, list.ID, *successor.ListID)
		assert.Equal(t, "2024-03-17", *successor.ReminderDate)
		assert.Equal(t, "07:45", *successor.ReminderTime)
		assert.Equal(t, "FREQ=WEEKLY", *successor.RepeatRule)
		assert.Equal(t, task.ID, *successor.SeriesID)
		assert.Equal(t, 5, successor.Position)
		assert.False(t, successor.Done)
		assert.Equal(t, domain.CompletionPending, successor.CompletionState)

		original, err := db.Tasks().GetByID(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.CompletionGenerated, original.CompletionState)
		require.NotNil(t, original.CompletedAt)
		assert.Equal(t, now, *original.CompletedAt)
		assert.Equal(t, task.ID, *original.SeriesID, "first task anchors its own series")
	})

	t.Run("seconds in the time of day are kept", func(t *testing.T) {
		db := mocks.NewMemoryStore()
		task := db.PutTask(repeatingTask("FREQ=DAILY", "2024-03-10", "06:30:15"))

		successor, err := completeInTx(t, db, newTestGenerator(now), task.ID)
		require.NoError(t, err)
		require.NotNil(t, successor)
		assert.Equal(t, "2024-03-11", *successor.ReminderDate)
		assert.Equal(t, "06:30:15", *successor.ReminderTime)
	})

	t.Run("no reminder uses today at midnight", func(t *testing.T) {
		db := mocks.NewMemoryStore()
		task := db.PutTask(repeatingTask("FREQ=DAILY", "", ""))

		successor, err := completeInTx(t, db, newTestGenerator(now), task.ID)
		require.NoError(t, err)
		require.NotNil(t, successor)
		assert.Equal(t, "2024-03-11", *successor.ReminderDate)
		assert.Nil(t, successor.ReminderTime)
	})

	t.Run("existing series id is preserved", func(t *testing.T) {
		db := mocks.NewMemoryStore()
		task := repeatingTask("FREQ=DAILY", "2024-03-10", "09:00")
		task.ID = 12
		task.SeriesID = int64Ptr(3)
		db.PutTask(task)

		successor, err := completeInTx(t, db, newTestGenerator(now), task.ID)
		require.NoError(t, err)
		require.NotNil(t, successor)
		assert.Equal(t, int64(3), *successor.SeriesID)
	})

	t.Run("non-repeating task inserts nothing", func(t *testing.T) {
		db := mocks.NewMemoryStore()
		task := db.PutTask(&domain.Task{
			Text:            "One-off",
			Priority:        domain.PriorityNone,
			CompletionState: domain.CompletionPending,
		})

		successor, err := completeInTx(t, db, newTestGenerator(now), task.ID)
		require.NoError(t, err)
		assert.Nil(t, successor)
		assert.Len(t, db.AllTasks(), 1)
	})

	t.Run("already generated task inserts nothing", func(t *testing.T) {
		db := mocks.NewMemoryStore()
		task := repeatingTask("FREQ=DAILY", "2024-03-10", "09:00")
		task.CompletionState = domain.CompletionGenerated
		db.PutTask(task)

		successor, err := completeInTx(t, db, newTestGenerator(now), task.ID)
		require.NoError(t, err)
		assert.Nil(t, successor)
		assert.Len(t, db.AllTasks(), 1)
	})

	t.Run("malformed rule ends the series silently", func(t *testing.T) {
		db := mocks.NewMemoryStore()
		task := db.PutTask(repeatingTask("FREQ=SOMETIMES", "2024-03-10", "09:00"))

		successor, err := completeInTx(t, db, newTestGenerator(now), task.ID)
		require.NoError(t, err)
		assert.Nil(t, successor)
		assert.Len(t, db.AllTasks(), 1)

		original, err := db.Tasks().GetByID(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.CompletionGenerated, original.CompletionState)
	})

	t.Run("UNTIL in the past ends the series", func(t *testing.T) {
		db := mocks.NewMemoryStore()
		task := db.PutTask(repeatingTask("FREQ=DAILY;UNTIL=20240310T235959Z", "2024-03-10", "09:00"))

		successor, err := completeInTx(t, db, newTestGenerator(now), task.ID)
		require.NoError(t, err)
		assert.Nil(t, successor)
	})

	t.Run("successor insert failure is returned", func(t *testing.T) {
		db := mocks.NewMemoryStore()
		task := db.PutTask(repeatingTask("FREQ=DAILY", "2024-03-10", "09:00"))
		db.CreateTaskFn = func(context.Context, *domain.Task) error {
			return errors.New("disk full")
		}

		successor, err := completeInTx(t, db, newTestGenerator(now), task.ID)
		require.Error(t, err)
		assert.Nil(t, successor)

		original, err := db.Tasks().GetByID(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.CompletionPending, original.CompletionState, "completion is rolled back")
		assert.Nil(t, original.SeriesID)
		assert.Equal(t, 1, db.Rollbacks)
	})
}

func TestSeriesGenerator_CountIsBoundedByAnchor(t *testing.T) {
	db := mocks.NewMemoryStore()
	g := newTestGenerator(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))

	first := repeatingTask("FREQ=DAILY;COUNT=3", "2024-01-01", "09:00")
	first.RepeatStart = strPtr("2024-01-01")
	db.PutTask(first)

	second, err := completeInTx(t, db, g, first.ID)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "2024-01-02", *second.ReminderDate)

	third, err := completeInTx(t, db, g, second.ID)
	require.NoError(t, err)
	require.NotNil(t, third)
	assert.Equal(t, "2024-01-03", *third.ReminderDate)

	none, err := completeInTx(t, db, g, third.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	assert.Len(t, db.AllTasks(), 3)
}

func TestSeriesGenerator_IntervalFollowsReminderDate(t *testing.T) {
	db := mocks.NewMemoryStore()
	now := time.Date(2024, 1, 3, 9, 5, 0, 0, time.UTC)
	g := newTestGenerator(now)

	// Reminder moved off the anchor's two-week grid.
	task := repeatingTask("FREQ=WEEKLY;INTERVAL=2", "2024-01-03", "09:00")
	task.RepeatStart = strPtr("2024-01-01")
	db.PutTask(task)

	successor, err := completeInTx(t, db, g, task.ID)
	require.NoError(t, err)
	require.NotNil(t, successor)

	assert.Equal(t, "2024-01-17", *successor.ReminderDate)
	assert.Equal(t, "09:00", *successor.ReminderTime)
	assert.Equal(t, "2024-01-01", *successor.RepeatStart)
	assert.Equal(t, now, successor.CreatedAt)
}
