package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/adeotasks/adeo-api/internal/config"
	"github.com/adeotasks/adeo-api/internal/domain"
	"github.com/adeotasks/adeo-api/internal/mocks"
	"github.com/adeotasks/adeo-api/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func at(hour, minute, sec int) time.Time {
	return time.Date(2024, 6, 1, hour, minute, sec, 0, time.UTC)
}

func configForTest(timezone string) config.ReminderConfig {
	return config.ReminderConfig{
		PollIntervalSeconds:  config.DefaultPollIntervalSeconds,
		GracePeriodSeconds:   config.DefaultGracePeriodSeconds,
		NotifyTimeoutSeconds: config.DefaultNotifyTimeoutSeconds,
		Title:                config.DefaultReminderTitle,
		Timezone:             timezone,
	}
}

func strPtr(s string) *string { return &s }

func reminderTask(id int64, text, date, clock string) *domain.Task {
	return &domain.Task{
		ID:              id,
		Text:            text,
		Priority:        domain.PriorityNone,
		CompletionState: domain.CompletionPending,
		ReminderDate:    strPtr(date),
		ReminderTime:    strPtr(clock),
	}
}

func newTestPoller(t *testing.T, db *mocks.MemoryStore, n notify.Notifier) (*Poller, *fakeClock) {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Location = time.UTC
	clock := &fakeClock{}

	p := NewPoller(db.Tasks(), n, cfg, nil)
	p.SetClock(clock.Now)
	return p, clock
}

func TestPoller_ScanOnce_FiresOncePerOccurrence(t *testing.T) {
	db := mocks.NewMemoryStore()
	db.PutTask(reminderTask(7, "Call mom", "2024-06-01", "09:00"))
	notifier := &mocks.MockNotifier{}
	p, clock := newTestPoller(t, db, notifier)
	sent := make(Sent)

	clock.Set(at(9, 0, 30))
	result := p.ScanOnce(context.Background(), sent)
	assert.Equal(t, 1, result.Fired)

	clock.Set(at(9, 1, 0))
	result = p.ScanOnce(context.Background(), sent)
	assert.Equal(t, 0, result.Fired)

	delivered := notifier.Delivered()
	require.Len(t, delivered, 1)
	assert.Equal(t, notify.Payload{
		ID:    "task-7-2024-06-01|09:00",
		Title: "Adeo Reminder",
		Body:  "Call mom",
	}, delivered[0])
	assert.Equal(t, "2024-06-01|09:00", sent[7])
}

func TestPoller_ScanOnce_Window(t *testing.T) {
	tests := []struct {
		name  string
		now   time.Time
		fired int
	}{
		{"not yet due", at(8, 59, 59), 0},
		{"exactly due", at(9, 0, 0), 1},
		{"at the edge of grace", at(9, 1, 0), 1},
		{"past grace", at(9, 1, 1), 0},
		{"hours late", at(14, 0, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := mocks.NewMemoryStore()
			db.PutTask(reminderTask(1, "Stretch", "2024-06-01", "09:00"))
			notifier := &mocks.MockNotifier{}
			p, clock := newTestPoller(t, db, notifier)

			clock.Set(tt.now)
			result := p.ScanOnce(context.Background(), make(Sent))

			assert.Equal(t, tt.fired, result.Fired)
			assert.Len(t, notifier.Delivered(), tt.fired)
		})
	}
}

func TestPoller_ScanOnce_StaleReminderNeverFires(t *testing.T) {
	db := mocks.NewMemoryStore()
	db.PutTask(reminderTask(1, "Old", "2024-06-01", "08:00"))
	notifier := &mocks.MockNotifier{}
	p, clock := newTestPoller(t, db, notifier)
	sent := make(Sent)

	for _, now := range []time.Time{at(9, 0, 0), at(9, 0, 30), at(9, 1, 0)} {
		clock.Set(now)
		p.ScanOnce(context.Background(), sent)
	}

	assert.Zero(t, notifier.Attempts())
}

func TestPoller_ScanOnce_EditedReminderFiresAgain(t *testing.T) {
	db := mocks.NewMemoryStore()
	db.PutTask(reminderTask(3, "Meeting", "2024-06-01", "09:00"))
	notifier := &mocks.MockNotifier{}
	p, clock := newTestPoller(t, db, notifier)
	sent := make(Sent)

	clock.Set(at(9, 0, 10))
	p.ScanOnce(context.Background(), sent)

	require.NoError(t, db.Tasks().UpdateReminder(context.Background(), 3,
		strPtr("2024-06-01"), strPtr("09:01")))

	clock.Set(at(9, 1, 5))
	result := p.ScanOnce(context.Background(), sent)
	assert.Equal(t, 1, result.Fired)

	delivered := notifier.Delivered()
	require.Len(t, delivered, 2)
	assert.Equal(t, "task-3-2024-06-01|09:01", delivered[1].ID)
}

func TestPoller_ScanOnce_RestoringOldReminderRearms(t *testing.T) {
	db := mocks.NewMemoryStore()
	db.PutTask(reminderTask(3, "Meeting", "2024-06-01", "09:00"))
	notifier := &mocks.MockNotifier{}
	p, clock := newTestPoller(t, db, notifier)
	sent := make(Sent)
	ctx := context.Background()

	clock.Set(at(9, 0, 10))
	p.ScanOnce(ctx, sent)

	require.NoError(t, db.Tasks().UpdateReminder(ctx, 3, strPtr("2024-06-02"), strPtr("09:00")))
	clock.Set(at(9, 0, 20))
	result := p.ScanOnce(ctx, sent)
	assert.Equal(t, 1, result.Evicted)
	assert.Empty(t, sent)

	require.NoError(t, db.Tasks().UpdateReminder(ctx, 3, strPtr("2024-06-01"), strPtr("09:00")))
	clock.Set(at(9, 0, 30))
	result = p.ScanOnce(ctx, sent)
	assert.Equal(t, 1, result.Fired)
	assert.Len(t, notifier.Delivered(), 2)
}

func TestPoller_ScanOnce_EvictsCompletedTasks(t *testing.T) {
	db := mocks.NewMemoryStore()
	db.PutTask(reminderTask(4, "Pay rent", "2024-06-01", "09:00"))
	p, clock := newTestPoller(t, db, &mocks.MockNotifier{})
	sent := make(Sent)
	ctx := context.Background()

	clock.Set(at(9, 0, 0))
	p.ScanOnce(ctx, sent)
	require.Contains(t, sent, int64(4))

	require.NoError(t, db.Tasks().SetDone(ctx, 4, true))
	result := p.ScanOnce(ctx, sent)

	assert.Equal(t, 0, result.Candidates)
	assert.Equal(t, 1, result.Evicted)
	assert.NotContains(t, sent, int64(4))
}

func TestPoller_ScanOnce_SinkFailureRetries(t *testing.T) {
	db := mocks.NewMemoryStore()
	db.PutTask(reminderTask(5, "Flaky", "2024-06-01", "09:00"))

	fail := true
	notifier := &mocks.MockNotifier{
		NotifyFn: func(ctx context.Context, p notify.Payload) error {
			if fail {
				return notify.ErrDeliveryFailed
			}
			return nil
		},
	}
	p, clock := newTestPoller(t, db, notifier)
	sent := make(Sent)

	clock.Set(at(9, 0, 0))
	result := p.ScanOnce(context.Background(), sent)
	assert.Equal(t, 1, result.Failed)
	assert.Empty(t, sent)

	fail = false
	clock.Set(at(9, 0, 30))
	result = p.ScanOnce(context.Background(), sent)
	assert.Equal(t, 1, result.Fired)

	assert.Equal(t, 2, notifier.Attempts())
	assert.Len(t, notifier.Delivered(), 1)
}

func TestPoller_ScanOnce_SinkFailureAfterGraceIsAbandoned(t *testing.T) {
	db := mocks.NewMemoryStore()
	db.PutTask(reminderTask(5, "Flaky", "2024-06-01", "09:00"))
	notifier := &mocks.MockNotifier{
		NotifyFn: func(ctx context.Context, p notify.Payload) error {
			return notify.ErrDeliveryFailed
		},
	}
	p, clock := newTestPoller(t, db, notifier)
	sent := make(Sent)

	clock.Set(at(9, 0, 40))
	p.ScanOnce(context.Background(), sent)
	clock.Set(at(9, 1, 10))
	p.ScanOnce(context.Background(), sent)

	assert.Equal(t, 1, notifier.Attempts())
}

func TestPoller_ScanOnce_NotifyTimeoutApplied(t *testing.T) {
	db := mocks.NewMemoryStore()
	db.PutTask(reminderTask(1, "Timed", "2024-06-01", "09:00"))

	var deadline time.Time
	var hasDeadline bool
	notifier := &mocks.MockNotifier{
		NotifyFn: func(ctx context.Context, p notify.Payload) error {
			deadline, hasDeadline = ctx.Deadline()
			return nil
		},
	}
	p, clock := newTestPoller(t, db, notifier)
	clock.Set(at(9, 0, 0))

	start := time.Now()
	p.ScanOnce(context.Background(), make(Sent))

	require.True(t, hasDeadline)
	assert.WithinDuration(t, start.Add(2*time.Second), deadline, time.Second)
}

func TestPoller_ScanOnce_EmptyTextUsesDefaultBody(t *testing.T) {
	db := mocks.NewMemoryStore()
	task := reminderTask(9, "", "2024-06-01", "09:00")
	db.PutTask(task)
	notifier := &mocks.MockNotifier{}
	p, clock := newTestPoller(t, db, notifier)

	clock.Set(at(9, 0, 0))
	p.ScanOnce(context.Background(), make(Sent))

	delivered := notifier.Delivered()
	require.Len(t, delivered, 1)
	assert.Equal(t, DefaultBody, delivered[0].Body)
}

func TestPoller_ScanOnce_UnparseableReminderSkipped(t *testing.T) {
	db := mocks.NewMemoryStore()
	db.PutTask(reminderTask(1, "Broken", "not-a-date", "09:00"))
	db.PutTask(reminderTask(2, "Fine", "2024-06-01", "09:00"))
	notifier := &mocks.MockNotifier{}
	p, clock := newTestPoller(t, db, notifier)

	clock.Set(at(9, 0, 0))
	result := p.ScanOnce(context.Background(), make(Sent))

	assert.Equal(t, 2, result.Candidates)
	assert.Equal(t, 1, result.Fired)
	require.Len(t, notifier.Delivered(), 1)
	assert.Equal(t, "Fine", notifier.Delivered()[0].Body)
}

func TestPoller_ScanOnce_StoreErrorKeepsSuppression(t *testing.T) {
	db := mocks.NewMemoryStore()
	db.PutTask(reminderTask(1, "Water", "2024-06-01", "09:00"))
	notifier := &mocks.MockNotifier{}
	p, clock := newTestPoller(t, db, notifier)
	sent := make(Sent)

	clock.Set(at(9, 0, 0))
	p.ScanOnce(context.Background(), sent)

	db.FindReminderCandidatesFn = func(ctx context.Context) ([]*domain.Task, error) {
		return nil, errors.New("database unavailable")
	}
	result := p.ScanOnce(context.Background(), sent)
	assert.Equal(t, ScanResult{}, result)
	assert.Contains(t, sent, int64(1))

	db.FindReminderCandidatesFn = nil
	clock.Set(at(9, 0, 30))
	p.ScanOnce(context.Background(), sent)
	assert.Len(t, notifier.Delivered(), 1)
}

func TestPoller_ScanOnce_UsesConfiguredLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)

	db := mocks.NewMemoryStore()
	db.PutTask(reminderTask(1, "Local", "2024-06-01", "09:00"))
	notifier := &mocks.MockNotifier{}

	cfg := DefaultConfig()
	cfg.Location = loc
	p := NewPoller(db.Tasks(), notifier, cfg, nil)
	// 07:00:10 UTC is 09:00:10 in UTC+2.
	p.SetClock(func() time.Time { return at(7, 0, 10) })

	result := p.ScanOnce(context.Background(), make(Sent))
	assert.Equal(t, 1, result.Fired)
}

func TestPoller_StartStop(t *testing.T) {
	db := mocks.NewMemoryStore()
	db.PutTask(reminderTask(7, "Call mom", "2024-06-01", "09:00"))

	fired := make(chan notify.Payload, 10)
	notifier := &mocks.MockNotifier{
		NotifyFn: func(ctx context.Context, p notify.Payload) error {
			fired <- p
			return nil
		},
	}

	cfg := DefaultConfig()
	cfg.Location = time.UTC
	cfg.PollInterval = 10 * time.Millisecond
	p := NewPoller(db.Tasks(), notifier, cfg, nil)
	p.SetClock(func() time.Time { return at(9, 0, 30) })

	require.NoError(t, p.Start(context.Background()))
	assert.ErrorIs(t, p.Start(context.Background()), ErrAlreadyStarted)

	select {
	case payload := <-fired:
		assert.Equal(t, "task-7-2024-06-01|09:00", payload.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("reminder was not delivered")
	}

	// Several more cycles run; none may deliver the same occurrence again.
	time.Sleep(50 * time.Millisecond)
	p.Stop()
	p.Stop()

	assert.Len(t, notifier.Delivered(), 1)
}

func TestPoller_StopsOnContextCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PollInterval = time.Hour
	p := NewPoller(mocks.NewMemoryStore().Tasks(), notify.Noop{}, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.Start(ctx))
	cancel()

	stopped := make(chan struct{})
	go func() {
		p.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestConfigFrom(t *testing.T) {
	cfg, err := ConfigFrom(configForTest("Europe/Berlin"))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 60*time.Second, cfg.GracePeriod)
	assert.Equal(t, 2*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, "Europe/Berlin", cfg.Location.String())

	_, err = ConfigFrom(configForTest("Not/AZone"))
	assert.Error(t, err)
}
