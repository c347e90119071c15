package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/adeotasks/adeo-api/internal/domain"
	"github.com/adeotasks/adeo-api/internal/notify"
	"github.com/adeotasks/adeo-api/internal/platform/logger"
	"github.com/google/uuid"
)

// ErrAlreadyStarted is returned by Start when the poller is running.
var ErrAlreadyStarted = errors.New("reminder poller already started")

// DefaultBody is the notification body used when a task has no text.
const DefaultBody = "Task reminder"

// CandidateSource yields tasks that may have a due reminder: undone, with
// both reminder date and time set. store.TaskStore satisfies it.
type CandidateSource interface {
	FindReminderCandidates(ctx context.Context) ([]*domain.Task, error)
}

// Sent maps a task id to the occurrence key last delivered for it.
type Sent map[int64]string

// ScanResult summarizes one scan cycle.
type ScanResult struct {
	Candidates int
	Fired      int
	Failed     int
	Evicted    int
}

// Poller periodically scans for due reminders and delivers them.
type Poller struct {
	source   CandidateSource
	notifier notify.Notifier
	config   Config
	logger   *slog.Logger
	now      func() time.Time

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	done       chan struct{}
}

// NewPoller creates a new Poller. Zero config fields fall back to DefaultConfig.
func NewPoller(source CandidateSource, notifier notify.Notifier, cfg Config, log *slog.Logger) *Poller {
	if log == nil {
		log = slog.Default()
	}

	return &Poller{
		source:   source,
		notifier: notifier,
		config:   cfg.withDefaults(),
		logger:   log.With(slog.String("component", "reminder_poller")),
		now:      time.Now,
	}
}

// SetClock replaces the wall clock. It must be called before Start.
func (p *Poller) SetClock(now func() time.Time) {
	p.now = now
}

// Config returns the effective configuration.
func (p *Poller) Config() Config {
	return p.config
}

// Start launches the poll loop in its own goroutine. The loop ends when ctx
// is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancelFunc = cancel
	p.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		p.Run(ctx)
	}(p.done)

	return nil
}

// Stop signals the loop to exit and waits for the scan in flight to finish.
// It is safe to call Stop on a poller that was never started.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancelFunc, p.done
	p.cancelFunc, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Run scans immediately, then once per poll interval, until ctx is done.
// The suppression state lives only in this goroutine.
func (p *Poller) Run(ctx context.Context) {
	sent := make(Sent)

	p.logger.Info("reminder poller started",
		slog.Duration("poll_interval", p.config.PollInterval),
		slog.Duration("grace_period", p.config.GracePeriod))

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("reminder poller stopped")
			return

		case <-timer.C:
			// A scan is never interrupted by shutdown; only the wait is.
			p.ScanOnce(context.WithoutCancel(ctx), sent)
			timer.Reset(p.config.PollInterval)
		}
	}
}

// ScanOnce runs a single scan cycle against sent, which it updates in
// place. It must not be called concurrently with the same map.
func (p *Poller) ScanOnce(ctx context.Context, sent Sent) ScanResult {
	log := logger.FromContextOrDefault(ctx, p.logger).With(
		slog.String("scan_id", uuid.NewString()))
	ctx = logger.WithLogger(ctx, log)

	var result ScanResult

	tasks, err := p.source.FindReminderCandidates(ctx)
	if err != nil {
		log.Error("failed to load reminder candidates", slog.String("error", err.Error()))
		return result
	}
	result.Candidates = len(tasks)

	now := domain.ToNaive(p.now(), p.config.Location)
	active := make(map[int64]string, len(tasks))

	for _, task := range tasks {
		key, ok := task.ReminderKey()
		if !ok {
			continue
		}
		active[task.ID] = key

		scheduled, err := task.ReminderAt()
		if err != nil {
			log.Warn("skipping task with unparseable reminder",
				slog.Int64("task_id", task.ID),
				slog.String("occurrence_key", key),
				slog.String("error", err.Error()))
			continue
		}

		delta := now.Sub(scheduled)
		alreadySent := sent[task.ID] == key
		log.Debug("evaluated reminder",
			slog.Int64("task_id", task.ID),
			slog.String("occurrence_key", key),
			slog.Duration("delta", delta),
			slog.Bool("notified", alreadySent))

		if delta < 0 || delta > p.config.GracePeriod || alreadySent {
			continue
		}

		if err := p.deliver(ctx, task, key); err != nil {
			result.Failed++
			log.Error("failed to deliver reminder",
				slog.Int64("task_id", task.ID),
				slog.String("occurrence_key", key),
				slog.String("error", err.Error()))
			continue
		}

		sent[task.ID] = key
		result.Fired++
		log.Info("reminder delivered",
			slog.Int64("task_id", task.ID),
			slog.String("occurrence_key", key))
	}

	for id, key := range sent {
		if active[id] != key {
			delete(sent, id)
			result.Evicted++
		}
	}

	return result
}

func (p *Poller) deliver(ctx context.Context, task *domain.Task, key string) error {
	ctx, cancel := context.WithTimeout(ctx, p.config.NotifyTimeout)
	defer cancel()

	return p.notifier.Notify(ctx, Payload(task, key, p.config.Title))
}

// Payload builds the notification for one reminder occurrence.
func Payload(task *domain.Task, key, title string) notify.Payload {
	body := task.Text
	if body == "" {
		body = DefaultBody
	}

	return notify.Payload{
		ID:    fmt.Sprintf("task-%d-%s", task.ID, key),
		Title: title,
		Body:  body,
	}
}
