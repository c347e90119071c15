package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/adeotasks/adeo-api/internal/domain"
	"github.com/adeotasks/adeo-api/internal/domain/recurrence"
	"github.com/adeotasks/adeo-api/internal/platform/logger"
	"github.com/adeotasks/adeo-api/internal/store"
)

// SeriesGenerator creates the next instance of a repeating task when the
// current one is completed.
type SeriesGenerator struct {
	evaluator recurrence.Evaluator
	location  *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

// NewSeriesGenerator creates a SeriesGenerator. loc is the zone used to
// derive "today" for tasks without a reminder date; nil means time.Local.
func NewSeriesGenerator(evaluator recurrence.Evaluator, loc *time.Location, log *slog.Logger) *SeriesGenerator {
	if evaluator == nil {
		evaluator = recurrence.NewEvaluator()
	}
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = slog.Default()
	}

	return &SeriesGenerator{
		evaluator: evaluator,
		location:  loc,
		now:       time.Now,
		logger:    log.With(slog.String("component", "series_generator")),
	}
}

// SetClock replaces the wall clock.
func (g *SeriesGenerator) SetClock(now func() time.Time) {
	g.now = now
}

// Complete records the completion of task and inserts its successor, if the
// rule yields one. task must have been read with GetByIDForUpdate through
// tasks, inside the same transaction.
//
// A nil successor with a nil error means the series ended: the rule is
// exhausted or could not be evaluated, or another completion already won.
func (g *SeriesGenerator) Complete(ctx context.Context, tasks store.TaskStore, task *domain.Task) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, g.logger).With(slog.Int64("task_id", task.ID))

	if !task.CanGenerateSuccessor() {
		return nil, nil
	}

	seriesID := task.SeriesRoot()
	if task.SeriesID == nil {
		if err := tasks.SetSeriesID(ctx, task.ID, seriesID); err != nil {
			return nil, fmt.Errorf("failed to anchor series: %w", err)
		}
	}

	now := g.now()
	if err := tasks.MarkCompletedGenerated(ctx, task.ID, now.UTC()); err != nil {
		if errors.Is(err, store.ErrAlreadyCompleted) {
			log.Debug("successor already generated")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to record completion: %w", err)
	}

	next, ok := g.nextDate(log, task, domain.ToNaive(now, g.location))
	if !ok {
		return nil, nil
	}

	position, err := tasks.MaxPosition(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read max position: %w", err)
	}

	successor := task.Successor(seriesID, next, position+1, now)
	if err := tasks.Create(ctx, successor); err != nil {
		return nil, fmt.Errorf("failed to create successor: %w", err)
	}

	log.Info("generated next task in series",
		slog.Int64("series_id", seriesID),
		slog.Int64("successor_id", successor.ID),
		slog.String("reminder_date", next))
	return successor, nil
}

// nextDate evaluates the rule and returns the successor's reminder date.
func (g *SeriesGenerator) nextDate(log *slog.Logger, task *domain.Task, today time.Time) (string, bool) {
	rule := *task.RepeatRule

	scheduled, err := task.ScheduledAt(today)
	if err != nil {
		log.Warn("cannot determine scheduled time, series ends", slog.String("error", err.Error()))
		return "", false
	}
	anchor, err := task.RecurrenceStart(today)
	if err != nil {
		log.Warn("cannot determine recurrence start, series ends", slog.String("error", err.Error()))
		return "", false
	}

	next, ok, err := g.evaluator.NextOccurrence(rule, anchor, scheduled)
	if err != nil {
		log.Warn("malformed repeat rule, series ends",
			slog.String("repeat_rule", rule),
			slog.String("error", err.Error()))
		return "", false
	}
	if !ok {
		log.Info("repeat rule exhausted, series ends", slog.String("repeat_rule", rule))
		return "", false
	}

	return next.Format(domain.DateLayout), true
}
