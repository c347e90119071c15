package domain

import (
	"strings"
	"time"
)

// Priority ranks a task. The zero value is not valid; use PriorityNone.
type Priority string

// Possible priority values
const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority validates a priority name.
func ParsePriority(value string) (Priority, error) {
	p := Priority(value)
	if !p.IsValid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// IsValid reports whether p is one of the known priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// CompletionState records whether a repeating task has already produced its
// successor. It moves from pending to completed_generated exactly once and
// never goes back, regardless of later done toggles.
type CompletionState string

// Possible completion states
const (
	CompletionPending   CompletionState = "pending"
	CompletionGenerated CompletionState = "completed_generated"
)

// IsValid reports whether s is a known completion state.
func (s CompletionState) IsValid() bool {
	return s == CompletionPending || s == CompletionGenerated
}

// Task is a single to-do item. Repeating tasks form a series: every instance
// spawned from the same original task shares SeriesID, which equals the ID of
// the first task in the chain.
type Task struct {
	ID       int64    `json:"id"`
	Text     string   `json:"text"`
	Details  string   `json:"details"`
	Done     bool     `json:"done"`
	Position int      `json:"position"`
	ListID   *int64   `json:"listId"`
	Priority Priority `json:"priority"`

	// Naive local reminder, no timezone.
	ReminderDate *string `json:"reminderDate"`
	ReminderTime *string `json:"reminderTime"`

	// RepeatRule is RFC 5545 RRULE text; RepeatStart is the anchor date.
	RepeatRule  *string `json:"repeatRule"`
	RepeatStart *string `json:"repeatStart"`
	SeriesID    *int64  `json:"seriesId"`

	CompletionState CompletionState `json:"-"`
	CompletedAt     *time.Time      `json:"-"`
	CreatedAt       time.Time       `json:"-"`
}

// NewTask creates a plain task created at now: not done, no reminder, no
// repeat rule. Position is assigned by the store. Returns ErrEmptyTaskText
// when text is blank after trimming.
func NewTask(text string, listID *int64, now time.Time) (*Task, error) {
	task := &Task{
		Text:            strings.TrimSpace(text),
		ListID:          listID,
		Priority:        PriorityNone,
		CompletionState: CompletionPending,
		CreatedAt:       now.UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Text) == "" {
		return ErrEmptyTaskText
	}

	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}

	if !t.CompletionState.IsValid() {
		return ErrInvalidCompletionState
	}

	if t.ReminderDate != nil {
		if err := ValidateDate(*t.ReminderDate); err != nil {
			return NewValidationError("reminderDate", "is invalid", err)
		}
	}

	if t.ReminderTime != nil {
		if err := ValidateTime(*t.ReminderTime); err != nil {
			return NewValidationError("reminderTime", "is invalid", err)
		}
	}

	if t.RepeatStart != nil {
		if err := ValidateDate(*t.RepeatStart); err != nil {
			return NewValidationError("repeatStart", "is invalid", err)
		}
	}

	return nil
}

// IsRepeating reports whether the task carries a recurrence rule.
func (t *Task) IsRepeating() bool {
	return t.RepeatRule != nil && strings.TrimSpace(*t.RepeatRule) != ""
}

// CanGenerateSuccessor reports whether completing this task should spawn the
// next instance of its series: it must repeat and must not have generated
// one already.
func (t *Task) CanGenerateSuccessor() bool {
	return t.IsRepeating() && t.CompletionState == CompletionPending && t.CompletedAt == nil
}

// SeriesRoot returns the series identifier for this task, falling back to
// its own ID for the first task of a chain.
func (t *Task) SeriesRoot() int64 {
	if t.SeriesID != nil {
		return *t.SeriesID
	}
	return t.ID
}

// Successor builds the next instance of the series. Text, details, list,
// priority, rule and anchor carry over; the reminder date moves to nextDate
// while the time-of-day stays exactly as it was.
func (t *Task) Successor(seriesID int64, nextDate string, position int, now time.Time) *Task {
	return &Task{
		Text:            t.Text,
		Details:         t.Details,
		Position:        position,
		ListID:          copyInt64(t.ListID),
		Priority:        t.Priority,
		ReminderDate:    &nextDate,
		ReminderTime:    copyString(t.ReminderTime),
		RepeatRule:      copyString(t.RepeatRule),
		RepeatStart:     copyString(t.RepeatStart),
		SeriesID:        &seriesID,
		CompletionState: CompletionPending,
		CreatedAt:       now.UTC(),
	}
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	c := *t
	c.ListID = copyInt64(t.ListID)
	c.ReminderDate = copyString(t.ReminderDate)
	c.ReminderTime = copyString(t.ReminderTime)
	c.RepeatRule = copyString(t.RepeatRule)
	c.RepeatStart = copyString(t.RepeatStart)
	c.SeriesID = copyInt64(t.SeriesID)
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyInt64(i *int64) *int64 {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
