package domain

import (
	"fmt"
	"strings"
	"time"
)

// Layouts for the naive date and time-of-day strings stored on a task.
const (
	DateLayout        = "2006-01-02"
	TimeLayout        = "15:04"
	TimeLayoutSeconds = "15:04:05"
)

// ValidateDate checks a YYYY-MM-DD date string.
func ValidateDate(value string) error {
	if _, err := time.Parse(DateLayout, value); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// ValidateTime checks an HH:MM or HH:MM:SS time-of-day string.
func ValidateTime(value string) error {
	if _, err := parseClock(value); err != nil {
		return ErrInvalidTime
	}
	return nil
}

func parseClock(value string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(TimeLayoutSeconds, value)
}

// NaiveDateTime combines a date and a time-of-day into a wall-clock value.
// The result is expressed in time.UTC purely as a carrier; it has no
// timezone meaning.
func NaiveDateTime(date, clock string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	c, err := parseClock(clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, clock)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, time.UTC), nil
}

// ToNaive drops the location of t, keeping the wall clock it shows in loc.
func ToNaive(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// OccurrenceKey identifies one scheduled firing of a reminder.
func OccurrenceKey(date, clock string) string {
	return date + "|" + clock
}

// HasReminder reports whether both reminder date and time are set.
func (t *Task) HasReminder() bool {
	return t.ReminderDate != nil && t.ReminderTime != nil
}

// ReminderKey returns the occurrence key for the task's current reminder.
func (t *Task) ReminderKey() (string, bool) {
	if !t.HasReminder() {
		return "", false
	}
	return OccurrenceKey(*t.ReminderDate, *t.ReminderTime), true
}

// ReminderAt returns the naive date-time the reminder is due.
func (t *Task) ReminderAt() (time.Time, error) {
	if !t.HasReminder() {
		return time.Time{}, fmt.Errorf("%w: task %d has no reminder", ErrValidation, t.ID)
	}
	return NaiveDateTime(*t.ReminderDate, *t.ReminderTime)
}

// ScheduledAt is the instance's own scheduled time, used as the reference
// when computing the next occurrence. The date is the reminder date, else
// the recurrence anchor, else today's date; the time is the reminder time,
// else midnight.
func (t *Task) ScheduledAt(today time.Time) (time.Time, error) {
	date := today.Format(DateLayout)
	switch {
	case nonEmpty(t.ReminderDate):
		date = *t.ReminderDate
	case nonEmpty(t.RepeatStart):
		date = *t.RepeatStart
	}
	return NaiveDateTime(date, t.clockOrMidnight())
}

// RecurrenceStart is the DTSTART a rule is evaluated from. It is the
// instance's scheduled time, except for COUNT-bounded rules with an anchor
// date: those start at the anchor date and the instance's time-of-day so the
// count covers the whole series rather than restarting at every instance.
func (t *Task) RecurrenceStart(today time.Time) (time.Time, error) {
	if nonEmpty(t.RepeatStart) && t.isCountBounded() {
		return NaiveDateTime(*t.RepeatStart, t.clockOrMidnight())
	}
	return t.ScheduledAt(today)
}

// isCountBounded reports whether the repeat rule carries a COUNT part.
func (t *Task) isCountBounded() bool {
	if !t.IsRepeating() {
		return false
	}
	rule := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(*t.RepeatRule)), "RRULE:")
	for part := range strings.SplitSeq(rule, ";") {
		key, _, _ := strings.Cut(part, "=")
		if strings.TrimSpace(key) == "COUNT" {
			return true
		}
	}
	return false
}

func (t *Task) clockOrMidnight() string {
	if nonEmpty(t.ReminderTime) {
		return *t.ReminderTime
	}
	return "00:00"
}

func nonEmpty(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// NormalizeOptional turns a blank optional string into nil and trims the rest.
func NormalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
