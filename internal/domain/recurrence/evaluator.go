package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// ErrInvalidRule is returned when rule text cannot be parsed.
var ErrInvalidRule = errors.New("invalid recurrence rule")

// Evaluator defines the interface for recurrence rule operations
type Evaluator interface {
	// NextOccurrence returns the earliest occurrence of rule, started at
	// anchor, that is strictly after reference. ok is false when the rule
	// has no further occurrences. A malformed rule yields ErrInvalidRule.
	NextOccurrence(rule string, anchor, reference time.Time) (next time.Time, ok bool, err error)

	// Validate reports whether rule parses.
	Validate(rule string) error
}

// rruleEvaluator is the standard implementation of the Evaluator interface
type rruleEvaluator struct{}

// NewEvaluator creates an Evaluator backed by rrule-go.
func NewEvaluator() Evaluator {
	return rruleEvaluator{}
}

// NextOccurrence implements Evaluator.
func (rruleEvaluator) NextOccurrence(rule string, anchor, reference time.Time) (time.Time, bool, error) {
	opt, err := parseOption(rule)
	if err != nil {
		return time.Time{}, false, err
	}

	opt.Dtstart = naive(anchor)
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}

	next := r.After(naive(reference), false)
	if next.IsZero() {
		return time.Time{}, false, nil
	}
	return next, true, nil
}

// Validate implements Evaluator.
func (rruleEvaluator) Validate(rule string) error {
	opt, err := parseOption(rule)
	if err != nil {
		return err
	}
	opt.Dtstart = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := rrule.NewRRule(*opt); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	return nil
}

// NextOccurrence evaluates with the default evaluator.
func NextOccurrence(rule string, anchor, reference time.Time) (time.Time, bool, error) {
	return NewEvaluator().NextOccurrence(rule, anchor, reference)
}

func parseOption(rule string) (*rrule.ROption, error) {
	text := normalize(rule)
	if text == "" {
		return nil, fmt.Errorf("%w: empty rule", ErrInvalidRule)
	}
	if !strings.Contains(strings.ToUpper(text), "FREQ=") {
		return nil, fmt.Errorf("%w: FREQ is required", ErrInvalidRule)
	}

	opt, err := rrule.StrToROptionInLocation(text, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	return opt, nil
}

// normalize strips an optional RRULE: prefix and surrounding whitespace.
func normalize(rule string) string {
	text := strings.TrimSpace(rule)
	if len(text) >= len("RRULE:") && strings.EqualFold(text[:len("RRULE:")], "RRULE:") {
		text = strings.TrimSpace(text[len("RRULE:"):])
	}
	return text
}

// naive re-expresses t's wall clock in UTC so rule evaluation never crosses
// a DST transition.
func naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
