package domain

import (
	"strings"
	"time"
)

// List groups tasks. Deleting a list deletes its tasks.
type List struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"-"`
}

// NewList creates a list with a trimmed, non-empty name.
func NewList(name string) (*List, error) {
	list := &List{
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now().UTC(),
	}

	if err := list.Validate(); err != nil {
		return nil, err
	}

	return list, nil
}

// Validate checks if the List has valid data.
func (l *List) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return ErrEmptyListName
	}
	return nil
}

// NormalizeListName trims name and rejects it when empty.
func NormalizeListName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrEmptyListName
	}
	return trimmed, nil
}
