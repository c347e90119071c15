package mocks

import (
	"context"
	"sync"

	"github.com/adeotasks/adeo-api/internal/notify"
)

// MockNotifier implements notify.Notifier for testing
type MockNotifier struct {
	// Custom behavior function
	NotifyFn func(ctx context.Context, p notify.Payload) error

	// Disabled makes Enabled report false.
	Disabled bool

	mu        sync.Mutex
	delivered []notify.Payload
	attempts  int
}

var _ notify.Notifier = (*MockNotifier)(nil)

// Notify implements notify.Notifier. Payloads are recorded only when the
// call succeeds.
func (m *MockNotifier) Notify(ctx context.Context, p notify.Payload) error {
	m.mu.Lock()
	m.attempts++
	m.mu.Unlock()

	if m.NotifyFn != nil {
		if err := m.NotifyFn(ctx, p); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.delivered = append(m.delivered, p)
	m.mu.Unlock()
	return nil
}

// Enabled implements notify.Notifier.
func (m *MockNotifier) Enabled() bool { return !m.Disabled }

// Delivered returns a copy of every successfully delivered payload.
func (m *MockNotifier) Delivered() []notify.Payload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Payload(nil), m.delivered...)
}

// Attempts returns the number of Notify calls, successful or not.
func (m *MockNotifier) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}
