package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/adeotasks/adeo-api/internal/config"
)

// ErrDeliveryFailed is returned when the agent could not be reached or
// rejected the notification.
var ErrDeliveryFailed = errors.New("notification delivery failed")

// Payload is the notification document sent to the agent.
type Payload struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Notifier delivers a single notification.
type Notifier interface {
	// Notify sends p. Implementations must honour ctx cancellation.
	Notify(ctx context.Context, p Payload) error

	// Enabled reports whether notifications can be delivered at all on this host.
	Enabled() bool
}

// Noop discards notifications. It is used on hosts without an agent.
type Noop struct{}

var _ Notifier = Noop{}

// Notify implements Notifier.
func (Noop) Notify(context.Context, Payload) error { return nil }

// Enabled implements Notifier.
func (Noop) Enabled() bool { return false }

// ForPlatform returns the agent client when goos matches the configured
// agent platform, and Noop otherwise.
func ForPlatform(cfg config.ReminderConfig, goos string, logger *slog.Logger) Notifier {
	if logger == nil {
		logger = slog.Default()
	}

	platform := cfg.Platform
	if platform == "" {
		platform = goos
	}
	agentPlatform := cfg.AgentPlatform
	if agentPlatform == "" {
		agentPlatform = config.DefaultAgentPlatform
	}

	if platform != agentPlatform {
		logger.Info("notification agent not available on this platform",
			slog.String("component", "notify"),
			slog.String("platform", platform),
			slog.String("agent_platform", agentPlatform))
		return Noop{}
	}

	return NewAgentClient(cfg.AgentHost, cfg.AgentPort,
		time.Duration(cfg.NotifyTimeoutSeconds)*time.Second, logger)
}
