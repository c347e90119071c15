package reminder

import (
	"fmt"
	"time"

	"github.com/adeotasks/adeo-api/internal/config"
)

// Config holds configuration for the reminder poller
type Config struct {
	// PollInterval is the pause between the end of one scan and the start of the next.
	PollInterval time.Duration

	// GracePeriod is the maximum lateness after which a due reminder is abandoned.
	GracePeriod time.Duration

	// NotifyTimeout bounds each call to the notifier.
	NotifyTimeout time.Duration

	// Title is the fixed notification title.
	Title string

	// Location is the zone the naive reminder date-times are interpreted in.
	Location *time.Location
}

// DefaultConfig returns a Config with the standard defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval:  config.DefaultPollIntervalSeconds * time.Second,
		GracePeriod:   config.DefaultGracePeriodSeconds * time.Second,
		NotifyTimeout: config.DefaultNotifyTimeoutSeconds * time.Second,
		Title:         config.DefaultReminderTitle,
		Location:      time.Local,
	}
}

// ConfigFrom converts the application configuration.
func ConfigFrom(cfg config.ReminderConfig) (Config, error) {
	c := Config{
		PollInterval:  time.Duration(cfg.PollIntervalSeconds) * time.Second,
		GracePeriod:   time.Duration(cfg.GracePeriodSeconds) * time.Second,
		NotifyTimeout: time.Duration(cfg.NotifyTimeoutSeconds) * time.Second,
		Title:         cfg.Title,
		Location:      time.Local,
	}

	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return Config{}, fmt.Errorf("invalid reminder timezone %q: %w", cfg.Timezone, err)
		}
		c.Location = loc
	}

	return c.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.GracePeriod < 0 {
		c.GracePeriod = d.GracePeriod
	}
	if c.NotifyTimeout <= 0 {
		c.NotifyTimeout = d.NotifyTimeout
	}
	if c.Title == "" {
		c.Title = d.Title
	}
	if c.Location == nil {
		c.Location = d.Location
	}
	return c
}
