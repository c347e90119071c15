package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Reminder ReminderConfig `mapstructure:"reminder" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// ShutdownTimeoutSeconds bounds graceful HTTP shutdown.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gt=0"`
}

// ReminderConfig controls the background reminder poller and the local
// notification agent it talks to.
type ReminderConfig struct {
	PollIntervalSeconds  int    `mapstructure:"poll_interval_seconds" validate:"gt=0"`
	GracePeriodSeconds   int    `mapstructure:"grace_period_seconds" validate:"gte=0"`
	NotifyTimeoutSeconds int    `mapstructure:"notify_timeout_seconds" validate:"gt=0"`
	AgentHost            string `mapstructure:"agent_host" validate:"required"`
	AgentPort            int    `mapstructure:"agent_port" validate:"gt=0,lt=65536"`
	Title                string `mapstructure:"title" validate:"required"`

	// Platform overrides the detected GOOS when deciding whether the
	// notification agent is available. Empty means runtime.GOOS.
	Platform string `mapstructure:"platform"`

	// AgentPlatform is the only platform on which the agent exists.
	AgentPlatform string `mapstructure:"agent_platform" validate:"required"`

	// Timezone names the IANA zone reminders are evaluated in. Empty means
	// the process local zone.
	Timezone string `mapstructure:"timezone" validate:"omitempty,timezone"`
}
