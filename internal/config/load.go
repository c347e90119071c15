package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. ADEO_DATABASE_URL or ADEO_REMINDER_GRACE_PERIOD_SECONDS.
const EnvPrefix = "ADEO"

// Default values applied before config files and environment variables.
const (
	DefaultPort                 = 8000
	DefaultHost                 = "127.0.0.1"
	DefaultLogLevel             = "info"
	DefaultPollIntervalSeconds  = 30
	DefaultGracePeriodSeconds   = 60
	DefaultNotifyTimeoutSeconds = 2
	DefaultAgentHost            = "127.0.0.1"
	DefaultAgentPort            = 48623
	DefaultAgentPlatform        = "darwin"
	DefaultReminderTitle        = "Adeo Reminder"
)

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom behaves like Load but reads the given config file when path is
// non-empty. Without a path, config.yaml is looked up in the working
// directory and silently skipped when absent.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it during
// Unmarshal, including keys that have no meaningful default.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.log_level", DefaultLogLevel)
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)

	v.SetDefault("reminder.poll_interval_seconds", DefaultPollIntervalSeconds)
	v.SetDefault("reminder.grace_period_seconds", DefaultGracePeriodSeconds)
	v.SetDefault("reminder.notify_timeout_seconds", DefaultNotifyTimeoutSeconds)
	v.SetDefault("reminder.agent_host", DefaultAgentHost)
	v.SetDefault("reminder.agent_port", DefaultAgentPort)
	v.SetDefault("reminder.title", DefaultReminderTitle)
	v.SetDefault("reminder.platform", "")
	v.SetDefault("reminder.agent_platform", DefaultAgentPlatform)
	v.SetDefault("reminder.timezone", "")
}
