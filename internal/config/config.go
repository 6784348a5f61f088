// Package config defines the ambient process configuration for the decision
// core: where the parameter file lives, how often it is polled, and the
// audit log and in-memory capacity settings (spec §6, "Configuration
// (env-style)"). Unlike the parameter document itself (internal/paramstore),
// this is process-level wiring the operator sets once at startup.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level ambient configuration, sourced from environment
// variables under the CORE_ prefix (e.g. CORE_PARAMS_PATH), with an
// optional YAML file for local overrides.
type Config struct {
	ParamsPath           string        `mapstructure:"params_path"`
	ParamsPollMs         int           `mapstructure:"params_poll_ms"`
	AuditEnabled         bool          `mapstructure:"audit_enabled"`
	AuditPath            string        `mapstructure:"audit_path"`
	HistoryCapacity      int           `mapstructure:"history_capacity"`
	RecentTradesCapacity int           `mapstructure:"recent_trades_capacity"`
	Logging              LoggingConfig `mapstructure:"logging"`
}

// PollInterval converts ParamsPollMs (spec §6's PARAMS_POLL_MS, milliseconds
// on the wire) to the time.Duration internal/paramstore polls on.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.ParamsPollMs) * time.Millisecond
}

// LoggingConfig controls the ambient slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional YAML file at path (skipped if
// absent) with CORE_* environment variable overrides (spec §6 defaults
// applied via viper.SetDefault so a bare environment produces a usable
// configuration).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("params_path", "watch_bot_analyzer/output/params_latest.json")
	v.SetDefault("params_poll_ms", 3000)
	v.SetDefault("audit_enabled", false)
	v.SetDefault("audit_path", "logs/parity_debug.jsonl")
	v.SetDefault("history_capacity", 1000)
	v.SetDefault("recent_trades_capacity", 100)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks value ranges the core relies on to avoid degenerate
// behavior (e.g. a zero poll interval spinning the reload loop).
func (c *Config) Validate() error {
	if c.ParamsPath == "" {
		return fmt.Errorf("params_path is required")
	}
	if c.ParamsPollMs <= 0 {
		return fmt.Errorf("params_poll_ms must be > 0")
	}
	if c.HistoryCapacity <= 0 {
		return fmt.Errorf("history_capacity must be > 0")
	}
	if c.RecentTradesCapacity <= 0 {
		return fmt.Errorf("recent_trades_capacity must be > 0")
	}
	if c.AuditEnabled && c.AuditPath == "" {
		return fmt.Errorf("audit_path is required when audit_enabled is true")
	}
	return nil
}
