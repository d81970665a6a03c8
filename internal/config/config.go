// Package config loads server settings from defaults, an optional YAML file,
// INVENTAR_* environment variables and command-line overrides, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key when reading the environment.
const EnvPrefix = "INVENTAR"

// Config holds the server settings.
type Config struct {
	DB                string        `mapstructure:"db"`
	Addr              string        `mapstructure:"addr"`
	AdminUser         string        `mapstructure:"admin_user"`
	Log               string        `mapstructure:"log"`
	LogLevel          string        `mapstructure:"log_level"`
	TokenExpiry       time.Duration `mapstructure:"token_expiry"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
	RejectedRetention time.Duration `mapstructure:"rejected_retention"`
	ApprovedRetention time.Duration `mapstructure:"approved_retention"`
}

var defaults = map[string]any{
	"db":                 "inventar.sqlite3",
	"addr":               ":8080",
	"admin_user":         "Admin",
	"log":                "",
	"log_level":          "info",
	"token_expiry":       "168h",
	"sweep_interval":     "24h",
	"rejected_retention": "72h",
	"approved_retention": "120h",
}

// Load builds the configuration. file may be empty; overrides holds values
// set explicitly on the command line, keyed like the config file.
func Load(file string, overrides map[string]any) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	for key, value := range overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DB) == "" {
		errs = append(errs, errors.New("db is required"))
	}
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if strings.TrimSpace(c.AdminUser) == "" {
		errs = append(errs, errors.New("admin_user is required"))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	for name, d := range map[string]time.Duration{
		"token_expiry":       c.TokenExpiry,
		"sweep_interval":     c.SweepInterval,
		"rejected_retention": c.RejectedRetention,
		"approved_retention": c.ApprovedRetention,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	return errors.Join(errs...)
}

// Level returns the configured log level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: unknown level %q", c.LogLevel)
	}
	return level, nil
}
