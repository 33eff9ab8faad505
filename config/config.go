/*
config.go - Application configuration

PURPOSE:
  Loads server configuration from an optional YAML file with environment
  variable overrides. All settings have working defaults so the server
  can start with no config file at all.

PRECEDENCE (highest wins):
  1. Environment variables (prefix EXPENSE_, e.g. EXPENSE_SERVER_PORT)
  2. Config file (config.yaml in the working directory, or -config flag)
  3. Built-in defaults

SEE ALSO:
  - cmd/server/main.go: Startup wiring
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SweeperConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	IntervalHours int  `mapstructure:"interval_hours"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Sweeper  SweeperConfig  `mapstructure:"sweeper"`
}

// TokenTTL returns the configured JWT lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.ExpireHours) * time.Hour
}

// SweepInterval returns how often the overdue sweeper runs.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Sweeper.IntervalHours) * time.Hour
}

// Load reads configuration from the given file path. If path is empty,
// it looks for config.yaml in the working directory; a missing file is
// not an error, defaults and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("database.path", "expenses.db")
	v.SetDefault("jwt.secret", "dev-secret-change-me")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("sweeper.enabled", true)
	v.SetDefault("sweeper.interval_hours", 1)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. EXPENSE_JWT_SECRET=...
	v.SetEnvPrefix("EXPENSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
