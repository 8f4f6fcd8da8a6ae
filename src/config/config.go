// Package config provides configuration management for the devmcp server.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Transports supported by the MCP server.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// DefaultEventsTopic is the topic build lifecycle events are published to.
const DefaultEventsTopic = "devmcp.build.events"

// Config holds the application configuration.
type Config struct {
	// Transport selects how the MCP server talks to clients ("stdio" or "http").
	Transport string `mapstructure:"transport"`
	// HTTPAddr is the listen address for the streamable HTTP transport.
	HTTPAddr string `mapstructure:"http_addr"`
	// WorkDir is the base directory for the project:// resources.
	WorkDir string `mapstructure:"workdir"`
	// LogLevel is "debug" or "info".
	LogLevel string `mapstructure:"log_level"`
	// RedpandaBrokers enables build event publishing when non-empty.
	RedpandaBrokers []string `mapstructure:"-"`
	// EventsTopic is the topic for build events.
	EventsTopic string `mapstructure:"events_topic"`
	// PostgresDSN enables mirroring the last build result into Postgres.
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"transport":        "DEVMCP_TRANSPORT",
	"http_addr":        "DEVMCP_HTTP_ADDR",
	"workdir":          "DEVMCP_WORKDIR",
	"log_level":        "LOG_LEVEL",
	"redpanda_brokers": "REDPANDA_BROKERS",
	"events_topic":     "DEVMCP_EVENTS_TOPIC",
	"postgres_dsn":     "POSTGRES_DSN",
}

// LoadFromEnv loads configuration from defaults, an optional devmcp.yaml in the
// working directory and environment variables.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

// Load loads configuration, reading configFile when given instead of searching
// for devmcp.yaml. Environment variables always win over file values.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("devmcp")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetDefault("transport", TransportStdio)
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("workdir", ".")
	v.SetDefault("log_level", "info")
	v.SetDefault("redpanda_brokers", "")
	v.SetDefault("events_topic", DefaultEventsTopic)
	v.SetDefault("postgres_dsn", "")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	cfg.RedpandaBrokers = splitList(v.GetString("redpanda_brokers"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for unsupported values.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportStdio:
	case TransportHTTP:
		if c.HTTPAddr == "" {
			return fmt.Errorf("DEVMCP_HTTP_ADDR is required for the http transport")
		}
	default:
		return fmt.Errorf("unsupported transport %q (want %q or %q)", c.Transport, TransportStdio, TransportHTTP)
	}
	if len(c.RedpandaBrokers) > 0 && c.EventsTopic == "" {
		return fmt.Errorf("DEVMCP_EVENTS_TOPIC must not be empty when REDPANDA_BROKERS is set")
	}
	return nil
}

// EventsEnabled reports whether build events should be published to Redpanda.
func (c *Config) EventsEnabled() bool {
	return len(c.RedpandaBrokers) > 0
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
