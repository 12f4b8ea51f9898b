// Package config provides Viper-based configuration loading for the
// space server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds the HTTP/WebSocket listener settings.
type ServerConfig struct {
	// Host is the bind address for the listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the listener.
	Port int `mapstructure:"port"`
	// ReadTimeout bounds reading a request, including the upgrade.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout bounds writing a plain HTTP response. WebSocket
	// connections take over the deadline management after the upgrade.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// IdleTimeout bounds keep-alive idle time for plain HTTP.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RoomConfig holds the per-room-instance tuning.
type RoomConfig struct {
	// TickInterval is the replication cadence. ~16ms targets 60 Hz.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// QueueSize is the inbound command buffer per instance.
	QueueSize int `mapstructure:"queue_size"`
	// SendBuffer is the per-connection outbound buffer; messages past a
	// full buffer are dropped rather than blocking the room.
	SendBuffer int `mapstructure:"send_buffer"`
	// MaxClients caps concurrent participants per space. Enforced at the
	// transport layer before the upgrade; the room core never rejects.
	MaxClients int `mapstructure:"max_clients"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// EnvironmentsConfig points at the optional environment catalog file.
type EnvironmentsConfig struct {
	// CatalogPath is a YAML catalog file; empty selects the built-in set.
	CatalogPath string `mapstructure:"catalog_path"`
}

// Config is the top-level application configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Room         RoomConfig         `mapstructure:"room"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Environments EnvironmentsConfig `mapstructure:"environments"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRoom(c.Room); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Host == "" {
		errs = append(errs, "server.host must not be empty")
	}
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", s.Port))
	}
	if s.ReadTimeout < 0 {
		errs = append(errs, "server.read_timeout must not be negative")
	}
	if s.WriteTimeout < 0 {
		errs = append(errs, "server.write_timeout must not be negative")
	}
	if s.IdleTimeout < 0 {
		errs = append(errs, "server.idle_timeout must not be negative")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateRoom(r RoomConfig) error {
	var errs []string
	if r.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("room.tick_interval must be > 0, got %s", r.TickInterval))
	}
	if r.QueueSize < 1 {
		errs = append(errs, fmt.Sprintf("room.queue_size must be >= 1, got %d", r.QueueSize))
	}
	if r.SendBuffer < 1 {
		errs = append(errs, fmt.Sprintf("room.send_buffer must be >= 1, got %d", r.SendBuffer))
	}
	if r.MaxClients < 1 {
		errs = append(errs, fmt.Sprintf("room.max_clients must be >= 1, got %d", r.MaxClients))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// setDefaults applies the defaults for every tunable.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 2567)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	v.SetDefault("room.tick_interval", 16*time.Millisecond)
	v.SetDefault("room.queue_size", 256)
	v.SetDefault("room.send_buffer", 64)
	v.SetDefault("room.max_clients", 32)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with NEXUS_ prefix
	v.SetEnvPrefix("NEXUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Defaults returns the configuration produced by the defaults alone,
// without reading any file. Useful for tests and the dev server.
func Defaults() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: unmarshalling defaults: %v", err))
	}
	return cfg
}
