// Package config loads the server configuration from YAML with sensible
// defaults, so `vicinity serve` works out of the box on memory backends.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level server configuration.
type Config struct {
	Listen  string        `yaml:"listen"`
	Log     LogConfig     `yaml:"log"`
	Session SessionConfig `yaml:"session"`
	Storage StorageConfig `yaml:"storage"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// SessionConfig selects and tunes the session backend.
type SessionConfig struct {
	// Backend is "memory" or "redis".
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis"`

	// TTL expires abandoned wizard sessions; zero keeps them forever.
	TTL time.Duration `yaml:"ttl"`

	// EncryptionKey encrypts step data at rest when set. Base64-encoded
	// 32 bytes. FallbackKeys allow zero-downtime rotation.
	EncryptionKey string   `yaml:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys"`
}

// RedisConfig holds connection details for the redis backend.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// DistributedLock serializes session writes across instances.
	DistributedLock bool `yaml:"distributed_lock"`
}

// StorageConfig selects and tunes the listing backend.
type StorageConfig struct {
	// Backend is "memory" or "postgres".
	Backend  string         `yaml:"backend"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds connection details for the postgres backend.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
	// Migrate applies pending schema migrations on startup.
	Migrate bool `yaml:"migrate"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the zero-config setup: memory backends, text logs at info.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Session: SessionConfig{
			Backend: "memory",
			Redis: RedisConfig{
				Address: "localhost:6379",
			},
		},
		Storage: StorageConfig{
			Backend: "memory",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	switch c.Storage.Backend {
	case "memory", "postgres":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == "postgres" && c.Storage.Postgres.DSN == "" {
		return fmt.Errorf("storage.postgres.dsn is required for the postgres backend")
	}
	if c.Session.EncryptionKey != "" {
		if _, err := c.ActiveEncryptionKey(); err != nil {
			return err
		}
	}
	return nil
}

// ActiveEncryptionKey decodes the configured key.
func (c *Config) ActiveEncryptionKey() ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(c.Session.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("session.encryption_key is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("session.encryption_key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// FallbackEncryptionKeys decodes the rotation fallbacks.
func (c *Config) FallbackEncryptionKeys() ([][]byte, error) {
	keys := make([][]byte, 0, len(c.Session.FallbackKeys))
	for i, encoded := range c.Session.FallbackKeys {
		key, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("session.fallback_keys[%d] is not valid base64: %w", i, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}
