package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
listen: ":9090"
log:
  level: debug
session:
  backend: redis
  ttl: 30m
  redis:
    address: redis.internal:6379
    distributed_lock: true
storage:
  backend: postgres
  postgres:
    dsn: postgres://localhost/vicinity?sslmode=disable
    migrate: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.True(t, cfg.Session.Redis.DistributedLock)
	assert.Equal(t, "postgres", cfg.Storage.Backend)
	assert.True(t, cfg.Storage.Postgres.Migrate)
	// Untouched sections keep their defaults.
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, "session:\n  backend: etcd\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown session backend")
}

func TestLoadRequiresPostgresDSN(t *testing.T) {
	path := writeConfig(t, "storage:\n  backend: postgres\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "dsn is required")
}

func TestEncryptionKeyValidation(t *testing.T) {
	good := base64.StdEncoding.EncodeToString(make([]byte, 32))
	path := writeConfig(t, "session:\n  encryption_key: "+good+"\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	key, err := cfg.ActiveEncryptionKey()
	require.NoError(t, err)
	assert.Len(t, key, 32)

	short := base64.StdEncoding.EncodeToString([]byte("too-short"))
	path = writeConfig(t, "session:\n  encryption_key: "+short+"\n")
	_, err = Load(path)
	assert.ErrorContains(t, err, "32 bytes")
}
