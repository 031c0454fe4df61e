package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":3333", cfg.Addr)
	assert.Equal(t, ":9999", cfg.DiagAddr)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "memory", cfg.Likes.Driver)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TTL)
	assert.Equal(t, int64(10<<20), cfg.Uploads.MaxBytes)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Routes)
}

func TestLoadFlagsAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FOLIO_STORE_DRIVER", "postgres")
	t.Setenv("FOLIO_STORE_DSN", "postgres://folio@localhost/folio")
	t.Setenv("FOLIO_AUTH_TTL", "30m")
	t.Setenv("FOLIO_ADDR", ":1111")

	cfg, err := Load([]string{"--addr", ":4000", "--routes", "--import", "dump.json"})
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.Addr)
	assert.True(t, cfg.Routes)
	assert.Equal(t, "dump.json", cfg.Import)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://folio@localhost/folio", cfg.Store.DSN)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TTL)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	file := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
likes:
  driver: redis
  redis_url: redis://localhost:6379/0
auth:
  email: admin@example.com
  password_hash: $2a$10$abcdefghijklmnopqrstuv
log:
  development: true
`), 0o600))

	cfg, err := Load([]string{"--config", file})
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Likes.Driver)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Likes.RedisURL)
	assert.Equal(t, "admin@example.com", cfg.Auth.Email)
	assert.True(t, cfg.Log.Development)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without dsn", map[string]string{"FOLIO_STORE_DRIVER": "postgres"}},
		{"unknown store", map[string]string{"FOLIO_STORE_DRIVER": "firestore"}},
		{"redis without url", map[string]string{"FOLIO_LIKES_DRIVER": "redis"}},
		{"operator without hash", map[string]string{"FOLIO_AUTH_EMAIL": "admin@example.com"}},
		{"zero ttl", map[string]string{"FOLIO_AUTH_TTL": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(nil)
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsUnknownFlag(t *testing.T) {
	_, err := Load([]string{"--nope"})
	assert.Error(t, err)
}
