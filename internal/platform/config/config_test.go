package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, env(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, BackendMemory, cfg.Backend.Kind)
	assert.Equal(t, 20, cfg.Keys.HistoryLimit)
	assert.False(t, cfg.Keys.AtomicConfirm)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
	assert.Equal(t, "http://localhost:8080", cfg.SiteURL)
	assert.Equal(t, "Europe/Paris", cfg.Location().String())
	assert.Equal(t, SignIn{Attempts: 5, Window: 15 * time.Minute, LockFor: 15 * time.Minute}, cfg.SignIn)
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orcs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
site_url: https://orcs.example.org/
server:
  addr: ":9000"
keys:
  history_limit: 5
session:
  idle_ttl: 10m
sign_in:
  attempts: 3
`), 0o600))

	t.Run("file overrides defaults", func(t *testing.T) {
		cfg, err := Load([]string{"--config", path}, env(nil))
		require.NoError(t, err)
		assert.Equal(t, ":9000", cfg.Server.Addr)
		assert.Equal(t, 5, cfg.Keys.HistoryLimit)
		assert.Equal(t, 10*time.Minute, cfg.Session.IdleTTL)
		assert.Equal(t, "https://orcs.example.org", cfg.SiteURL)
		assert.Equal(t, 3, cfg.SignIn.Attempts)
		assert.Equal(t, 15*time.Minute, cfg.SignIn.Window)
	})

	t.Run("env overrides file", func(t *testing.T) {
		cfg, err := Load(nil, env(map[string]string{
			"ORCS_CONFIG":              path,
			"ORCS_ADDR":                ":9100",
			"ORCS_KEYS_ATOMIC_CONFIRM": "true",
			"ORCS_TRUSTED_PROXIES":     "10.0.0.0/8,192.168.0.0/16",
			"ORCS_SIGNIN_LOCK_FOR":     "1h",
		}))
		require.NoError(t, err)
		assert.Equal(t, []string{"10.0.0.0/8", "192.168.0.0/16"}, cfg.Server.TrustedProxies)
		assert.Equal(t, ":9100", cfg.Server.Addr)
		assert.True(t, cfg.Keys.AtomicConfirm)
		assert.Equal(t, 5, cfg.Keys.HistoryLimit)
		assert.Equal(t, time.Hour, cfg.SignIn.LockFor)
	})

	t.Run("flags override env", func(t *testing.T) {
		cfg, err := Load([]string{"--config", path, "--addr", ":9200", "--keys-history-limit", "7"},
			env(map[string]string{"ORCS_ADDR": ":9100"}))
		require.NoError(t, err)
		assert.Equal(t, ":9200", cfg.Server.Addr)
		assert.Equal(t, 7, cfg.Keys.HistoryLimit)
	})
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want string
	}{
		{"rest without url", []string{"--backend", "rest"}, nil, "backend url is required"},
		{"unknown backend", []string{"--backend", "sqlite"}, nil, `unknown backend "sqlite"`},
		{"memory in production", []string{"--env", "production"}, nil, "not allowed in production"},
		{"bad duration", nil, map[string]string{"ORCS_SESSION_IDLE_TTL": "soon"}, "ORCS_SESSION_IDLE_TTL"},
		{"bad flag", []string{"--nope"}, nil, "unknown flag"},
		{"zero sign-in attempts", nil, map[string]string{"ORCS_SIGNIN_ATTEMPTS": "0"}, "sign-in attempts"},
		{"unknown timezone", []string{"--timezone", "Mars/Olympus"}, nil, "timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args, env(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load([]string{"--config", "/nonexistent/orcs.yaml"}, env(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}
