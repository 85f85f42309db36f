package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"PORT", "DB_PATH", "STATIC_PATH", "JWT_SECRET", "TOKEN_TTL",
	"LOG_LEVEL", "LOG_FORMAT", "FETCH_TIMEOUT", "FETCH_MAX_BYTES",
	"OWNER_CACHE_SIZE", "OWNER_CACHE_TTL",
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("JWT_SECRET", "s3cret")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, ":8080", cfg.Addr())
		assert.Equal(t, "./data/karkkilista.db", cfg.DBPath)
		assert.Equal(t, "./static", cfg.StaticPath)
		assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Zero(t, cfg.FetchTimeout, "no fetch timeout by default")
		assert.Equal(t, int64(5<<20), cfg.FetchMaxBytes)
		assert.Equal(t, 1024, cfg.OwnerCacheSize)
		assert.Equal(t, 10*time.Minute, cfg.OwnerCacheTTL)
	})

	t.Run("from environment", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("PORT", "3000")
		t.Setenv("DB_PATH", "/var/lib/karkki.db")
		t.Setenv("TOKEN_TTL", "12h")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("LOG_FORMAT", "json")
		t.Setenv("FETCH_TIMEOUT", "15s")
		t.Setenv("FETCH_MAX_BYTES", "1024")
		t.Setenv("OWNER_CACHE_SIZE", "10")
		t.Setenv("OWNER_CACHE_TTL", "1m")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, "/var/lib/karkki.db", cfg.DBPath)
		assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
		assert.Equal(t, int64(1024), cfg.FetchMaxBytes)
		assert.Equal(t, 10, cfg.OwnerCacheSize)
		assert.Equal(t, time.Minute, cfg.OwnerCacheTTL)
	})

	errorCases := []struct {
		name    string
		env     map[string]string
		message string
	}{
		{"missing secret", map[string]string{}, "JWT_SECRET"},
		{"bad port", map[string]string{"JWT_SECRET": "x", "PORT": "abc"}, "PORT"},
		{"port out of range", map[string]string{"JWT_SECRET": "x", "PORT": "70000"}, "PORT"},
		{"bad ttl", map[string]string{"JWT_SECRET": "x", "TOKEN_TTL": "forever"}, "TOKEN_TTL"},
		{"negative timeout", map[string]string{"JWT_SECRET": "x", "FETCH_TIMEOUT": "-1s"}, "FETCH_TIMEOUT"},
		{"zero body cap", map[string]string{"JWT_SECRET": "x", "FETCH_MAX_BYTES": "0"}, "FETCH_MAX_BYTES"},
		{"unknown log format", map[string]string{"JWT_SECRET": "x", "LOG_FORMAT": "xml"}, "LOG_FORMAT"},
	}

	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
