package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, ModeDegraded, cfg.Analysis.Mode)
	assert.Equal(t, 3, cfg.Analysis.Concurrency)
	assert.Equal(t, 1, cfg.Analysis.RetryMaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Analysis.RetryInitialDelay)
	assert.Equal(t, int64(10485760), cfg.Storage.MaxFileSize)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.InDelta(t, 0.3, float64(cfg.Gemini.Temperature), 0.0001)
	assert.False(t, cfg.Qdrant.Enabled())
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ANALYSIS_MODE", " STRICT ")
	t.Setenv("ANALYSIS_CONCURRENCY", "5")
	t.Setenv("RETRY_INITIAL_DELAY", "250ms")
	t.Setenv("GEMINI_API_KEY", "  secret  ")
	t.Setenv("QDRANT_URL", "http://localhost:6334")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REDIS_CACHE_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, ModeStrict, cfg.Analysis.Mode)
	assert.Equal(t, 5, cfg.Analysis.Concurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.Analysis.RetryInitialDelay)
	assert.Equal(t, "secret", cfg.Gemini.APIKey)
	assert.True(t, cfg.Qdrant.Enabled())
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, time.Hour, cfg.Redis.CacheTTL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Run("mode", func(t *testing.T) {
		t.Setenv("ANALYSIS_MODE", "lenient")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ANALYSIS_MODE")
	})

	t.Run("concurrency", func(t *testing.T) {
		t.Setenv("ANALYSIS_CONCURRENCY", "0")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ANALYSIS_CONCURRENCY")
	})
}

func TestAllowedOrigins(t *testing.T) {
	s := ServerConfig{CORSOrigins: " http://a.test , ,http://b.test"}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, s.AllowedOrigins())
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n"}}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.GetDatabaseDSN())
}
