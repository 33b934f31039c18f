package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "LISTEN_ADDR", "QUERY_TIMEOUT", "SEARCH_CACHE_TTL", "SUGGEST_CACHE_TTL", "CACHE_BACKEND", "SESSION_BACKEND", "REDIS_URL", "SESSION_TTL", "SEED_DEMO"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 3*time.Second, cfg.QueryTimeout)
	assert.Equal(t, 300*time.Second, cfg.SearchCacheTTL)
	assert.Equal(t, 60*time.Second, cfg.SuggestCacheTTL)
	assert.Equal(t, "memory", cfg.CacheBackend)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.SeedDemo)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("QUERY_TIMEOUT", "750ms")
	t.Setenv("SEARCH_CACHE_TTL", "120")
	t.Setenv("SESSION_BACKEND", "PEBBLE")
	t.Setenv("SEED_DEMO", "yes")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, cfg.QueryTimeout)
	assert.Equal(t, 120*time.Second, cfg.SearchCacheTTL)
	assert.Equal(t, "pebble", cfg.SessionBackend)
	assert.True(t, cfg.SeedDemo)
}

func TestLoad_RedisBackendNeedsURL(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "REDIS_URL")
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "memcached")

	_, err := Load()
	assert.Error(t, err)
}
