package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoadConfigFromDefaults(t *testing.T) {
	cfg, err := LoadConfigFrom(lookupFrom(map[string]string{"JWT_SECRET": testSecret}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./expensetracker.db", cfg.DatabasePath)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTokenExpiry)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxUploadSizeBytes)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.AMQPURL)
	assert.Equal(t, "purchases", cfg.AMQPRoutingPrefix)
}

func TestLoadConfigFromOverrides(t *testing.T) {
	cfg, err := LoadConfigFrom(lookupFrom(map[string]string{
		"JWT_SECRET":            testSecret,
		"PORT":                  "9000",
		"ACCESS_TOKEN_EXPIRY":   "30m",
		"MAX_UPLOAD_SIZE_BYTES": "1024",
		"ALLOWED_ORIGINS":       "https://a.example, ,https://b.example",
		"RATE_LIMIT_BURST":      "not-a-number",
		"STATS_CACHE_TTL":       "bogus",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, int64(1024), cfg.MaxUploadSizeBytes)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 30, cfg.RateLimitBurst)
	assert.Equal(t, 5*time.Minute, cfg.StatsCacheTTL)
}

func TestLoadConfigFromRejectsWeakSecret(t *testing.T) {
	_, err := LoadConfigFrom(lookupFrom(map[string]string{}))
	assert.Error(t, err)

	_, err = LoadConfigFrom(lookupFrom(map[string]string{"JWT_SECRET": "short"}))
	assert.ErrorContains(t, err, "at least 32")
}
