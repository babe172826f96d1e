package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_NAME", "")
	t.Setenv("FETCH_RETRY_ATTEMPTS", "")
	t.Setenv("REALTIME_DEBOUNCE", "")

	cfg := Load()

	assert.Equal(t, "linkhood", cfg.DBName)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, 3, cfg.FetchRetryAttempts)
	assert.Equal(t, time.Second, cfg.FetchRetryDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.RealtimeDebounce)
	assert.True(t, cfg.RequireEmailConfirmation)
	assert.Equal(t, 5*1024*1024, cfg.MaxUploadBytes)
	assert.Equal(t, "https://linkhooddk.netlify.app", cfg.PublicAppURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FETCH_RETRY_ATTEMPTS", "5")
	t.Setenv("FETCH_RETRY_DELAY", "250ms")
	t.Setenv("REQUIRE_EMAIL_CONFIRMATION", "false")
	t.Setenv("PUBLIC_APP_URL", "https://example.org/")

	cfg := Load()

	assert.Equal(t, 5, cfg.FetchRetryAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.FetchRetryDelay)
	assert.False(t, cfg.RequireEmailConfirmation)
	assert.Equal(t, "https://example.org", cfg.PublicAppURL)
}

func TestParsers_FallBackOnGarbage(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.True(t, parseBool("maybe", true))
	assert.Equal(t, 7, parseInt("-3", 7))
	assert.Equal(t, 7, parseInt("x", 7))
}

func TestURL(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.URL())
}
