package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DOCSTORE_DRIVER", "COUNTRY_DETECT_TIMEOUT", "DEFAULT_COUNTRY", "CONTACT_RATE_PER_MINUTE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "mongo", cfg.DocstoreDriver)
	assert.Equal(t, 3*time.Second, cfg.CountryDetectTimeout)
	assert.Equal(t, "GB", cfg.DefaultCountry)
	assert.Equal(t, 5, cfg.ContactRatePerMinute)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DOCSTORE_DRIVER", "Firestore")
	t.Setenv("API_BASE_URL", "https://api.example.com/")
	t.Setenv("DEFAULT_COUNTRY", "ng")
	t.Setenv("REDIS_DB", "2")

	cfg := Load()

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "firestore", cfg.DocstoreDriver)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, "NG", cfg.DefaultCountry)
	assert.Equal(t, 2, cfg.RedisDB)
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("X_DURATION", "3000")
	assert.Equal(t, 3*time.Second, GetEnvDuration("X_DURATION", time.Second))

	t.Setenv("X_DURATION", "250ms")
	assert.Equal(t, 250*time.Millisecond, GetEnvDuration("X_DURATION", time.Second))

	t.Setenv("X_DURATION", "soon")
	assert.Equal(t, time.Second, GetEnvDuration("X_DURATION", time.Second))
}

func TestGetEnvIntAndBool(t *testing.T) {
	t.Setenv("X_INT", "nope")
	assert.Equal(t, 7, GetEnvInt("X_INT", 7))

	t.Setenv("X_BOOL", "true")
	assert.True(t, GetEnvBool("X_BOOL", false))

	t.Setenv("X_BOOL", "maybe")
	assert.False(t, GetEnvBool("X_BOOL", false))
}
