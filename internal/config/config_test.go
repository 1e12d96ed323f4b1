package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LLM_MODELS", "")
	t.Setenv("PHONE_PREFIX", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.ClinicTimezone != "America/Guayaquil" {
		t.Fatalf("expected default clinic timezone, got %s", cfg.ClinicTimezone)
	}
	if cfg.PhonePrefix != "09" {
		t.Fatalf("expected default phone prefix, got %s", cfg.PhonePrefix)
	}
	if cfg.AvailabilityTTL != time.Minute {
		t.Fatalf("expected default availability ttl, got %s", cfg.AvailabilityTTL)
	}
	assert.Empty(t, cfg.LLMModels)
	assert.False(t, cfg.IntentKeywordsOn)
	assert.Equal(t, "memory", cfg.CalendarProvider)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LLM_MODELS", " gpt-4o , ,gpt-4o-mini")
	t.Setenv("INTENT_KEYWORDS_ENABLED", "true")
	t.Setenv("AVAILABILITY_CACHE_TTL", "90s")
	t.Setenv("SESSION_MAX_BYTES", "2048")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("EFFECTIVENESS_BACKEND", "REDIS")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://equilibra.example, http://localhost:3000")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini"}, cfg.LLMModels)
	assert.True(t, cfg.IntentKeywordsOn)
	assert.Equal(t, 90*time.Second, cfg.AvailabilityTTL)
	assert.Equal(t, 2048, cfg.SessionMaxBytes)
	assert.InDelta(t, 0.5, cfg.RateLimitRPS, 1e-9)
	assert.Equal(t, "redis", cfg.EffectivenessBackend)
	assert.Equal(t, []string{"https://equilibra.example", "http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "tomorrow")
	t.Setenv("SMTP_PORT", "abc")
	cfg := Load()
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 465, cfg.SMTPPort)
}
