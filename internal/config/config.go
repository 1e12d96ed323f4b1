package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Session transport
	SessionBackend  string // "redis" or "memory"
	SessionTTL      time.Duration
	SessionMaxBytes int
	CookieSecure    bool

	// Response effectiveness store
	EffectivenessBackend        string // "file" or "redis"
	EffectivenessPath           string
	EffectivenessRetention      time.Duration
	EffectivenessSingleUseGrace time.Duration
	MaintenanceInterval         time.Duration

	// Text generation
	LLMProvider      string // "openai", "gemini", "bedrock" or "" to disable
	LLMModels        []string
	LLMTimeout       time.Duration
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	GeminiAPIKey     string
	AWSRegion        string
	AWSAccessKeyID   string
	AWSSecretKey     string
	AWSEndpoint      string
	IntentKeywordsOn bool

	// Calendar
	CalendarProvider    string // "google" or "memory"
	GoogleCredentials   string
	GoogleCalendarID    string
	CalendarTimeout     time.Duration
	ClinicTimezone      string
	PhonePrefix         string
	AvailabilityTTL     time.Duration
	SlotLockBackend     string // "redis" or "memory"
	SlotLockTTL         time.Duration
	AppointmentDuration time.Duration

	// Email
	EmailProvider     string // "sendgrid", "ses", "smtp" or "stub"
	EmailTimeout      time.Duration
	PsychologistEmail string
	SendGridAPIKey    string
	EmailFromAddress  string
	EmailFromName     string
	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPassword      string

	RateLimitRPS       float64
	RateLimitBurst     int
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		SessionBackend:  strings.ToLower(getEnv("SESSION_BACKEND", "memory")),
		SessionTTL:      getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		SessionMaxBytes: getEnvAsInt("SESSION_MAX_BYTES", 64*1024),
		CookieSecure:    getEnvAsBool("COOKIE_SECURE", false),

		EffectivenessBackend:        strings.ToLower(getEnv("EFFECTIVENESS_BACKEND", "file")),
		EffectivenessPath:           getEnv("EFFECTIVENESS_PATH", "data/response_effectiveness.json"),
		EffectivenessRetention:      getEnvAsDuration("EFFECTIVENESS_RETENTION", 30*24*time.Hour),
		EffectivenessSingleUseGrace: getEnvAsDuration("EFFECTIVENESS_SINGLE_USE_GRACE", 24*time.Hour),
		MaintenanceInterval:         getEnvAsDuration("MAINTENANCE_INTERVAL", 10*time.Minute),

		LLMProvider:      strings.ToLower(getEnv("LLM_PROVIDER", "")),
		LLMModels:        getEnvAsList("LLM_MODELS", nil),
		LLMTimeout:       getEnvAsDuration("LLM_TIMEOUT", 8*time.Second),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:   getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:     getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpoint:      getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		IntentKeywordsOn: getEnvAsBool("INTENT_KEYWORDS_ENABLED", false),

		CalendarProvider:    strings.ToLower(getEnv("CALENDAR_PROVIDER", "memory")),
		GoogleCredentials:   getEnv("GOOGLE_CALENDAR_CREDENTIALS", ""),
		GoogleCalendarID:    getEnv("GOOGLE_CALENDAR_ID", "primary"),
		CalendarTimeout:     getEnvAsDuration("CALENDAR_TIMEOUT", 10*time.Second),
		ClinicTimezone:      getEnv("CLINIC_TIMEZONE", "America/Guayaquil"),
		PhonePrefix:         getEnv("PHONE_PREFIX", "09"),
		AvailabilityTTL:     getEnvAsDuration("AVAILABILITY_CACHE_TTL", time.Minute),
		SlotLockBackend:     strings.ToLower(getEnv("SLOT_LOCK_BACKEND", "memory")),
		SlotLockTTL:         getEnvAsDuration("SLOT_LOCK_TTL", 30*time.Second),
		AppointmentDuration: getEnvAsDuration("APPOINTMENT_DURATION", time.Hour),

		EmailProvider:     strings.ToLower(getEnv("EMAIL_PROVIDER", "stub")),
		EmailTimeout:      getEnvAsDuration("EMAIL_TIMEOUT", 10*time.Second),
		PsychologistEmail: getEnv("PSYCHOLOGIST_EMAIL", ""),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		EmailFromAddress:  getEnv("EMAIL_FROM_ADDRESS", ""),
		EmailFromName:     getEnv("EMAIL_FROM_NAME", "Equilibra"),
		SMTPHost:          getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:          getEnvAsInt("SMTP_PORT", 465),
		SMTPUser:          getEnv("SMTP_USER", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),

		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 10),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
