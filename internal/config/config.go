package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	LogFormat     string

	DatabaseURL               string
	DatabaseMaxConns          int
	DatabaseMinConns          int
	DatabaseHealthCheckPeriod time.Duration

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Identity & sessions
	SessionSecret            string
	SessionTTL               time.Duration
	RequireEmailVerification bool
	VerificationCodeTTL      time.Duration
	PasswordResetTTL         time.Duration
	BcryptCost               int
	AuthRateLimitRPS         float64
	AuthRateLimitBurst       int
	CORSAllowedOrigins       []string

	// LLM collaborator
	LLMProvider          string
	LLMSecondaryProvider string
	LLMAPIKey            string
	LLMBaseURL           string
	LLMModel             string
	LLMTimeout           time.Duration
	GeminiAPIKey         string
	GeminiModel          string
	BedrockModelID       string

	// Conversation engine
	LLMMaxRetries     int
	LLMRetryBaseDelay time.Duration
	HistoryLimit      int
	TurnLockTTL       time.Duration

	// Email delivery
	EmailProvider    string
	SendGridAPIKey   string
	EmailFromAddress string
	EmailFromName    string
	SMTPAddr         string
	SMTPUsername     string
	SMTPPassword     string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	ArchiveBucket       string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", "json")),

		DatabaseURL:               getEnv("DATABASE_URL", ""),
		DatabaseMaxConns:          getEnvAsInt("DATABASE_MAX_CONNS", 10),
		DatabaseMinConns:          getEnvAsInt("DATABASE_MIN_CONNS", 1),
		DatabaseHealthCheckPeriod: getEnvAsDuration("DATABASE_HEALTH_CHECK_PERIOD", time.Minute),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		SessionSecret:            getEnv("SESSION_SECRET", ""),
		SessionTTL:               getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		RequireEmailVerification: getEnvAsBool("REQUIRE_EMAIL_VERIFICATION", true),
		VerificationCodeTTL:      getEnvAsDuration("VERIFICATION_CODE_TTL", 15*time.Minute),
		PasswordResetTTL:         getEnvAsDuration("PASSWORD_RESET_TTL", time.Hour),
		BcryptCost:               getEnvAsInt("BCRYPT_COST", 12),
		AuthRateLimitRPS:         getEnvAsFloat("AUTH_RATE_LIMIT_RPS", 1),
		AuthRateLimitBurst:       getEnvAsInt("AUTH_RATE_LIMIT_BURST", 10),
		CORSAllowedOrigins:       getEnvAsList("CORS_ALLOWED_ORIGINS"),

		LLMProvider:          strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "groq"))),
		LLMSecondaryProvider: strings.ToLower(strings.TrimSpace(getEnv("LLM_SECONDARY_PROVIDER", ""))),
		LLMAPIKey:            getEnv("LLM_API_KEY", getEnv("GROQ_API_KEY", "")),
		LLMBaseURL:           getEnv("LLM_BASE_URL", ""),
		LLMModel:             getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
		LLMTimeout:           getEnvAsDuration("LLM_TIMEOUT", 20*time.Second),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		BedrockModelID:       getEnv("BEDROCK_MODEL_ID", ""),

		LLMMaxRetries:     getEnvAsInt("LLM_MAX_RETRIES", 3),
		LLMRetryBaseDelay: getEnvAsDuration("LLM_RETRY_BASE_DELAY", time.Second),
		HistoryLimit:      getEnvAsInt("HISTORY_LIMIT", 10),
		TurnLockTTL:       getEnvAsDuration("TURN_LOCK_TTL", 2*time.Minute),

		EmailProvider:    strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "auto"))),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Digital Lab"),
		SMTPAddr:         getEnv("SMTP_ADDR", ""),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		ArchiveBucket:       getEnv("ARCHIVE_BUCKET", ""),
	}
}

// IsProduction reports whether the service runs with production guards.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
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
func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
