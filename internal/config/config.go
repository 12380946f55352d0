package config

import (
	"fmt"
	"os"
	"time"
)

// Store backend identifiers, selected once at startup via STORE_BACKEND.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	Port         string
	StoreBackend string
	DBConn       string
	LogLevel     string

	JWTSecret string
	TokenTTL  time.Duration

	GoogleAPIKey      string
	HuggingFaceAPIKey string
	OpenAIAPIKey      string

	GeminiURL       string
	HuggingFaceURL  string
	OpenAIURL       string
	ProviderTimeout time.Duration
	ProbeSchedule   string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		StoreBackend: getEnv("STORE_BACKEND", StorePostgres),
		DBConn:       getEnv("DB_CONN", "host=localhost port=5432 user=chat password=chat dbname=chat sslmode=disable"),
		LogLevel:     getEnv("LOG_LEVEL", "INFO"),

		// No default secret: a known signing key is worse than refusing to start.
		JWTSecret: os.Getenv("JWT_SECRET"),

		GoogleAPIKey:      os.Getenv("GOOGLE_API_KEY"),
		HuggingFaceAPIKey: os.Getenv("HUGGINGFACE_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),

		GeminiURL:      getEnv("GEMINI_URL", "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"),
		HuggingFaceURL: getEnv("HUGGINGFACE_URL", "https://api-inference.huggingface.co/models/microsoft/DialoGPT-medium"),
		OpenAIURL:      getEnv("OPENAI_URL", "https://api.openai.com/v1/chat/completions"),
		ProbeSchedule:  getEnv("PROBE_SCHEDULE", "@every 10m"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SenderEmail:  getEnv("SENDER_EMAIL", "noreply@chat-service.local"),
	}

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	cfg.TokenTTL = ttl

	timeout, err := time.ParseDuration(getEnv("PROVIDER_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_TIMEOUT: %w", err)
	}
	cfg.ProviderTimeout = timeout

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.StoreBackend {
	case StorePostgres:
		if cfg.DBConn == "" {
			return nil, fmt.Errorf("DB_CONN is required for the postgres backend")
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
