// Package config provides environment configuration for the relay server.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// Relay settings
	HeartbeatInterval time.Duration
	ReceiveTimeout    time.Duration

	// LLM settings
	OpenAIAPIKey    string
	AnthropicAPIKey string
	DefaultLLM      string
	Model           string

	// Assistant identity
	AssistantName string

	// Communication-history backend
	BackendURL string

	// Call platform API (call records and summaries)
	CallAPIURL        string
	CallAPIKey        string
	SummaryMaxRetries uint64
	SummaryRetryWait  time.Duration

	// Tool backends
	PlacesAPIURL    string
	PlacesAPIKey    string
	PropertyAPI1URL string
	PropertyAPI1Key string
	PropertyAPI2URL string
	PropertyAPI2Key string

	// NATS settings (optional lifecycle event publishing)
	NATSURL   string
	NATSToken string

	// JWT settings
	JWTSecret string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		// Relay
		HeartbeatInterval: getDurationEnv("HEARTBEAT_INTERVAL", 20*time.Second),
		ReceiveTimeout:    getDurationEnv("RECEIVE_TIMEOUT", 30*time.Second),

		// LLM
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		DefaultLLM:      getEnv("DEFAULT_LLM", "openai"),
		Model:           getEnv("LLM_MODEL", "gpt-4o"),

		// Assistant
		AssistantName: getEnv("ASSISTANT_NAME", "Drew"),

		// Backend
		BackendURL: getEnv("BACKEND_URL", "http://localhost:5000"),

		// Call platform
		CallAPIURL:        getEnv("CALL_API_URL", "https://api.retellai.com"),
		CallAPIKey:        getEnv("CALL_API_KEY", ""),
		SummaryMaxRetries: uint64(getIntEnv("SUMMARY_MAX_RETRIES", 3)),
		SummaryRetryWait:  getDurationEnv("SUMMARY_RETRY_WAIT", 2*time.Second),

		// Tool backends
		PlacesAPIURL:    getEnv("PLACES_API_URL", "https://google-map-places.p.rapidapi.com"),
		PlacesAPIKey:    getEnv("PLACES_API_KEY", ""),
		PropertyAPI1URL: getEnv("PROPERTY_API1_URL", "https://zillow-com1.p.rapidapi.com"),
		PropertyAPI1Key: getEnv("PROPERTY_API1_KEY", ""),
		PropertyAPI2URL: getEnv("PROPERTY_API2_URL", "https://zillow56.p.rapidapi.com"),
		PropertyAPI2Key: getEnv("PROPERTY_API2_KEY", ""),

		// NATS
		NATSURL:   getEnv("NATS_URL", ""),
		NATSToken: getEnv("NATS_TOKEN", ""),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "development-secret-change-in-production"),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
