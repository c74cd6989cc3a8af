package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	RemoteModeBackend = "backend"
	RemoteModeDirect  = "direct"
)

type Config struct {
	APIURL             string
	RemoteMode         string
	OpenAIAPIKey       string
	OpenAIModel        string
	TelegramToken      string
	TelegramWebhookURL string
	ServerPort         string
	LogLevel           string
	CacheSweepInterval time.Duration
	RemoteTimeout      time.Duration
	SingleFlight       bool
	ProcessingInterval time.Duration
	DigestSize         int
	SentRetention      time.Duration
	TopicsFile         string
	TranslateWorkers   int
}

// Load reads configuration from the environment. Values in a .env file in
// the working directory are used for variables that are not already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		APIURL:             getEnv("SYNCVIEW_API_URL", "http://localhost:8000"),
		RemoteMode:         strings.ToLower(getEnv("REMOTE_MODE", RemoteModeBackend)),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", ""),
		TelegramToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramWebhookURL: getEnv("TELEGRAM_WEBHOOK_URL", ""),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CacheSweepInterval: getEnvAsDuration("CACHE_SWEEP_INTERVAL", 5*time.Minute),
		RemoteTimeout:      getEnvAsDuration("REMOTE_TIMEOUT", 30*time.Second),
		SingleFlight:       getEnvAsBool("SINGLE_FLIGHT", false),
		ProcessingInterval: getEnvAsDuration("PROCESSING_INTERVAL", 10*time.Minute),
		DigestSize:         getEnvAsInt("DIGEST_SIZE", 3),
		SentRetention:      getEnvAsDuration("SENT_RETENTION", 48*time.Hour),
		TopicsFile:         getEnv("TOPICS_FILE", ""),
		TranslateWorkers:   getEnvAsInt("TRANSLATE_WORKERS", 5),
	}
}

func (c *Config) Validate() error {
	switch c.RemoteMode {
	case RemoteModeBackend:
		if c.APIURL == "" {
			return fmt.Errorf("SYNCVIEW_API_URL is required in %s mode", RemoteModeBackend)
		}
	case RemoteModeDirect:
	default:
		return fmt.Errorf("invalid REMOTE_MODE %q: must be %s or %s", c.RemoteMode, RemoteModeBackend, RemoteModeDirect)
	}

	if c.DigestSize <= 0 {
		return fmt.Errorf("DIGEST_SIZE must be positive, got %d", c.DigestSize)
	}
	if c.TranslateWorkers <= 0 {
		return fmt.Errorf("TRANSLATE_WORKERS must be positive, got %d", c.TranslateWorkers)
	}

	return nil
}

// TelegramEnabled reports whether both a bot token and a webhook URL are set.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramWebhookURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
