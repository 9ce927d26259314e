package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DBUrl             string
	JWTSecret         string
	AppEnv            string
	EnableDocs        bool
	GatewayBaseURL    string
	OAuthTokenURL     string
	SearchAPIURL      string
	ChatRetryAttempts int
	ChatRetryDelay    time.Duration
	MessageFetchLimit int
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		DBUrl:             getEnv("DB_URL", ""),
		JWTSecret:         jwtSecret,
		AppEnv:            normalizeEnv(getEnv("APP_ENV", "production")),
		EnableDocs:        getEnvBool("ENABLE_API_DOCS", false),
		GatewayBaseURL:    getEnv("GATEWAY_BASE_URL", "https://gate.whapi.cloud"),
		OAuthTokenURL:     getEnv("OAUTH_TOKEN_URL", "https://services.leadconnectorhq.com/oauth/token"),
		SearchAPIURL:      getEnv("SEARCH_API_URL", "https://services.leadconnectorhq.com/conversations/search"),
		ChatRetryAttempts: getEnvInt("CHAT_RETRY_ATTEMPTS", 3),
		ChatRetryDelay:    time.Duration(getEnvInt("CHAT_RETRY_DELAY_MS", 500)) * time.Millisecond,
		MessageFetchLimit: getEnvInt("MESSAGE_FETCH_LIMIT", 100),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func (c *Config) DocsEnabled() bool {
	return c != nil && c.EnableDocs && c.AppEnv == "development"
}
