package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from the environment.
// It is passed explicitly into every component that needs it.
type Config struct {
	Port      int
	LogLevel  string
	Env       string
	DB        DBConfig
	Telegram  TelegramConfig
	Kafka     KafkaConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

// DBConfig holds the database configuration
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// TelegramConfig holds the bot credentials and notification target.
// Notifications are disabled when BotToken is empty.
type TelegramConfig struct {
	BotToken string
	ChatID   int64
	// CountryCode is prefixed to phone numbers supplied without one.
	CountryCode string
}

// KafkaConfig holds the order event stream configuration. Publishing is
// disabled when Brokers is empty.
type KafkaConfig struct {
	Brokers     []string
	OrdersTopic string
}

// CORSConfig holds the allowed origins for the storefront and admin UIs
type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig holds the per-IP rate limiter settings
type RateLimitConfig struct {
	IPMaxTokens       float64
	IPRefillRate      float64
	TrustForwardedFor bool
}

// Enabled reports whether Telegram notifications are configured.
func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && c.ChatID != 0
}

// Enabled reports whether Kafka publishing is configured.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// getEnv retrieves the value of an environment variable or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

// Load reads the configuration from environment variables. A .env file in
// the working directory is applied first when present.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))

	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))

	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	var chatID int64
	if v := getEnv("TELEGRAM_CHAT_ID", ""); v != "" {
		chatID, err = strconv.ParseInt(v, 10, 64)

		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
	}

	ipMaxTokens, err := strconv.ParseFloat(getEnv("RATE_LIMIT_IP_MAX_TOKENS", "60"), 64)

	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_IP_MAX_TOKENS: %w", err)
	}

	ipRefillRate, err := strconv.ParseFloat(getEnv("RATE_LIMIT_IP_REFILL_RATE", "10"), 64)

	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_IP_REFILL_RATE: %w", err)
	}

	return &Config{
		Port:     port,
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Env:      getEnv("APP_ENV", "development"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "lessha"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Telegram: TelegramConfig{
			BotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:      chatID,
			CountryCode: getEnv("TELEGRAM_PHONE_COUNTRY_CODE", "+53"),
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(getEnv("KAFKA_BROKERS", "")),
			OrdersTopic: getEnv("KAFKA_ORDERS_TOPIC", "shop.orders"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		RateLimit: RateLimitConfig{
			IPMaxTokens:       ipMaxTokens,
			IPRefillRate:      ipRefillRate,
			TrustForwardedFor: getEnv("RATE_LIMIT_TRUST_FORWARDED_FOR", "false") == "true",
		},
	}, nil
}

// GetDBConnString returns the database connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name, c.DB.SSLMode)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}
