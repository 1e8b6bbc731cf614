package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	Port     int    `env:"APP_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	FeedURL        string        `env:"FEED_URL" envDefault:"wss://stream.binance.com:9443/ws/btcusdt@trade"`
	ReconnectDelay time.Duration `env:"FEED_RECONNECT_SECONDS" envDefault:"5"`
	WindowSize     int           `env:"PRICE_WINDOW_SIZE" envDefault:"100"`
	WhaleThreshold float64       `env:"WHALE_VOLUME_THRESHOLD" envDefault:"50000"`

	StartingUSD float64 `env:"STARTING_BALANCE_USD" envDefault:"100000"`
	TradeAmount float64 `env:"TRADE_AMOUNT_BTC" envDefault:"0.1"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"trading_platform"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	RateLimitMaxCalls int           `env:"RATE_LIMIT_MAX_CALLS" envDefault:"10"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW_SECONDS" envDefault:"10"`

	TelegramToken  string        `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64         `env:"TELEGRAM_CHAT_ID"`
	AlertCooldown  time.Duration `env:"ALERT_COOLDOWN_SECONDS" envDefault:"300"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.Port = getEnvIntWithDefault("APP_PORT", 8080)
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")

	cfg.FeedURL = getEnvWithDefault("FEED_URL", "wss://stream.binance.com:9443/ws/btcusdt@trade")
	cfg.ReconnectDelay = time.Duration(getEnvIntWithDefault("FEED_RECONNECT_SECONDS", 5)) * time.Second
	cfg.WindowSize = getEnvIntWithDefault("PRICE_WINDOW_SIZE", 100)
	cfg.WhaleThreshold = getEnvFloatWithDefault("WHALE_VOLUME_THRESHOLD", 50000)

	cfg.StartingUSD = getEnvFloatWithDefault("STARTING_BALANCE_USD", 100000)
	cfg.TradeAmount = getEnvFloatWithDefault("TRADE_AMOUNT_BTC", 0.1)

	cfg.DBHost = getEnvWithDefault("DB_HOST", "localhost")
	cfg.DBPort = getEnvWithDefault("DB_PORT", "5432")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = getEnvWithDefault("DB_NAME", "trading_platform")
	cfg.DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")

	cfg.RedisAddr = getEnvWithDefault("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getEnvIntWithDefault("REDIS_DB", 0)

	cfg.RateLimitMaxCalls = getEnvIntWithDefault("RATE_LIMIT_MAX_CALLS", 10)
	cfg.RateLimitWindow = time.Duration(getEnvIntWithDefault("RATE_LIMIT_WINDOW_SECONDS", 10)) * time.Second

	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0)
	cfg.AlertCooldown = time.Duration(getEnvIntWithDefault("ALERT_COOLDOWN_SECONDS", 300)) * time.Second

	if cfg.WindowSize < 1 {
		return nil, fmt.Errorf("PRICE_WINDOW_SIZE must be at least 1, got %d", cfg.WindowSize)
	}
	if cfg.RateLimitMaxCalls < 1 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX_CALLS must be at least 1, got %d", cfg.RateLimitMaxCalls)
	}

	return &cfg, nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
