package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPPort         string
	TelegramBotToken string
	DatabaseURL      string
	RedisURL         string
	APIKey           string

	OpenAIAPIKey string
	OpenAIModel  string

	ForecastTrainPeriod  string
	ForecastRecentPeriod string
	ForecastInterval     string
	ForecastHorizonDays  int
	ForecastMinRows      int
	ForecastModelTTL     time.Duration

	PollSymbols  []string
	PollInterval int
}

func Load() *Config {
	cfg := &Config{
		HTTPPort:         os.Getenv("HTTP_PORT"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		APIKey:           os.Getenv("API_KEY"),
	}

	if cfg.HTTPPort == "" {
		cfg.HTTPPort = "8080"
	}
	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set, bot disabled")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set, warm store disabled")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, advisor will be disabled")
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.ForecastTrainPeriod = envOr("FORECAST_TRAIN_PERIOD", "2y")
	cfg.ForecastRecentPeriod = envOr("FORECAST_RECENT_PERIOD", "6mo")
	cfg.ForecastInterval = envOr("FORECAST_INTERVAL", "1d")

	cfg.ForecastHorizonDays = 1
	if v := strings.TrimSpace(os.Getenv("FORECAST_HORIZON_DAYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ForecastHorizonDays = n
		}
	}

	cfg.ForecastMinRows = 50
	if v := strings.TrimSpace(os.Getenv("FORECAST_MIN_ROWS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ForecastMinRows = n
		}
	}

	cfg.ForecastModelTTL = 24 * time.Hour
	if v := strings.TrimSpace(os.Getenv("FORECAST_MODEL_TTL_HOURS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ForecastModelTTL = time.Duration(n) * time.Hour
		}
	}

	if v := strings.TrimSpace(os.Getenv("FORECAST_POLL_SYMBOLS")); v != "" {
		for _, symbol := range strings.Split(v, ",") {
			symbol = strings.ToUpper(strings.TrimSpace(symbol))
			if symbol != "" {
				cfg.PollSymbols = append(cfg.PollSymbols, symbol)
			}
		}
	}

	cfg.PollInterval = 3600
	if v := strings.TrimSpace(os.Getenv("FORECAST_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollInterval = n
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
