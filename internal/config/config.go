package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const defaultAPIToken = "dev-token"

// Config holds application configuration
type Config struct {
	DatabaseURL string

	APIToken string
	GRPCPort int
	HTTPPort int

	LogLevel  string
	LogPretty bool

	TelegramBotToken string
	TelegramAPIURL   string

	QuoteProvider  string // yahoo or file
	YahooBaseURL   string
	FundDataFile   string
	AllowedOrigins []string

	SchedulerEnabled      bool
	SchedulerZone         string
	DividendAlertSchedule string
	MarketSyncSchedule    string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:           databaseURL(),
		APIToken:              getEnv("API_TOKEN", defaultAPIToken),
		GRPCPort:              getEnvAsInt("GRPC_PORT", 8080),
		HTTPPort:              getEnvAsInt("HTTP_PORT", 8081),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogPretty:             getEnvAsBool("LOG_PRETTY", false),
		TelegramBotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAPIURL:        getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		QuoteProvider:         getEnv("QUOTE_PROVIDER", "yahoo"),
		YahooBaseURL:          getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		FundDataFile:          getEnv("FUND_DATA_FILE", "./data/funds.yaml"),
		AllowedOrigins:        getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		SchedulerEnabled:      getEnvAsBool("SCHEDULER_ENABLED", true),
		SchedulerZone:         getEnv("SCHEDULER_ZONE", "Asia/Seoul"),
		DividendAlertSchedule: getEnv("DIVIDEND_ALERT_SCHEDULE", "0 0 18 * * *"),
		MarketSyncSchedule:    getEnv("MARKET_SYNC_SCHEDULE", "0 30 21 * * MON-FRI"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DB_CONN_STR is required")
	}
	if c.GRPCPort <= 0 || c.HTTPPort <= 0 {
		return fmt.Errorf("GRPC_PORT and HTTP_PORT must be positive")
	}
	if c.GRPCPort == c.HTTPPort {
		return fmt.Errorf("GRPC_PORT and HTTP_PORT must differ, both are %d", c.GRPCPort)
	}
	switch c.QuoteProvider {
	case "yahoo", "file":
	default:
		return fmt.Errorf("QUOTE_PROVIDER must be yahoo or file, got %q", c.QuoteProvider)
	}
	if c.FundDataFile == "" {
		return fmt.Errorf("FUND_DATA_FILE is required")
	}
	if _, err := time.LoadLocation(c.SchedulerZone); err != nil {
		return fmt.Errorf("SCHEDULER_ZONE %q is not a known time zone: %w", c.SchedulerZone, err)
	}
	// Telegram credentials are optional; without them notifications are skipped
	return nil
}

// TelegramEnabled reports whether a bot token is configured
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

// Location returns the time zone the cron schedules are evaluated in
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.SchedulerZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// databaseURL prefers DB_CONN_STR and otherwise builds one from the individual DB_* variables
func databaseURL() string {
	if conn := os.Getenv("DB_CONN_STR"); conn != "" {
		return conn
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "etfguard"),
	)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
