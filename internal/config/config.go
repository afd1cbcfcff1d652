package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Source kinds for TRANSACTIONS_SOURCE.
const (
	SourceFile     = "file"
	SourceBigQuery = "bigquery"
)

// Config holds the application settings.
type Config struct {
	// TransactionsSource selects where operations are loaded from: "file" or "bigquery".
	TransactionsSource string
	// SourceFile is a local xlsx path or a gs://bucket/object URI.
	SourceFile   string
	SettingsFile string

	// ReportsDir receives weekday reports when ReportsBucket is empty.
	ReportsDir    string
	ReportsBucket string

	BigQueryProject string
	BigQueryDataset string
	BigQueryTable   string

	CBRBaseURL     string
	YahooBaseURL   string
	QuoteCacheTTL  time.Duration
	QuoteRateLimit float64

	// ReportSchedule is a cron expression for the scheduled weekday report.
	ReportSchedule string
	WorkerCount    int

	Port     string
	LogLevel string
	LogFile  string
}

// Load reads an optional .env file and then the environment.
// A missing .env file is not an error.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("Load: reading env file: %w", err)
	}

	cfg := &Config{
		TransactionsSource: strings.ToLower(getEnv("TRANSACTIONS_SOURCE", SourceFile)),
		SourceFile:         getEnv("SOURCE_FILE", "data/operations.xlsx"),
		SettingsFile:       getEnv("SETTINGS_FILE", "user_settings.json"),
		ReportsDir:         getEnv("REPORTS_DIR", "reports"),
		ReportsBucket:      getEnv("REPORTS_BUCKET", ""),
		BigQueryProject:    getEnv("BQ_PROJECT", ""),
		BigQueryDataset:    getEnv("BQ_DATASET", "finance"),
		BigQueryTable:      getEnv("BQ_TABLE", "operations"),
		CBRBaseURL:         getEnv("CBR_BASE_URL", "https://www.cbr.ru/scripts/XML_daily.asp"),
		YahooBaseURL:       getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com/v8/finance/chart"),
		ReportSchedule:     getEnv("REPORT_SCHEDULE", ""),
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            getEnv("LOG_FILE", ""),
	}

	var err error
	if cfg.QuoteCacheTTL, err = getEnvAsDuration("QUOTE_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.QuoteRateLimit, err = getEnvAsFloat("QUOTE_RATE_LIMIT", 2); err != nil {
		return nil, err
	}
	if cfg.WorkerCount, err = getEnvAsInt("WORKER_COUNT", 5); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the combinations Load cannot default.
func (c *Config) Validate() error {
	switch c.TransactionsSource {
	case SourceFile:
		if c.SourceFile == "" {
			return fmt.Errorf("Validate: SOURCE_FILE is required for file source")
		}
	case SourceBigQuery:
		if c.BigQueryProject == "" {
			return fmt.Errorf("Validate: BQ_PROJECT is required for bigquery source")
		}
	default:
		return fmt.Errorf("Validate: unknown TRANSACTIONS_SOURCE %q", c.TransactionsSource)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("Validate: WORKER_COUNT must be positive, got %d", c.WorkerCount)
	}
	return nil
}

// getEnv returns the variable or the default when it is unset or empty.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("Load: %s: %w", key, err)
	}
	return n, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("Load: %s: %w", key, err)
	}
	return f, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("Load: %s: %w", key, err)
	}
	return d, nil
}
