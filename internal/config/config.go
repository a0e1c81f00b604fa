// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	FDABaseURL    string
	FDAAPIKey     string
	DefaultDrug   string
	DatabasePath  string
	WatchlistPath string
	MetricsAddr   string
	LogFile       string
	LogLevel      string
	HTTPTimeout   time.Duration
	TopDrugsLimit int
	SearchLimit   int
	TopN          int
	TrendDays     int
	FetchRetries  int
}

// Default values
const (
	DefaultFDABaseURL    = "https://api.fda.gov/drug/event.json"
	DefaultDrug          = "IBUPROFEN"
	DefaultTopDrugsLimit = 100
	DefaultSearchLimit   = 200
	DefaultTopN          = 10
	DefaultTrendDays     = 180
	DefaultFetchRetries  = 3
	DefaultHTTPTimeout   = 30 * time.Second

	// MemoryDatabase keeps the fetch log for the current session only.
	MemoryDatabase = ":memory:"

	// MaxFetchLimit is the largest page the feed will serve.
	MaxFetchLimit = 1000
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		FDABaseURL:    getEnvString("FDA_BASE_URL", DefaultFDABaseURL),
		FDAAPIKey:     getEnvString("FDA_API_KEY", ""),
		DefaultDrug:   strings.TrimSpace(getEnvString("DEFAULT_DRUG", DefaultDrug)),
		DatabasePath:  getEnvString("DATABASE_PATH", MemoryDatabase),
		WatchlistPath: getEnvString("WATCHLIST_PATH", getDefaultWatchlistPath()),
		MetricsAddr:   getEnvString("METRICS_ADDR", ""),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		HTTPTimeout:   getEnvDuration("HTTP_TIMEOUT", DefaultHTTPTimeout),
		TopDrugsLimit: getEnvInt("TOP_DRUGS_LIMIT", DefaultTopDrugsLimit),
		SearchLimit:   getEnvInt("SEARCH_LIMIT", DefaultSearchLimit),
		TopN:          getEnvInt("TOP_N", DefaultTopN),
		TrendDays:     getEnvInt("TREND_DAYS", DefaultTrendDays),
		FetchRetries:  getEnvInt("FETCH_RETRIES", DefaultFetchRetries),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure database directory exists
	if cfg.DatabasePath != MemoryDatabase {
		if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.FDABaseURL) == "" {
		return fmt.Errorf("FDA_BASE_URL must not be empty")
	}
	if c.TopDrugsLimit < 1 || c.TopDrugsLimit > MaxFetchLimit {
		return fmt.Errorf("TOP_DRUGS_LIMIT must be between 1 and %d, got %d", MaxFetchLimit, c.TopDrugsLimit)
	}
	if c.SearchLimit < 1 || c.SearchLimit > MaxFetchLimit {
		return fmt.Errorf("SEARCH_LIMIT must be between 1 and %d, got %d", MaxFetchLimit, c.SearchLimit)
	}
	if c.TopN < 1 {
		return fmt.Errorf("TOP_N must be positive, got %d", c.TopN)
	}
	if c.TrendDays < 1 {
		return fmt.Errorf("TREND_DAYS must be positive, got %d", c.TrendDays)
	}
	if c.FetchRetries < 1 {
		return fmt.Errorf("FETCH_RETRIES must be at least 1, got %d", c.FetchRetries)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	return nil
}

// Default returns a configuration populated with default values only.
func Default() *Config {
	return &Config{
		FDABaseURL:    DefaultFDABaseURL,
		DefaultDrug:   DefaultDrug,
		DatabasePath:  MemoryDatabase,
		WatchlistPath: getDefaultWatchlistPath(),
		LogLevel:      "info",
		HTTPTimeout:   DefaultHTTPTimeout,
		TopDrugsLimit: DefaultTopDrugsLimit,
		SearchLimit:   DefaultSearchLimit,
		TopN:          DefaultTopN,
		TrendDays:     DefaultTrendDays,
		FetchRetries:  DefaultFetchRetries,
	}
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "drugsafety-tui", ".env"),
			filepath.Join(home, ".drugsafety", ".env"),
		)
	}

	return paths
}

// getDefaultWatchlistPath returns the default path for the watchlist file.
func getDefaultWatchlistPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "watchlist.yaml"
	}
	return filepath.Join(home, ".config", "drugsafety-tui", "watchlist.yaml")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
