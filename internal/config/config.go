package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Storage
	DataBackend  string
	SQLiteDBPath string
	StateKey     string

	// Advisor
	GeminiAPIKey   string
	GeminiModel    string
	GeminiEndpoint string
	TipsTimeout    time.Duration
	TipsCacheSize  int
	TipsCacheTTL   time.Duration
	Offline        bool

	// Output
	ExportPath string
	LogLevel   string
}

var (
	validBackends  = []string{"memory", "sqlite"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

func Load() *Config {
	return &Config{
		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fintrack.db"),
		StateKey:     getEnv("STATE_KEY", "fin_tracker_data"),

		// API_KEY wins to stay compatible with existing deployments.
		GeminiAPIKey:   getEnv("API_KEY", getEnv("GEMINI_API_KEY", "")),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiEndpoint: getEnv("GEMINI_ENDPOINT", ""),
		TipsTimeout:    getEnvDuration("TIPS_TIMEOUT", 5*time.Second),
		TipsCacheSize:  getEnvInt("TIPS_CACHE_SIZE", 32),
		TipsCacheTTL:   getEnvDuration("TIPS_CACHE_TTL", 10*time.Minute),
		Offline:        getEnvBool("OFFLINE", false),

		ExportPath: getEnv("EXPORT_PATH", "transactions_export.csv"),
		LogLevel:   strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}
}

// AdvisorEnabled reports whether a remote advisor can be built.
func (c *Config) AdvisorEnabled() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if strings.TrimSpace(c.StateKey) == "" {
		errors = append(errors, "state key cannot be empty")
	}

	if c.GeminiEndpoint != "" {
		if u, err := url.Parse(c.GeminiEndpoint); err != nil {
			errors = append(errors, fmt.Sprintf("invalid Gemini endpoint '%s': %v", c.GeminiEndpoint, err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid Gemini endpoint scheme '%s': must be 'http' or 'https'", u.Scheme))
		}
	}

	if c.TipsTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid tips timeout %v: must be at least 100ms", c.TipsTimeout))
	} else if c.TipsTimeout > 2*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid tips timeout %v: must be at most 2 minutes", c.TipsTimeout))
	}

	if c.TipsCacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid tips cache size %d: must not be negative", c.TipsCacheSize))
	} else if c.TipsCacheSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid tips cache size %d: must be at most 1000", c.TipsCacheSize))
	}
	if c.TipsCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid tips cache TTL %v: must not be negative", c.TipsCacheTTL))
	}

	if strings.TrimSpace(c.ExportPath) == "" {
		errors = append(errors, "export path cannot be empty")
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
