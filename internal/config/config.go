// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir          string        // Base directory for databases (always absolute)
	Port             int           // HTTP listen port
	LogLevel         string        // debug, info, warn, error
	DevMode          bool          // Pretty logging, verbose errors
	ChartBaseURL     string        // Override for the chart API endpoint (tests, proxies)
	QuoteCacheTTL    time.Duration // Freshness window for cached quotes
	DefaultBenchmark string        // Benchmark symbol when a request omits one
	MaxIterations    int           // Optimizer iteration cap
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("QUANTFOLIO_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:          absDataDir,
		Port:             getEnvAsInt("QUANTFOLIO_PORT", 8080),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		ChartBaseURL:     getEnv("CHART_BASE_URL", ""),
		QuoteCacheTTL:    time.Duration(getEnvAsInt("QUOTE_CACHE_TTL_MINUTES", 60)) * time.Minute,
		DefaultBenchmark: getEnv("DEFAULT_BENCHMARK", "^GSPC"),
		MaxIterations:    getEnvAsInt("OPTIMIZER_MAX_ITERATIONS", 1000),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.QuoteCacheTTL <= 0 {
		return fmt.Errorf("quote cache TTL must be positive")
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("optimizer max iterations must be positive")
	}
	return nil
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
