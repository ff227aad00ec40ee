package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// gRPC snapshot service
	GRPCAddr string
	APIToken string // Empty disables authentication

	// Upstream resource
	UpstreamBaseURL   string
	FetchTimeout      time.Duration
	CatalogAttempts   int
	CatalogRetryDelay time.Duration

	// Logging
	LogLevel string

	// Fixture API
	FixtureAddr    string
	FixtureData    string
	FixtureLatency time.Duration
	GinMode        string
}

// LoadEnvFiles loads .env.local then .env into the process environment.
// Variables already set are never overridden and missing files are ignored.
func LoadEnvFiles(files ...string) {
	if len(files) == 0 {
		files = []string{".env.local", ".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

func Load() *Config {
	cfg := &Config{
		GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		APIToken: getEnv("API_TOKEN", ""),

		UpstreamBaseURL:   getEnv("UPSTREAM_BASE_URL", "http://localhost:8000"),
		FetchTimeout:      getEnvDuration("FETCH_TIMEOUT", 10*time.Second),
		CatalogAttempts:   getEnvInt("CATALOG_ATTEMPTS", 3),
		CatalogRetryDelay: getEnvDuration("CATALOG_RETRY_DELAY", 500*time.Millisecond),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		FixtureAddr:    getEnv("FIXTURE_ADDR", ":8000"),
		FixtureData:    getEnv("FIXTURE_DATA", "./data/fixtures.json"),
		FixtureLatency: getEnvDuration("FIXTURE_LATENCY", 0),
		GinMode:        getEnv("GIN_MODE", ""),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate listen addresses
	if err := validateAddr(c.GRPCAddr); err != nil {
		errors = append(errors, fmt.Sprintf("invalid gRPC address '%s': %v", c.GRPCAddr, err))
	}
	if err := validateAddr(c.FixtureAddr); err != nil {
		errors = append(errors, fmt.Sprintf("invalid fixture address '%s': %v", c.FixtureAddr, err))
	}

	// Validate upstream base URL
	if c.UpstreamBaseURL == "" {
		errors = append(errors, "upstream base URL cannot be empty")
	} else if parsedURL, err := url.Parse(c.UpstreamBaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid upstream base URL '%s': %v", c.UpstreamBaseURL, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid upstream base URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	} else if parsedURL.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid upstream base URL '%s': missing host", c.UpstreamBaseURL))
	}

	// Validate fetch policy
	if c.FetchTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at least 100ms", c.FetchTimeout))
	} else if c.FetchTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at most 5 minutes", c.FetchTimeout))
	}

	if c.CatalogAttempts < 1 {
		errors = append(errors, fmt.Sprintf("invalid catalog attempts %d: must be at least 1", c.CatalogAttempts))
	} else if c.CatalogAttempts > 10 {
		errors = append(errors, fmt.Sprintf("invalid catalog attempts %d: must be at most 10", c.CatalogAttempts))
	}

	if c.CatalogRetryDelay < 0 {
		errors = append(errors, fmt.Sprintf("invalid catalog retry delay %v: must not be negative", c.CatalogRetryDelay))
	} else if c.CatalogRetryDelay > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid catalog retry delay %v: must be at most 1 minute", c.CatalogRetryDelay))
	}

	// Validate log level
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}

	// Validate fixture settings
	if c.FixtureData == "" {
		errors = append(errors, "fixture data path cannot be empty")
	}
	if c.FixtureLatency < 0 {
		errors = append(errors, fmt.Sprintf("invalid fixture latency %v: must not be negative", c.FixtureLatency))
	}
	validModes := []string{"debug", "release", "test"}
	if c.GinMode != "" && !contains(validModes, c.GinMode) {
		errors = append(errors, fmt.Sprintf("invalid gin mode '%s': must be one of %v", c.GinMode, validModes))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func validateAddr(addr string) error {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("port must be a number")
	}
	if port < 0 || port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535")
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
