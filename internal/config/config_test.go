package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		GRPCAddr:          ":8080",
		UpstreamBaseURL:   "http://localhost:8000",
		FetchTimeout:      10 * time.Second,
		CatalogAttempts:   3,
		CatalogRetryDelay: 500 * time.Millisecond,
		LogLevel:          "info",
		FixtureAddr:       ":8000",
		FixtureData:       "./data/fixtures.json",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid default config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "valid https upstream with release mode",
			mutate:  func(c *Config) { c.UpstreamBaseURL = "https://api.example.com/v1"; c.GinMode = "release" },
			wantErr: false,
		},
		{
			name:        "invalid gRPC address",
			mutate:      func(c *Config) { c.GRPCAddr = "8080" },
			wantErr:     true,
			errorString: "invalid gRPC address '8080'",
		},
		{
			name:        "non-numeric fixture port",
			mutate:      func(c *Config) { c.FixtureAddr = ":http-ish" },
			wantErr:     true,
			errorString: "invalid fixture address ':http-ish': port must be a number",
		},
		{
			name:        "empty upstream URL",
			mutate:      func(c *Config) { c.UpstreamBaseURL = "" },
			wantErr:     true,
			errorString: "upstream base URL cannot be empty",
		},
		{
			name:        "unsupported upstream scheme",
			mutate:      func(c *Config) { c.UpstreamBaseURL = "ftp://localhost:8000" },
			wantErr:     true,
			errorString: "invalid upstream base URL scheme 'ftp': must be 'http' or 'https'",
		},
		{
			name:        "upstream without host",
			mutate:      func(c *Config) { c.UpstreamBaseURL = "http://" },
			wantErr:     true,
			errorString: "missing host",
		},
		{
			name:        "fetch timeout too short",
			mutate:      func(c *Config) { c.FetchTimeout = 10 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid fetch timeout 10ms: must be at least 100ms",
		},
		{
			name:        "fetch timeout too long",
			mutate:      func(c *Config) { c.FetchTimeout = time.Hour },
			wantErr:     true,
			errorString: "must be at most 5 minutes",
		},
		{
			name:        "zero catalog attempts",
			mutate:      func(c *Config) { c.CatalogAttempts = 0 },
			wantErr:     true,
			errorString: "invalid catalog attempts 0: must be at least 1",
		},
		{
			name:        "too many catalog attempts",
			mutate:      func(c *Config) { c.CatalogAttempts = 50 },
			wantErr:     true,
			errorString: "invalid catalog attempts 50: must be at most 10",
		},
		{
			name:        "negative retry delay",
			mutate:      func(c *Config) { c.CatalogRetryDelay = -time.Second },
			wantErr:     true,
			errorString: "must not be negative",
		},
		{
			name:        "unknown log level",
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			wantErr:     true,
			errorString: "invalid log level 'verbose': must be one of [debug info warn error]",
		},
		{
			name:        "unknown gin mode",
			mutate:      func(c *Config) { c.GinMode = "prod" },
			wantErr:     true,
			errorString: "invalid gin mode 'prod'",
		},
		{
			name:        "empty fixture data path",
			mutate:      func(c *Config) { c.FixtureData = "" },
			wantErr:     true,
			errorString: "fixture data path cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorString)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.CatalogAttempts = 0
	cfg.LogLevel = "loud"

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed:")
	assert.Contains(t, err.Error(), "catalog attempts")
	assert.Contains(t, err.Error(), "log level")
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{
			"GRPC_ADDR", "API_TOKEN", "UPSTREAM_BASE_URL", "FETCH_TIMEOUT", "CATALOG_ATTEMPTS",
			"CATALOG_RETRY_DELAY", "LOG_LEVEL", "FIXTURE_ADDR", "FIXTURE_DATA", "FIXTURE_LATENCY", "GIN_MODE",
		} {
			t.Setenv(key, "")
		}

		cfg := Load()

		assert.Equal(t, ":8080", cfg.GRPCAddr)
		assert.Equal(t, "", cfg.APIToken)
		assert.Equal(t, "http://localhost:8000", cfg.UpstreamBaseURL)
		assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
		assert.Equal(t, 3, cfg.CatalogAttempts)
		assert.Equal(t, 500*time.Millisecond, cfg.CatalogRetryDelay)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, ":8000", cfg.FixtureAddr)
		assert.Equal(t, "./data/fixtures.json", cfg.FixtureData)
		assert.Equal(t, time.Duration(0), cfg.FixtureLatency)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("custom values", func(t *testing.T) {
		t.Setenv("GRPC_ADDR", "127.0.0.1:9090")
		t.Setenv("UPSTREAM_BASE_URL", "https://ads.internal")
		t.Setenv("FETCH_TIMEOUT", "3s")
		t.Setenv("CATALOG_ATTEMPTS", "5")
		t.Setenv("CATALOG_RETRY_DELAY", "1s")
		t.Setenv("FIXTURE_LATENCY", "250ms")

		cfg := Load()

		assert.Equal(t, "127.0.0.1:9090", cfg.GRPCAddr)
		assert.Equal(t, "https://ads.internal", cfg.UpstreamBaseURL)
		assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
		assert.Equal(t, 5, cfg.CatalogAttempts)
		assert.Equal(t, time.Second, cfg.CatalogRetryDelay)
		assert.Equal(t, 250*time.Millisecond, cfg.FixtureLatency)
	})

	t.Run("malformed numbers fall back to defaults", func(t *testing.T) {
		t.Setenv("FETCH_TIMEOUT", "soon")
		t.Setenv("CATALOG_ATTEMPTS", "many")

		cfg := Load()

		assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
		assert.Equal(t, 3, cfg.CatalogAttempts)
	})
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("ADSCOPE_TEST_FROM_FILE=file\nADSCOPE_TEST_PRESET=file\n"), 0o600))

	t.Setenv("ADSCOPE_TEST_PRESET", "env")
	t.Setenv("ADSCOPE_TEST_FROM_FILE", "")
	require.NoError(t, os.Unsetenv("ADSCOPE_TEST_FROM_FILE"))

	LoadEnvFiles(filepath.Join(dir, ".env.local"), envFile)
	t.Cleanup(func() { _ = os.Unsetenv("ADSCOPE_TEST_FROM_FILE") })

	assert.Equal(t, "file", os.Getenv("ADSCOPE_TEST_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("ADSCOPE_TEST_PRESET"))
}
