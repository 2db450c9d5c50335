package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const appName = "snapctl"

// EnvPrefix is prepended to every environment override, e.g. SNAPCTL_API_KEY.
const EnvPrefix = "SNAPCTL"

// Load loads the configuration from file and environment. A missing config
// file is only an error when configPath was given explicitly.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, appName))

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, "."+appName))
		}

		v.AddConfigPath("/etc/" + appName + "/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", "https://api.snapapi.dev")
	v.SetDefault("timeout", 60*time.Second)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)

	// Output defaults
	v.SetDefault("output.directory", ".")
	v.SetDefault("output.s3.bucket", "")
	v.SetDefault("output.s3.prefix", "")
	v.SetDefault("output.s3.endpoint", "")

	// Polling defaults
	v.SetDefault("polling.interval", 2*time.Second)
	v.SetDefault("polling.max_attempts", 60)

	// Capture defaults
	v.SetDefault("capture.concurrency", 4)
	v.SetDefault("capture.rate_per_second", 0)
	v.SetDefault("capture.burst", 1)

	v.SetDefault("devices.default_filter", "")
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.APIKey == "" || cfg.APIKey == "your-api-key-here" {
		return fmt.Errorf("api_key must be set to a valid API key (or %s_API_KEY)", EnvPrefix)
	}

	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}

	if cfg.Polling.Interval <= 0 {
		return fmt.Errorf("polling.interval must be positive, got %s", cfg.Polling.Interval)
	}
	if cfg.Polling.MaxAttempts < 1 {
		return fmt.Errorf("polling.max_attempts must be at least 1, got %d", cfg.Polling.MaxAttempts)
	}

	if cfg.Capture.Concurrency < 1 {
		return fmt.Errorf("capture.concurrency must be at least 1, got %d", cfg.Capture.Concurrency)
	}
	if cfg.Capture.RatePerSecond < 0 {
		return fmt.Errorf("capture.rate_per_second must not be negative")
	}
	if cfg.Capture.RatePerSecond > 0 && cfg.Capture.Burst < 1 {
		return fmt.Errorf("capture.burst must be at least 1 when a rate is set")
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
