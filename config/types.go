package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`

	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
	Polling PollingConfig `mapstructure:"polling"`
	Capture CaptureConfig `mapstructure:"capture"`
	Devices DevicesConfig `mapstructure:"devices"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// OutputConfig selects where captured files are written. When S3.Bucket is
// set it takes precedence over Directory.
type OutputConfig struct {
	Directory string   `mapstructure:"directory"`
	S3        S3Config `mapstructure:"s3"`
}

// S3Config holds the bucket for S3 output
type S3Config struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
	// Endpoint overrides the S3 endpoint, e.g. for MinIO
	Endpoint string `mapstructure:"endpoint"`
}

// PollingConfig is the caller-side policy for waiting on batch and async jobs
type PollingConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

// CaptureConfig bounds the parallel capture command
type CaptureConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	// RatePerSecond caps request starts; 0 disables the limit
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

// DevicesConfig contains named device filter presets
type DevicesConfig struct {
	DefaultFilter string            `mapstructure:"default_filter"`
	Presets       map[string]string `mapstructure:"presets"`
}
