package snapapi

import (
	"context"
)

// API defines the interface for SnapAPI operations
type API interface {
	Capturer
	JobRunner

	// Extract pulls content of the requested type from a page
	Extract(ctx context.Context, opts ExtractOptions) (*ExtractResult, error)

	// Analyze asks an AI provider about a rendered page
	Analyze(ctx context.Context, opts AnalyzeOptions) (*AnalyzeResult, error)

	// Devices returns the device preset catalog
	Devices(ctx context.Context) (*Devices, error)

	// Capabilities returns the service version and feature flags
	Capabilities(ctx context.Context) (*Capabilities, error)

	// Usage returns the account's quota snapshot
	Usage(ctx context.Context) (*Usage, error)

	// Ping checks the service is reachable
	Ping(ctx context.Context) (*Ping, error)
}

// Capturer produces rendered output in a single request
type Capturer interface {
	Screenshot(ctx context.Context, opts ScreenshotOptions) ([]byte, error)
	ScreenshotJSON(ctx context.Context, opts ScreenshotOptions) (*ScreenshotResult, error)
	PDF(ctx context.Context, opts ScreenshotOptions) ([]byte, error)
	Video(ctx context.Context, opts VideoOptions) ([]byte, error)
}

// JobRunner submits background jobs and fetches their snapshots. Polling is
// left to the caller.
type JobRunner interface {
	Batch(ctx context.Context, opts BatchOptions) (*BatchResult, error)
	BatchStatus(ctx context.Context, jobID string) (*BatchResult, error)
	ScreenshotAsync(ctx context.Context, opts ScreenshotOptions) (*AsyncJob, error)
	AsyncStatus(ctx context.Context, jobID string) (*AsyncJob, error)
}

var _ API = (*Client)(nil)
