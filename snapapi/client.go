package snapapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the public service endpoint
	DefaultBaseURL = "https://api.snapapi.dev"
	// DefaultTimeout bounds a single request
	DefaultTimeout = 60 * time.Second
)

// Version is reported in the default User-Agent.
var Version = "1.2.0"

// Client represents a SnapAPI client. It holds no mutable state after
// construction and may be shared by any number of goroutines.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	userAgent  string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new SnapAPI client. It performs no I/O; use Ping to
// check connectivity.
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("snapapi API key is required")
	}

	client := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		timeout:    DefaultTimeout,
		userAgent:  "snapapi-go/" + Version,
		httpClient: &http.Client{},
		logger:     logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	if _, err := url.Parse(client.baseURL); err != nil {
		return nil, fmt.Errorf("invalid snapapi base URL: %w", err)
	}

	return client, nil
}

// BaseURL returns the normalized service URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs exactly one HTTP exchange and returns the response body
// of a 2xx response. Every failure is returned as *Error.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &Error{
				Code:    CodeInvalidOptions,
				Message: fmt.Sprintf("failed to encode request: %v", err),
				Err:     fmt.Errorf("%w: %w", ErrInvalidOptions, err),
			}
		}
		body = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, connectionError(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("method", method).
			Str("path", path).
			Msg("SnapAPI request failed")
		return nil, connectionError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, connectionError(fmt.Errorf("failed to read response body: %w", err))
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Int("bytes", len(respBody)).
		Dur("took", time.Since(start)).
		Msg("SnapAPI request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseErrorResponse(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// doJSON performs a request and decodes the 2xx body into out.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	body, err := c.doRequest(ctx, method, path, payload)
	if err != nil {
		return err
	}
	return decodeBody(body, out)
}

func decodeBody(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{
			Code:    CodeDecodeError,
			Message: fmt.Sprintf("failed to parse response: %v", err),
			Err:     err,
		}
	}
	return nil
}

// Screenshot captures a URL, HTML or Markdown document and returns the raw
// response body: image bytes for the default binary response type, or the
// JSON envelope when ResponseType is json or base64.
func (c *Client) Screenshot(ctx context.Context, opts ScreenshotOptions) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return c.doRequest(ctx, http.MethodPost, "/v1/screenshot", opts)
}

// ScreenshotJSON captures a screenshot and decodes the JSON envelope. A binary
// response type is switched to json.
func (c *Client) ScreenshotJSON(ctx context.Context, opts ScreenshotOptions) (*ScreenshotResult, error) {
	if !opts.ResponseType.IsEnvelope() {
		opts.ResponseType = ResponseJSON
	}
	body, err := c.Screenshot(ctx, opts)
	if err != nil {
		return nil, err
	}

	var result ScreenshotResult
	if err := decodeBody(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ScreenshotDevice captures a URL using a named device preset.
func (c *Client) ScreenshotDevice(ctx context.Context, url, device string) ([]byte, error) {
	return c.Screenshot(ctx, ScreenshotOptions{URL: url, Device: device})
}

// ScreenshotHTML renders an HTML document.
func (c *Client) ScreenshotHTML(ctx context.Context, html string) ([]byte, error) {
	return c.Screenshot(ctx, ScreenshotOptions{HTML: html})
}

// ScreenshotMarkdown renders a Markdown document.
func (c *Client) ScreenshotMarkdown(ctx context.Context, markdown string) ([]byte, error) {
	return c.Screenshot(ctx, ScreenshotOptions{Markdown: markdown})
}

// PDF renders the target as a PDF document. Format is always pdf.
func (c *Client) PDF(ctx context.Context, opts ScreenshotOptions) ([]byte, error) {
	opts.Format = FormatPDF
	return c.Screenshot(ctx, opts)
}

// Video records the page and returns the raw response body.
func (c *Client) Video(ctx context.Context, opts VideoOptions) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return c.doRequest(ctx, http.MethodPost, "/v1/video", opts)
}

// VideoJSON records a video and decodes the JSON envelope.
func (c *Client) VideoJSON(ctx context.Context, opts VideoOptions) (*VideoResult, error) {
	if !opts.ResponseType.IsEnvelope() {
		opts.ResponseType = ResponseJSON
	}
	body, err := c.Video(ctx, opts)
	if err != nil {
		return nil, err
	}

	var result VideoResult
	if err := decodeBody(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Batch submits a batch job and returns its initial snapshot.
func (c *Client) Batch(ctx context.Context, opts BatchOptions) (*BatchResult, error) {
	var result BatchResult
	if err := c.doJSON(ctx, http.MethodPost, "/v1/screenshot/batch", opts, &result); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("job_id", result.JobID).
		Str("status", string(result.Status)).
		Int("total", result.Total).
		Msg("Batch job submitted")

	return &result, nil
}

// BatchStatus fetches the current snapshot of a batch job, including any
// per-item results that have already settled.
func (c *Client) BatchStatus(ctx context.Context, jobID string) (*BatchResult, error) {
	if jobID == "" {
		return nil, validationError(CodeInvalidOptions, ErrInvalidOptions, "job id is required")
	}

	var result BatchResult
	if err := c.doJSON(ctx, http.MethodGet, "/v1/screenshot/batch/"+url.PathEscape(jobID), nil, &result); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("job_id", result.JobID).
		Str("status", string(result.Status)).
		Int("settled", result.Settled()).
		Int("total", result.Total).
		Msg("Batch job polled")

	return &result, nil
}

// ScreenshotAsync submits a single screenshot as a background job.
func (c *Client) ScreenshotAsync(ctx context.Context, opts ScreenshotOptions) (*AsyncJob, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var job AsyncJob
	if err := c.doJSON(ctx, http.MethodPost, "/v1/screenshot/async", opts, &job); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("job_id", job.JobID).
		Str("status", string(job.Status)).
		Msg("Async screenshot submitted")

	return &job, nil
}

// AsyncStatus fetches the current snapshot of an async screenshot job.
func (c *Client) AsyncStatus(ctx context.Context, jobID string) (*AsyncJob, error) {
	if jobID == "" {
		return nil, validationError(CodeInvalidOptions, ErrInvalidOptions, "job id is required")
	}

	var job AsyncJob
	if err := c.doJSON(ctx, http.MethodGet, "/v1/screenshot/async/"+url.PathEscape(jobID), nil, &job); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("job_id", job.JobID).
		Str("status", string(job.Status)).
		Msg("Async screenshot polled")

	return &job, nil
}

// Extract pulls content from a page.
func (c *Client) Extract(ctx context.Context, opts ExtractOptions) (*ExtractResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var result ExtractResult
	if err := c.doJSON(ctx, http.MethodPost, "/v1/extract", opts, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) extractType(ctx context.Context, url string, t ExtractType) (*ExtractResult, error) {
	return c.Extract(ctx, ExtractOptions{URL: url, Type: t})
}

// ExtractMarkdown returns the page converted to Markdown.
func (c *Client) ExtractMarkdown(ctx context.Context, url string) (*ExtractResult, error) {
	return c.extractType(ctx, url, ExtractMarkdown)
}

// ExtractText returns the page's visible text.
func (c *Client) ExtractText(ctx context.Context, url string) (*ExtractResult, error) {
	return c.extractType(ctx, url, ExtractText)
}

// ExtractHTML returns the rendered HTML.
func (c *Client) ExtractHTML(ctx context.Context, url string) (*ExtractResult, error) {
	return c.extractType(ctx, url, ExtractHTML)
}

// ExtractArticle returns the main article content.
func (c *Client) ExtractArticle(ctx context.Context, url string) (*ExtractResult, error) {
	return c.extractType(ctx, url, ExtractArticle)
}

// ExtractStructured returns structured page data.
func (c *Client) ExtractStructured(ctx context.Context, url string) (*ExtractResult, error) {
	return c.extractType(ctx, url, ExtractStructured)
}

// ExtractLinks returns every link on the page.
func (c *Client) ExtractLinks(ctx context.Context, url string) (*ExtractResult, error) {
	return c.extractType(ctx, url, ExtractLinks)
}

// ExtractImages returns every image on the page.
func (c *Client) ExtractImages(ctx context.Context, url string) (*ExtractResult, error) {
	return c.extractType(ctx, url, ExtractImages)
}

// ExtractPageMetadata returns the page's metadata.
func (c *Client) ExtractPageMetadata(ctx context.Context, url string) (*ExtractResult, error) {
	return c.extractType(ctx, url, ExtractMetadata)
}

// Analyze asks an AI provider about a rendered page.
func (c *Client) Analyze(ctx context.Context, opts AnalyzeOptions) (*AnalyzeResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var result AnalyzeResult
	if err := c.doJSON(ctx, http.MethodPost, "/v1/analyze", opts, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Devices returns the device preset catalog.
func (c *Client) Devices(ctx context.Context) (*Devices, error) {
	var devices Devices
	if err := c.doJSON(ctx, http.MethodGet, "/v1/devices", nil, &devices); err != nil {
		return nil, err
	}
	return &devices, nil
}

// Capabilities returns the service version and feature flags.
func (c *Client) Capabilities(ctx context.Context) (*Capabilities, error) {
	var caps Capabilities
	if err := c.doJSON(ctx, http.MethodGet, "/v1/capabilities", nil, &caps); err != nil {
		return nil, err
	}
	return &caps, nil
}

// Usage returns the account's quota snapshot.
func (c *Client) Usage(ctx context.Context) (*Usage, error) {
	var usage Usage
	if err := c.doJSON(ctx, http.MethodGet, "/v1/usage", nil, &usage); err != nil {
		return nil, err
	}
	return &usage, nil
}

// Ping checks that the service is reachable and the API key is accepted.
func (c *Client) Ping(ctx context.Context) (*Ping, error) {
	var ping Ping
	if err := c.doJSON(ctx, http.MethodGet, "/v1/ping", nil, &ping); err != nil {
		return nil, err
	}
	return &ping, nil
}
