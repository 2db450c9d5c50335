package snapapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithBaseURL(server.URL + "/")}, opts...)
	client, err := NewClient("test-key", zerolog.Nop(), opts...)
	require.NoError(t, err)
	return client
}

func readBody(t *testing.T, r *http.Request) string {
	t.Helper()
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	return string(body)
}

func TestNewClient(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("missing API key", func(t *testing.T) {
		_, err := NewClient("", logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key is required")
	})

	t.Run("defaults", func(t *testing.T) {
		client, err := NewClient("test-key", logger)
		require.NoError(t, err)
		assert.Equal(t, DefaultBaseURL, client.baseURL)
		assert.Equal(t, DefaultTimeout, client.timeout)
		assert.Equal(t, "snapapi-go/"+Version, client.userAgent)
	})
}

func TestClientOptions(t *testing.T) {
	logger := zerolog.Nop()
	customHTTP := &http.Client{}

	client, err := NewClient("test-key", logger,
		WithBaseURL("https://snap.example.com/"),
		WithTimeout(15*time.Second),
		WithHTTPClient(customHTTP),
		WithUserAgent("snapctl/test"),
	)
	require.NoError(t, err)

	assert.Equal(t, "https://snap.example.com", client.BaseURL())
	assert.Equal(t, 15*time.Second, client.timeout)
	assert.Same(t, customHTTP, client.httpClient)
	assert.Equal(t, "snapctl/test", client.userAgent)
	assert.Zero(t, customHTTP.Timeout)

	t.Run("zero values keep defaults", func(t *testing.T) {
		client, err := NewClient("test-key", logger, WithBaseURL(""), WithTimeout(0), WithHTTPClient(nil))
		require.NoError(t, err)
		assert.Equal(t, DefaultBaseURL, client.baseURL)
		assert.Equal(t, DefaultTimeout, client.timeout)
		assert.NotNil(t, client.httpClient)
	})
}

func TestScreenshot(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/screenshot", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "snapapi-go/"+Version, r.Header.Get("User-Agent"))
		assert.JSONEq(t,
			`{"url":"https://example.com","format":"png","width":1280,"height":800,"fullPage":true}`,
			readBody(t, r))

		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("\x89PNG"))
	})

	data, err := client.Screenshot(context.Background(), ScreenshotOptions{URL: "https://example.com", FullPage: true})
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data)
}

func TestValidationSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})
	ctx := context.Background()

	tests := []struct {
		name    string
		call    func() error
		wantErr error
	}{
		{
			name: "screenshot without target",
			call: func() error {
				_, err := client.Screenshot(ctx, ScreenshotOptions{FullPage: true})
				return err
			},
			wantErr: ErrMissingTarget,
		},
		{
			name: "screenshot with two targets",
			call: func() error {
				_, err := client.Screenshot(ctx, ScreenshotOptions{URL: "https://example.com", Markdown: "# x"})
				return err
			},
			wantErr: ErrMultipleTargets,
		},
		{
			name: "pdf without target",
			call: func() error {
				_, err := client.PDF(ctx, ScreenshotOptions{})
				return err
			},
			wantErr: ErrMissingTarget,
		},
		{
			name: "video without url",
			call: func() error {
				_, err := client.Video(ctx, VideoOptions{})
				return err
			},
			wantErr: ErrMissingTarget,
		},
		{
			name: "async without target",
			call: func() error {
				_, err := client.ScreenshotAsync(ctx, ScreenshotOptions{})
				return err
			},
			wantErr: ErrMissingTarget,
		},
		{
			name: "extract without url",
			call: func() error {
				_, err := client.ExtractText(ctx, "")
				return err
			},
			wantErr: ErrMissingTarget,
		},
		{
			name: "analyze without prompt",
			call: func() error {
				_, err := client.Analyze(ctx, AnalyzeOptions{URL: "https://example.com"})
				return err
			},
			wantErr: ErrInvalidOptions,
		},
		{
			name: "batch status without id",
			call: func() error {
				_, err := client.BatchStatus(ctx, "")
				return err
			},
			wantErr: ErrInvalidOptions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, int32(0), hits.Load())
}

func TestScreenshotJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.JSONEq(t,
			`{"url":"https://example.com","format":"png","width":1280,"height":800,"responseType":"json","includeMetadata":true}`,
			readBody(t, r))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"data": "aGVsbG8=",
			"width": 1280,
			"height": 800,
			"fileSize": 5,
			"took": 812,
			"metadata": {"title": "Example Domain", "httpStatusCode": 200}
		}`))
	})

	result, err := client.ScreenshotJSON(context.Background(), ScreenshotOptions{URL: "https://example.com", IncludeMetadata: true})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, FormatPNG, result.Format)
	require.NotNil(t, result.Metadata)
	assert.Equal(t, "Example Domain", result.Metadata.Title)
	assert.Equal(t, 200, *result.Metadata.HTTPStatusCode)

	data, err := result.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestConvenienceCalls(t *testing.T) {
	type call struct{ path, body string }
	var got []call
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, call{r.URL.Path, readBody(t, r)})
		w.Write([]byte(`{"success":true,"content":"x"}`))
	})
	ctx := context.Background()

	_, err := client.ScreenshotDevice(ctx, "https://example.com", "iphone-15-pro")
	require.NoError(t, err)
	_, err = client.ScreenshotHTML(ctx, "<p>hi</p>")
	require.NoError(t, err)
	_, err = client.ScreenshotMarkdown(ctx, "# hi")
	require.NoError(t, err)
	_, err = client.PDF(ctx, ScreenshotOptions{URL: "https://example.com", Format: FormatJPEG})
	require.NoError(t, err)
	extracted, err := client.ExtractPageMetadata(ctx, "https://example.com")
	require.NoError(t, err)

	want := []call{
		{"/v1/screenshot", `{"url":"https://example.com","format":"png","device":"iphone-15-pro"}`},
		{"/v1/screenshot", `{"html":"<p>hi</p>","format":"png","width":1280,"height":800}`},
		{"/v1/screenshot", `{"markdown":"# hi","format":"png","width":1280,"height":800}`},
		{"/v1/screenshot", `{"url":"https://example.com","format":"pdf","width":1280,"height":800}`},
		{"/v1/extract", `{"url":"https://example.com","type":"metadata"}`},
	}
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].path, got[i].path)
		assert.JSONEq(t, want[i].body, got[i].body)
	}

	text, ok := extracted.Text()
	assert.True(t, ok)
	assert.Equal(t, "x", text)
}

func TestVideoJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/video", r.URL.Path)
		assert.JSONEq(t,
			`{"url":"https://example.com","format":"gif","width":1280,"height":720,"duration":5000,"fps":24,"responseType":"base64"}`,
			readBody(t, r))
		w.Write([]byte(`{"success":true,"format":"gif","duration":5000,"data":"R0lG"}`))
	})

	result, err := client.VideoJSON(context.Background(), VideoOptions{
		URL:          "https://example.com",
		Format:       VideoGIF,
		ResponseType: ResponseBase64,
	})
	require.NoError(t, err)
	assert.Equal(t, VideoGIF, result.Format)

	data, err := result.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "GIF", string(data))
}

func TestBatchLifecycle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/screenshot/batch":
			assert.JSONEq(t,
				`{"urls":["https://a.example","https://b.example"],"format":"png","width":1280,"height":800}`,
				readBody(t, r))
			w.Write([]byte(`{"success":true,"jobId":"batch 1/a","status":"pending","total":2}`))
		case r.Method == http.MethodGet && r.URL.EscapedPath() == "/v1/screenshot/batch/batch%201%2Fa":
			w.Write([]byte(`{
				"success": true,
				"jobId": "batch 1/a",
				"status": "processing",
				"total": 2,
				"completed": 1,
				"results": [
					{"url": "https://a.example", "status": "completed", "data": "aGk="},
					{"url": "https://b.example", "status": "processing"}
				]
			}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.EscapedPath())
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	submitted, err := client.Batch(ctx, BatchOptions{URLs: []string{"https://a.example", "https://b.example"}})
	require.NoError(t, err)
	assert.Equal(t, JobPending, submitted.Status)
	assert.Nil(t, submitted.Results)

	status, err := client.BatchStatus(ctx, submitted.JobID)
	require.NoError(t, err)
	assert.Equal(t, JobProcessing, status.Status)
	assert.False(t, status.Done())
	assert.Equal(t, 1, status.Settled())
	assert.NoError(t, status.Validate())
}

func TestAsyncLifecycle(t *testing.T) {
	var polls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/screenshot/async":
			w.Write([]byte(`{"success":true,"jobId":"job_1","status":"queued"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/screenshot/async/job_1":
			if polls.Add(1) == 1 {
				w.Write([]byte(`{"success":true,"jobId":"job_1","status":"processing"}`))
				return
			}
			w.Write([]byte(`{"success":true,"jobId":"job_1","status":"completed","result":{"success":true,"format":"jpeg","data":"aGk="}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	job, err := client.ScreenshotAsync(ctx, ScreenshotOptions{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, JobQueued, job.Status)

	job, err = client.AsyncStatus(ctx, job.JobID)
	require.NoError(t, err)
	assert.False(t, job.Done())

	job, err = client.AsyncStatus(ctx, job.JobID)
	require.NoError(t, err)
	assert.True(t, job.Done())
	require.NotNil(t, job.Result)
	assert.Equal(t, FormatJPEG, job.Result.Format)
}

func TestExtractAndAnalyze(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/extract":
			w.Write([]byte(`{"success":true,"type":"links","content":["https://a.example","https://b.example"],"took":120}`))
		case "/v1/analyze":
			w.Write([]byte(`{"success":true,"result":{"topic":"examples","score":3},"tokensUsed":512}`))
		}
	})
	ctx := context.Background()

	extracted, err := client.ExtractLinks(ctx, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, PayloadList, extracted.Content.Kind())
	links, ok := extracted.Content.Strings()
	require.True(t, ok)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, links)
	_, ok = extracted.Text()
	assert.False(t, ok)

	analyzed, err := client.Analyze(ctx, AnalyzeOptions{
		URL:        "https://example.com",
		Prompt:     "Classify this page",
		JSONSchema: map[string]any{"type": "object"},
	})
	require.NoError(t, err)
	assert.Equal(t, 512, *analyzed.TokensUsed)

	var out struct {
		Topic string `json:"topic"`
		Score int    `json:"score"`
	}
	require.NoError(t, analyzed.Structured(&out))
	assert.Equal(t, "examples", out.Topic)
	assert.Equal(t, 3, out.Score)
}

func TestAccountEndpoints(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		switch r.URL.Path {
		case "/v1/devices":
			w.Write([]byte(`{"success":true,"total":2,"devices":{
				"desktop":[{"id":"desktop-1080p","name":"Desktop","width":1920,"height":1080}],
				"mobile":[{"id":"iphone-15-pro","name":"iPhone 15 Pro","width":393,"height":852,"deviceScaleFactor":3,"isMobile":true}]
			}}`))
		case "/v1/capabilities":
			w.Write([]byte(`{"success":true,"version":"v2.4.1","capabilities":{"video":true,"analyze":false}}`))
		case "/v1/usage":
			w.Write([]byte(`{"used":100,"limit":100,"remaining":0,"resetAt":"2026-11-01T00:00:00Z"}`))
		case "/v1/ping":
			w.Write([]byte(`{"status":"ok","timestamp":1760572800000}`))
		}
	})
	ctx := context.Background()

	devices, err := client.Devices(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"desktop", "mobile"}, devices.Categories())
	phone, ok := devices.Find("iphone-15-pro")
	require.True(t, ok)
	assert.Equal(t, 3.0, phone.DeviceScaleFactor)
	desktop, _ := devices.Find("desktop-1080p")
	assert.Equal(t, 1.0, desktop.DeviceScaleFactor)

	caps, err := client.Capabilities(ctx)
	require.NoError(t, err)
	assert.True(t, caps.AtLeast("2.4.0"))
	assert.False(t, caps.AtLeast("3"))
	assert.True(t, caps.Supports("video"))
	assert.False(t, caps.Supports("analyze"))
	assert.False(t, caps.Supports("unknown"))

	usage, err := client.Usage(ctx)
	require.NoError(t, err)
	assert.True(t, usage.Exhausted())

	ping, err := client.Ping(ctx)
	require.NoError(t, err)
	assert.True(t, ping.OK())
	assert.Equal(t, PayloadOther, ping.Timestamp.Kind())
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantCode   string
		wantMsg    string
		wantDetail any
		check      func(t *testing.T, e *Error)
	}{
		{
			name:     "validation envelope",
			status:   http.StatusBadRequest,
			body:     `{"error":{"message":"Invalid URL","code":"INVALID_URL"}}`,
			wantCode: "INVALID_URL",
			wantMsg:  "Invalid URL",
			check:    func(t *testing.T, e *Error) { assert.True(t, e.IsValidation()) },
		},
		{
			name:       "details pass through",
			status:     http.StatusTooManyRequests,
			body:       `{"error":{"message":"Slow down","code":"RATE_LIMITED","details":{"retryAfter":30}}}`,
			wantCode:   "RATE_LIMITED",
			wantMsg:    "Slow down",
			wantDetail: map[string]any{"retryAfter": float64(30)},
			check:      func(t *testing.T, e *Error) { assert.True(t, e.IsRateLimited()) },
		},
		{
			name:     "unauthorized",
			status:   http.StatusUnauthorized,
			body:     `{"error":{"message":"Invalid API key","code":"UNAUTHORIZED"}}`,
			wantCode: "UNAUTHORIZED",
			wantMsg:  "Invalid API key",
			check:    func(t *testing.T, e *Error) { assert.True(t, e.IsUnauthorized()) },
		},
		{
			name:     "quota",
			status:   http.StatusPaymentRequired,
			body:     `{"error":{"code":"QUOTA_EXCEEDED"}}`,
			wantCode: "QUOTA_EXCEEDED",
			wantMsg:  "HTTP 402",
			check:    func(t *testing.T, e *Error) { assert.True(t, e.IsQuotaExceeded()) },
		},
		{
			name:     "unparseable body",
			status:   http.StatusInternalServerError,
			body:     `<html>oops</html>`,
			wantCode: CodeHTTPError,
			wantMsg:  "HTTP 500: Internal Server Error",
			check:    func(t *testing.T, e *Error) { assert.True(t, e.IsServerError()) },
		},
		{
			name:     "json without envelope",
			status:   http.StatusBadGateway,
			body:     `{"message":"upstream"}`,
			wantCode: CodeHTTPError,
			wantMsg:  "HTTP 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.Usage(context.Background())
			require.Error(t, err)

			apiErr, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, tt.wantDetail, apiErr.Details)
			assert.False(t, apiErr.IsConnection())
			if tt.check != nil {
				tt.check(t, apiErr)
			}
		})
	}
}

func TestConnectionErrors(t *testing.T) {
	t.Run("server unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		baseURL := server.URL
		server.Close()

		client, err := NewClient("test-key", zerolog.Nop(), WithBaseURL(baseURL))
		require.NoError(t, err)

		_, err = client.Ping(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConnection)

		apiErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeConnectionError, apiErr.Code)
		assert.Equal(t, 0, apiErr.StatusCode)
		assert.Contains(t, apiErr.Message, "Connection error")
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}, WithTimeout(50*time.Millisecond))
		defer close(release)

		_, err := client.Screenshot(context.Background(), ScreenshotOptions{URL: "https://example.com"})
		require.Error(t, err)

		apiErr, ok := AsError(err)
		require.True(t, ok)
		assert.True(t, apiErr.IsConnection())
		assert.Equal(t, 0, apiErr.StatusCode)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})

	t.Run("http client timeout", func(t *testing.T) {
		release := make(chan struct{})
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}, WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}), WithTimeout(time.Minute))
		defer close(release)

		start := time.Now()
		_, err := client.Ping(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConnection)
		assert.Less(t, time.Since(start), 30*time.Second)
	})

	t.Run("caller cancellation", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.Devices(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConnection)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDecodeError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := client.Capabilities(context.Background())
	require.Error(t, err)

	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeDecodeError, apiErr.Code)
}
