package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/snapctl/config"
)

// fakeBucket is a path-style S3 endpoint holding objects in memory
type fakeBucket struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		b.objects[r.URL.Path] = data
		b.contentTypes[r.URL.Path] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := b.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		_, _ = w.Write(data)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (b *fakeBucket) put(path string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[path] = data
}

func (b *fakeBucket) object(path string) ([]byte, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.objects[path], b.contentTypes[path]
}

func newFakeBucket(t *testing.T) (*fakeBucket, string) {
	t.Helper()
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	bucket := &fakeBucket{objects: map[string][]byte{}, contentTypes: map[string]string{}}
	server := httptest.NewServer(bucket)
	t.Cleanup(server.Close)
	return bucket, server.URL
}

func TestS3Storage(t *testing.T) {
	bucket, endpoint := newFakeBucket(t)
	ctx := context.Background()

	s, err := New(ctx, config.OutputConfig{S3: config.S3Config{Bucket: "captures", Prefix: "nightly", Endpoint: endpoint}})
	require.NoError(t, err)

	png := []byte("\x89PNG\r\n\x1a\n0000")
	location, err := s.Put(ctx, "example.com.png", png)
	require.NoError(t, err)
	assert.Equal(t, "s3://captures/nightly/example.com.png", location)
	stored, contentType := bucket.object("/captures/nightly/example.com.png")
	assert.Equal(t, png, stored)
	assert.Equal(t, "image/png", contentType)

	data, err := s.Get(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, png, data)

	data, err = s.Get(ctx, "example.com.png")
	require.NoError(t, err)
	assert.Equal(t, png, data)

	_, err = s.Get(ctx, "s3://other/nightly/example.com.png")
	assert.Error(t, err)

	_, err = s.Get(ctx, "missing.png")
	assert.Error(t, err)
}

func TestRead(t *testing.T) {
	bucket, endpoint := newFakeBucket(t)
	bucket.put("/inputs/lists/urls.txt", []byte("https://a.example\n"))
	base := config.OutputConfig{Directory: "out", S3: config.S3Config{Endpoint: endpoint}}
	ctx := context.Background()

	t.Run("s3 object", func(t *testing.T) {
		data, err := Read(ctx, "s3://inputs/lists/urls.txt", base)
		require.NoError(t, err)
		assert.Equal(t, "https://a.example\n", string(data))
	})

	t.Run("s3 without key", func(t *testing.T) {
		_, err := Read(ctx, "s3://inputs", base)
		assert.Error(t, err)
	})

	t.Run("local file", func(t *testing.T) {
		s, err := NewFileStorage(ctx, FileConfig{Directory: t.TempDir()})
		require.NoError(t, err)
		location, err := s.Put(ctx, "schema.json", []byte(`{"type":"object"}`))
		require.NoError(t, err)

		data, err := Read(ctx, location, base)
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"object"}`, string(data))
	})

	t.Run("directory", func(t *testing.T) {
		_, err := Read(ctx, t.TempDir(), base)
		assert.Error(t, err)
	})
}
