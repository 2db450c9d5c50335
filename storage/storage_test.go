package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/snapctl/config"
)

func TestFileStorage(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := New(ctx, config.OutputConfig{Directory: dir})
	require.NoError(t, err)

	location, err := s.Put(ctx, "shots/example.com.png", []byte("\x89PNG"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "shots", "example.com.png"), location)

	onDisk, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), onDisk)

	data, err := s.Get(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, onDisk, data)

	_, err = s.Get(ctx, filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestFileStorageCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := NewFileStorage(ctx, FileConfig{Directory: t.TempDir()})
	require.NoError(t, err)

	_, err = s.Put(ctx, "a.png", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.Get(ctx, "a.png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseTarget(t *testing.T) {
	base := config.OutputConfig{Directory: ".", S3: config.S3Config{Endpoint: "http://minio:9000"}}

	tests := []struct {
		name    string
		target  string
		want    config.OutputConfig
		wantErr bool
	}{
		{
			name:   "empty keeps config",
			target: "",
			want:   base,
		},
		{
			name:   "directory",
			target: "out/shots",
			want:   config.OutputConfig{Directory: "out/shots", S3: config.S3Config{Endpoint: "http://minio:9000"}},
		},
		{
			name:   "bucket with prefix",
			target: "s3://captures/nightly/run-1",
			want: config.OutputConfig{Directory: ".", S3: config.S3Config{
				Bucket: "captures", Prefix: "nightly/run-1", Endpoint: "http://minio:9000",
			}},
		},
		{
			name:   "bucket only",
			target: "s3://captures",
			want:   config.OutputConfig{Directory: ".", S3: config.S3Config{Bucket: "captures", Endpoint: "http://minio:9000"}},
		},
		{
			name:    "missing bucket",
			target:  "s3:///prefix",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTarget(tt.target, base)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJoinKey(t *testing.T) {
	assert.Equal(t, "a.png", joinKey("", "a.png"))
	assert.Equal(t, "nightly/a.png", joinKey("nightly/", "a.png"))
	assert.Equal(t, "nightly/run/a.png", joinKey("nightly/run", "a.png"))
}
