// Package storage writes captured output to a local directory or an S3 bucket.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/s0up4200/snapctl/config"
)

// Storage is a sink for captured files
type Storage interface {
	// Put stores data with the given key and returns the storage URL
	Put(ctx context.Context, key string, data []byte) (string, error)
	// Get retrieves data from the given storage URL
	Get(ctx context.Context, url string) ([]byte, error)
}

// New returns the S3 backend when a bucket is configured and the file
// backend otherwise.
func New(ctx context.Context, cfg config.OutputConfig) (Storage, error) {
	if cfg.S3.Bucket != "" {
		return NewS3Storage(ctx, S3Config{
			Bucket:   cfg.S3.Bucket,
			Prefix:   cfg.S3.Prefix,
			Endpoint: cfg.S3.Endpoint,
		})
	}
	return NewFileStorage(ctx, FileConfig{Directory: cfg.Directory})
}

// Read fetches a single object by location: s3://bucket/key through the S3
// backend (endpoint taken from base), anything else from disk.
func Read(ctx context.Context, location string, base config.OutputConfig) ([]byte, error) {
	if !strings.HasPrefix(location, "s3://") {
		store, err := NewFileStorage(ctx, FileConfig{})
		if err != nil {
			return nil, err
		}
		return store.Get(ctx, location)
	}

	target, err := ParseTarget(location, base)
	if err != nil {
		return nil, err
	}
	if target.S3.Prefix == "" {
		return nil, fmt.Errorf("invalid S3 location %q: key is required", location)
	}

	store, err := NewS3Storage(ctx, S3Config{Bucket: target.S3.Bucket, Endpoint: target.S3.Endpoint})
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, location)
}

// ParseTarget turns an --output value into an OutputConfig. s3://bucket/prefix
// selects S3; anything else is a directory.
func ParseTarget(target string, base config.OutputConfig) (config.OutputConfig, error) {
	if target == "" {
		return base, nil
	}

	rest, ok := strings.CutPrefix(target, "s3://")
	if !ok {
		base.Directory = target
		base.S3.Bucket = ""
		return base, nil
	}

	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return base, fmt.Errorf("invalid S3 target %q: bucket is required", target)
	}
	base.S3.Bucket = bucket
	base.S3.Prefix = prefix
	return base, nil
}

// joinKey prefixes key, keeping exactly one separator between the two.
func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}
