package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileConfig configures the local directory backend
type FileConfig struct {
	Directory string
}

// fileStorage writes keys below a directory. Locations it hands out are
// plain paths and are read back as such.
type fileStorage struct {
	dir string
}

// NewFileStorage creates a file backend rooted at f.Directory, or the
// working directory when unset
func NewFileStorage(ctx context.Context, f FileConfig) (Storage, error) {
	dir := f.Directory
	if dir == "" {
		dir = "."
	}
	return &fileStorage{dir: dir}, nil
}

func (f *fileStorage) path(key string) string {
	return filepath.Join(f.dir, filepath.FromSlash(key))
}

func (f *fileStorage) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	location := f.path(key)
	if err := os.MkdirAll(filepath.Dir(location), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(location, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", location, err)
	}
	return location, nil
}

// Get reads a location returned by Put, or any other path on disk
func (f *fileStorage) Get(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(location)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("failed to read %s: is a directory", location)
	}

	return os.ReadFile(location)
}
