package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/s0up4200/snapctl/config"
	"github.com/s0up4200/snapctl/snapapi"
	"github.com/s0up4200/snapctl/storage"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// outputKey derives a storage key for a capture of target. URLs become
// host_path, with a short hash of the full URL appended when the query,
// fragment or a non-https scheme would otherwise collide with another URL.
// Anything else is named after prefix and the current time.
func outputKey(target, prefix, ext string, now time.Time) string {
	name := ""
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		name = u.Host + strings.TrimSuffix(u.Path, "/")
		if u.RawQuery != "" || u.Fragment != "" || u.Scheme != "https" {
			name += "-" + shortHash(target)
		}
	}
	if name == "" {
		name = fmt.Sprintf("%s-%s", prefix, now.UTC().Format("20060102-150405"))
	}

	name = unsafeKeyChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	return name + "." + ext
}

func shortHash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}

// saveOutput stores data under name, or under a key derived from target
// when name is empty, and reports the location.
func saveOutput(ctx context.Context, store storage.Storage, w io.Writer, target, name, ext string, data []byte) (string, error) {
	key := name
	if key == "" {
		key = outputKey(target, "capture", ext, time.Now())
	}

	location, err := store.Put(ctx, key, data)
	if err != nil {
		return "", err
	}

	fmt.Fprintf(w, "✓ Saved %s (%s)\n", location, formatBytes(len(data)))
	return location, nil
}

// captureExtension picks the file extension for captured bytes: the
// requested format when known, otherwise the sniffed content type, falling
// back to the default screenshot format.
func captureExtension(data []byte, format snapapi.Format) string {
	if format != "" {
		return string(format)
	}

	switch http.DetectContentType(data) {
	case "image/png":
		return string(snapapi.FormatPNG)
	case "image/jpeg":
		return string(snapapi.FormatJPEG)
	case "image/webp":
		return string(snapapi.FormatWebP)
	case "application/pdf":
		return string(snapapi.FormatPDF)
	}
	return string(snapapi.DefaultScreenshotFormat)
}

func formatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := int64(n) / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readInput returns the contents of a local path, an s3://bucket/key
// location, or stdin for "-"
func readInput(ctx context.Context, location string) (string, error) {
	if location == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := readSource(ctx, location)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readSource fetches a local path or s3://bucket/key through storage,
// using the configured S3 endpoint
func readSource(ctx context.Context, location string) ([]byte, error) {
	var base config.OutputConfig
	if cfg != nil {
		base = cfg.Output
	}
	return storage.Read(ctx, location, base)
}
