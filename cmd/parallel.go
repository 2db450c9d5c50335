package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/s0up4200/snapctl/config"
	"github.com/s0up4200/snapctl/snapapi"
	"github.com/s0up4200/snapctl/storage"
)

var (
	parallelFlags captureFlags
	parallelFile  string
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture [url...]",
	Short: "Capture many URLs in parallel",
	Long: `Capture screenshots of many URLs concurrently and write them to the
output storage. Concurrency and request rate come from capture.* config.
A failed URL does not stop the others.`,
	Example: `  snapctl capture --file urls.txt -o s3://captures/daily --full-page`,
	RunE:    runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	parallelFlags.register(captureCmd)
	captureCmd.Flags().StringVar(&parallelFile, "file", "", "read URLs from a file or s3://bucket/key, one per line (- for stdin)")
}

// captureResult is the outcome for one URL
type captureResult struct {
	URL      string
	Location string
	Size     int
	Err      error
}

// captureRunner fans screenshots out over a bounded number of goroutines
type captureRunner struct {
	capturer snapapi.Capturer
	store    storage.Storage
	settings config.CaptureConfig
	logger   zerolog.Logger
}

// run captures every URL with base as the shared options. Results are in
// input order.
func (r *captureRunner) run(ctx context.Context, urls []string, base snapapi.ScreenshotOptions) ([]captureResult, error) {
	results := make([]captureResult, len(urls))

	var limiter *rate.Limiter
	if r.settings.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.settings.RatePerSecond), r.settings.Burst)
	}

	g, ctx := errgroup.WithContext(ctx)
	if r.settings.Concurrency > 0 {
		g.SetLimit(r.settings.Concurrency)
	}

	var mu sync.Mutex
	done := 0

	ext := string(base.WithDefaults().Format)
	for i, u := range urls {
		results[i].URL = u

		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return err
				}
			}

			opts := base
			opts.URL = u
			start := time.Now()

			data, err := r.capturer.Screenshot(ctx, opts)
			if err == nil {
				results[i].Size = len(data)
				results[i].Location, err = r.store.Put(ctx, outputKey(u, "capture", ext, start), data)
			}
			results[i].Err = err

			mu.Lock()
			done++
			progress := done
			mu.Unlock()

			event := r.logger.Info()
			if err != nil {
				event = r.logger.Warn().Err(err)
			}
			event.
				Str("url", u).
				Int("done", progress).
				Int("total", len(urls)).
				Dur("took", time.Since(start)).
				Msg("Capture finished")

			// Per-URL failures are recorded, not propagated
			return nil
		})
	}

	return results, g.Wait()
}

func runCapture(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	urls, err := readURLs(ctx, args, parallelFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs given")
	}

	base, err := parallelFlags.options(ctx, "")
	if err != nil && !errors.Is(err, snapapi.ErrMissingTarget) {
		return err
	}
	if base.HTML != "" || base.Markdown != "" {
		return fmt.Errorf("capture only accepts URLs")
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}

	runner := &captureRunner{
		capturer: client,
		store:    store,
		settings: cfg.Capture,
		logger:   logger,
	}

	logger.Info().
		Int("urls", len(urls)).
		Int("concurrency", cfg.Capture.Concurrency).
		Float64("rate_per_second", cfg.Capture.RatePerSecond).
		Msg("Starting parallel capture")

	results, err := runner.run(ctx, urls, base)
	if err != nil {
		return err
	}
	return reportCaptures(cmd.OutOrStdout(), results)
}

// reportCaptures prints a summary and fails if any URL failed
func reportCaptures(w io.Writer, results []captureResult) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "✗ %s: %v\n", r.URL, r.Err)
			continue
		}
		fmt.Fprintf(w, "✓ %s → %s (%s)\n", r.URL, r.Location, formatBytes(r.Size))
	}

	fmt.Fprintf(w, "\n%d captured, %d failed\n", len(results)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d captures failed", failed, len(results))
	}
	return nil
}
