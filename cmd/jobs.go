package cmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/snapctl/snapapi"
	"github.com/s0up4200/snapctl/storage"
)

var (
	batchFile     string
	batchFormat   string
	batchFullPage bool
	batchWebhook  string
	batchWait     bool
	batchSave     bool

	asyncFlags captureFlags
	asyncWait  bool
)

// batchCmd groups the batch job commands
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Submit and track batch screenshot jobs",
}

var batchSubmitCmd = &cobra.Command{
	Use:   "submit [url...]",
	Short: "Submit a batch of URLs",
	Example: `  snapctl batch submit https://a.example https://b.example --wait
  snapctl batch submit --file urls.txt --webhook https://hooks.example/snap`,
	RunE: runBatchSubmit,
}

var batchStatusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show the current state of a batch job",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatchStatus,
}

var batchWaitCmd = &cobra.Command{
	Use:   "wait <job-id>",
	Short: "Poll a batch job until it finishes",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatchWait,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.AddCommand(batchSubmitCmd, batchStatusCmd, batchWaitCmd)

	fl := batchSubmitCmd.Flags()
	fl.StringVar(&batchFile, "file", "", "read URLs from a file or s3://bucket/key, one per line (- for stdin)")
	fl.StringVarP(&batchFormat, "format", "f", "", "image format")
	fl.BoolVar(&batchFullPage, "full-page", false, "capture full pages")
	fl.StringVar(&batchWebhook, "webhook", "", "URL notified when the batch finishes")
	fl.BoolVar(&batchWait, "wait", false, "wait for the batch to finish")

	batchWaitCmd.Flags().StringVarP(&batchFormat, "format", "f", "", "file extension for saved captures (default sniffed from the data)")

	for _, c := range []*cobra.Command{batchSubmitCmd, batchWaitCmd} {
		c.Flags().BoolVar(&batchSave, "save", true, "save completed captures when the batch finishes")
	}
}

// readURLs merges positional URLs with those listed in file, which may be a
// local path, an s3://bucket/key location or "-" for stdin. Blank lines and
// lines starting with # are skipped.
func readURLs(ctx context.Context, args []string, file string, stdin io.Reader) ([]string, error) {
	urls := append([]string(nil), args...)
	if file == "" {
		return urls, nil
	}

	r := stdin
	if file != "-" {
		data, err := readSource(ctx, file)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(data)
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URLs: %w", err)
	}
	return urls, nil
}

func runBatchSubmit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	urls, err := readURLs(ctx, args, batchFile, cmd.InOrStdin())
	if err != nil {
		return err
	}

	result, err := client.Batch(ctx, snapapi.BatchOptions{
		URLs:       urls,
		Format:     snapapi.Format(batchFormat),
		FullPage:   batchFullPage,
		WebhookURL: batchWebhook,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Batch %s submitted: %d URLs, status %s\n", result.JobID, result.Total, result.Status)

	if !batchWait {
		return nil
	}
	return waitAndReportBatch(ctx, cmd.OutOrStdout(), result.JobID, snapapi.Format(batchFormat))
}

func runBatchStatus(cmd *cobra.Command, args []string) error {
	result, err := client.BatchStatus(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printBatch(cmd.OutOrStdout(), result)
	return nil
}

func runBatchWait(cmd *cobra.Command, args []string) error {
	return waitAndReportBatch(cmd.Context(), cmd.OutOrStdout(), args[0], snapapi.Format(batchFormat))
}

func waitAndReportBatch(ctx context.Context, w io.Writer, jobID string, format snapapi.Format) error {
	poller := newJobPoller(client, cfg.Polling, logger)

	result, err := poller.waitBatch(ctx, jobID, func(r *snapapi.BatchResult) {
		fmt.Fprintf(w, "  %s: %d/%d settled\n", r.Status, r.Settled(), r.Total)
	})
	if err != nil {
		if result != nil {
			printBatch(w, result)
		}
		return err
	}

	printBatch(w, result)
	if !batchSave {
		return nil
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	return saveBatchResults(ctx, w, store, result, format)
}

// saveBatchResults stores every completed item that carries data. Without a
// format the extension is taken from the decoded bytes.
func saveBatchResults(ctx context.Context, w io.Writer, store storage.Storage, result *snapapi.BatchResult, format snapapi.Format) error {
	for _, item := range result.Results {
		if item.Status != snapapi.JobCompleted || item.Data == "" {
			continue
		}

		data, err := item.Bytes()
		if err != nil {
			logger.Warn().Err(err).Str("url", item.URL).Msg("Failed to decode batch item")
			continue
		}

		if _, err := saveOutput(ctx, store, w, item.URL, "", captureExtension(data, format), data); err != nil {
			return err
		}
	}
	return nil
}

func printBatch(w io.Writer, r *snapapi.BatchResult) {
	fmt.Fprintf(w, "\nBatch %s: %s\n", r.JobID, r.Status)
	fmt.Fprintln(w, strings.Repeat("━", 80))
	fmt.Fprintf(w, "%-10s %-50s %s\n", "STATUS", "URL", "DETAIL")
	fmt.Fprintln(w, strings.Repeat("━", 80))

	for _, item := range r.Results {
		detail := ""
		switch {
		case item.Error != "":
			detail = item.Error
		case item.Duration != nil:
			detail = fmt.Sprintf("%dms", *item.Duration)
		}

		u := item.URL
		if len(u) > 48 {
			u = u[:45] + "..."
		}
		fmt.Fprintf(w, "%-10s %-50s %s\n", item.Status, u, detail)
	}
	fmt.Fprintln(w, strings.Repeat("━", 80))
	fmt.Fprintf(w, "%d/%d settled\n", r.Settled(), r.Total)
}

// asyncCmd groups the async job commands
var asyncCmd = &cobra.Command{
	Use:   "async",
	Short: "Submit and track single background screenshots",
}

var asyncSubmitCmd = &cobra.Command{
	Use:   "submit [url]",
	Short: "Submit a screenshot as a background job",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAsyncSubmit,
}

var asyncStatusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show the current state of an async job",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsyncStatus,
}

var asyncWaitCmd = &cobra.Command{
	Use:   "wait <job-id>",
	Short: "Poll an async job until it finishes and save the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsyncWait,
}

func init() {
	rootCmd.AddCommand(asyncCmd)
	asyncCmd.AddCommand(asyncSubmitCmd, asyncStatusCmd, asyncWaitCmd)

	asyncFlags.register(asyncSubmitCmd)
	asyncSubmitCmd.Flags().BoolVar(&asyncWait, "wait", false, "wait for the job and save the result")
	asyncWaitCmd.Flags().StringVar(&asyncFlags.name, "name", "", "output key (default derived from the job id)")
}

func runAsyncSubmit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	opts, err := asyncFlags.options(ctx, firstArg(args))
	if err != nil {
		return err
	}

	job, err := client.ScreenshotAsync(ctx, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Async job %s submitted, status %s\n", job.JobID, job.Status)
	if !asyncWait {
		return nil
	}
	return waitAndSaveAsync(ctx, cmd.OutOrStdout(), job.JobID)
}

func runAsyncStatus(cmd *cobra.Command, args []string) error {
	job, err := client.AsyncStatus(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printAsync(cmd.OutOrStdout(), job)
	return nil
}

func runAsyncWait(cmd *cobra.Command, args []string) error {
	return waitAndSaveAsync(cmd.Context(), cmd.OutOrStdout(), args[0])
}

func waitAndSaveAsync(ctx context.Context, w io.Writer, jobID string) error {
	poller := newJobPoller(client, cfg.Polling, logger)

	job, err := poller.waitAsync(ctx, jobID)
	if err != nil {
		return err
	}
	printAsync(w, job)

	if job.Status == snapapi.JobFailed {
		return fmt.Errorf("async job %s failed: %s", job.JobID, job.Error)
	}
	if job.Result == nil || job.Result.Data == "" {
		return nil
	}

	data, err := job.Result.Bytes()
	if err != nil {
		return fmt.Errorf("failed to decode job result: %w", err)
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}

	name := asyncFlags.name
	if name == "" {
		name = outputKey("", job.JobID, string(job.Result.Format), time.Now())
	}
	_, err = saveOutput(ctx, store, w, "", name, string(job.Result.Format), data)
	return err
}

func printAsync(w io.Writer, job *snapapi.AsyncJob) {
	fmt.Fprintf(w, "Job %s: %s\n", job.JobID, job.Status)
	if job.Error != "" {
		fmt.Fprintf(w, "  Error: %s\n", job.Error)
	}
	if job.Result != nil {
		fmt.Fprintf(w, "  Result: %s %dx%d, %s\n", job.Result.Format, job.Result.Width, job.Result.Height, formatBytes(int(job.Result.FileSize)))
	}
}
