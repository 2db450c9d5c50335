package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/snapctl/config"
	"github.com/s0up4200/snapctl/snapapi"
	"github.com/s0up4200/snapctl/storage"
)

var (
	cfgFile      string
	outputTarget string
	cfg          *config.Config
	logger       zerolog.Logger
	client       *snapapi.Client

	appVersion = "dev"
	buildTime  = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "snapctl",
	Short: "Capture screenshots, PDFs and videos with SnapAPI",
	Long: `snapctl is a command line client for the SnapAPI rendering service.

It captures screenshots, PDFs and videos of web pages, HTML and Markdown,
extracts page content, runs AI analysis, and manages batch and async jobs.
Captured files are written to a local directory or an S3 bucket.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// SetVersion records the build version reported by the version and update commands
func SetVersion(version, built string) {
	appVersion = version
	buildTime = built
	rootCmd.Version = version
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputTarget, "output", "o", "", "output directory or s3://bucket/prefix (overrides output.* config)")
}

// initializeApp loads the configuration and creates the SnapAPI client
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging, os.Stderr)

	client, err = snapapi.NewClient(cfg.APIKey, logger,
		snapapi.WithBaseURL(cfg.BaseURL),
		snapapi.WithTimeout(cfg.Timeout),
		snapapi.WithUserAgent(userAgent()),
	)
	if err != nil {
		return fmt.Errorf("failed to create SnapAPI client: %w", err)
	}

	logger.Debug().
		Str("base_url", client.BaseURL()).
		Dur("timeout", cfg.Timeout).
		Msg("SnapAPI client ready")

	return nil
}

// initializeLogger is used by commands that need no API access
func initializeLogger(cmd *cobra.Command, args []string) error {
	logger = setupLogger(config.LoggingConfig{Level: "info", Format: "console", Color: true}, os.Stderr)
	return nil
}

func userAgent() string {
	return fmt.Sprintf("snapctl/%s snapapi-go/%s", appVersion, snapapi.Version)
}

// openStorage resolves --output against the configured output
func openStorage(ctx context.Context) (storage.Storage, error) {
	target, err := storage.ParseTarget(outputTarget, cfg.Output)
	if err != nil {
		return nil, err
	}

	store, err := storage.New(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to open output storage: %w", err)
	}
	return store, nil
}

// setupLogger configures the zerolog logger. Colour is dropped when out is
// not a terminal.
func setupLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	if cfg.Format == "json" {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal(out),
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
