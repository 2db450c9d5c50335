package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/snapctl/snapapi"
)

// captureFlags holds the flags shared by screenshot, pdf and async submit
type captureFlags struct {
	htmlFile     string
	markdownFile string
	name         string

	format       string
	quality      int
	device       string
	width        int
	height       int
	scale        float64
	mobile       bool
	fullPage     bool
	selector     string
	delay        int
	timeout      int
	waitUntil    string
	waitFor      string
	darkMode     bool
	blockAds     bool
	blockBanners bool
	css          string
	javascript   string
	hide         []string
	userAgent    string
	cache        bool
	metadata     bool
}

func (f *captureFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.htmlFile, "html-file", "", "render an HTML file or s3://bucket/key instead of a URL (- for stdin)")
	fl.StringVar(&f.markdownFile, "markdown-file", "", "render a Markdown file or s3://bucket/key instead of a URL (- for stdin)")
	fl.StringVar(&f.name, "name", "", "output key (default derived from the URL)")

	fl.StringVarP(&f.format, "format", "f", "", "image format: png, jpeg, webp, avif")
	fl.IntVar(&f.quality, "quality", -1, "image quality 0-100 (jpeg/webp)")
	fl.StringVar(&f.device, "device", "", "device preset, see 'snapctl devices'")
	fl.IntVar(&f.width, "width", 0, "viewport width")
	fl.IntVar(&f.height, "height", 0, "viewport height")
	fl.Float64Var(&f.scale, "scale", 0, "device scale factor")
	fl.BoolVar(&f.mobile, "mobile", false, "emulate a mobile device")
	fl.BoolVar(&f.fullPage, "full-page", false, "capture the full scrollable page")
	fl.StringVar(&f.selector, "selector", "", "capture a single element")
	fl.IntVar(&f.delay, "delay", 0, "delay before capture in ms")
	fl.IntVar(&f.timeout, "render-timeout", 0, "server-side render timeout in ms")
	fl.StringVar(&f.waitUntil, "wait-until", "", "load, domcontentloaded or networkidle")
	fl.StringVar(&f.waitFor, "wait-for", "", "wait for a selector before capture")
	fl.BoolVar(&f.darkMode, "dark-mode", false, "emulate prefers-color-scheme: dark")
	fl.BoolVar(&f.blockAds, "block-ads", false, "block ads")
	fl.BoolVar(&f.blockBanners, "block-cookie-banners", false, "hide cookie banners")
	fl.StringVar(&f.css, "css", "", "CSS to inject")
	fl.StringVar(&f.javascript, "js", "", "JavaScript to run before capture")
	fl.StringSliceVar(&f.hide, "hide", nil, "selectors to hide")
	fl.StringVar(&f.userAgent, "user-agent", "", "browser user agent")
	fl.BoolVar(&f.cache, "cache", false, "allow a cached capture")
	fl.BoolVar(&f.metadata, "metadata", false, "print page metadata (uses the JSON response)")
}

// options builds the capture options. target is the positional argument,
// if any.
func (f *captureFlags) options(ctx context.Context, target string) (snapapi.ScreenshotOptions, error) {
	opts := snapapi.ScreenshotOptions{
		URL:                target,
		Format:             snapapi.Format(f.format),
		Device:             f.device,
		Width:              f.width,
		Height:             f.height,
		DeviceScaleFactor:  f.scale,
		IsMobile:           f.mobile,
		FullPage:           f.fullPage,
		Selector:           f.selector,
		Delay:              f.delay,
		Timeout:            f.timeout,
		WaitUntil:          snapapi.WaitUntil(f.waitUntil),
		WaitForSelector:    f.waitFor,
		DarkMode:           f.darkMode,
		BlockAds:           f.blockAds,
		BlockCookieBanners: f.blockBanners,
		CSS:                f.css,
		JavaScript:         f.javascript,
		HideSelectors:      f.hide,
		UserAgent:          f.userAgent,
		Cache:              f.cache,
		IncludeMetadata:    f.metadata,
	}
	if f.quality >= 0 {
		opts.Quality = snapapi.Int(f.quality)
	}

	if f.htmlFile != "" {
		html, err := readInput(ctx, f.htmlFile)
		if err != nil {
			return opts, err
		}
		opts.HTML = html
	}
	if f.markdownFile != "" {
		md, err := readInput(ctx, f.markdownFile)
		if err != nil {
			return opts, err
		}
		opts.Markdown = md
	}

	return opts, opts.Validate()
}

func firstArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

var (
	screenshotFlags captureFlags
	pdfFlags        captureFlags
	pdfSettings     pdfFlagSet
	videoSettings   videoFlagSet
)

// screenshotCmd represents the screenshot command
var screenshotCmd = &cobra.Command{
	Use:   "screenshot [url]",
	Short: "Capture a screenshot of a URL, HTML or Markdown",
	Example: `  snapctl screenshot https://example.com --full-page
  snapctl screenshot https://example.com --device iphone-15-pro -o s3://captures/mobile
  snapctl screenshot --markdown-file README.md --dark-mode`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotFlags.register(screenshotCmd)
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	target := firstArg(args)

	opts, err := screenshotFlags.options(ctx, target)
	if err != nil {
		return err
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}

	logger.Info().
		Str("target", describeTarget(opts)).
		Str("format", string(opts.WithDefaults().Format)).
		Msg("Capturing screenshot")

	data, err := screenshotBytes(ctx, opts, cmd)
	if err != nil {
		return err
	}

	_, err = saveOutput(ctx, store, cmd.OutOrStdout(), target, screenshotFlags.name, string(opts.WithDefaults().Format), data)
	return err
}

// screenshotBytes captures and returns the image. With --metadata the JSON
// response is used and the metadata printed.
func screenshotBytes(ctx context.Context, opts snapapi.ScreenshotOptions, cmd *cobra.Command) ([]byte, error) {
	if !opts.IncludeMetadata {
		return client.Screenshot(ctx, opts)
	}

	result, err := client.ScreenshotJSON(ctx, opts)
	if err != nil {
		return nil, err
	}
	if result.Metadata != nil {
		if err := printJSON(cmd.OutOrStdout(), result.Metadata); err != nil {
			return nil, err
		}
	}
	return result.Bytes()
}

func describeTarget(opts snapapi.ScreenshotOptions) string {
	switch {
	case opts.URL != "":
		return opts.URL
	case opts.HTML != "":
		return fmt.Sprintf("html (%d bytes)", len(opts.HTML))
	default:
		return fmt.Sprintf("markdown (%d bytes)", len(opts.Markdown))
	}
}

// pdfFlagSet holds PDF page settings
type pdfFlagSet struct {
	pageSize   string
	landscape  bool
	background bool
	margin     string
	scale      float64
	pageRanges string
}

// pdfCmd represents the pdf command
var pdfCmd = &cobra.Command{
	Use:     "pdf [url]",
	Short:   "Render a URL, HTML or Markdown to PDF",
	Example: `  snapctl pdf https://example.com --page-size a4 --print-background`,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runPDF,
}

func init() {
	rootCmd.AddCommand(pdfCmd)
	pdfFlags.register(pdfCmd)

	fl := pdfCmd.Flags()
	fl.StringVar(&pdfSettings.pageSize, "page-size", "", "a4, a3, a5, letter, legal or tabloid")
	fl.BoolVar(&pdfSettings.landscape, "landscape", false, "landscape orientation")
	fl.BoolVar(&pdfSettings.background, "print-background", false, "print background graphics")
	fl.StringVar(&pdfSettings.margin, "margin", "", "margin applied to all sides, e.g. 1cm")
	fl.Float64Var(&pdfSettings.scale, "pdf-scale", 0, "page rendering scale")
	fl.StringVar(&pdfSettings.pageRanges, "pages", "", "page ranges, e.g. 1-3,5")
}

// pdfOptions returns nil when no PDF setting was given
func (p pdfFlagSet) pdfOptions() *snapapi.PDFOptions {
	if p == (pdfFlagSet{}) {
		return nil
	}

	opts := &snapapi.PDFOptions{
		PageSize:     p.pageSize,
		MarginTop:    p.margin,
		MarginRight:  p.margin,
		MarginBottom: p.margin,
		MarginLeft:   p.margin,
		PageRanges:   p.pageRanges,
	}
	if p.landscape {
		opts.Landscape = snapapi.Bool(true)
	}
	if p.background {
		opts.PrintBackground = snapapi.Bool(true)
	}
	if p.scale > 0 {
		opts.Scale = snapapi.Float64(p.scale)
	}
	return opts
}

func runPDF(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	target := firstArg(args)

	opts, err := pdfFlags.options(ctx, target)
	if err != nil {
		return err
	}
	opts.PDFOptions = pdfSettings.pdfOptions()

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}

	logger.Info().Str("target", describeTarget(opts)).Msg("Rendering PDF")

	data, err := client.PDF(ctx, opts)
	if err != nil {
		return err
	}

	_, err = saveOutput(ctx, store, cmd.OutOrStdout(), target, pdfFlags.name, string(snapapi.FormatPDF), data)
	return err
}

// videoFlagSet holds the video command flags
type videoFlagSet struct {
	name         string
	format       string
	width        int
	height       int
	device       string
	duration     int
	fps          int
	delay        int
	darkMode     bool
	blockAds     bool
	blockBanners bool
	scroll       bool
	scrollBy     int
	scrollDelay  int
	scrollEasing string
	scrollBack   bool
	scrollAll    bool
}

// options builds the video options for url
func (v videoFlagSet) options(url string) (snapapi.VideoOptions, error) {
	opts := snapapi.VideoOptions{
		URL:                url,
		Format:             snapapi.VideoFormat(v.format),
		Width:              v.width,
		Height:             v.height,
		Device:             v.device,
		Duration:           v.duration,
		FPS:                v.fps,
		Delay:              v.delay,
		DarkMode:           v.darkMode,
		BlockAds:           v.blockAds,
		BlockCookieBanners: v.blockBanners,
	}

	if v.scroll {
		opts.ScrollAnimation = &snapapi.ScrollAnimation{
			Enabled:       true,
			Easing:        snapapi.ScrollEasing(v.scrollEasing),
			BackToTop:     v.scrollBack,
			UntilComplete: v.scrollAll,
		}
		if v.scrollBy > 0 {
			opts.StepPixels = snapapi.Int(v.scrollBy)
		}
		if v.scrollDelay > 0 {
			opts.StepDelay = snapapi.Int(v.scrollDelay)
		}
	}

	return opts, opts.Validate()
}

// videoCmd represents the video command
var videoCmd = &cobra.Command{
	Use:     "video <url>",
	Short:   "Record a video of a page",
	Example: `  snapctl video https://example.com --scroll --scroll-easing ease_in_out --format webm`,
	Args:    cobra.ExactArgs(1),
	RunE:    runVideo,
}

func init() {
	rootCmd.AddCommand(videoCmd)

	fl := videoCmd.Flags()
	fl.StringVar(&videoSettings.name, "name", "", "output key (default derived from the URL)")
	fl.StringVarP(&videoSettings.format, "format", "f", "", "mp4, webm or gif")
	fl.IntVar(&videoSettings.width, "width", 0, "viewport width")
	fl.IntVar(&videoSettings.height, "height", 0, "viewport height")
	fl.StringVar(&videoSettings.device, "device", "", "device preset")
	fl.IntVar(&videoSettings.duration, "duration", 0, "recording length in ms")
	fl.IntVar(&videoSettings.fps, "fps", 0, "frames per second")
	fl.IntVar(&videoSettings.delay, "delay", 0, "delay before recording in ms")
	fl.BoolVar(&videoSettings.darkMode, "dark-mode", false, "emulate prefers-color-scheme: dark")
	fl.BoolVar(&videoSettings.blockAds, "block-ads", false, "block ads")
	fl.BoolVar(&videoSettings.blockBanners, "block-cookie-banners", false, "hide cookie banners")
	fl.BoolVar(&videoSettings.scroll, "scroll", false, "scroll the page while recording")
	fl.IntVar(&videoSettings.scrollBy, "scroll-by", 0, "pixels per scroll step")
	fl.IntVar(&videoSettings.scrollDelay, "scroll-delay", 0, "pause between scroll steps in ms")
	fl.StringVar(&videoSettings.scrollEasing, "scroll-easing", "", "linear, ease_in, ease_out, ease_in_out, ease_in_out_quint")
	fl.BoolVar(&videoSettings.scrollBack, "scroll-back", false, "scroll back to the top at the end")
	fl.BoolVar(&videoSettings.scrollAll, "scroll-complete", false, "keep scrolling until the bottom is reached")
}

func runVideo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	opts, err := videoSettings.options(args[0])
	if err != nil {
		return err
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}

	logger.Info().
		Str("url", opts.URL).
		Int("duration_ms", opts.WithDefaults().Duration).
		Msg("Recording video")

	data, err := client.Video(ctx, opts)
	if err != nil {
		return err
	}

	_, err = saveOutput(ctx, store, cmd.OutOrStdout(), opts.URL, videoSettings.name, string(opts.WithDefaults().Format), data)
	return err
}
