// Package snapapi provides a client for the SnapAPI rendering service.
//
// SnapAPI renders web pages in a headless browser and returns screenshots,
// PDFs, videos, extracted content and AI analysis results.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := snapapi.NewClient(
//		"your-api-key",
//		logger,
//		snapapi.WithTimeout(30*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	png, err := client.Screenshot(ctx, snapapi.ScreenshotOptions{
//		URL:      "https://example.com",
//		FullPage: true,
//	})
//
// # Options
//
// Options are plain structs. Zero values take the service defaults listed in
// defaults.go and are left off the wire; boolean flags are only sent as true.
// Optional fields without a default are pointers, set with Int, Bool and
// Float64. A missing capture target is rejected before any request is made.
//
// # Jobs
//
// Batch and ScreenshotAsync return the initial job snapshot. BatchStatus and
// AsyncStatus fetch the current one. The client never polls on its own; use
// ProgressMonitor to check that successive batch snapshots only move forward.
//
// # Error Handling
//
// Every operation returns *Error on failure:
//
//	if apiErr, ok := snapapi.AsError(err); ok {
//		switch {
//		case apiErr.IsRateLimited():
//			// back off
//		case apiErr.IsConnection():
//			// no response was received
//		}
//	}
//
// Local validation failures wrap ErrMissingTarget, ErrMultipleTargets or
// ErrInvalidOptions and can be matched with errors.Is.
package snapapi
