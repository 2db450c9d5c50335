package snapapi

// Server-side defaults. Options are normalized against these before they are
// encoded, and any field still equal to its default is left off the wire.
const (
	DefaultScreenshotFormat  = FormatPNG
	DefaultScreenshotWidth   = 1280
	DefaultScreenshotHeight  = 800
	DefaultScaleFactor       = 1.0
	DefaultScreenshotTimeout = 30000

	DefaultVideoFormat   = VideoMP4
	DefaultVideoWidth    = 1280
	DefaultVideoHeight   = 720
	DefaultVideoDuration = 5000
	DefaultVideoFPS      = 24
	DefaultVideoTimeout  = 60000

	DefaultResponseType = ResponseBinary
	DefaultExtractType  = ExtractMarkdown
)

// Int returns a pointer to v, for optional integer fields.
func Int(v int) *int { return &v }

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// Bool returns a pointer to v, for tri-state flags.
func Bool(v bool) *bool { return &v }

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

func orString[T ~string](v, def T) T {
	if v == "" {
		return def
	}
	return v
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// countTargets reports how many of the capture targets are non-empty.
func countTargets(targets ...string) int {
	n := 0
	for _, t := range targets {
		if t != "" {
			n++
		}
	}
	return n
}
