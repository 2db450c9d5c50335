package snapapi

import "encoding/json"

// ScrollAnimation scrolls the page while a video is being recorded.
type ScrollAnimation struct {
	Enabled bool `json:"scroll,omitempty"`
	// StepDelay is the pause between scroll steps in ms
	StepDelay *int `json:"scrollDelay,omitempty"`
	// StepDuration is the animation length of a single step in ms
	StepDuration *int         `json:"scrollDuration,omitempty"`
	StepPixels   *int         `json:"scrollBy,omitempty"`
	Easing       ScrollEasing `json:"scrollEasing,omitempty"`
	BackToTop    bool         `json:"scrollBack,omitempty"`
	// UntilComplete keeps scrolling until the bottom of the page is reached
	UntilComplete bool `json:"scrollComplete,omitempty"`
}

// VideoOptions configures a video capture. Only URL targets are supported.
type VideoOptions struct {
	URL string `json:"url"`

	Format   VideoFormat `json:"format"`
	Quality  *int        `json:"quality,omitempty"`
	Width    int         `json:"width,omitempty"`
	Height   int         `json:"height,omitempty"`
	Device   string      `json:"device,omitempty"`
	Duration int         `json:"duration"`
	FPS      int         `json:"fps"`

	Delay           int       `json:"delay,omitempty"`
	Timeout         int       `json:"timeout,omitempty"`
	WaitUntil       WaitUntil `json:"waitUntil,omitempty"`
	WaitForSelector string    `json:"waitForSelector,omitempty"`

	DarkMode           bool     `json:"darkMode,omitempty"`
	BlockAds           bool     `json:"blockAds,omitempty"`
	BlockCookieBanners bool     `json:"blockCookieBanners,omitempty"`
	CSS                string   `json:"css,omitempty"`
	JavaScript         string   `json:"javascript,omitempty"`
	HideSelectors      []string `json:"hideSelectors,omitempty"`
	UserAgent          string   `json:"userAgent,omitempty"`
	Cookies            []Cookie `json:"cookies,omitempty"`

	ResponseType ResponseType `json:"responseType,omitempty"`

	// Scroll keys are flattened into the top-level payload.
	*ScrollAnimation
}

// Validate checks the constraints that are enforced before any request.
func (o VideoOptions) Validate() error {
	if o.URL == "" {
		return validationError(CodeMissingTarget, ErrMissingTarget, "url is required for video capture")
	}
	return nil
}

// WithDefaults returns a copy with every defaulted field filled in.
func (o VideoOptions) WithDefaults() VideoOptions {
	o.Format = orString(o.Format, DefaultVideoFormat)
	o.Width = orInt(o.Width, DefaultVideoWidth)
	o.Height = orInt(o.Height, DefaultVideoHeight)
	o.Duration = orInt(o.Duration, DefaultVideoDuration)
	o.FPS = orInt(o.FPS, DefaultVideoFPS)
	o.Timeout = orInt(o.Timeout, DefaultVideoTimeout)
	o.ResponseType = orString(o.ResponseType, DefaultResponseType)
	return o
}

// MarshalJSON implements json.Marshaler with the same omit-if-default rule as
// ScreenshotOptions.
func (o VideoOptions) MarshalJSON() ([]byte, error) {
	type wire VideoOptions
	w := wire(o.WithDefaults())

	if w.Device != "" && w.Width == DefaultVideoWidth && w.Height == DefaultVideoHeight {
		w.Width, w.Height = 0, 0
	}
	if w.Timeout == DefaultVideoTimeout {
		w.Timeout = 0
	}
	if w.ResponseType == DefaultResponseType {
		w.ResponseType = ""
	}
	if w.Delay < 0 {
		w.Delay = 0
	}

	return json.Marshal(w)
}

// VideoResult is the JSON envelope returned for responseType json or base64.
type VideoResult struct {
	Success  bool        `json:"success"`
	Format   VideoFormat `json:"format"`
	Width    int         `json:"width"`
	Height   int         `json:"height"`
	FileSize int64       `json:"fileSize"`
	Duration int         `json:"duration"`
	Took     int         `json:"took"`
	Data     string      `json:"data,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler; an absent format reads as mp4.
func (r *VideoResult) UnmarshalJSON(b []byte) error {
	type wire VideoResult
	w := wire{Format: DefaultVideoFormat}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = VideoResult(w)
	return nil
}

// Bytes decodes the base64 data payload.
func (r *VideoResult) Bytes() ([]byte, error) {
	return decodeData(r.Data)
}
