package snapapi

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// ScreenshotOptions configures a screenshot or PDF capture.
//
// Exactly one of URL, HTML or Markdown must be set. Zero-valued fields take
// the service defaults (see defaults.go); optional fields without a default
// are pointers or empty values and are only sent when set. Boolean flags are
// only ever sent as true.
type ScreenshotOptions struct {
	URL      string `json:"url,omitempty"`
	HTML     string `json:"html,omitempty"`
	Markdown string `json:"markdown,omitempty"`

	Format  Format `json:"format"`
	Quality *int   `json:"quality,omitempty"`
	// Device is a named preset such as "iphone-15-pro". When set and the
	// viewport is left at its default, the preset supplies the dimensions.
	Device            string  `json:"device,omitempty"`
	Width             int     `json:"width,omitempty"`
	Height            int     `json:"height,omitempty"`
	DeviceScaleFactor float64 `json:"deviceScaleFactor,omitempty"`
	IsMobile          bool    `json:"isMobile,omitempty"`
	HasTouch          bool    `json:"hasTouch,omitempty"`
	IsLandscape       bool    `json:"isLandscape,omitempty"`

	FullPage            bool `json:"fullPage,omitempty"`
	FullPageScrollDelay *int `json:"fullPageScrollDelay,omitempty"`
	FullPageMaxHeight   *int `json:"fullPageMaxHeight,omitempty"`

	Selector               string `json:"selector,omitempty"`
	SelectorScrollIntoView *bool  `json:"selectorScrollIntoView,omitempty"`
	// Clip rectangle; all four or none
	ClipX      *int `json:"clipX,omitempty"`
	ClipY      *int `json:"clipY,omitempty"`
	ClipWidth  *int `json:"clipWidth,omitempty"`
	ClipHeight *int `json:"clipHeight,omitempty"`

	Delay                  int       `json:"delay,omitempty"`
	Timeout                int       `json:"timeout,omitempty"`
	WaitUntil              WaitUntil `json:"waitUntil,omitempty"`
	WaitForSelector        string    `json:"waitForSelector,omitempty"`
	WaitForSelectorTimeout *int      `json:"waitForSelectorTimeout,omitempty"`

	DarkMode      bool     `json:"darkMode,omitempty"`
	ReducedMotion bool     `json:"reducedMotion,omitempty"`
	CSS           string   `json:"css,omitempty"`
	JavaScript    string   `json:"javascript,omitempty"`
	HideSelectors []string `json:"hideSelectors,omitempty"`
	ClickSelector string   `json:"clickSelector,omitempty"`
	ClickDelay    *int     `json:"clickDelay,omitempty"`

	BlockAds           bool     `json:"blockAds,omitempty"`
	BlockTrackers      bool     `json:"blockTrackers,omitempty"`
	BlockCookieBanners bool     `json:"blockCookieBanners,omitempty"`
	BlockChatWidgets   bool     `json:"blockChatWidgets,omitempty"`
	BlockResources     []string `json:"blockResources,omitempty"`

	UserAgent    string            `json:"userAgent,omitempty"`
	ExtraHeaders map[string]string `json:"extraHeaders,omitempty"`
	Cookies      []Cookie          `json:"cookies,omitempty"`
	HTTPAuth     *HTTPAuth         `json:"httpAuth,omitempty"`
	Proxy        *Proxy            `json:"proxy,omitempty"`
	Geolocation  *Geolocation      `json:"geolocation,omitempty"`
	Timezone     string            `json:"timezone,omitempty"`
	Locale       string            `json:"locale,omitempty"`

	PDFOptions      *PDFOptions             `json:"pdfOptions,omitempty"`
	Thumbnail       *ThumbnailOptions       `json:"thumbnail,omitempty"`
	ResponseType    ResponseType            `json:"responseType,omitempty"`
	IncludeMetadata bool                    `json:"includeMetadata,omitempty"`
	ExtractMetadata *ExtractMetadataOptions `json:"extractMetadata,omitempty"`

	Cache    bool `json:"cache,omitempty"`
	CacheTTL *int `json:"cacheTtl,omitempty"`

	FailOnHTTPError       bool     `json:"failOnHttpError,omitempty"`
	FailIfContentMissing  []string `json:"failIfContentMissing,omitempty"`
	FailIfContentContains []string `json:"failIfContentContains,omitempty"`
}

// Validate checks the constraints that are enforced before any request.
func (o ScreenshotOptions) Validate() error {
	switch countTargets(o.URL, o.HTML, o.Markdown) {
	case 0:
		return validationError(CodeMissingTarget, ErrMissingTarget, "url, html or markdown is required")
	case 1:
	default:
		return validationError(CodeMultipleTargets, ErrMultipleTargets, "only one of url, html or markdown may be set")
	}

	clip := 0
	for _, c := range []*int{o.ClipX, o.ClipY, o.ClipWidth, o.ClipHeight} {
		if c != nil {
			clip++
		}
	}
	if clip != 0 && clip != 4 {
		return validationError(CodeInvalidOptions, ErrInvalidOptions, "clipX, clipY, clipWidth and clipHeight must be set together")
	}

	return nil
}

// WithDefaults returns a copy with every defaulted field filled in.
func (o ScreenshotOptions) WithDefaults() ScreenshotOptions {
	o.Format = orString(o.Format, DefaultScreenshotFormat)
	o.Width = orInt(o.Width, DefaultScreenshotWidth)
	o.Height = orInt(o.Height, DefaultScreenshotHeight)
	o.DeviceScaleFactor = orFloat(o.DeviceScaleFactor, DefaultScaleFactor)
	o.Timeout = orInt(o.Timeout, DefaultScreenshotTimeout)
	o.ResponseType = orString(o.ResponseType, DefaultResponseType)
	return o
}

// MarshalJSON encodes the options as a minimal request payload: format, width
// and height are always present, everything else only when it differs from
// the service default.
func (o ScreenshotOptions) MarshalJSON() ([]byte, error) {
	type wire ScreenshotOptions
	w := wire(o.WithDefaults())

	if w.Device != "" {
		if w.Width == DefaultScreenshotWidth && w.Height == DefaultScreenshotHeight {
			w.Width, w.Height = 0, 0
		}
	}
	if w.DeviceScaleFactor == DefaultScaleFactor {
		w.DeviceScaleFactor = 0
	}
	if w.Timeout == DefaultScreenshotTimeout {
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

// ScreenshotMetadata is page metadata returned with includeMetadata.
type ScreenshotMetadata struct {
	Title          string   `json:"title,omitempty"`
	Description    string   `json:"description,omitempty"`
	Favicon        string   `json:"favicon,omitempty"`
	OGTitle        string   `json:"ogTitle,omitempty"`
	OGDescription  string   `json:"ogDescription,omitempty"`
	OGImage        string   `json:"ogImage,omitempty"`
	HTTPStatusCode *int     `json:"httpStatusCode,omitempty"`
	Fonts          []string `json:"fonts,omitempty"`
	Colors         []string `json:"colors,omitempty"`
	Links          []string `json:"links,omitempty"`
}

// ScreenshotResult is the JSON envelope returned for responseType json or base64.
type ScreenshotResult struct {
	Success   bool                `json:"success"`
	Format    Format              `json:"format"`
	Width     int                 `json:"width"`
	Height    int                 `json:"height"`
	FileSize  int64               `json:"fileSize"`
	Took      int                 `json:"took"`
	Cached    bool                `json:"cached"`
	Data      string              `json:"data,omitempty"`
	Metadata  *ScreenshotMetadata `json:"metadata,omitempty"`
	Thumbnail string              `json:"thumbnail,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler; an absent format reads as png.
func (r *ScreenshotResult) UnmarshalJSON(b []byte) error {
	type wire ScreenshotResult
	w := wire{Format: DefaultScreenshotFormat}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = ScreenshotResult(w)
	return nil
}

// Bytes decodes the base64 data payload.
func (r *ScreenshotResult) Bytes() ([]byte, error) {
	return decodeData(r.Data)
}

// decodeData accepts plain base64 or a data: URI.
func decodeData(data string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(data, "data:"); ok {
		if _, payload, found := strings.Cut(rest, ","); found {
			data = payload
		}
	}
	return base64.StdEncoding.DecodeString(data)
}
