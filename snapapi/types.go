package snapapi

import "encoding/json"

// Format is the output format of a screenshot
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
	FormatAVIF Format = "avif"
	FormatPDF  Format = "pdf"
)

// VideoFormat is the output container of a video capture
type VideoFormat string

const (
	VideoMP4  VideoFormat = "mp4"
	VideoWebM VideoFormat = "webm"
	VideoGIF  VideoFormat = "gif"
)

// ResponseType selects between a raw binary body and a JSON envelope
type ResponseType string

const (
	ResponseBinary ResponseType = "binary"
	ResponseBase64 ResponseType = "base64"
	ResponseJSON   ResponseType = "json"
)

// IsEnvelope reports whether the response body is a JSON envelope.
func (rt ResponseType) IsEnvelope() bool {
	return rt == ResponseBase64 || rt == ResponseJSON
}

// WaitUntil is the page lifecycle event to wait for before capturing
type WaitUntil string

const (
	WaitLoad             WaitUntil = "load"
	WaitDOMContentLoaded WaitUntil = "domcontentloaded"
	WaitNetworkIdle      WaitUntil = "networkidle"
)

// SameSite is a cookie SameSite attribute
type SameSite string

const (
	SameSiteStrict SameSite = "Strict"
	SameSiteLax    SameSite = "Lax"
	SameSiteNone   SameSite = "None"
)

// ScrollEasing is the easing curve of a scroll animation step
type ScrollEasing string

const (
	EaseLinear     ScrollEasing = "linear"
	EaseIn         ScrollEasing = "ease_in"
	EaseOut        ScrollEasing = "ease_out"
	EaseInOut      ScrollEasing = "ease_in_out"
	EaseInOutQuint ScrollEasing = "ease_in_out_quint"
)

// ExtractType selects what an extraction returns
type ExtractType string

const (
	ExtractMarkdown   ExtractType = "markdown"
	ExtractText       ExtractType = "text"
	ExtractHTML       ExtractType = "html"
	ExtractArticle    ExtractType = "article"
	ExtractStructured ExtractType = "structured"
	ExtractLinks      ExtractType = "links"
	ExtractImages     ExtractType = "images"
	ExtractMetadata   ExtractType = "metadata"
)

// Provider is the third-party AI provider used by Analyze
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Enum values are sent as-is; the service is authoritative on which values
// it accepts.

// Cookie is set in the browser context before navigation.
type Cookie struct {
	Name     string   `json:"name"`
	Value    string   `json:"value"`
	Domain   string   `json:"domain,omitempty"`
	Path     string   `json:"path,omitempty"`
	Expires  int64    `json:"expires,omitempty"` // epoch seconds
	HTTPOnly *bool    `json:"httpOnly,omitempty"`
	Secure   *bool    `json:"secure,omitempty"`
	SameSite SameSite `json:"sameSite,omitempty"`
}

// HTTPAuth holds HTTP basic authentication credentials
type HTTPAuth struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Proxy routes the capture through an upstream proxy
type Proxy struct {
	Server   string   `json:"server"`
	Username string   `json:"username,omitempty"`
	Password string   `json:"password,omitempty"`
	Bypass   []string `json:"bypass,omitempty"`
}

// Geolocation overrides the browser's reported position
type Geolocation struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

// PDFOptions controls PDF rendering. Unset fields use the service defaults.
type PDFOptions struct {
	PageSize            string   `json:"pageSize,omitempty"` // a4, a3, a5, letter, legal, tabloid, custom
	Width               string   `json:"width,omitempty"`
	Height              string   `json:"height,omitempty"`
	Landscape           *bool    `json:"landscape,omitempty"`
	MarginTop           string   `json:"marginTop,omitempty"`
	MarginRight         string   `json:"marginRight,omitempty"`
	MarginBottom        string   `json:"marginBottom,omitempty"`
	MarginLeft          string   `json:"marginLeft,omitempty"`
	PrintBackground     *bool    `json:"printBackground,omitempty"`
	HeaderTemplate      string   `json:"headerTemplate,omitempty"`
	FooterTemplate      string   `json:"footerTemplate,omitempty"`
	DisplayHeaderFooter *bool    `json:"displayHeaderFooter,omitempty"`
	Scale               *float64 `json:"scale,omitempty"`
	PageRanges          string   `json:"pageRanges,omitempty"`
	PreferCSSPageSize   *bool    `json:"preferCSSPageSize,omitempty"`
}

// ThumbnailOptions requests a thumbnail alongside the capture.
// Enabled defaults to true and is always sent.
type ThumbnailOptions struct {
	Enabled *bool  `json:"enabled,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Fit     string `json:"fit,omitempty"` // cover, contain, fill
}

// MarshalJSON implements json.Marshaler
func (t ThumbnailOptions) MarshalJSON() ([]byte, error) {
	type wire ThumbnailOptions
	w := wire(t)
	if w.Enabled == nil {
		w.Enabled = Bool(true)
	}
	return json.Marshal(w)
}

// ExtractMetadataOptions selects additional page metadata to return
type ExtractMetadataOptions struct {
	Fonts          *bool `json:"fonts,omitempty"`
	Colors         *bool `json:"colors,omitempty"`
	Links          *bool `json:"links,omitempty"`
	HTTPStatusCode *bool `json:"httpStatusCode,omitempty"`
}
