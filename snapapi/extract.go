package snapapi

import "encoding/json"

// ExtractOptions configures a content extraction.
type ExtractOptions struct {
	URL                string      `json:"url"`
	Type               ExtractType `json:"type"`
	Selector           string      `json:"selector,omitempty"`
	WaitFor            string      `json:"waitFor,omitempty"`
	Timeout            *int        `json:"timeout,omitempty"`
	DarkMode           bool        `json:"darkMode,omitempty"`
	BlockAds           bool        `json:"blockAds,omitempty"`
	BlockCookieBanners bool        `json:"blockCookieBanners,omitempty"`
	IncludeImages      *bool       `json:"includeImages,omitempty"`
	MaxLength          *int        `json:"maxLength,omitempty"`
	CleanOutput        *bool       `json:"cleanOutput,omitempty"`
}

// Validate checks the constraints that are enforced before any request.
func (o ExtractOptions) Validate() error {
	if o.URL == "" {
		return validationError(CodeMissingTarget, ErrMissingTarget, "url is required for extraction")
	}
	return nil
}

// MarshalJSON implements json.Marshaler; type defaults to markdown and is always sent.
func (o ExtractOptions) MarshalJSON() ([]byte, error) {
	type wire ExtractOptions
	w := wire(o)
	w.Type = orString(w.Type, DefaultExtractType)
	return json.Marshal(w)
}

// ExtractResult carries type-dependent content: a string for markdown, text
// and html; a list for links and images; an object for article, structured
// and metadata. Content.Kind tells which.
type ExtractResult struct {
	Success bool        `json:"success"`
	Type    ExtractType `json:"type"`
	Content Payload     `json:"content"`
	URL     string      `json:"url,omitempty"`
	Title   string      `json:"title,omitempty"`
	Took    *int        `json:"took,omitempty"`
	Cached  bool        `json:"cached"`
}

// Text returns string content, if the extraction produced one.
func (r *ExtractResult) Text() (string, bool) {
	return r.Content.Text()
}
