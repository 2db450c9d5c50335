package snapapi

import "strings"

// AnalyzeOptions asks an AI provider a question about a rendered page.
// APIKey is the caller's provider credential, not the snapapi key.
type AnalyzeOptions struct {
	URL                string         `json:"url"`
	Prompt             string         `json:"prompt"`
	Provider           Provider       `json:"provider,omitempty"`
	APIKey             string         `json:"apiKey,omitempty"`
	Model              string         `json:"model,omitempty"`
	JSONSchema         map[string]any `json:"jsonSchema,omitempty"`
	Timeout            *int           `json:"timeout,omitempty"`
	WaitFor            string         `json:"waitFor,omitempty"`
	BlockAds           bool           `json:"blockAds,omitempty"`
	BlockCookieBanners bool           `json:"blockCookieBanners,omitempty"`
	IncludeScreenshot  *bool          `json:"includeScreenshot,omitempty"`
	IncludeMetadata    *bool          `json:"includeMetadata,omitempty"`
	MaxContentLength   *int           `json:"maxContentLength,omitempty"`
}

// Validate checks the constraints that are enforced before any request.
func (o AnalyzeOptions) Validate() error {
	if o.URL == "" {
		return validationError(CodeMissingTarget, ErrMissingTarget, "url is required for analysis")
	}
	if strings.TrimSpace(o.Prompt) == "" {
		return validationError(CodeInvalidOptions, ErrInvalidOptions, "prompt is required for analysis")
	}
	return nil
}

// AnalyzeResult is the provider's answer. Result is a string for free-form
// prompts and an object when a JSON schema was supplied.
type AnalyzeResult struct {
	Success    bool           `json:"success"`
	Result     Payload        `json:"result"`
	URL        string         `json:"url,omitempty"`
	Model      string         `json:"model,omitempty"`
	Provider   Provider       `json:"provider,omitempty"`
	Took       *int           `json:"took,omitempty"`
	TokensUsed *int           `json:"tokensUsed,omitempty"`
	Screenshot string         `json:"screenshot,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Structured decodes a schema-shaped result into v.
func (r *AnalyzeResult) Structured(v any) error {
	return r.Result.Decode(v)
}
