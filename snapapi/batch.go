package snapapi

import (
	"encoding/json"
	"fmt"
)

// BatchOptions submits several URLs with shared capture options.
// An empty URL list is forwarded; the service decides batch size limits.
type BatchOptions struct {
	URLs               []string `json:"urls"`
	Format             Format   `json:"format"`
	Quality            *int     `json:"quality,omitempty"`
	Width              int      `json:"width"`
	Height             int      `json:"height"`
	FullPage           bool     `json:"fullPage,omitempty"`
	WebhookURL         string   `json:"webhookUrl,omitempty"`
	DarkMode           bool     `json:"darkMode,omitempty"`
	BlockAds           bool     `json:"blockAds,omitempty"`
	BlockCookieBanners bool     `json:"blockCookieBanners,omitempty"`
}

// WithDefaults returns a copy with every defaulted field filled in.
func (o BatchOptions) WithDefaults() BatchOptions {
	o.Format = orString(o.Format, DefaultScreenshotFormat)
	o.Width = orInt(o.Width, DefaultScreenshotWidth)
	o.Height = orInt(o.Height, DefaultScreenshotHeight)
	if o.URLs == nil {
		o.URLs = []string{}
	}
	return o
}

// MarshalJSON implements json.Marshaler
func (o BatchOptions) MarshalJSON() ([]byte, error) {
	type wire BatchOptions
	return json.Marshal(wire(o.WithDefaults()))
}

// BatchResultItem is the per-URL state inside a batch job.
type BatchResultItem struct {
	URL      string    `json:"url"`
	Status   JobStatus `json:"status"`
	Data     string    `json:"data,omitempty"`
	Error    string    `json:"error,omitempty"`
	Duration *int      `json:"duration,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler; an absent status reads as pending.
func (i *BatchResultItem) UnmarshalJSON(b []byte) error {
	type wire BatchResultItem
	w := wire{Status: JobPending}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*i = BatchResultItem(w)
	return nil
}

// Bytes decodes the item's base64 data payload.
func (i *BatchResultItem) Bytes() ([]byte, error) {
	return decodeData(i.Data)
}

// BatchResult is a snapshot of a batch job, returned both on submission and
// on every status poll.
type BatchResult struct {
	Success     bool              `json:"success"`
	JobID       string            `json:"jobId"`
	Status      JobStatus         `json:"status"`
	Total       int               `json:"total"`
	Completed   *int              `json:"completed,omitempty"`
	Failed      *int              `json:"failed,omitempty"`
	Results     []BatchResultItem `json:"results,omitempty"`
	CreatedAt   string            `json:"createdAt,omitempty"`
	CompletedAt string            `json:"completedAt,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler; an absent status reads as processing.
func (r *BatchResult) UnmarshalJSON(b []byte) error {
	type wire BatchResult
	w := wire{Status: JobProcessing}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if len(w.Results) == 0 {
		w.Results = nil
	}
	*r = BatchResult(w)
	return nil
}

// Settled counts items that have reached a terminal per-item status.
func (r *BatchResult) Settled() int {
	n := 0
	for _, item := range r.Results {
		if item.Status.IsTerminal() {
			n++
		}
	}
	return n
}

// Done reports whether the job itself has reached a terminal state.
func (r *BatchResult) Done() bool {
	return r.Status.IsTerminal()
}

// Validate checks the counters reported by the service for consistency.
func (r *BatchResult) Validate() error {
	completed, failed := 0, 0
	if r.Completed != nil {
		completed = *r.Completed
	}
	if r.Failed != nil {
		failed = *r.Failed
	}
	if completed+failed > r.Total {
		return fmt.Errorf("batch %s: completed (%d) + failed (%d) exceeds total (%d)", r.JobID, completed, failed, r.Total)
	}
	if r.Results != nil && len(r.Results) != r.Total {
		return fmt.Errorf("batch %s: %d results for %d urls", r.JobID, len(r.Results), r.Total)
	}
	return nil
}
