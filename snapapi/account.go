package snapapi

import (
	"encoding/json"
	"sort"

	"github.com/blang/semver"
)

// Usage is the account's quota snapshot.
type Usage struct {
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	ResetAt   string `json:"resetAt"`
}

// Exhausted reports whether the quota has been used up.
func (u *Usage) Exhausted() bool {
	return u.Limit > 0 && u.Remaining <= 0
}

// DeviceInfo is one device preset from the catalog
type DeviceInfo struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	DeviceScaleFactor float64 `json:"deviceScaleFactor"`
	IsMobile          bool    `json:"isMobile"`
}

// UnmarshalJSON implements json.Unmarshaler; an absent scale factor reads as 1.
func (d *DeviceInfo) UnmarshalJSON(b []byte) error {
	type wire DeviceInfo
	w := wire{DeviceScaleFactor: DefaultScaleFactor}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*d = DeviceInfo(w)
	return nil
}

// Devices is the device preset catalog grouped by category (desktop, mobile, tablet, ...).
type Devices struct {
	Success bool                    `json:"success"`
	Devices map[string][]DeviceInfo `json:"devices"`
	Total   int                     `json:"total"`
}

// Categories returns the catalog's category names in sorted order.
func (d *Devices) Categories() []string {
	cats := make([]string, 0, len(d.Devices))
	for c := range d.Devices {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// Find looks a preset up by id across all categories.
func (d *Devices) Find(id string) (DeviceInfo, bool) {
	for _, list := range d.Devices {
		for _, dev := range list {
			if dev.ID == id {
				return dev, true
			}
		}
	}
	return DeviceInfo{}, false
}

// Capabilities describes the service version and feature flags.
type Capabilities struct {
	Success      bool           `json:"success"`
	Version      string         `json:"version"`
	Capabilities map[string]any `json:"capabilities"`
}

// AtLeast reports whether the service version is at or above min. An
// unparseable version on either side reports false.
func (c *Capabilities) AtLeast(min string) bool {
	have, err := semver.ParseTolerant(c.Version)
	if err != nil {
		return false
	}
	want, err := semver.ParseTolerant(min)
	if err != nil {
		return false
	}
	return have.GTE(want)
}

// Supports reports whether a feature flag is present and truthy.
func (c *Capabilities) Supports(feature string) bool {
	v, ok := c.Capabilities[feature]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case nil:
		return false
	default:
		return true
	}
}

// Ping is the liveness response.
type Ping struct {
	Status    string  `json:"status"`
	Timestamp Payload `json:"timestamp"`
}

// OK reports whether the service reported itself healthy.
func (p *Ping) OK() bool {
	return p.Status == "ok"
}
