package snapapi

import (
	"bytes"
	"encoding/json"
)

// PayloadKind is the JSON shape of a polymorphic response field.
type PayloadKind int

const (
	// PayloadNone means the field was absent or null
	PayloadNone PayloadKind = iota
	PayloadString
	PayloadList
	PayloadObject
	// PayloadOther covers numbers and booleans
	PayloadOther
)

// String returns the string representation of a PayloadKind
func (k PayloadKind) String() string {
	switch k {
	case PayloadString:
		return "string"
	case PayloadList:
		return "list"
	case PayloadObject:
		return "object"
	case PayloadOther:
		return "other"
	default:
		return "none"
	}
}

// Payload holds a response field whose shape depends on the request, such as
// extraction content or an analysis result. It is tagged by its JSON shape and
// keeps the raw bytes, so shapes added by the service later still decode via
// Decode.
type Payload struct {
	kind PayloadKind
	raw  json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Payload) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	p.raw = append(p.raw[:0], trimmed...)
	p.kind = kindOf(trimmed)
	if p.kind == PayloadNone {
		p.raw = nil
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (p Payload) MarshalJSON() ([]byte, error) {
	if p.kind == PayloadNone {
		return []byte("null"), nil
	}
	return p.raw, nil
}

func kindOf(b []byte) PayloadKind {
	if len(b) == 0 {
		return PayloadNone
	}
	switch b[0] {
	case 'n':
		return PayloadNone
	case '"':
		return PayloadString
	case '[':
		return PayloadList
	case '{':
		return PayloadObject
	default:
		return PayloadOther
	}
}

// Kind reports the JSON shape of the payload.
func (p Payload) Kind() PayloadKind { return p.kind }

// IsZero reports whether the payload was absent.
func (p Payload) IsZero() bool { return p.kind == PayloadNone }

// Raw returns the undecoded JSON.
func (p Payload) Raw() json.RawMessage { return p.raw }

// Text returns the payload as a string, for markdown, text and html content.
func (p Payload) Text() (string, bool) {
	if p.kind != PayloadString {
		return "", false
	}
	var s string
	if err := json.Unmarshal(p.raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Strings returns the payload as a list of strings, for links and images
// content returned as plain URLs.
func (p Payload) Strings() ([]string, bool) {
	if p.kind != PayloadList {
		return nil, false
	}
	var out []string
	if err := json.Unmarshal(p.raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

// Object returns the payload as a generic JSON object.
func (p Payload) Object() (map[string]any, bool) {
	if p.kind != PayloadObject {
		return nil, false
	}
	var out map[string]any
	if err := json.Unmarshal(p.raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

// Decode unmarshals the payload into v.
func (p Payload) Decode(v any) error {
	if p.kind == PayloadNone {
		return nil
	}
	return json.Unmarshal(p.raw, v)
}

// NewPayload wraps an already-encoded JSON value.
func NewPayload(raw json.RawMessage) Payload {
	var p Payload
	_ = p.UnmarshalJSON(raw)
	return p
}
