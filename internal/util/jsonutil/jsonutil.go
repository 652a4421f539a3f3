// Package jsonutil extracts typed JSON payloads from raw model text.
// Models routinely wrap their JSON in markdown code fences; the helpers
// here strip only the fence markers and otherwise insist on valid JSON.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// MalformedError reports model output that did not parse as the expected
// JSON. Msg is the caller-supplied, stage-specific message so the failure
// stays attributable ("failed to parse topic ideas" etc).
type MalformedError struct {
	Msg string
	Err error
}

func (e *MalformedError) Error() string { return e.Msg }
func (e *MalformedError) Unwrap() error { return e.Err }

var fenceRe = regexp.MustCompile("```json\n?|```")

// StripFences removes markdown triple-backtick fence markers (with an
// optional "json" tag) and trims surrounding whitespace. The payload
// itself is left untouched.
func StripFences(raw string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(raw, ""))
}

// Decode strips fence markers from raw and unmarshals the rest into v.
// On any parse failure it returns a *MalformedError carrying msg; no
// partial result is ever produced.
func Decode(raw string, v any, msg string) error {
	cleaned := StripFences(raw)
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return &MalformedError{Msg: msg, Err: fmt.Errorf("jsonutil: %w (raw %q)", err, truncate(raw, 200))}
	}
	return nil
}

// MarshalNoEscape encodes v into JSON without escaping <, >, & into
// < etc. Used for request bodies that carry markdown and URLs.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
