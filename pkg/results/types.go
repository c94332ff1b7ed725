// Package results classifies historical fuzz-run records into the four
// display grids of the fuzz panel: timeout, exception, badOutput and passed.
package results

import (
	"encoding/json"
	"fmt"
)

// Document is the embedded results block. An empty object ({}) carries no
// Results and means there is nothing to display.
type Document struct {
	Results []Record `json:"results,omitempty"`
}

// Record is one historical test case as reported by the fuzzing engine.
type Record struct {
	Input            []Arg    `json:"input"`
	Output           []Output `json:"output"`
	Passed           bool     `json:"passed"`
	Exception        bool     `json:"exception,omitempty"`
	ExceptionMessage string   `json:"exceptionMessage,omitempty"`
	Timeout          bool     `json:"timeout,omitempty"`
}

// Arg is one declared function parameter and the value it was called with.
type Arg struct {
	Name  string `json:"name"`
	Value Value  `json:"value,omitempty,omitzero"`
}

// Output is the (single) return value of a test case.
type Output struct {
	Value Value `json:"value,omitempty,omitzero"`
}

// Value is a JSON value that remembers whether it was present at all.
// An omitted "value" key is absent; an explicit null is present.
type Value struct {
	raw json.RawMessage
	set bool
}

// NewValue wraps an already-encoded JSON value.
func NewValue(raw string) Value {
	return Value{raw: json.RawMessage(raw), set: true}
}

// Present reports whether the value was supplied.
func (v Value) Present() bool { return v.set }

// IsZero lets encoding/json omit absent values via omitzero.
func (v Value) IsZero() bool { return !v.set }

// Text renders the value the way the panel displays it: compact JSON with
// numbers in their shortest round-trip form (1.0 is 1, 1e2 is 100).
func (v Value) Text() string {
	text, err := canonicalJSON(v.raw)
	if err != nil {
		return string(v.raw)
	}
	return text
}

// UnmarshalJSON implements json.Unmarshaler. It is called for null too,
// which is what keeps null distinct from absent.
func (v *Value) UnmarshalJSON(data []byte) error {
	v.raw = append(v.raw[:0], data...)
	v.set = true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.set {
		return []byte("null"), nil
	}
	return v.raw, nil
}

// Validate checks the invariants the classifier relies on.
func (r *Record) Validate() error {
	for i, a := range r.Input {
		if a.Name == "" {
			return fmt.Errorf("input[%d]: argument name is empty", i)
		}
	}
	if len(r.Output) > 1 {
		return fmt.Errorf("output: expected at most 1 value, got %d", len(r.Output))
	}
	return nil
}

// Decode parses a results document. Structural checks against the JSON
// Schema happen in package schema; Decode only requires valid JSON.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return &doc, nil
}
