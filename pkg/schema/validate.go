package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidationError represents a single validation error with location context.
type ValidationError struct {
	Phase    string `json:"phase"` // structural, semantic
	Path     string `json:"path"`  // JSON-pointer-like location (e.g. "results/0/passed")
	Message  string `json:"message"`
	Severity string `json:"severity"` // error, warning
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %s", e.Phase, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Phase, e.Path, e.Message)
}

// HasErrors reports whether any non-warning error is present.
func HasErrors(errs []*ValidationError) bool {
	for _, e := range errs {
		if e.Severity != "warning" {
			return true
		}
	}
	return false
}

// First returns the first non-warning error, or nil.
func First(errs []*ValidationError) *ValidationError {
	for _, e := range errs {
		if e.Severity != "warning" {
			return e
		}
	}
	return nil
}

// ValidateResults checks a results document (already unescaped) against the
// results schema.
func ValidateResults(data []byte) []*ValidationError {
	return validateDocument(data, "results-v0.json", GenerateResultsSchema)
}

// ValidatePayload checks a serialized fuzz.start payload against the
// payload schema.
func ValidatePayload(data []byte) []*ValidationError {
	return validateDocument(data, "payload-v0.json", GeneratePayloadSchema)
}

// validateDocument runs the two phases: structural (valid JSON) and
// semantic (JSON Schema).
func validateDocument(data []byte, resource string, generate func() ([]byte, error)) []*ValidationError {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return []*ValidationError{{
			Phase:    "structural",
			Message:  fmt.Sprintf("parse document: %v", err),
			Severity: "error",
		}}
	}

	sch, err := compile(resource, generate)
	if err != nil {
		return []*ValidationError{{
			Phase:    "semantic",
			Message:  err.Error(),
			Severity: "error",
		}}
	}

	if err := sch.Validate(doc); err != nil {
		var errs []*ValidationError
		if ve, ok := err.(*sjsonschema.ValidationError); ok {
			for _, cause := range flattenValidationErrors(ve) {
				errs = append(errs, &ValidationError{
					Phase:    "semantic",
					Path:     strings.Join(cause.InstanceLocation, "/"),
					Message:  fmt.Sprintf("%v", cause.ErrorKind),
					Severity: "error",
				})
			}
		} else {
			errs = append(errs, &ValidationError{
				Phase:    "semantic",
				Message:  err.Error(),
				Severity: "error",
			})
		}
		return errs
	}
	return nil
}

func compile(resource string, generate func() ([]byte, error)) (*sjsonschema.Schema, error) {
	schemaJSON, err := generate()
	if err != nil {
		return nil, fmt.Errorf("generate schema: %w", err)
	}
	var schemaDoc interface{}
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	c := sjsonschema.NewCompiler()
	if err := c.AddResource(resource, schemaDoc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := c.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return sch, nil
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}
