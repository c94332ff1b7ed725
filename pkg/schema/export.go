// Package schema exports JSON Schemas for the panel's two wire documents,
// the embedded results block and the fuzz.start payload, and validates
// documents against them.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/ormasoftchile/fuzzpanel/pkg/overrides"
	"github.com/ormasoftchile/fuzzpanel/pkg/results"
)

const (
	PayloadSchemaID = "https://github.com/ormasoftchile/fuzzpanel/schemas/payload-v0.json"
	ResultsSchemaID = "https://github.com/ormasoftchile/fuzzpanel/schemas/results-v0.json"
)

// GeneratePayloadSchema produces a JSON Schema Draft 2020-12 document for
// the fuzz.start payload.
func GeneratePayloadSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&overrides.Payload{})
	s.ID = PayloadSchemaID
	s.Title = "Fuzzer overrides v0"
	s.Description = "Payload of the fuzz.start command sent to the fuzzing engine"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal payload schema: %w", err)
	}
	return data, nil
}

// GenerateResultsSchema produces a JSON Schema Draft 2020-12 document for
// the embedded results block. Unknown record fields are allowed since the
// engine may report more than the panel displays.
func GenerateResultsSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false
	r.AllowAdditionalProperties = true
	r.Mapper = func(t reflect.Type) *jsonschema.Schema {
		if t == reflect.TypeOf(results.Value{}) {
			// any JSON value, including null
			return &jsonschema.Schema{}
		}
		return nil
	}

	s := r.Reflect(&results.Document{})
	s.ID = ResultsSchemaID
	s.Title = "Fuzz results v0"
	s.Description = "Historical fuzz-run results embedded in the fuzz panel"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal results schema: %w", err)
	}
	return data, nil
}
