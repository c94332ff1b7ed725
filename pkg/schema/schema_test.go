package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ormasoftchile/fuzzpanel/pkg/overrides"
)

func TestGeneratedSchemasAreJSON(t *testing.T) {
	for name, gen := range map[string]func() ([]byte, error){
		"payload": GeneratePayloadSchema,
		"results": GenerateResultsSchema,
	} {
		data, err := gen()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("%s: schema is not JSON: %v", name, err)
		}
		if doc["$id"] == nil {
			t.Errorf("%s: schema has no $id", name)
		}
	}
}

func TestValidateResultsAcceptsEngineOutput(t *testing.T) {
	docs := []string{
		`{}`,
		`{"results":[]}`,
		`{"results":[{"input":[{"name":"x","value":5}],"output":[{"value":10}],"passed":true}]}`,
		`{"results":[{"input":[{"name":"x"}],"output":[{}],"passed":false,"timeout":true,"elapsedTime":12}]}`,
		`{"results":[{"input":[{"name":"x","value":null}],"output":[],"passed":false,"exception":true,"exceptionMessage":"boom"}]}`,
	}
	for _, d := range docs {
		if errs := ValidateResults([]byte(d)); HasErrors(errs) {
			t.Errorf("%s rejected: %v", d, First(errs))
		}
	}
}

func TestValidateResultsRejectsMissingFields(t *testing.T) {
	errs := ValidateResults([]byte(`{"results":[{"input":[{"name":"x"}],"output":[]}]}`))
	if !HasErrors(errs) {
		t.Fatal("expected error for record without passed")
	}
	found := false
	for _, e := range errs {
		if strings.Contains(e.Error(), "passed") {
			found = true
		}
	}
	if !found {
		t.Errorf("no error mentions passed: %v", errs)
	}
}

func TestValidateResultsRejectsBadJSON(t *testing.T) {
	errs := ValidateResults([]byte(`{"results":[`))
	if len(errs) != 1 || errs[0].Phase != "structural" {
		t.Errorf("errs = %v, want one structural error", errs)
	}
}

func TestValidatePayloadRoundTrip(t *testing.T) {
	ten := 10
	yes := true
	o := overrides.Overrides{
		Fuzzer: overrides.FuzzerSettings{MaxTests: &ten},
		Args: []overrides.ArgOverride{
			{Range: &overrides.NumRange{Min: 0, Max: 1}, NumInteger: &yes},
			{Bool: &overrides.BoolRange{Min: false, Max: true}},
			{DimLength: []overrides.LenRange{{Min: 0, Max: 3}}},
		},
	}
	data, err := json.Marshal(o.Payload())
	if err != nil {
		t.Fatal(err)
	}
	if errs := ValidatePayload(data); HasErrors(errs) {
		t.Errorf("payload %s rejected: %v", data, First(errs))
	}
}

func TestValidatePayloadRejectsWrongTypes(t *testing.T) {
	bad := []string{
		`{"fuzzer":{},"args":[{"min":"0"}]}`,
		`{"fuzzer":{"maxTests":"many"},"args":[]}`,
		`{"args":[]}`,
	}
	for _, d := range bad {
		if errs := ValidatePayload([]byte(d)); !HasErrors(errs) {
			t.Errorf("%s accepted", d)
		}
	}
}
