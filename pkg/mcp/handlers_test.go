package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ormasoftchile/fuzzpanel/pkg/entity"
)

const sampleResults = `{"results":[
{"input":[{"name":"x","value":1}],"output":[{"value":2}],"passed":true},
{"input":[{"name":"x","value":0}],"output":[],"passed":false,"exception":true,"exceptionMessage":"Error: it's zero"}
]}`

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Content[0])
	}
	return tc.Text
}

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := h(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	return result
}

func TestHandleClassify_Inline(t *testing.T) {
	result := call(t, HandleClassify, map[string]any{"results": sampleResults})
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	text := resultText(t, result)
	if !strings.HasPrefix(text, "timeout=0 exception=1 badOutput=0 passed=1") {
		t.Errorf("unexpected counts line: %s", text)
	}
	if !strings.Contains(text, `"exception": "Error: it's zero"`) {
		t.Errorf("exception message missing: %s", text)
	}
}

func TestHandleClassify_EscapedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.html.txt")
	if err := os.WriteFile(path, []byte(entity.Escape(sampleResults)), 0o644); err != nil {
		t.Fatal(err)
	}
	result := call(t, HandleClassify, map[string]any{"path": path, "escaped": true, "where": `category == "passed"`})
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	if !strings.HasPrefix(resultText(t, result), "timeout=0 exception=0 badOutput=0 passed=1") {
		t.Errorf("filter not applied: %s", resultText(t, result))
	}
}

func TestHandleClassify_MissingInput(t *testing.T) {
	if result := call(t, HandleClassify, map[string]any{}); !result.IsError {
		t.Error("expected error for missing results")
	}
}

func TestHandleClassify_SchemaViolation(t *testing.T) {
	result := call(t, HandleClassify, map[string]any{"results": `{"results":[{"input":[],"output":[]}]}`})
	if !result.IsError {
		t.Fatal("expected error for record without passed")
	}
	if !strings.Contains(resultText(t, result), "[semantic]") {
		t.Errorf("expected a schema error, got %s", resultText(t, result))
	}
}

func TestHandleExtract_Panel(t *testing.T) {
	panel := `
globals: [maxTests]
args:
  - name: n
    type: number
values:
  fuzz-maxTests: "10"
  argDef-0-min: "0"
  argDef-0-max: "9"
checked:
  argDef-0-numInteger: true
`
	result := call(t, HandleExtract, map[string]any{"panel": panel})
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	want := `{"fuzzer":{"maxTests":10},"args":[{"min":0,"max":9,"numInteger":true}]}`
	if got := resultText(t, result); got != want {
		t.Errorf("payload = %s, want %s", got, want)
	}
}

func TestHandleExtract_InvalidRange(t *testing.T) {
	panel := `
args:
  - name: n
    type: number
values:
  argDef-0-min: "5"
  argDef-0-max: "1"
`
	result := call(t, HandleExtract, map[string]any{"panel": panel})
	if !result.IsError {
		t.Fatal("expected error for inverted range")
	}
	if !strings.Contains(resultText(t, result), "argDef-0-min") {
		t.Errorf("error should name the control: %s", resultText(t, result))
	}
}

func TestHandleExtract_MissingInput(t *testing.T) {
	if result := call(t, HandleExtract, map[string]any{}); !result.IsError {
		t.Error("expected error for missing panel")
	}
}

func TestHandleSchema_Payload(t *testing.T) {
	result := call(t, HandleSchema, map[string]any{"type": "payload"})
	if result.IsError {
		t.Error("expected success for payload schema")
	}
	if !strings.Contains(resultText(t, result), "dimLength") {
		t.Error("payload schema should describe dimLength")
	}
}

func TestHandleSchema_UnknownType(t *testing.T) {
	if result := call(t, HandleSchema, map[string]any{"type": "foo"}); !result.IsError {
		t.Error("expected error for unknown schema type")
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	s := NewServer("test", nil)
	if s == nil {
		t.Fatal("expected server")
	}
}
