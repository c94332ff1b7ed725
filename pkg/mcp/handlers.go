package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ormasoftchile/fuzzpanel/pkg/entity"
	"github.com/ormasoftchile/fuzzpanel/pkg/overrides"
	"github.com/ormasoftchile/fuzzpanel/pkg/results"
	"github.com/ormasoftchile/fuzzpanel/pkg/schema"
)

// HandleClassify implements the fuzzpanel/classify MCP tool.
func HandleClassify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	text, _ := args["results"].(string)
	path, _ := args["path"].(string)
	escaped, _ := args["escaped"].(bool)
	where, _ := args["where"].(string)

	if text == "" {
		if path == "" {
			return errorResult("either results or path is required"), nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return errorResult(fmt.Sprintf("read results: %v", err)), nil
		}
		text = string(data)
	}
	if escaped {
		text = entity.Unescape(text)
	}

	data := []byte(text)
	if errs := schema.ValidateResults(data); schema.HasErrors(errs) {
		return errorResult(formatErrors(errs)), nil
	}
	doc, err := results.Decode(data)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	g, err := results.Classify(doc.Results)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	if where != "" {
		if g, err = results.Filter(g, where); err != nil {
			return errorResult(err.Error()), nil
		}
	}

	out, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(fmt.Sprintf("%s\n%s", formatCounts(g), out)), nil
}

// HandleExtract implements the fuzzpanel/extract MCP tool.
func HandleExtract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	text, _ := args["panel"].(string)
	path, _ := args["path"].(string)

	var form *overrides.Form
	var err error
	switch {
	case text != "":
		form, err = overrides.LoadPanel(strings.NewReader(text))
	case path != "":
		form, err = overrides.LoadPanelFile(path)
	default:
		return errorResult("either panel or path is required"), nil
	}
	if err != nil {
		return errorResult(err.Error()), nil
	}

	x, err := overrides.Extract(form)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	if err := x.Overrides.Validate(); err != nil {
		return errorResult(err.Error()), nil
	}
	data, err := json.Marshal(x.Payload())
	if err != nil {
		return errorResult(err.Error()), nil
	}
	if errs := schema.ValidatePayload(data); schema.HasErrors(errs) {
		return errorResult(formatErrors(errs)), nil
	}
	return textResult(string(data)), nil
}

// HandleSchema implements the fuzzpanel/schema MCP tool.
func HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	schemaType, _ := args["type"].(string)

	var data []byte
	var err error

	switch schemaType {
	case "payload":
		data, err = schema.GeneratePayloadSchema()
	case "results":
		data, err = schema.GenerateResultsSchema()
	default:
		return errorResult(fmt.Sprintf("unknown schema type %q, use 'payload' or 'results'", schemaType)), nil
	}

	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

func formatCounts(g *results.Grids) string {
	counts := g.Counts()
	parts := make([]string, 0, len(results.Categories))
	for _, c := range results.Categories {
		parts = append(parts, fmt.Sprintf("%s=%d", c, counts[c]))
	}
	return strings.Join(parts, " ")
}

func formatErrors(errs []*schema.ValidationError) string {
	var msgs []string
	for _, e := range errs {
		if e.Severity != "warning" {
			msgs = append(msgs, fmt.Sprintf("[%s] %s", e.Phase, e.Message))
		}
	}
	return strings.Join(msgs, "; ")
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
