// Package mcp exposes the result classifier and the override extractor as
// MCP tools so agents can inspect fuzz runs and build fuzzer payloads.
package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// NewServer creates a new MCP server with the fuzzpanel tools registered.
func NewServer(version string, log *zap.Logger) *server.MCPServer {
	if log == nil {
		log = zap.NewNop()
	}
	s := server.NewMCPServer(
		"fuzzpanel",
		version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("fuzzpanel/classify",
			mcp.WithDescription("Classify fuzz-run results into timeout, exception, badOutput and passed grids"),
			mcp.WithString("results", mcp.Description("Results document as JSON text")),
			mcp.WithString("path", mcp.Description("Path to a results JSON file, used when 'results' is empty")),
			mcp.WithBoolean("escaped", mcp.Description("Set when the results are HTML-entity escaped as embedded in the panel page")),
			mcp.WithString("where", mcp.Description("Optional filter expression over category, index and row")),
		),
		logged(log, "fuzzpanel/classify", HandleClassify),
	)

	s.AddTool(
		mcp.NewTool("fuzzpanel/extract",
			mcp.WithDescription("Build the fuzz.start payload from a panel file describing arguments and control values"),
			mcp.WithString("panel", mcp.Description("Panel YAML text")),
			mcp.WithString("path", mcp.Description("Path to a panel YAML file, used when 'panel' is empty")),
		),
		logged(log, "fuzzpanel/extract", HandleExtract),
	)

	s.AddTool(
		mcp.NewTool("fuzzpanel/schema",
			mcp.WithDescription("Export fuzzpanel JSON Schema (payload or results)"),
			mcp.WithString("type", mcp.Required(), mcp.Description("Schema type: 'payload' or 'results'")),
		),
		logged(log, "fuzzpanel/schema", HandleSchema),
	)

	return s
}

// logged wraps a tool handler with a structured log line per call.
func logged(log *zap.Logger, name string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		res, err := h(ctx, req)
		fields := []zap.Field{zap.String("tool", name), zap.Duration("took", time.Since(start))}
		switch {
		case err != nil:
			log.Error("tool call failed", append(fields, zap.Error(err))...)
		case res != nil && res.IsError:
			log.Warn("tool call rejected", fields...)
		default:
			log.Info("tool call", fields...)
		}
		return res, err
	}
}
