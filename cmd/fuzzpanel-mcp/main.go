// Package main provides the fuzzpanel-mcp binary, an MCP server for AI agents.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ormasoftchile/fuzzpanel/pkg/config"
	"github.com/ormasoftchile/fuzzpanel/pkg/logging"
	fmcp "github.com/ormasoftchile/fuzzpanel/pkg/mcp"
)

var version = "dev"

func main() {
	level := "info"
	if cwd, err := os.Getwd(); err == nil {
		if cfg, err := config.Load(cwd); err == nil {
			level = cfg.LogLevel
		}
	}
	log, err := logging.New(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	s := fmcp.NewServer(version, log)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
