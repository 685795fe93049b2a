// Package mcp exposes the include checker as Model Context Protocol tools.
package mcp

import (
	"context"
	"io"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/incheck/internal/cache"
	"github.com/standardbeagle/incheck/internal/config"
	"github.com/standardbeagle/incheck/internal/debug"
	"github.com/standardbeagle/incheck/internal/discovery"
	"github.com/standardbeagle/incheck/internal/report"
	"github.com/standardbeagle/incheck/internal/runner"
	"github.com/standardbeagle/incheck/internal/version"
)

// Server serves the check_includes and reference_link tools.
type Server struct {
	cfg     *config.Config
	server  *mcp.Server
	scanner *discovery.Scanner
	runner  *runner.Runner
	results *cache.ResultCache
	logger  *debug.Logger
}

// NewServer creates an MCP server for cfg. Results are cached across calls
// so unchanged files are not re-analyzed.
func NewServer(cfg *config.Config, logger *debug.Logger) *Server {
	if logger == nil {
		logger = debug.Discard()
	}
	results := cache.NewResultCache()

	// The runner is only used for Check; nothing is rendered through it.
	r := runner.New(report.NewRenderer(report.OptionsFromConfig(cfg)), report.NewSink(io.Discard), logger, runner.Options{
		Cache: results,
	})

	s := &Server{
		cfg:     cfg,
		scanner: discovery.NewScanner(cfg, logger),
		runner:  r,
		results: results,
		logger:  logger,
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "incheck-mcp-server",
		Version: version.Info(),
	}, nil)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "check_includes",
		Description: "Check that every #include <...> in C++ sources lists the std:: functions it provides in a trailing comment. Reports bare includes, unused listed functions and unlisted functions per file.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {
					Type:        "string",
					Description: "File, directory or glob to check, relative to the project root",
				},
				"paths": {
					Type:        "array",
					Description: "Several files, directories or globs to check",
					Items:       &jsonschema.Schema{Type: "string"},
				},
				"content": {
					Type:        "string",
					Description: "Source text to check instead of files on disk",
				},
				"name": {
					Type:        "string",
					Description: "Name reported for content (default <memory>)",
				},
				"disable": {
					Type:        "array",
					Description: "Finding categories to leave out: bare, unused, unlisted",
					Items: &jsonschema.Schema{
						Type: "string",
						Enum: []any{categoryBare, categoryUnused, categoryUnlisted},
					},
				},
			},
		},
	}, s.handleCheckIncludes)

	s.server.AddTool(&mcp.Tool{
		Name:        "reference_link",
		Description: "Build the cppreference search link for a standard library symbol such as std::sort.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"symbol": {
					Type:        "string",
					Description: "Qualified symbol, e.g. std::sort",
				},
			},
			Required: []string{"symbol"},
		},
	}, s.handleReferenceLink)
}

// Start serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting MCP server with stdio transport")
	return s.RunWithTransport(ctx, &mcp.StdioTransport{})
}

// RunWithTransport serves over t.
func (s *Server) RunWithTransport(ctx context.Context, t mcp.Transport) error {
	return s.server.Run(ctx, t)
}

// CacheStats reports how many file analyses were served from the cache.
func (s *Server) CacheStats() cache.Stats {
	return s.results.Stats()
}
