package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/incheck/internal/analyze"
	"github.com/standardbeagle/incheck/internal/config"
	"github.com/standardbeagle/incheck/internal/report"
	"github.com/standardbeagle/incheck/internal/source"
	"github.com/standardbeagle/incheck/pkg/pathutil"
)

const (
	categoryBare     = "bare"
	categoryUnused   = "unused"
	categoryUnlisted = "unlisted"

	defaultContentName = "<memory>"
)

// CheckParams are the arguments of check_includes.
type CheckParams struct {
	Path    string   `json:"path,omitempty"`
	Paths   []string `json:"paths,omitempty"`
	Content string   `json:"content,omitempty"`
	Name    string   `json:"name,omitempty"`
	Disable []string `json:"disable,omitempty"`
}

// CheckResponse is the result of check_includes.
type CheckResponse struct {
	Files   []report.FileReport `json:"files"`
	Summary CheckSummary        `json:"summary"`
}

// CheckSummary totals a check_includes call.
type CheckSummary struct {
	Files    int `json:"files"`
	Failed   int `json:"failed"`
	Bare     int `json:"bare"`
	Unused   int `json:"unused"`
	Unlisted int `json:"unlisted"`
}

// LinkParams are the arguments of reference_link.
type LinkParams struct {
	Symbol string `json:"symbol"`
}

// LinkResponse is the result of reference_link.
type LinkResponse struct {
	Symbol string `json:"symbol"`
	Link   string `json:"link"`
}

func (s *Server) handleCheckIncludes(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params CheckParams
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
			return createErrorResponse("check_includes", fmt.Errorf("invalid parameters: %w", err))
		}
	}

	opts, err := s.reportOptions(params.Disable)
	if err != nil {
		return createErrorResponse("check_includes", err)
	}
	renderer := report.NewRenderer(opts)

	args := params.Paths
	if params.Path != "" {
		args = append([]string{params.Path}, args...)
	}
	if len(args) == 0 && params.Content == "" {
		return createErrorResponse("check_includes", fmt.Errorf("one of path, paths or content is required"))
	}

	resp := CheckResponse{Files: []report.FileReport{}}
	add := func(res *analyze.Result) {
		resp.Files = append(resp.Files, renderer.JSONReport(res))
		c := renderer.Count(res)
		resp.Summary.Bare += c.Bare
		resp.Summary.Unused += c.Unused
		resp.Summary.Unlisted += c.Unlisted
	}

	if params.Content != "" {
		name := params.Name
		if name == "" {
			name = defaultContentName
		}
		add(analyze.AnalyzeLines(name, source.Parse([]byte(params.Content))))
	}

	if len(args) > 0 {
		files, err := s.scanner.Expand(s.resolve(args))
		if err != nil {
			return createErrorResponse("check_includes", err)
		}
		s.logger.Log("MCP", "check_includes: %d files", len(files))

		for _, path := range files {
			if ctx.Err() != nil {
				return createErrorResponse("check_includes", ctx.Err())
			}
			o := s.runner.Check(path)
			if o.Err != nil {
				resp.Summary.Failed++
				resp.Files = append(resp.Files, report.FileReport{
					Path:  pathutil.ToRelative(path, opts.Root),
					Error: o.Err.Error(),
				})
				continue
			}
			add(o.Result)
		}
	}

	resp.Summary.Files = len(resp.Files)
	return createJSONResponse(resp)
}

func (s *Server) handleReferenceLink(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params LinkParams
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
			return createErrorResponse("reference_link", fmt.Errorf("invalid parameters: %w", err))
		}
	}

	symbol := strings.TrimSpace(params.Symbol)
	if symbol == "" {
		return createErrorResponse("reference_link", fmt.Errorf("symbol is required"))
	}
	return createJSONResponse(LinkResponse{Symbol: symbol, Link: analyze.BuildLink(symbol)})
}

// reportOptions applies the disabled categories on top of the configured ones.
func (s *Server) reportOptions(disable []string) (report.Options, error) {
	opts := report.OptionsFromConfig(s.cfg)
	opts.Format = config.FormatJSON
	opts.Color = false

	for _, category := range disable {
		switch strings.ToLower(strings.TrimSpace(category)) {
		case categoryBare:
			opts.Bare = false
		case categoryUnused:
			opts.Unused = false
		case categoryUnlisted:
			opts.Unlisted = false
		default:
			return opts, fmt.Errorf("unknown category %q in disable (expected %s, %s or %s)",
				category, categoryBare, categoryUnused, categoryUnlisted)
		}
	}
	return opts, nil
}

// resolve makes relative arguments relative to the project root.
func (s *Server) resolve(args []string) []string {
	root := s.cfg.Project.Root
	out := make([]string, len(args))
	for i, arg := range args {
		if filepath.IsAbs(arg) || root == "" {
			out[i] = arg
			continue
		}
		out[i] = filepath.Join(root, arg)
	}
	return out
}
