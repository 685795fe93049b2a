package config

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	ierrors "github.com/standardbeagle/incheck/internal/errors"
)

// applyKDL overlays the settings present in a KDL document onto cfg.
// Absent nodes leave cfg untouched.
func applyKDL(cfg *Config, content string) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return ierrors.NewConfigError("kdl", "", fmt.Errorf("failed to parse KDL config: %w", err))
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children { // project { root "." }
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
			}
		case "scan":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "extensions":
					if exts := collectStringArgs(cn); len(exts) > 0 {
						cfg.Scan.Extensions = normalizeExtensions(exts)
					}
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Scan.MaxFileSize = int64(v)
					}
					if s, ok := firstStringArg(cn); ok {
						sz, err := parseSize(s)
						if err != nil {
							return ierrors.NewConfigError("scan.max_file_size", s, err)
						}
						cfg.Scan.MaxFileSize = sz
					}
				case "respect_gitignore":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Scan.RespectGitignore = b
					}
				case "follow_symlinks":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Scan.FollowSymlinks = b
					}
				}
			}
		case "report":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "bare":
					assignBool(cn, &cfg.Report.Bare)
				case "unused":
					assignBool(cn, &cfg.Report.Unused)
				case "unlisted":
					assignBool(cn, &cfg.Report.Unlisted)
				case "color":
					assignBool(cn, &cfg.Report.Color)
				case "format":
					if s, ok := firstStringArg(cn); ok {
						cfg.Report.Format = strings.ToLower(s)
					}
				}
			}
		case "performance":
			for _, cn := range n.Children {
				if nodeName(cn) == "workers" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.Workers = v
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				if nodeName(cn) == "debounce_ms" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		case "include":
			cfg.AddInclude(collectStringArgs(n)...)
		case "exclude":
			cfg.AddExclude(collectStringArgs(n)...)
		}
	}

	return nil
}

// Helper functions over the kdl-go document model
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func assignBool(n *document.Node, target *bool) {
	if b, ok := firstBoolArg(n); ok {
		*target = b
	}
}

// collectStringArgs reads inline arguments (exclude "a" "b") or, failing
// that, block children (exclude { "a"; "b" }).
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				// In block form the node name itself is the value
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize accepts human readable sizes such as "2MB", "512 KiB" or "1024".
func parseSize(s string) (int64, error) {
	n, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return int64(n), nil
}
