// Package config loads incheck settings from defaults, ~/.incheck.kdl and
// the project's .incheck.kdl (or .incheck.toml).
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	// KDLFileName is the preferred project and global config file.
	KDLFileName = ".incheck.kdl"
	// TOMLFileName is read when no KDL file exists in the project root.
	TOMLFileName = ".incheck.toml"

	DefaultMaxFileSize = 2 * 1024 * 1024
	DefaultDebounceMs  = 300

	FormatText = "text"
	FormatJSON = "json"
)

// DefaultExtensions are the C-family file extensions picked up when walking directories.
var DefaultExtensions = []string{
	".c", ".cc", ".cpp", ".cxx", ".c++",
	".h", ".hh", ".hpp", ".hxx", ".h++",
	".ipp", ".tpp", ".inl",
}

type Config struct {
	Project     Project
	Scan        Scan
	Report      Report
	Performance Performance
	Watch       Watch
	Include     []string
	Exclude     []string
}

type Project struct {
	Root string
}

type Scan struct {
	Extensions       []string
	MaxFileSize      int64
	RespectGitignore bool
	FollowSymlinks   bool
}

// Report holds the rendering switches. The analysis always computes every
// category; these only decide what is shown.
type Report struct {
	Bare     bool
	Unused   bool
	Unlisted bool
	Color    bool
	Format   string // "text" or "json"
}

type Performance struct {
	Workers int // 0 = auto-detect (NumCPU-1)
}

type Watch struct {
	DebounceMs int
}

// Default returns the built-in configuration rooted at the working directory.
func Default() *Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return &Config{
		Project: Project{Root: cwd},
		Scan: Scan{
			Extensions:       append([]string(nil), DefaultExtensions...),
			MaxFileSize:      DefaultMaxFileSize,
			RespectGitignore: true,
		},
		Report: Report{
			Bare:     true,
			Unused:   true,
			Unlisted: true,
			Color:    true,
			Format:   FormatText,
		},
		Watch:   Watch{DebounceMs: DefaultDebounceMs},
		Include: []string{},
		Exclude: []string{
			"**/.git/**",
			"**/_deps/**",
			"**/cmake-build-*/**",
			"**/vcpkg_installed/**",
		},
	}
}

// Load reads a single explicit config file on top of the defaults.
// The format is chosen by extension: .toml is TOML, anything else is KDL.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.Project.Root = filepath.Dir(path)
	if err := applyFile(cfg, path); err != nil {
		return nil, err
	}
	resolveRoot(cfg, filepath.Dir(path))
	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg, nil
}

// LoadWithRoot layers ~/.incheck.kdl and then the project config found in
// rootDir over the defaults. Missing files are not an error.
func LoadWithRoot(rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	cfg := Default()
	if abs, err := filepath.Abs(searchDir); err == nil {
		cfg.Project.Root = abs
	}

	// Step 1: global base config
	if homeDir, err := os.UserHomeDir(); err == nil {
		global := filepath.Join(homeDir, KDLFileName)
		if fileExists(global) && !samePath(homeDir, searchDir) {
			root := cfg.Project.Root
			if err := applyFile(cfg, global); err != nil {
				return nil, err
			}
			// the global file never moves the project root
			cfg.Project.Root = root
		}
	}

	// Step 2: project config, KDL preferred over TOML
	for _, name := range []string{KDLFileName, TOMLFileName} {
		path := filepath.Join(searchDir, name)
		if !fileExists(path) {
			continue
		}
		before := cfg.Project.Root
		cfg.Project.Root = ""
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
		if cfg.Project.Root == "" {
			cfg.Project.Root = before
		} else {
			resolveRoot(cfg, searchDir)
		}
		break
	}

	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return applyTOML(cfg, content)
	}
	return applyKDL(cfg, string(content))
}

// resolveRoot makes a relative project root relative to the directory that
// holds the config file.
func resolveRoot(cfg *Config, configDir string) {
	if cfg.Project.Root == "" {
		cfg.Project.Root = configDir
	}
	if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Join(configDir, cfg.Project.Root)
	}
	if abs, err := filepath.Abs(cfg.Project.Root); err == nil {
		cfg.Project.Root = abs
	}
	cfg.Project.Root = filepath.Clean(cfg.Project.Root)
}

// ResolvedWorkers returns the worker count, resolving 0 to NumCPU-1 (min 1).
func (c *Config) ResolvedWorkers() int {
	if c.Performance.Workers > 0 {
		return c.Performance.Workers
	}
	return max(1, runtime.NumCPU()-1)
}

// AddInclude appends include globs, keeping the list free of duplicates.
func (c *Config) AddInclude(patterns ...string) {
	c.Include = DeduplicatePatterns(append(c.Include, patterns...))
}

// AddExclude appends exclude globs, keeping the list free of duplicates.
func (c *Config) AddExclude(patterns ...string) {
	c.Exclude = DeduplicatePatterns(append(c.Exclude, patterns...))
}

// DeduplicatePatterns removes duplicate patterns, keeping first occurrences.
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		if !seen[pattern] {
			seen[pattern] = true
			result = append(result, pattern)
		}
	}

	return result
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		if ext = normalizeExtension(ext); ext != "" {
			out = append(out, ext)
		}
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
