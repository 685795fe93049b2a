package config

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GitignoreParser handles parsing and matching .gitignore files.
// Paths are matched relative to the directory the .gitignore lives in.
type GitignoreParser struct {
	patterns []GitignorePattern
}

type GitignorePattern struct {
	Pattern   string
	Negate    bool
	Directory bool
	Absolute  bool

	glob string // doublestar form of Pattern
}

// NewGitignoreParser creates a new gitignore parser
func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{
		patterns: make([]GitignorePattern, 0),
	}
}

// LoadGitignore loads patterns from rootPath/.gitignore. A missing file is not an error.
func (gp *GitignoreParser) LoadGitignore(rootPath string) error {
	file, err := os.Open(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		return nil
	}
	defer file.Close()

	return gp.scanAndParsePatterns(file)
}

func (gp *GitignoreParser) scanAndParsePatterns(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		gp.AddPattern(line)
	}
	return scanner.Err()
}

// AddPattern adds a single gitignore line
func (gp *GitignoreParser) AddPattern(line string) {
	gp.patterns = append(gp.patterns, parseGitignorePattern(line))
}

// Len returns the number of loaded patterns.
func (gp *GitignoreParser) Len() int {
	return len(gp.patterns)
}

func parseGitignorePattern(line string) GitignorePattern {
	pattern := GitignorePattern{}

	if strings.HasPrefix(line, "!") {
		pattern.Negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		pattern.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		pattern.Absolute = true
		line = line[1:]
	}
	pattern.Pattern = line

	// a slash anywhere but the end anchors the pattern to the root
	if pattern.Absolute || strings.Contains(line, "/") {
		pattern.glob = line
	} else {
		pattern.glob = "**/" + line
	}
	return pattern
}

// ShouldIgnore checks if a slash or OS relative path is ignored.
// The last matching pattern wins, so negations can re-include paths.
func (gp *GitignoreParser) ShouldIgnore(path string, isDir bool) bool {
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")

	ignored := false
	for _, pattern := range gp.patterns {
		if pattern.matches(path, isDir) {
			ignored = !pattern.Negate
		}
	}
	return ignored
}

func (p GitignorePattern) matches(path string, isDir bool) bool {
	if ok, _ := doublestar.Match(p.glob, path); ok && (isDir || !p.Directory) {
		return true
	}
	// anything below a matched directory
	ok, _ := doublestar.Match(p.glob+"/**", path)
	return ok
}
