package discovery

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/incheck/internal/config"
)

// Filter decides which paths under a walked root are checked.
// Globs and gitignore rules see slash paths relative to that root.
type Filter struct {
	root       string
	config     *config.Config
	extensions map[string]bool
	binary     *binaryDetector
	gitignore  *config.GitignoreParser
}

// NewFilter builds the filter for files below root, loading root/.gitignore
// when the configuration respects it.
func (s *Scanner) NewFilter(root string) *Filter {
	f := &Filter{
		root:       root,
		config:     s.config,
		extensions: s.extensions,
		binary:     s.binary,
	}
	if s.config.Scan.RespectGitignore {
		gp := config.NewGitignoreParser()
		if err := gp.LoadGitignore(root); err != nil {
			s.logger.Warnf("failed to read .gitignore in %s: %v", root, err)
		}
		f.gitignore = gp
	}
	return f
}

// Root returns the directory the filter is relative to.
func (f *Filter) Root() string {
	return f.root
}

// SkipDir reports whether a directory below the root should be pruned.
func (f *Filter) SkipDir(path string) bool {
	name := filepath.Base(filepath.Clean(path))
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		return true
	}
	rel := f.rel(path)
	if matchAny(f.config.Exclude, rel) || matchAny(f.config.Exclude, rel+"/") {
		return true
	}
	return f.gitignore != nil && f.gitignore.ShouldIgnore(rel, true)
}

// Keep reports whether a regular file of the given size should be checked.
func (f *Filter) Keep(path string, size int64) bool {
	if !f.extensions[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	if f.binary.IsBinaryByExtension(path) {
		return false
	}

	rel := f.rel(path)
	if matchAny(f.config.Exclude, rel) {
		return false
	}
	if len(f.config.Include) > 0 && !matchAny(f.config.Include, rel) {
		return false
	}
	if f.gitignore != nil && f.gitignore.ShouldIgnore(rel, false) {
		return false
	}
	return size <= f.config.Scan.MaxFileSize
}

// Covers reports whether path lies below the filter's root.
func (f *Filter) Covers(path string) bool {
	rel, err := filepath.Rel(f.root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// KeepWithin is Keep plus the directory checks for every ancestor between
// the root and path. Used for files reported by the file watcher.
func (f *Filter) KeepWithin(path string, size int64) bool {
	if !f.Covers(path) {
		return false
	}
	for dir := filepath.Dir(path); f.Covers(dir) && filepath.Clean(dir) != filepath.Clean(f.root); dir = filepath.Dir(dir) {
		if f.SkipDir(dir) {
			return false
		}
	}
	return f.Keep(path, size)
}

func (f *Filter) rel(path string) string {
	rel, err := filepath.Rel(f.root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, path)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
