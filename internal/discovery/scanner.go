// Package discovery turns command-line arguments into the list of source
// files to check.
package discovery

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/incheck/internal/config"
	"github.com/standardbeagle/incheck/internal/debug"
)

// Scanner expands files, directories and globs into source file paths
type Scanner struct {
	config     *config.Config
	logger     *debug.Logger
	extensions map[string]bool
	binary     *binaryDetector
}

// NewScanner creates a scanner for cfg. A nil logger discards diagnostics.
func NewScanner(cfg *config.Config, logger *debug.Logger) *Scanner {
	if logger == nil {
		logger = debug.Discard()
	}
	extensions := make(map[string]bool, len(cfg.Scan.Extensions))
	for _, ext := range cfg.Scan.Extensions {
		extensions[strings.ToLower(ext)] = true
	}
	return &Scanner{
		config:     cfg,
		logger:     logger,
		extensions: extensions,
		binary:     newBinaryDetector(),
	}
}

// Expand resolves args into a sorted, de-duplicated list of files.
//
// Plain file arguments are kept verbatim even when they do not exist, so the
// analysis can report them. Directories are walked recursively and filtered;
// arguments containing glob metacharacters are expanded with doublestar.
func (s *Scanner) Expand(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}

	for _, arg := range args {
		if IsGlob(arg) {
			matches, err := s.expandGlob(arg)
			if err != nil {
				return nil, err
			}
			for _, m := range matches {
				add(m)
			}
			continue
		}

		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			add(arg)
			continue
		}

		files, err := s.Walk(arg)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}

	sort.Strings(out)
	return out, nil
}

// IsGlob reports whether arg contains glob metacharacters.
func IsGlob(arg string) bool {
	return strings.ContainsAny(arg, "*?[{")
}

func (s *Scanner) expandGlob(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if s.binary.IsBinaryByExtension(m) || s.isBinaryContent(m) {
			s.logger.Log("DISCOVERY", "skipping binary file %s", m)
			continue
		}
		files = append(files, m)
	}
	s.logger.Log("DISCOVERY", "glob %s matched %d files", pattern, len(files))
	return files, nil
}

// Walk returns the eligible files below root.
func (s *Scanner) Walk(root string) ([]string, error) {
	filter := s.NewFilter(root)
	visited := make(map[string]bool)
	var files []string

	if err := s.walk(root, root, filter, visited, &files); err != nil {
		return nil, fmt.Errorf("error walking directory tree from %s: %w", root, err)
	}
	s.logger.Log("DISCOVERY", "found %d files under %s (visited %d dirs)", len(files), root, len(visited))
	return files, nil
}

func (s *Scanner) walk(root, start string, filter *Filter, visited map[string]bool, files *[]string) error {
	return filepath.WalkDir(start, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			s.logger.Log("DISCOVERY", "scanner error for %s: %v", path, walkErr)
			if d != nil && d.IsDir() && path != start {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return s.followSymlink(root, path, filter, visited, files)
		}

		if d.IsDir() {
			// Check for symlink cycles
			realPath, err := filepath.EvalSymlinks(path)
			if err != nil {
				return filepath.SkipDir
			}
			if visited[realPath] {
				s.logger.Log("DISCOVERY", "cycle detected, skipping %s -> %s", path, realPath)
				return filepath.SkipDir
			}
			visited[realPath] = true

			if path != root && filter.SkipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if filter.Keep(path, info.Size()) {
			*files = append(*files, path)
		}
		return nil
	})
}

func (s *Scanner) followSymlink(root, path string, filter *Filter, visited map[string]bool, files *[]string) error {
	if !s.config.Scan.FollowSymlinks {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil // dangling
	}
	if info.IsDir() {
		if filter.SkipDir(path) {
			return nil
		}
		// the trailing separator makes WalkDir descend through the link
		return s.walk(root, path+string(filepath.Separator), filter, visited, files)
	}
	if info.Mode().IsRegular() && filter.Keep(path, info.Size()) {
		*files = append(*files, path)
	}
	return nil
}

func (s *Scanner) isBinaryContent(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false
	}
	return s.binary.IsBinaryContent(head[:n])
}
