// Package pathutil converts between the absolute paths used internally and
// the root-relative paths shown to users.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails, the path is already
// relative, or it lies outside the root.
//
// Examples:
//   - ToRelative("/home/user/project/src/main.cpp", "/home/user/project") → "src/main.cpp"
//   - ToRelative("/other/location/file.hpp", "/home/user/project") → "/other/location/file.hpp"
//   - ToRelative("src/main.cpp", "/home/user/project") → "src/main.cpp"
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		// e.g. different drives on Windows
		return absPath
	}

	// outside the root the absolute path is clearer
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return absPath
	}

	return relPath
}

// ToAbsolute resolves path against the working directory, returning it
// unchanged when resolution fails.
func ToAbsolute(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
