// Package source loads C-family source files as numbered lines.
package source

import (
	"os"

	"github.com/cespare/xxhash/v2"

	ierrors "github.com/standardbeagle/incheck/internal/errors"
)

// Line is one line of a source file. Number is 1-based and dense; Text is
// the original content without its line terminator and is never modified.
type Line struct {
	Number int
	Text   string
}

// File is a loaded source file.
type File struct {
	Path  string
	Lines []Line
	Size  int64
	// Hash is the xxhash64 of the raw content.
	Hash uint64
}

// ReadFile loads path and splits it into lines.
// Any failure is returned as an *errors.InputError and no lines are returned.
func ReadFile(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, ierrors.ClassifyInput("stat", path, err)
	}
	if info.IsDir() {
		return nil, ierrors.NewInputError(ierrors.KindIsDirectory, "stat", path, nil)
	}
	if !info.Mode().IsRegular() {
		return nil, ierrors.NewInputError(ierrors.KindNotRegular, "stat", path, nil)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, ierrors.ClassifyInput("read", path, err)
	}

	return &File{
		Path:  path,
		Lines: Parse(content),
		Size:  int64(len(content)),
		Hash:  Hash(content),
	}, nil
}

// Parse splits in-memory content into numbered lines.
func Parse(content []byte) []Line {
	lines := make([]Line, 0, countLines(content))
	scanner := newLineScanner(content)
	for scanner.Scan() {
		lines = append(lines, Line{Number: scanner.LineNumber(), Text: scanner.Text()})
	}
	return lines
}

// Hash returns the content hash used to detect unchanged files.
func Hash(content []byte) uint64 {
	return xxhash.Sum64(content)
}
