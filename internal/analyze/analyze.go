// Package analyze checks that every library inclusion in a C-family source
// file documents the std:: symbols it provides.
//
// Three kinds of findings come out of a file:
//   - bare inclusions: #include <...> lines without a symbol comment
//   - over-listed symbols: symbols named in an inclusion comment but never used
//   - under-listed symbols: std:: symbols used in code but named by no inclusion
//
// The analysis is line based and heuristic. It does not tokenize, so a
// std:: mention inside a string literal still counts as a use.
package analyze

import (
	"github.com/standardbeagle/incheck/internal/source"
)

// SourceLine is a numbered line of original text.
type SourceLine = source.Line

// BareInclusion is an inclusion directive that lists no symbols.
type BareInclusion struct {
	Line      SourceLine
	Directive string
}

// OverListedFinding is an inclusion directive whose comment names symbols
// the file never uses. Unused keeps the order and duplicates of the listing.
type OverListedFinding struct {
	Line      SourceLine
	Directive string
	Unused    []string
}

// UnderListedFinding is a std:: symbol used on Line that no inclusion
// directive in the file lists.
type UnderListedFinding struct {
	Line   SourceLine
	Symbol string
	Link   string
}

// Result holds the findings for one file, each slice in ascending line order.
type Result struct {
	Path        string
	Bare        []BareInclusion
	OverListed  []OverListedFinding
	UnderListed []UnderListedFinding
}

// Total returns the number of findings across all three categories.
func (r *Result) Total() int {
	return len(r.Bare) + len(r.OverListed) + len(r.UnderListed)
}

// Analyze loads path from disk and analyzes it.
// Load failures are returned as *errors.InputError with no partial result.
func Analyze(path string) (*Result, error) {
	file, err := source.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return AnalyzeLines(path, file.Lines), nil
}

// AnalyzeLines analyzes lines that are already in memory.
func AnalyzeLines(path string, lines []SourceLine) *Result {
	result := &Result{Path: path}

	var (
		annotated []annotatedInclusion
		usages    []symbolUsage
	)

	for _, line := range lines {
		c := Classify(line)
		switch c.Kind {
		case Bare:
			result.Bare = append(result.Bare, BareInclusion{Line: line, Directive: c.Directive})
		case Annotated:
			annotated = append(annotated, annotatedInclusion{Line: line, Directive: c.Directive, Listed: c.Symbols})
		case Usages:
			for _, sym := range c.Symbols {
				usages = append(usages, symbolUsage{Line: line, Symbol: sym})
			}
		}
	}

	result.OverListed, result.UnderListed = reconcile(annotated, usages)
	return result
}
