package analyze

import (
	"regexp"
	"strings"
)

var (
	includePattern = regexp.MustCompile(`^\s*#include\s*<\S+>`)
	symbolPattern  = regexp.MustCompile(`std::\w+`)
)

// Kind is the mutually exclusive category a line falls into.
type Kind int

const (
	Ignored Kind = iota
	Bare
	Annotated
	Usages
)

func (k Kind) String() string {
	switch k {
	case Bare:
		return "bare"
	case Annotated:
		return "annotated"
	case Usages:
		return "usages"
	default:
		return "ignored"
	}
}

// Classification is the outcome of classifying a single line.
// Directive is set for Bare and Annotated; Symbols for Annotated and Usages.
type Classification struct {
	Kind      Kind
	Directive string
	Symbols   []string
}

// Classify decides what a line contributes to the analysis.
//
// Matching runs on a trimmed, lowercased copy of the text. Lines whose copy
// starts with "//", "/*" or "*" are treated as comments, which also swallows
// code lines that begin with a dereference or multiplication.
func Classify(line SourceLine) Classification {
	if line.Text == "" {
		return Classification{Kind: Ignored}
	}

	view := strings.ToLower(strings.TrimSpace(line.Text))
	if isCommentLine(view) {
		return Classification{Kind: Ignored}
	}

	directive := includePattern.FindString(view)
	if directive == "" {
		// trailing comments only matter on inclusion lines
		if idx := strings.Index(view, "//"); idx >= 0 {
			view = view[:idx]
		}
	}

	symbols := symbolPattern.FindAllString(view, -1)

	switch {
	case directive != "" && len(symbols) > 0:
		return Classification{Kind: Annotated, Directive: directive, Symbols: symbols}
	case directive != "":
		return Classification{Kind: Bare, Directive: directive}
	case len(symbols) > 0:
		return Classification{Kind: Usages, Symbols: symbols}
	default:
		return Classification{Kind: Ignored}
	}
}

func isCommentLine(view string) bool {
	return strings.HasPrefix(view, "//") ||
		strings.HasPrefix(view, "/*") ||
		strings.HasPrefix(view, "*")
}
