// Package report renders analysis results for people (text) and tools (JSON).
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/standardbeagle/incheck/internal/analyze"
	"github.com/standardbeagle/incheck/internal/config"
	"github.com/standardbeagle/incheck/pkg/pathutil"
)

// Separator closes every per-file text block.
var Separator = strings.Repeat("-", 80)

// Options selects which categories are shown and how.
// Suppressing a category never changes what the analysis computes.
type Options struct {
	Bare     bool
	Unused   bool
	Unlisted bool
	Color    bool
	Format   string
	// Root, when set, makes paths inside it display relative to it.
	Root string
}

// OptionsFromConfig maps the report section of cfg to Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Bare:     cfg.Report.Bare,
		Unused:   cfg.Report.Unused,
		Unlisted: cfg.Report.Unlisted,
		Color:    cfg.Report.Color,
		Format:   cfg.Report.Format,
		Root:     cfg.Project.Root,
	}
}

// Counts is the number of shown findings per category.
type Counts struct {
	Bare     int
	Unused   int
	Unlisted int
}

// Total sums the three categories.
func (c Counts) Total() int {
	return c.Bare + c.Unused + c.Unlisted
}

// Renderer writes per-file reports
type Renderer struct {
	opts    Options
	header  *color.Color
	section *color.Color
	clean   *color.Color
	lineNo  *color.Color
}

// NewRenderer creates a renderer for opts.
func NewRenderer(opts Options) *Renderer {
	if opts.Format == "" {
		opts.Format = config.FormatText
	}
	r := &Renderer{
		opts:    opts,
		header:  color.New(color.FgCyan, color.Bold),
		section: color.New(color.FgYellow, color.Bold),
		clean:   color.New(color.FgGreen),
		lineNo:  color.New(color.Faint),
	}
	for _, c := range []*color.Color{r.header, r.section, r.clean, r.lineNo} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Options returns the options the renderer was built with.
func (r *Renderer) Options() Options {
	return r.opts
}

// Count returns the findings of res that are shown under the current options.
func (r *Renderer) Count(res *analyze.Result) Counts {
	var c Counts
	if r.opts.Bare {
		c.Bare = len(res.Bare)
	}
	if r.opts.Unused {
		c.Unused = len(res.OverListed)
	}
	if r.opts.Unlisted {
		c.Unlisted = len(res.UnderListed)
	}
	return c
}

// RenderFile writes the report for one analyzed file.
func (r *Renderer) RenderFile(w io.Writer, res *analyze.Result) error {
	if r.opts.Format == config.FormatJSON {
		return r.renderJSON(w, r.JSONReport(res))
	}
	var buf bytes.Buffer
	r.renderText(&buf, res)
	_, err := w.Write(buf.Bytes())
	return err
}

// RenderError writes the report entry for a file that could not be loaded.
// Text reports leave failures to the logger and write nothing.
func (r *Renderer) RenderError(w io.Writer, path string, loadErr error) error {
	if r.opts.Format != config.FormatJSON {
		return nil
	}
	return r.renderJSON(w, FileReport{Path: r.displayPath(path), Error: loadErr.Error()})
}

func (r *Renderer) displayPath(path string) string {
	return pathutil.ToRelative(path, r.opts.Root)
}

func (r *Renderer) renderText(buf *bytes.Buffer, res *analyze.Result) {
	r.header.Fprintf(buf, "##- %s -##", r.displayPath(res.Path))
	buf.WriteString("\n\n")

	if r.Count(res).Total() == 0 {
		r.clean.Fprint(buf, "-> All clear, no issues found.")
		buf.WriteString("\n\n")
		buf.WriteString(Separator + "\n")
		return
	}

	if r.opts.Bare {
		r.writeSection(buf, "-- 1) BARE INCLUDES --")
		if len(res.Bare) == 0 {
			buf.WriteString("-> No bare includes found.\n\n")
		}
		for _, b := range res.Bare {
			r.writeLine(buf, b.Line)
			buf.WriteString("-> Bare include directive.\n")
			fmt.Fprintf(buf, "-> Add a comment to '%s' that lists which functions depend on it, e.g., '%s  // for std::foo, std::bar'.\n\n",
				b.Directive, b.Directive)
		}
	}

	if r.opts.Unused {
		r.writeSection(buf, "-- 2) UNUSED FUNCTIONS --")
		if len(res.OverListed) == 0 {
			buf.WriteString("-> No unused functions found.\n\n")
		}
		for _, o := range res.OverListed {
			r.writeLine(buf, o.Line)
			buf.WriteString("-> Unused functions listed as comments.\n")
			fmt.Fprintf(buf, "-> Remove the following functions from comments of the '%s' include directive: %s\n\n",
				o.Directive, strings.Join(o.Unused, ", "))
		}
	}

	if r.opts.Unlisted {
		r.writeSection(buf, "-- 3) UNLISTED FUNCTIONS --")
		if len(res.UnderListed) == 0 {
			buf.WriteString("-> No unlisted functions found.\n\n")
		}
		for _, u := range res.UnderListed {
			r.writeLine(buf, u.Line)
			buf.WriteString("-> Unlisted function.\n")
			fmt.Fprintf(buf, "-> Add '%s' as a comment to the include directives, e.g., \"#include <foo>  // for %s\"\n",
				u.Symbol, u.Symbol)
			fmt.Fprintf(buf, "-> Reference: %s\n", u.Link)
			if hint, ok := typoHint(u.Symbol, res.OverListed); ok {
				fmt.Fprintf(buf, "-> Did you mean '%s' (line %d)?\n", hint.listed, hint.line)
			}
			buf.WriteString("\n")
		}
	}

	buf.WriteString(Separator + "\n")
}

func (r *Renderer) writeSection(buf *bytes.Buffer, title string) {
	r.section.Fprint(buf, title)
	buf.WriteString("\n\n")
}

func (r *Renderer) writeLine(buf *bytes.Buffer, line analyze.SourceLine) {
	r.lineNo.Fprintf(buf, "%d|", line.Number)
	fmt.Fprintf(buf, " %s\n", line.Text)
}
