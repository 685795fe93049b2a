package report

import (
	"encoding/json"
	"io"

	"github.com/standardbeagle/incheck/internal/analyze"
)

// FileReport is the JSON form of one file's findings. Categories that are
// switched off are omitted; enabled ones are always present.
type FileReport struct {
	Path         string          `json:"path"`
	BareIncludes *[]BareJSON     `json:"bare_includes,omitempty"`
	Unused       *[]UnusedJSON   `json:"unused,omitempty"`
	Unlisted     *[]UnlistedJSON `json:"unlisted,omitempty"`
	Error        string          `json:"error,omitempty"`
}

type BareJSON struct {
	Line      int    `json:"line"`
	Text      string `json:"text"`
	Directive string `json:"directive"`
}

type UnusedJSON struct {
	Line      int      `json:"line"`
	Text      string   `json:"text"`
	Directive string   `json:"directive"`
	Symbols   []string `json:"symbols"`
}

type UnlistedJSON struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Symbol string `json:"symbol"`
	Link   string `json:"link"`
}

// JSONReport converts res into its JSON form under the current options.
func (r *Renderer) JSONReport(res *analyze.Result) FileReport {
	fr := FileReport{Path: r.displayPath(res.Path)}

	if r.opts.Bare {
		bare := make([]BareJSON, 0, len(res.Bare))
		for _, b := range res.Bare {
			bare = append(bare, BareJSON{Line: b.Line.Number, Text: b.Line.Text, Directive: b.Directive})
		}
		fr.BareIncludes = &bare
	}

	if r.opts.Unused {
		unused := make([]UnusedJSON, 0, len(res.OverListed))
		for _, o := range res.OverListed {
			unused = append(unused, UnusedJSON{
				Line:      o.Line.Number,
				Text:      o.Line.Text,
				Directive: o.Directive,
				Symbols:   o.Unused,
			})
		}
		fr.Unused = &unused
	}

	if r.opts.Unlisted {
		unlisted := make([]UnlistedJSON, 0, len(res.UnderListed))
		for _, u := range res.UnderListed {
			unlisted = append(unlisted, UnlistedJSON{
				Line:   u.Line.Number,
				Text:   u.Line.Text,
				Symbol: u.Symbol,
				Link:   u.Link,
			})
		}
		fr.Unlisted = &unlisted
	}

	return fr
}

// renderJSON writes fr as a single line of JSON.
func (r *Renderer) renderJSON(w io.Writer, fr FileReport) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(fr)
}
