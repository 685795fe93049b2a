package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/standardbeagle/incheck/internal/config"
)

// FileSummary is one row of the batch summary table.
type FileSummary struct {
	Path   string
	Counts Counts
	Failed bool
}

// RenderSummary writes a table of per-file counts followed by totals.
// Only text output with more than one file gets a summary.
func (r *Renderer) RenderSummary(w io.Writer, files []FileSummary) error {
	if r.opts.Format != config.FormatText || len(files) < 2 {
		return nil
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"File", "Bare", "Unused", "Unlisted"})

	var total Counts
	failed := 0
	for _, f := range files {
		if f.Failed {
			failed++
			tbl.AppendRow(table.Row{r.displayPath(f.Path), "-", "-", "-"})
			continue
		}
		total.Bare += f.Counts.Bare
		total.Unused += f.Counts.Unused
		total.Unlisted += f.Counts.Unlisted
		tbl.AppendRow(table.Row{r.displayPath(f.Path), f.Counts.Bare, f.Counts.Unused, f.Counts.Unlisted})
	}

	tbl.AppendFooter(table.Row{
		fmt.Sprintf("Total: %s files", humanize.Comma(int64(len(files)))),
		total.Bare, total.Unused, total.Unlisted,
	})

	if _, err := fmt.Fprintln(w, tbl.Render()); err != nil {
		return err
	}
	if failed > 0 {
		_, err := fmt.Fprintf(w, "%s could not be read\n", pluralFiles(failed))
		return err
	}
	return nil
}

func pluralFiles(n int) string {
	if n == 1 {
		return "1 file"
	}
	return humanize.Comma(int64(n)) + " files"
}
