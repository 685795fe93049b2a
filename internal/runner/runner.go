// Package runner drives analysis over a batch of files and streams the
// per-file reports through a shared sink.
package runner

import (
	"bytes"
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/incheck/internal/analyze"
	"github.com/standardbeagle/incheck/internal/cache"
	"github.com/standardbeagle/incheck/internal/debug"
	ierrors "github.com/standardbeagle/incheck/internal/errors"
	"github.com/standardbeagle/incheck/internal/report"
	"github.com/standardbeagle/incheck/internal/source"
)

// Outcome is the result of checking one file: either Result or Err is set.
type Outcome struct {
	Path   string
	Result *analyze.Result
	Err    error
	// Cached is set when Result came from the cache unchanged.
	Cached bool
}

// Failed reports whether the file could not be loaded.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Summary describes a finished batch.
type Summary struct {
	Files   int
	Failed  int
	Skipped int
	Counts  report.Counts
	// Outcomes are in the order the paths were given.
	Outcomes []Outcome
}

// Options tunes a Runner.
type Options struct {
	// Workers bounds concurrent file checks; values below 1 mean 1.
	Workers int
	// Cache, when set, is consulted before analyzing and updated after.
	Cache *cache.ResultCache
	// SkipUnchanged suppresses reports for files served from the cache.
	SkipUnchanged bool
	// SummaryTable renders the per-file table after the batch.
	SummaryTable bool
}

// Runner checks files and reports on them.
type Runner struct {
	renderer *report.Renderer
	sink     *report.Sink
	logger   *debug.Logger
	opts     Options
}

// New creates a runner that renders with renderer into sink.
func New(renderer *report.Renderer, sink *report.Sink, logger *debug.Logger, opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if logger == nil {
		logger = debug.Discard()
	}
	return &Runner{
		renderer: renderer,
		sink:     sink,
		logger:   logger,
		opts:     opts,
	}
}

// Run checks every path and writes one report per file. Input errors are
// logged and collected; the returned error is a *errors.MultiError of them,
// or nil when every file loaded. Findings never make Run fail.
// Cancelling ctx stops new files from being scheduled.
func (r *Runner) Run(ctx context.Context, paths []string) (*Summary, error) {
	outcomes := make([]Outcome, len(paths))
	done := make([]bool, len(paths))

	if len(paths) < 2 {
		for i, path := range paths {
			if ctx.Err() != nil {
				break
			}
			outcomes[i] = r.process(path)
			done[i] = true
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.opts.Workers)
		for i, path := range paths {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				outcomes[i] = r.process(path)
				done[i] = true
				return nil
			})
		}
		_ = g.Wait()
	}

	summary := r.summarize(outcomes, done)
	if summary.Skipped > 0 {
		r.logger.Warn("check interrupted", "skipped", summary.Skipped)
	}

	if r.opts.SummaryTable {
		r.writeSummaryTable(summary)
	}

	var errs []error
	for _, o := range summary.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return summary, ierrors.NewMultiError(errs).ErrOrNil()
}

// Check analyzes a single file without reporting it.
func (r *Runner) Check(path string) Outcome {
	if r.opts.Cache == nil {
		res, err := analyze.Analyze(path)
		return Outcome{Path: path, Result: res, Err: err}
	}

	file, err := source.ReadFile(path)
	if err != nil {
		r.opts.Cache.Invalidate(path)
		return Outcome{Path: path, Err: err}
	}
	if res, ok := r.opts.Cache.Lookup(path, file.Hash); ok {
		return Outcome{Path: path, Result: res, Cached: true}
	}
	res := analyze.AnalyzeLines(path, file.Lines)
	r.opts.Cache.Store(path, file.Hash, res)
	return Outcome{Path: path, Result: res}
}

func (r *Runner) process(path string) Outcome {
	r.logger.Log("RUNNER", "checking %s", path)
	o := r.Check(path)
	r.emit(o)
	return o
}

// emit renders the outcome into its own buffer and flushes it in one write.
func (r *Runner) emit(o Outcome) {
	if o.Cached && r.opts.SkipUnchanged {
		r.logger.Log("RUNNER", "unchanged, skipping report for %s", o.Path)
		return
	}

	var buf bytes.Buffer
	var err error
	if o.Err != nil {
		r.logger.Error("cannot check file", "path", o.Path, "err", o.Err)
		err = r.renderer.RenderError(&buf, o.Path, o.Err)
	} else {
		err = r.renderer.RenderFile(&buf, o.Result)
	}
	if err != nil {
		r.logger.Error("render failed", "path", o.Path, "err", err)
		return
	}
	if buf.Len() == 0 {
		return
	}
	if _, err := r.sink.Write(buf.Bytes()); err != nil {
		r.logger.Error("write failed", "path", o.Path, "err", err)
	}
}

func (r *Runner) summarize(outcomes []Outcome, done []bool) *Summary {
	s := &Summary{Outcomes: make([]Outcome, 0, len(outcomes))}
	for i, o := range outcomes {
		if !done[i] {
			s.Skipped++
			continue
		}
		s.Files++
		s.Outcomes = append(s.Outcomes, o)
		if o.Err != nil {
			s.Failed++
			continue
		}
		c := r.renderer.Count(o.Result)
		s.Counts.Bare += c.Bare
		s.Counts.Unused += c.Unused
		s.Counts.Unlisted += c.Unlisted
	}
	return s
}

func (r *Runner) writeSummaryTable(s *Summary) {
	rows := make([]report.FileSummary, 0, len(s.Outcomes))
	for _, o := range s.Outcomes {
		row := report.FileSummary{Path: o.Path, Failed: o.Err != nil}
		if o.Err == nil {
			row.Counts = r.renderer.Count(o.Result)
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	if err := r.renderer.RenderSummary(&buf, rows); err != nil {
		r.logger.Error("render summary failed", "err", err)
		return
	}
	if buf.Len() > 0 {
		_, _ = r.sink.Write(buf.Bytes())
	}
}
