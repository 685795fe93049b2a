package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/incheck/internal/cache"
	"github.com/standardbeagle/incheck/internal/discovery"
	"github.com/standardbeagle/incheck/internal/report"
	"github.com/standardbeagle/incheck/internal/runner"
	"github.com/standardbeagle/incheck/internal/watch"
)

func checkCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.ShowAppHelp(c)
	}

	logger := newLogger(c)
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return cli.Exit(err.Error(), exitFatal)
	}
	logger.Log("CLI", "root %s, %d workers", cfg.Project.Root, cfg.Performance.Workers)

	scanner := discovery.NewScanner(cfg, logger)
	files, err := scanner.Expand(c.Args().Slice())
	if err != nil {
		return cli.Exit(err.Error(), exitFatal)
	}
	if len(files) == 0 && !c.Bool("watch") {
		logger.Warn("no source files matched")
		return nil
	}

	var results *cache.ResultCache
	if c.Bool("watch") {
		results = cache.NewResultCache()
	}

	renderer := report.NewRenderer(report.OptionsFromConfig(cfg))
	r := runner.New(renderer, report.NewSink(c.App.Writer), logger, runner.Options{
		Workers:       cfg.Performance.Workers,
		Cache:         results,
		SkipUnchanged: c.Bool("watch"),
		SummaryTable:  true,
	})

	summary, runErr := r.Run(c.Context, files)
	logger.Log("CLI", "checked %d files, %d failed, %d findings", summary.Files, summary.Failed, summary.Counts.Total())

	if c.Bool("watch") {
		w, err := watch.New(cfg, scanner, r, results, logger)
		if err != nil {
			return cli.Exit(err.Error(), exitFatal)
		}
		for _, arg := range c.Args().Slice() {
			if err := addWatchTarget(w, scanner, arg); err != nil {
				logger.Warn("not watching", "path", arg, "err", err)
			}
		}
		w.OnBatch(func(s *runner.Summary, _ error) {
			logger.Info("re-checked", "files", s.Files, "failed", s.Failed, "findings", s.Counts.Total())
		})
		return w.Run(c.Context)
	}

	if runErr != nil {
		return cli.Exit("", exitUnreadable)
	}
	if c.Bool("strict") && summary.Counts.Total() > 0 {
		return cli.Exit(fmt.Sprintf("%d findings", summary.Counts.Total()), exitFindings)
	}
	return nil
}

// addWatchTarget watches a directory or file argument; a glob is watched
// through the files it currently matches.
func addWatchTarget(w *watch.Watcher, scanner *discovery.Scanner, arg string) error {
	if !discovery.IsGlob(arg) {
		return w.Add(arg)
	}
	matches, err := scanner.Expand([]string{arg})
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := w.Add(m); err != nil {
			return err
		}
	}
	return nil
}
