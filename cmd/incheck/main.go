package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/incheck/internal/config"
	"github.com/standardbeagle/incheck/internal/debug"
	"github.com/standardbeagle/incheck/internal/version"
)

// Process exit codes
const (
	exitOK         = 0
	exitFatal      = 1
	exitUnreadable = 2
	exitFindings   = 3
)

func init() {
	// -v is --verbose here
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and maps its outcome to a process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := newApp(stdout, stderr).RunContext(ctx, args)
	if err == nil {
		return exitOK
	}

	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(stderr, msg)
		}
		return exitErr.ExitCode()
	}
	fmt.Fprintln(stderr, "incheck:", err)
	return exitFatal
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:                   "incheck",
		Usage:                  "Check that C++ include directives document the std:: functions they provide",
		UsageText:              "incheck [OPTIONS] [FILE|DIR|GLOB]...",
		Version:                version.Info(),
		UseShortOptionHandling: true,
		Writer:                 stdout,
		ErrWriter:              stderr,
		// Exit codes are decided by run, never inside the library.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging on stderr",
			},
			&cli.BoolFlag{
				Name:  "disable-bare",
				Usage: "Do not report bare include directives",
			},
			&cli.BoolFlag{
				Name:  "disable-unused",
				Usage: "Do not report functions listed in comments but never used",
			},
			&cli.BoolFlag{
				Name:  "disable-unlisted",
				Usage: "Do not report functions used but not listed in any comment",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (.kdl or .toml); default is .incheck.kdl or .incheck.toml in the working directory",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Only check files matching glob patterns (e.g., --include 'src/**')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Skip files matching glob patterns (e.g., --exclude '**/third_party/**')",
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "Files checked in parallel (0 = CPU count - 1)",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Report format: text or json",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored report titles",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Keep running and re-check files as they change",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Exit with status 3 when any reported finding exists",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve the checker as Model Context Protocol tools over stdio",
				Action: mcpCommand,
			},
		},
		Action: checkCommand,
	}
}

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	} else {
		cfg, err = config.LoadWithRoot(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if patterns := c.StringSlice("include"); len(patterns) > 0 {
		cfg.AddInclude(patterns...)
	}
	if patterns := c.StringSlice("exclude"); len(patterns) > 0 {
		cfg.AddExclude(patterns...)
	}
	if c.IsSet("jobs") {
		cfg.Performance.Workers = c.Int("jobs")
	}
	if c.IsSet("format") {
		cfg.Report.Format = c.String("format")
	}
	if c.Bool("disable-bare") {
		cfg.Report.Bare = false
	}
	if c.Bool("disable-unused") {
		cfg.Report.Unused = false
	}
	if c.Bool("disable-unlisted") {
		cfg.Report.Unlisted = false
	}
	if c.Bool("no-color") || !isTerminal(c.App.Writer) {
		cfg.Report.Color = false
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(c *cli.Context) *debug.Logger {
	logger := debug.New(c.App.ErrWriter, c.Bool("verbose"))
	debug.SetDefault(logger)
	return logger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
