package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/incheck/internal/debug"
	"github.com/standardbeagle/incheck/internal/mcp"
)

func mcpCommand(c *cli.Context) error {
	// stdout carries the protocol; keep diagnostics out of the way
	debug.SetMCPMode(true)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return cli.Exit(err.Error(), exitFatal)
	}

	server := mcp.NewServer(cfg, debug.Default())
	if err := server.Start(c.Context); err != nil && !errors.Is(err, context.Canceled) {
		return cli.Exit(err.Error(), exitFatal)
	}
	return nil
}
