package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/starford/memo/internal"
	"github.com/starford/memo/internal/export"
	"github.com/starford/memo/internal/mcpserver"
	pkgconfig "github.com/starford/memo/pkg/config"
)

func (a *app) exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write a snapshot of the notes to another format",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "sqlite",
				Usage:    "SQLite database file to (re)create the notes table in",
				Required: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			notes, err := a.svc.ListAll(ctx)
			if err != nil {
				return err
			}
			dsn := cmd.String("sqlite")
			if err := export.ToSQLite(ctx, notes, dsn); err != nil {
				return err
			}
			return a.out.Message("Exported %d notes to %s.", len(notes), dsn)
		},
	}
}

func (a *app) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the notes over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("MEMO_CONFIG_FILE"),
			},
		},
		Action: a.serve,
	}
}

func (a *app) serve(ctx context.Context, cmd *cli.Command) error {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	// --file beats the config file, which beats MEMO_PATH and ~/.memorc.
	if a.fileOverride || cfg.Memo.Path == "" {
		cfg.Memo.Path = a.store.Path()
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func (a *app) mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the notes as MCP tools over stdio",
		Action: func(_ context.Context, _ *cli.Command) error {
			return mcpserver.New(a.svc, version).ServeStdio()
		},
	}
}
