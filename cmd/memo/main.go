package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/memo/internal/display"
	"github.com/starford/memo/internal/memopath"
	"github.com/starford/memo/internal/noteservice"
	"github.com/starford/memo/internal/storage"
)

const version = "1.6"

// errHandled stops the command chain after an eager root flag printed its
// answer.
var errHandled = errors.New("handled")

// app holds what every command needs once the root Before hook has run.
type app struct {
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
	env    memopath.Env
	home   string

	resolver     *memopath.Resolver
	fileOverride bool
	logger       *slog.Logger
	store        *storage.File
	svc          *noteservice.Service
	out          *display.Printer
}

func newApp(stdout, stderr io.Writer, stdin io.Reader) *app {
	return &app{stdout: stdout, stderr: stderr, stdin: stdin}
}

// before resolves the memo file, makes sure it exists and wires the service.
func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level := slog.LevelInfo
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	a.resolver = memopath.NewResolver(a.env, a.home)
	path := cmd.String("file")
	a.fileOverride = path != ""
	if path == "" {
		path = a.resolver.MemoPath()
	}

	if cmd.Bool("version") {
		fmt.Fprintf(a.stdout, "Memo version: %s\n", version)
		return ctx, errHandled
	}
	if cmd.Bool("memopath") {
		fmt.Fprintf(a.stdout, "Memo path: %s\n", path)
		return ctx, errHandled
	}

	store, err := storage.NewFile(path)
	if err != nil {
		return ctx, err
	}
	if err := store.Init(); err != nil {
		return ctx, err
	}
	a.logger.Debug("memo file ready", slog.String("path", store.Path()))

	a.store = store
	a.svc = noteservice.NewService(store, noteservice.WithLogger(a.logger))
	a.out = display.New(a.stdout, a.resolver.Display())
	return ctx, nil
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:        "memo",
		Usage:       "Take notes in the command line",
		HideVersion: true,
		Writer:      a.stdout,
		ErrWriter:   a.stderr,
		Reader:      a.stdin,
		Before:      a.before,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   "Show memo version and exit",
			},
			&cli.BoolFlag{
				Name:    "memopath",
				Aliases: []string{"p"},
				Usage:   "Show current memo file path",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Memo file to use instead of MEMO_PATH and ~/.memorc",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log debug messages to stderr",
			},
		},
		Commands: []*cli.Command{
			a.addCommand(),
			a.showCommand(),
			a.deleteCommand(),
			a.organizeCommand(),
			a.markCommand(),
			a.searchCommand(),
			a.grepCommand(),
			a.exportCommand(),
			a.serveCommand(),
			a.mcpCommand(),
		},
	}
}

// run executes the CLI and reports whether it failed.
func (a *app) run(ctx context.Context, args []string) error {
	err := a.command().Run(ctx, args)
	if errors.Is(err, errHandled) {
		return nil
	}
	return err
}

func main() {
	a := newApp(os.Stdout, os.Stderr, os.Stdin)
	if err := a.run(context.Background(), os.Args); err != nil {
		logger := a.logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("memo error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
