package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/starford/memo/internal/apperr"
	"github.com/starford/memo/internal/models"
	"github.com/starford/memo/internal/noteservice"
)

func (a *app) addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a note from options or from each line of input",
		ArgsUsage: "[input]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "content",
				Aliases: []string{"c"},
				Usage:   "The note content to add",
			},
			&cli.StringFlag{
				Name:        "date",
				Aliases:     []string{"d"},
				Usage:       "The note date, in format yyyy-MM-dd",
				DefaultText: "today",
			},
		},
		Action: a.add,
	}
}

func (a *app) add(ctx context.Context, cmd *cli.Command) error {
	date := cmd.String("date")
	if date != "" {
		if err := noteservice.ValidateDate(date); err != nil {
			return err
		}
	}

	if content := cmd.String("content"); content != "" {
		if date == "" {
			date = a.svc.Today()
		}
		n, err := a.svc.Add(ctx, content, date)
		if err != nil {
			return err
		}
		a.logger.Debug("note added", slog.Int("id", n.ID))
		return nil
	}

	in, closeIn, err := a.input(cmd.Args().First())
	if err != nil {
		return err
	}
	defer closeIn()

	var dateFn func() string
	if date != "" {
		dateFn = func() string { return date }
	}
	added, err := a.svc.AddFromStream(ctx, in, dateFn)
	a.logger.Debug("notes added from input", slog.Int("count", len(added)))
	return err
}

// input opens name for reading; "" and "-" mean stdin.
func (a *app) input(name string) (io.Reader, func(), error) {
	if name == "" || name == "-" {
		return a.stdin, func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w: %w", apperr.ErrIO, err)
	}
	return f, func() { _ = f.Close() }, nil
}

func (a *app) showCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Show the notes already taken",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "latest",
				Aliases: []string{"l"},
				Usage:   "Show the notes after the first n+1",
			},
			&cli.BoolFlag{
				Name:    "organized",
				Aliases: []string{"o"},
				Usage:   "Show all notes organized by date",
			},
			&cli.BoolFlag{
				Name:    "unpostponed",
				Aliases: []string{"s"},
				Usage:   "Show all notes except postponed",
			},
			&cli.BoolFlag{
				Name:    "undone",
				Aliases: []string{"u"},
				Usage:   "Show only undone notes",
			},
			&cli.BoolFlag{
				Name:  "done",
				Usage: "Show only done notes",
			},
			&cli.BoolFlag{
				Name:  "postponed",
				Usage: "Show only postponed notes",
			},
		},
		Action: a.show,
	}
}

func (a *app) show(ctx context.Context, cmd *cli.Command) error {
	all, err := a.svc.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		return a.out.Empty()
	}

	var notes []models.Note
	switch {
	case cmd.Int("latest") != 0:
		notes, err = a.svc.ListLatest(ctx, int(cmd.Int("latest")))
	case cmd.Bool("organized"):
		groups, err := a.svc.GroupByDate(ctx)
		if err != nil {
			return err
		}
		return a.out.Groups(groups)
	case cmd.Bool("unpostponed"):
		notes, err = a.svc.FilterByStatus(ctx, models.StatusPostponed, true)
	case cmd.Bool("undone"):
		notes, err = a.svc.FilterByStatus(ctx, models.StatusUndone, false)
	case cmd.Bool("done"):
		notes, err = a.svc.FilterByStatus(ctx, models.StatusDone, false)
	case cmd.Bool("postponed"):
		notes, err = a.svc.FilterByStatus(ctx, models.StatusPostponed, false)
	default:
		notes = all
	}
	if err != nil {
		return err
	}
	return a.out.Notes(notes)
}

func (a *app) deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete notes by id, or every note",
		ArgsUsage: "<id>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "all",
				Aliases: []string{"a"},
				Usage:   "Delete every note",
			},
		},
		Action: a.delete,
	}
}

func (a *app) delete(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("all") {
		if err := a.svc.DeleteAll(ctx); err != nil {
			return err
		}
		// Keep the file around for the next command.
		return a.store.Init()
	}

	ids, err := parseIDs(cmd.Args().Slice())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return apperr.Invalid("delete needs at least one id or --all")
	}

	var missing []int
	for _, id := range ids {
		ok, err := a.svc.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("delete: no note with id %v: %w", missing, apperr.ErrNotFound)
	}
	return nil
}

func (a *app) organizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "organize",
		Usage: "Renumber notes to 1..N in file order",
		Action: func(ctx context.Context, _ *cli.Command) error {
			notes, err := a.svc.Organize(ctx)
			if err != nil {
				return err
			}
			return a.out.Message("Organized %d notes.", len(notes))
		},
	}
}

func (a *app) markCommand() *cli.Command {
	return &cli.Command{
		Name:      "mark",
		Usage:     "Set the status (U, D, P or undone, done, postponed) of a note",
		ArgsUsage: "<id> <status> | --all <status>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "all",
				Aliases: []string{"a"},
				Usage:   "Mark every note",
			},
		},
		Action: a.mark,
	}
}

func (a *app) mark(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()

	if cmd.Bool("all") {
		if len(args) != 1 {
			return apperr.Invalid("mark --all takes exactly one status")
		}
		status, err := noteservice.ParseStatus(args[0])
		if err != nil {
			return err
		}
		count, err := a.svc.MarkAll(ctx, status)
		if err != nil {
			return err
		}
		return a.out.Message("Marked %d notes as %s.", count, status)
	}

	if len(args) != 2 {
		return apperr.Invalid("mark takes an id and a status")
	}
	ids, err := parseIDs(args[:1])
	if err != nil {
		return err
	}
	status, err := noteservice.ParseStatus(args[1])
	if err != nil {
		return err
	}
	ok, err := a.svc.Mark(ctx, ids[0], status)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("mark: no note with id %d: %w", ids[0], apperr.ErrNotFound)
	}
	return nil
}

func (a *app) searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Show notes whose date or content contains key",
		ArgsUsage: "<key>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return apperr.Invalid("search takes exactly one key")
			}
			notes, err := a.svc.SearchSubstring(ctx, cmd.Args().First())
			if err != nil {
				return err
			}
			return a.out.Notes(notes)
		},
	}
}

func (a *app) grepCommand() *cli.Command {
	return &cli.Command{
		Name:      "grep",
		Usage:     "Show notes whose content starts with a match of pattern, ignoring case",
		ArgsUsage: "<pattern>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return apperr.Invalid("grep takes exactly one pattern")
			}
			notes, err := a.svc.SearchPattern(ctx, cmd.Args().First())
			if err != nil {
				return err
			}
			return a.out.Notes(notes)
		},
	}
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, s := range args {
		id, err := strconv.Atoi(s)
		if err != nil || id < 0 {
			return nil, apperr.Invalid("id %q must be a non-negative integer", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
