// Package noteservice implements the memo operations on top of a storage
// provider. Every call loads the whole file, works on the in-memory copy and,
// for mutations, writes the whole file back.
package noteservice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/starford/memo/internal/apperr"
	"github.com/starford/memo/internal/codec"
	"github.com/starford/memo/internal/models"
	"github.com/starford/memo/internal/storage"
)

// Service coordinates storage operations.
type Service struct {
	store  storage.Provider
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for mutation traces.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithClock overrides the time source used for default dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new note service.
func NewService(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying provider.
func (s *Service) Store() storage.Provider {
	return s.store
}

// Today returns the current date as YYYY-MM-DD.
func (s *Service) Today() string {
	return Today(s.now())
}

type expectKey struct{}

// ExpectChecksum returns a context under which mutations fail with
// apperr.ErrConflict unless the file checksum equals sum once the write lock
// is held. An empty sum disables the check.
func ExpectChecksum(ctx context.Context, sum string) context.Context {
	if sum == "" {
		return ctx
	}
	return context.WithValue(ctx, expectKey{}, sum)
}

func (s *Service) checkExpected(ctx context.Context) error {
	want, ok := ctx.Value(expectKey{}).(string)
	if !ok {
		return nil
	}
	got, err := s.store.Checksum()
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("noteservice: checksum %s, expected %s: %w", got, want, apperr.ErrConflict)
	}
	return nil
}

// mutate applies fn to a fresh load under the write lock. fn reports whether
// anything changed; unchanged sets are not rewritten.
func (s *Service) mutate(ctx context.Context, op string, fn func(notes []models.Note) ([]models.Note, bool, error)) error {
	return s.store.WithLock(func() error {
		if err := s.checkExpected(ctx); err != nil {
			return err
		}
		notes, err := s.store.Load()
		if err != nil {
			return err
		}
		updated, changed, err := fn(notes)
		if err != nil {
			return err
		}
		if !changed {
			s.logger.Debug("memo: no change", slog.String("op", op))
			return nil
		}
		if err := s.store.Persist(updated); err != nil {
			return err
		}
		s.logger.Debug("memo: persisted",
			slog.String("op", op),
			slog.Int("count", len(updated)),
			slog.String("path", s.store.Path()))
		return nil
	})
}

// Add appends a new undone note with the next free id.
func (s *Service) Add(ctx context.Context, content, date string) (models.Note, error) {
	if err := ValidateContent(content); err != nil {
		return models.Note{}, err
	}
	if err := ValidateDate(date); err != nil {
		return models.Note{}, err
	}
	var added models.Note
	err := s.mutate(ctx, "add", func(notes []models.Note) ([]models.Note, bool, error) {
		added = models.Note{
			ID:      storage.NextID(notes),
			Status:  models.StatusUndone,
			Date:    date,
			Content: codec.StripNewline(content),
		}
		return append(notes, added), true, nil
	})
	if err != nil {
		return models.Note{}, err
	}
	return added, nil
}

// AddFromStream adds one note per non-empty line of r, in order. dateFn is
// called once per line; nil means Today. On error the notes added so far are
// returned with it.
func (s *Service) AddFromStream(ctx context.Context, r io.Reader, dateFn func() string) ([]models.Note, error) {
	if dateFn == nil {
		dateFn = s.Today
	}
	var added []models.Note
	br := bufio.NewReader(r)
	for {
		line, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return added, fmt.Errorf("noteservice: read input: %w", readErr)
		}
		if content := codec.StripNewline(line); content != "" {
			n, err := s.Add(ctx, content, dateFn())
			if err != nil {
				return added, err
			}
			added = append(added, n)
			// The expected checksum guards the first write only.
			ctx = context.WithValue(ctx, expectKey{}, nil)
		}
		if readErr != nil {
			return added, nil
		}
	}
}

// Delete removes the note with the given id. It reports false, and leaves
// the file untouched, when no note matches.
func (s *Service) Delete(ctx context.Context, id int) (bool, error) {
	found := false
	err := s.mutate(ctx, "delete", func(notes []models.Note) ([]models.Note, bool, error) {
		kept := make([]models.Note, 0, len(notes))
		for _, n := range notes {
			if n.ID == id && !found {
				found = true
				continue
			}
			kept = append(kept, n)
		}
		return kept, found, nil
	})
	return found, err
}

// DeleteAll removes the backing file.
func (s *Service) DeleteAll(ctx context.Context) error {
	return s.store.WithLock(func() error {
		if err := s.checkExpected(ctx); err != nil {
			return err
		}
		if err := s.store.Remove(); err != nil {
			return err
		}
		s.logger.Debug("memo: removed", slog.String("path", s.store.Path()))
		return nil
	})
}

// Organize renumbers all notes to 1..N in their current order.
func (s *Service) Organize(ctx context.Context) ([]models.Note, error) {
	var result []models.Note
	err := s.mutate(ctx, "organize", func(notes []models.Note) ([]models.Note, bool, error) {
		changed := false
		for i := range notes {
			if notes[i].ID != i+1 {
				notes[i].ID = i + 1
				changed = true
			}
		}
		result = notes
		return notes, changed, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Mark sets the status of the note with the given id. It reports false when
// no note matches.
func (s *Service) Mark(ctx context.Context, id int, status models.Status) (bool, error) {
	if err := ValidateStatus(status); err != nil {
		return false, err
	}
	found := false
	err := s.mutate(ctx, "mark", func(notes []models.Note) ([]models.Note, bool, error) {
		for i := range notes {
			if notes[i].ID == id {
				notes[i].Status = status
				found = true
				break
			}
		}
		return notes, found, nil
	})
	return found, err
}

// MarkAll sets the status of every note and returns how many there are.
func (s *Service) MarkAll(ctx context.Context, status models.Status) (int, error) {
	if err := ValidateStatus(status); err != nil {
		return 0, err
	}
	count := 0
	err := s.mutate(ctx, "mark_all", func(notes []models.Note) ([]models.Note, bool, error) {
		for i := range notes {
			notes[i].Status = status
		}
		count = len(notes)
		return notes, count > 0, nil
	})
	return count, err
}
