// Package watch reports changes to the memo file made by any process.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/memo/internal/apperr"
	"github.com/starford/memo/internal/storage"
)

// DefaultDebounce is used when Watch is given a non-positive debounce.
const DefaultDebounce = 200 * time.Millisecond

// Kind of observed change.
type Kind string

// Change kinds.
const (
	KindChanged Kind = "changed"
	KindRemoved Kind = "removed"
)

// Callback is called once per settled change. checksum is empty for
// KindRemoved.
type Callback func(kind Kind, checksum string)

// Watch watches the directory holding the memo file and calls cb whenever
// the file content settles on a new checksum or the file disappears. Events
// are debounced so one atomic replace yields one callback. It blocks until
// ctx is cancelled.
//
// The directory is watched rather than the file because a rename-based
// replace swaps the inode, which a file watch would lose.
func Watch(ctx context.Context, store storage.Provider, debounce time.Duration, logger *slog.Logger, cb Callback) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir, name := filepath.Split(store.Path())
	if err := w.Add(filepath.Clean(dir)); err != nil {
		return err
	}

	last := currentChecksum(store, logger)
	logger.Info("watcher: started", slog.String("path", store.Path()))

	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
			return
		}
		timer.Stop()
		timer.Reset(debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			sum := currentChecksum(store, logger)
			if sum == last {
				continue
			}
			last = sum
			kind := KindChanged
			if sum == "" {
				kind = KindRemoved
			}
			logger.Debug("watcher: change", slog.String("kind", string(kind)), slog.String("checksum", sum))
			if cb != nil {
				cb(kind, sum)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// currentChecksum returns "" when the file is absent.
func currentChecksum(store storage.Provider, logger *slog.Logger) string {
	sum, err := store.Checksum()
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			logger.Warn("watcher: checksum failed", slog.String("error", err.Error()))
		}
		return ""
	}
	return sum
}
