package storage

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/natefinch/atomic"

	"github.com/starford/memo/internal/apperr"
	"github.com/starford/memo/internal/codec"
	"github.com/starford/memo/internal/models"
)

// DefaultLockTimeout bounds how long a mutation waits for the write lock.
const DefaultLockTimeout = 5 * time.Second

const lockRetryDelay = 20 * time.Millisecond

// File implements Provider backed by one text file on the local file system.
type File struct {
	path        string // absolute path to the memo file
	lockTimeout time.Duration
}

// NewFile creates a File provider for path. The file itself need not exist.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, apperr.Invalid("storage: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve path: %w", err)
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return nil, apperr.Invalid("storage: path is a directory: %s", abs)
	}
	return &File{path: abs, lockTimeout: DefaultLockTimeout}, nil
}

// SetLockTimeout changes how long WithLock waits before giving up.
func (f *File) SetLockTimeout(d time.Duration) {
	f.lockTimeout = d
}

// Path returns the absolute path of the memo file.
func (f *File) Path() string {
	return f.path
}

// Load reads the file line by line. Empty lines are skipped; any line that
// does not decode fails the whole load.
func (f *File) Load() ([]models.Note, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("storage: load %s: %w", f.path, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: open: %w: %w", apperr.ErrIO, err)
	}
	defer fh.Close()

	var notes []models.Note
	r := bufio.NewReader(fh)
	for lineNo := 1; ; lineNo++ {
		line, readErr := r.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, fmt.Errorf("storage: read: %w: %w", apperr.ErrIO, readErr)
		}
		if text := codec.StripNewline(line); text != "" {
			n, err := codec.Decode(text)
			if err != nil {
				var de *apperr.DecodeError
				if errors.As(err, &de) {
					de.Line = lineNo
				}
				return nil, fmt.Errorf("storage: load %s: %w", f.path, err)
			}
			notes = append(notes, n)
		}
		if readErr != nil {
			break
		}
	}
	return notes, nil
}

// Persist atomically replaces the file content with notes.
func (f *File) Persist(notes []models.Note) error {
	var buf bytes.Buffer
	for _, n := range notes {
		buf.WriteString(codec.Encode(n))
		buf.WriteByte('\n')
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w: %w", apperr.ErrIO, err)
	}
	if err := atomic.WriteFile(f.path, &buf); err != nil {
		return fmt.Errorf("storage: persist: %w: %w", apperr.ErrIO, err)
	}
	return nil
}

// Init creates an empty memo file when none exists. An existing file is
// left untouched.
func (f *File) Init() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w: %w", apperr.ErrIO, err)
	}
	fh, err := os.OpenFile(f.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return fmt.Errorf("storage: init: %w: %w", apperr.ErrIO, err)
	}
	if err := fh.Close(); err != nil {
		return fmt.Errorf("storage: init: %w: %w", apperr.ErrIO, err)
	}
	return nil
}

// Remove deletes the memo file. A missing file is not an error.
func (f *File) Remove() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: remove: %w: %w", apperr.ErrIO, err)
	}
	return nil
}

// Exists reports whether the memo file is present.
func (f *File) Exists() (bool, error) {
	_, err := os.Stat(f.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("storage: stat: %w: %w", apperr.ErrIO, err)
}

// Checksum returns the hex SHA-256 of the current file content. It is the
// ETag of the HTTP API and the change marker of the watcher.
func (f *File) Checksum() (string, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("storage: checksum %s: %w", f.path, apperr.ErrNotFound)
		}
		return "", fmt.Errorf("storage: checksum: %w: %w", apperr.ErrIO, err)
	}
	defer fh.Close()

	h := sha256.New()
	if _, err := io.Copy(h, fh); err != nil {
		return "", fmt.Errorf("storage: checksum: %w: %w", apperr.ErrIO, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// WithLock holds an advisory lock on "<path>.lock" while fn runs.
// It guards writers against each other only; Load never takes the lock.
func (f *File) WithLock(fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w: %w", apperr.ErrIO, err)
	}
	lk := flock.New(f.path + ".lock")

	ctx, cancel := context.WithTimeout(context.Background(), f.lockTimeout)
	defer cancel()

	locked, err := lk.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("storage: lock %s: %w: %w", lk.Path(), apperr.ErrIO, err)
	}
	if !locked {
		return fmt.Errorf("storage: lock %s: %w: timed out", lk.Path(), apperr.ErrIO)
	}
	defer lk.Unlock() //nolint:errcheck // released on close anyway

	return fn()
}
