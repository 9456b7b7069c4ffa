// Package testutil provides shared test helpers for setting up memo files and services.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/memo/internal/models"
	"github.com/starford/memo/internal/noteservice"
	"github.com/starford/memo/internal/storage"
)

// FixedClock is the time returned by services built with TestService.
var FixedClock = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

// TestStore creates an initialized, empty memo file in a temp directory.
func TestStore(t *testing.T) *storage.File {
	t.Helper()
	store, err := storage.NewFile(filepath.Join(t.TempDir(), ".memo"))
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	return store
}

// TestService wraps TestStore in a service with a quiet logger and FixedClock.
func TestService(t *testing.T) (*noteservice.Service, *storage.File) {
	t.Helper()
	store := TestStore(t)
	svc := noteservice.NewService(store,
		noteservice.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		noteservice.WithClock(func() time.Time { return FixedClock }),
	)
	return svc, store
}

// Seed persists notes directly, bypassing id assignment.
func Seed(t *testing.T, store storage.Provider, notes ...models.Note) {
	t.Helper()
	if err := store.Persist(notes); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

// WriteRaw replaces the file at path with text, bypassing the codec.
func WriteRaw(path, text string) error {
	return os.WriteFile(path, []byte(text), 0o644)
}
