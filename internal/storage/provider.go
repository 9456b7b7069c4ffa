// Package storage defines the memo file abstraction.
package storage

import "github.com/starford/memo/internal/models"

// Provider is the interface for memo file operations.
type Provider interface {
	// Path returns the location of the backing file.
	Path() string
	// Load decodes every non-empty line, in file order.
	Load() ([]models.Note, error)
	// Persist atomically replaces the file with one line per note.
	Persist(notes []models.Note) error
	// Init creates an empty file if none exists.
	Init() error
	// Remove deletes the backing file.
	Remove() error
	// Exists reports whether the backing file is present.
	Exists() (bool, error)
	// Checksum returns the hex SHA-256 of the file content.
	Checksum() (string, error)
	// WithLock runs fn while holding the advisory write lock.
	WithLock(fn func() error) error
}

// NextID returns 1 for an empty set, otherwise the largest id plus one.
func NextID(notes []models.Note) int {
	maxID := 0
	for _, n := range notes {
		if n.ID > maxID {
			maxID = n.ID
		}
	}
	return maxID + 1
}
