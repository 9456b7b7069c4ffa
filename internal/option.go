package internal

import (
	"log/slog"

	"github.com/starford/memo/internal/storage"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	store  storage.Provider
	logger *slog.Logger
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithStore overrides the memo file provider; otherwise one is built from
// Config.Memo.Path.
func WithStore(store storage.Provider) Option {
	return func(a *application) {
		a.store = store
	}
}

// WithLogger overrides the JSON logger built from Config.App.LogLevel.
func WithLogger(l *slog.Logger) Option {
	return func(a *application) {
		a.logger = l
	}
}
