// Package memopath resolves where the memo file lives and reads the display
// settings of the rc file.
package memopath

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables and rc keys.
const (
	EnvMemoPath   = "MEMO_PATH"
	EnvMemorcPath = "MEMORC_PATH"

	KeyMemoPath     = "MEMO_PATH"
	KeyUseColors    = "USE_COLORS"
	KeyLineColor    = "LINE_COLOR"
	KeyOddLineColor = "ODD_LINE_COLOR"

	DefaultMemoFile   = ".memo"
	DefaultMemorcFile = ".memorc"

	DefaultLineColor    = "magenta"
	DefaultOddLineColor = "blue"
)

// Env looks up one environment variable. os.LookupEnv satisfies it.
type Env func(key string) (string, bool)

// Resolver answers path and settings questions for one environment.
type Resolver struct {
	env  Env
	home string
}

// NewResolver builds a Resolver. A nil env uses the process environment; an
// empty home uses os.UserHomeDir.
func NewResolver(env Env, home string) *Resolver {
	if env == nil {
		env = os.LookupEnv
	}
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		}
	}
	return &Resolver{env: env, home: home}
}

func (r *Resolver) lookup(key string) string {
	v, ok := r.env(key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// RCPath returns MEMORC_PATH when set, else ~/.memorc.
func (r *Resolver) RCPath() string {
	if p := r.lookup(EnvMemorcPath); p != "" {
		return expandHome(p, r.home)
	}
	return filepath.Join(r.home, DefaultMemorcFile)
}

// RC reads the rc file. A missing or unreadable file yields an empty map.
func (r *Resolver) RC() map[string]string {
	values, err := godotenv.Read(r.RCPath())
	if err != nil {
		return map[string]string{}
	}
	return values
}

// MemoPath resolves the memo file: MEMO_PATH env, then the MEMO_PATH rc key,
// then ~/.memo.
func (r *Resolver) MemoPath() string {
	if p := r.lookup(EnvMemoPath); p != "" {
		return expandHome(p, r.home)
	}
	if p := strings.TrimSpace(r.RC()[KeyMemoPath]); p != "" {
		return expandHome(p, r.home)
	}
	return filepath.Join(r.home, DefaultMemoFile)
}

// Display holds the line coloring settings.
type Display struct {
	UseColors    bool
	LineColor    string
	OddLineColor string
}

// Display reads the coloring keys of the rc file. Colors are on only when
// USE_COLORS is present and not "no" or "false".
func (r *Resolver) Display() Display {
	rc := r.RC()
	d := Display{
		LineColor:    DefaultLineColor,
		OddLineColor: DefaultOddLineColor,
	}
	switch strings.ToLower(strings.TrimSpace(rc[KeyUseColors])) {
	case "", "no", "false":
	default:
		d.UseColors = true
	}
	if c := strings.TrimSpace(rc[KeyLineColor]); c != "" {
		d.LineColor = c
	}
	if c := strings.TrimSpace(rc[KeyOddLineColor]); c != "" {
		d.OddLineColor = c
	}
	return d
}

func expandHome(p, home string) string {
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home, p[2:])
	}
	return p
}
