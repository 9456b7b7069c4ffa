// Package display renders notes for the terminal, alternating line colors
// the way the rc file asks for.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/memo/internal/codec"
	"github.com/starford/memo/internal/memopath"
	"github.com/starford/memo/internal/models"
)

// EmptyMessage is printed when the memo file holds no notes.
const EmptyMessage = "You don't have any notes currently."

// ansiColors maps termcolor names to ANSI palette indexes.
var ansiColors = map[string]string{
	"grey":    "0",
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"magenta": "5",
	"cyan":    "6",
	"white":   "7",
}

// ColorCode returns the ANSI palette index for a termcolor name.
func ColorCode(name string) (string, bool) {
	code, ok := ansiColors[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}

// Printer writes notes to one writer.
type Printer struct {
	w        io.Writer
	renderer *lipgloss.Renderer
	settings memopath.Display
}

// New creates a Printer. Colors are emitted only when settings enable them
// and the writer is a color-capable terminal.
func New(w io.Writer, settings memopath.Display) *Printer {
	return &Printer{
		w:        w,
		renderer: lipgloss.NewRenderer(w),
		settings: settings,
	}
}

// Renderer exposes the lipgloss renderer, mainly so callers can force a
// color profile.
func (p *Printer) Renderer() *lipgloss.Renderer {
	return p.renderer
}

// base keeps tabs intact; they are the record delimiter.
func (p *Printer) base() lipgloss.Style {
	return p.renderer.NewStyle().TabWidth(lipgloss.NoTabConversion)
}

// lineStyle picks the style for the i-th printed line or group.
func (p *Printer) lineStyle(i int) lipgloss.Style {
	style := p.base()
	if !p.settings.UseColors {
		return style
	}
	name := p.settings.LineColor
	if i%2 == 1 {
		name = p.settings.OddLineColor
	}
	if code, ok := ColorCode(name); ok {
		style = style.Foreground(lipgloss.Color(code))
	}
	return style
}

func (p *Printer) println(style lipgloss.Style, s string) error {
	_, err := fmt.Fprintln(p.w, style.Render(s))
	return err
}

// Notes prints one encoded line per note.
func (p *Printer) Notes(notes []models.Note) error {
	for i, n := range notes {
		if err := p.println(p.lineStyle(i), codec.Encode(n)); err != nil {
			return err
		}
	}
	return nil
}

// Groups prints each date on its own line followed by its notes, indented
// and without the date column. All lines of a group share one color.
func (p *Printer) Groups(groups []models.DateGroup) error {
	for i, g := range groups {
		style := p.lineStyle(i)
		if err := p.println(style, g.Date); err != nil {
			return err
		}
		for _, n := range g.Notes {
			if err := p.println(style, "\t"+codec.TrimDate(n)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Empty prints EmptyMessage in red. It ignores USE_COLORS.
func (p *Printer) Empty() error {
	return p.println(p.base().Foreground(lipgloss.Color(ansiColors["red"])), EmptyMessage)
}

// Message prints a plain line.
func (p *Printer) Message(format string, args ...any) error {
	_, err := fmt.Fprintf(p.w, format+"\n", args...)
	return err
}
