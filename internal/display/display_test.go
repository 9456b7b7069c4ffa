package display_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"

	"github.com/starford/memo/internal/display"
	"github.com/starford/memo/internal/memopath"
	"github.com/starford/memo/internal/models"
)

var sample = []models.Note{
	{ID: 1, Status: models.StatusUndone, Date: "2024-01-01", Content: "a"},
	{ID: 2, Status: models.StatusDone, Date: "2024-01-02", Content: "b"},
	{ID: 3, Status: models.StatusUndone, Date: "2024-01-01", Content: "c"},
}

func TestNotesPlain(t *testing.T) {
	var buf bytes.Buffer
	p := display.New(&buf, memopath.Display{UseColors: true, LineColor: "magenta", OddLineColor: "blue"})
	if err := p.Notes(sample); err != nil {
		t.Fatal(err)
	}
	want := "1\tU\t2024-01-01\ta\n2\tD\t2024-01-02\tb\n3\tU\t2024-01-01\tc\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestGroupsPlain(t *testing.T) {
	var buf bytes.Buffer
	p := display.New(&buf, memopath.Display{})
	groups := []models.DateGroup{
		{Date: "2024-01-01", Notes: []models.Note{sample[0], sample[2]}},
		{Date: "2024-01-02", Notes: []models.Note{sample[1]}},
	}
	if err := p.Groups(groups); err != nil {
		t.Fatal(err)
	}
	want := "2024-01-01\n\t1\tU\ta\n\t3\tU\tc\n2024-01-02\n\t2\tD\tb\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestAlternatingColors(t *testing.T) {
	var buf bytes.Buffer
	p := display.New(&buf, memopath.Display{UseColors: true, LineColor: "magenta", OddLineColor: "blue"})
	p.Renderer().SetColorProfile(termenv.ANSI)
	if err := p.Notes(sample[:2]); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.Contains(lines[0], "\x1b[35m") {
		t.Errorf("even line not magenta: %q", lines[0])
	}
	if !strings.Contains(lines[1], "\x1b[34m") {
		t.Errorf("odd line not blue: %q", lines[1])
	}
}

func TestColorsDisabled(t *testing.T) {
	var buf bytes.Buffer
	p := display.New(&buf, memopath.Display{UseColors: false, LineColor: "magenta", OddLineColor: "blue"})
	p.Renderer().SetColorProfile(termenv.ANSI)
	if err := p.Notes(sample[:1]); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("colors emitted with USE_COLORS off: %q", buf.String())
	}
}

func TestEmptyIsRed(t *testing.T) {
	var buf bytes.Buffer
	p := display.New(&buf, memopath.Display{})
	p.Renderer().SetColorProfile(termenv.ANSI)
	if err := p.Empty(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\x1b[31m") || !strings.Contains(buf.String(), display.EmptyMessage) {
		t.Errorf("got %q", buf.String())
	}
}

func TestColorCode(t *testing.T) {
	for name, want := range map[string]string{"grey": "0", "RED": "1", " cyan ": "6", "white": "7"} {
		if got, ok := display.ColorCode(name); !ok || got != want {
			t.Errorf("ColorCode(%q) = %q, %v", name, got, ok)
		}
	}
	if _, ok := display.ColorCode("purple"); ok {
		t.Error("unknown color accepted")
	}
}
