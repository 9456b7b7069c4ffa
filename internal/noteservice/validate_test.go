package noteservice_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/memo/internal/apperr"
	"github.com/starford/memo/internal/models"
	"github.com/starford/memo/internal/noteservice"
)

func appendRaw(path, text string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(text)
	return err
}

func TestValidateDate(t *testing.T) {
	valid := []string{"2024-02-29", "2000-02-29", "2023-12-31", "2023-01-31", "1999-04-30"}
	for _, d := range valid {
		if err := noteservice.ValidateDate(d); err != nil {
			t.Errorf("ValidateDate(%q): %v", d, err)
		}
	}
	invalid := []string{"2023-02-29", "1900-02-29", "2023-04-31", "2023-00-10", "2023-01-00", "2023-1-01", "20230101", "", "2023-01-01 "}
	for _, d := range invalid {
		if err := noteservice.ValidateDate(d); !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("ValidateDate(%q) = %v, want ErrInvalidArgument", d, err)
		}
	}
}

func TestValidateContent(t *testing.T) {
	if err := noteservice.ValidateContent("fine\n"); err != nil {
		t.Errorf("trailing newline rejected: %v", err)
	}
	if err := noteservice.ValidateContent("a\tb"); err != nil {
		t.Errorf("tab rejected: %v", err)
	}
	for _, bad := range []string{"", "\n", "a\nb", "a\r", "a\r\r\n"} {
		if err := noteservice.ValidateContent(bad); !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("ValidateContent(%q) = %v", bad, err)
		}
	}
}

func TestParseStatus(t *testing.T) {
	st, err := noteservice.ParseStatus("done")
	if err != nil || st != models.StatusDone {
		t.Errorf("ParseStatus(done) = %v, %v", st, err)
	}
	if _, err := noteservice.ParseStatus("finished"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("ParseStatus(finished): err = %v", err)
	}
}

func TestToday(t *testing.T) {
	got := noteservice.Today(time.Date(2024, 2, 9, 23, 59, 0, 0, time.UTC))
	if got != "2024-02-09" {
		t.Errorf("Today = %q", got)
	}
}
