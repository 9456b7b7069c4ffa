package noteservice

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/memo/internal/apperr"
	"github.com/starford/memo/internal/codec"
	"github.com/starford/memo/internal/models"
)

// DateLayout is the only accepted note date format.
const DateLayout = "2006-01-02"

// ValidateDate checks that s is a real calendar date written as YYYY-MM-DD.
func ValidateDate(s string) error {
	err := validation.Validate(s,
		validation.Required,
		validation.Length(len(DateLayout), len(DateLayout)),
		validation.Date(DateLayout),
	)
	if err != nil {
		return fmt.Errorf("%w: date %q must be in format yyyy-MM-dd: %v", apperr.ErrInvalidArgument, s, err)
	}
	return nil
}

// ValidateContent rejects empty content, content spanning several lines and
// content ending in a carriage return.
// A single trailing newline is tolerated and stripped on encode.
func ValidateContent(s string) error {
	body := codec.StripNewline(s)
	err := validation.Validate(body,
		validation.Required,
		validation.By(func(v any) error {
			body := v.(string)
			if strings.ContainsAny(body, "\n") {
				return validation.NewError("validation_single_line", "must not contain a newline")
			}
			// Load reads "...\r\n" as a CRLF line ending and would drop it.
			if strings.HasSuffix(body, "\r") {
				return validation.NewError("validation_trailing_cr", "must not end with a carriage return")
			}
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("%w: content: %v", apperr.ErrInvalidArgument, err)
	}
	return nil
}

// ValidateStatus rejects values outside the closed status set.
func ValidateStatus(s models.Status) error {
	if !s.Valid() {
		return apperr.Invalid("unknown status %d", int(s))
	}
	return nil
}

// ParseStatus parses user input into a Status.
func ParseStatus(s string) (models.Status, error) {
	st, ok := models.ParseStatus(s)
	if !ok {
		return 0, apperr.Invalid("status %q must be one of U, D, P (undone, done, postponed)", s)
	}
	return st, nil
}

// Today formats now as a note date.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}
