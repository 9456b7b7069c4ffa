package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrDecode          = errors.New("decode error")
	ErrIO              = errors.New("io error")
)

// DecodeError describes a memo file line that does not parse into a note.
type DecodeError struct {
	Line   int // 1-based; 0 when decoding a lone line
	Text   string
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("decode line %d: %s: %q", e.Line, e.Reason, e.Text)
	}
	return fmt.Sprintf("decode: %s: %q", e.Reason, e.Text)
}

// Is makes errors.Is(err, ErrDecode) hold for every *DecodeError.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// Invalid builds an ErrInvalidArgument with a message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
