// Package codec converts notes to and from lines of the memo file.
//
// A line is four tab-separated fields: id, status code, date, content.
// Content is the last field and keeps any tabs it contains. Tabs inside the
// date or status would shift the fields and are not supported.
package codec

import (
	"strconv"
	"strings"

	"github.com/starford/memo/internal/apperr"
	"github.com/starford/memo/internal/models"
)

// Delimiter separates the fields of a record.
const Delimiter = "\t"

const fieldCount = 4

// Encode renders n as one line without a terminator.
func Encode(n models.Note) string {
	return strings.Join([]string{
		strconv.Itoa(n.ID),
		n.Status.Code(),
		n.Date,
		StripNewline(n.Content),
	}, Delimiter)
}

// TrimDate renders n without its date, for views that print the date once
// per group.
func TrimDate(n models.Note) string {
	return strings.Join([]string{
		strconv.Itoa(n.ID),
		n.Status.Code(),
		StripNewline(n.Content),
	}, Delimiter)
}

// Decode parses one line. A trailing newline is ignored.
func Decode(line string) (models.Note, error) {
	line = StripNewline(line)
	parts := strings.SplitN(line, Delimiter, fieldCount)
	if len(parts) < fieldCount {
		return models.Note{}, &apperr.DecodeError{Text: line, Reason: "expected 4 tab-separated fields"}
	}
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return models.Note{}, &apperr.DecodeError{Text: line, Reason: "id is not an integer"}
	}
	status, ok := models.StatusFromCode(parts[1])
	if !ok {
		return models.Note{}, &apperr.DecodeError{Text: line, Reason: "unknown status " + strconv.Quote(parts[1])}
	}
	return models.Note{
		ID:      id,
		Status:  status,
		Date:    parts[2],
		Content: parts[3],
	}, nil
}

// StripNewline removes a single trailing "\n" and the "\r" before it, if any.
func StripNewline(s string) string {
	if s, ok := strings.CutSuffix(s, "\n"); ok {
		return strings.TrimSuffix(s, "\r")
	}
	return s
}
