package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the closed set of note states. Any state may follow any other.
type Status int

const (
	StatusUndone Status = iota
	StatusDone
	StatusPostponed
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusUndone, StatusDone, StatusPostponed}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusUndone, StatusDone, StatusPostponed:
		return true
	}
	return false
}

// Code returns the one-letter form stored in the memo file.
func (s Status) Code() string {
	switch s {
	case StatusUndone:
		return "U"
	case StatusDone:
		return "D"
	case StatusPostponed:
		return "P"
	}
	return "?"
}

// String returns the long lowercase name.
func (s Status) String() string {
	switch s {
	case StatusUndone:
		return "undone"
	case StatusDone:
		return "done"
	case StatusPostponed:
		return "postponed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// StatusFromCode maps a stored one-letter code back to a Status.
func StatusFromCode(code string) (Status, bool) {
	switch code {
	case "U":
		return StatusUndone, true
	case "D":
		return StatusDone, true
	case "P":
		return StatusPostponed, true
	}
	return 0, false
}

// ParseStatus accepts either the code or the long name, case-insensitively.
func ParseStatus(s string) (Status, bool) {
	v := strings.TrimSpace(s)
	if st, ok := StatusFromCode(strings.ToUpper(v)); ok {
		return st, true
	}
	for _, st := range Statuses {
		if strings.EqualFold(v, st.String()) {
			return st, true
		}
	}
	return 0, false
}

// MarshalJSON encodes the status by its long name.
func (s Status) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("models: invalid status %d", int(s))
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts anything ParseStatus accepts.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	st, ok := ParseStatus(raw)
	if !ok {
		return fmt.Errorf("models: unknown status %q", raw)
	}
	*s = st
	return nil
}
