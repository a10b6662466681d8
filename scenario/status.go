package scenario

import (
	"fmt"
	"strings"
)

// Status is the state of a scenario run.
//
//	START → IN_PROGRESS ⇄ ERROR
//	IN_PROGRESS → DONE
//
// START and ERROR only last until the next Update; DONE is terminal.
type Status uint8

const (
	StatusStart Status = iota
	StatusInProgress
	StatusError
	StatusDone
)

var statusNames = [...]string{"START", "IN_PROGRESS", "ERROR", "DONE"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if int(s) >= len(statusNames) {
		return nil, fmt.Errorf("invalid status %d", s)
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	for i, name := range statusNames {
		if strings.EqualFold(string(b), name) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}
