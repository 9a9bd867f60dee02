package result

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Status is the outcome of a node in a suite result tree.
type Status int

const (
	// StatusUnknown marks an empty group, or one whose outcome cannot be decided.
	StatusUnknown Status = iota
	// StatusPassed marks a test, or a group where every test passed.
	StatusPassed
	// StatusFailed marks a failed test, or a group holding one.
	StatusFailed
	// StatusSkipped marks a skipped test, or a group with skips and no failures.
	StatusSkipped
)

// String returns the upper-case status name.
func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "PASSED"
	case StatusFailed:
		return "FAILED"
	case StatusSkipped:
		return "SKIPPED"
	default:
		return "UNKNOWN"
	}
}

// ParseStatus converts the text form produced by String back into a Status.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PASSED":
		return StatusPassed, nil
	case "FAILED":
		return StatusFailed, nil
	case "SKIPPED":
		return StatusSkipped, nil
	case "UNKNOWN":
		return StatusUnknown, nil
	default:
		return StatusUnknown, fmt.Errorf("unknown status %q", s)
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Status) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

func (s *Status) UnmarshalYAML(value *yaml.Node) error {
	var text string
	if err := value.Decode(&text); err != nil {
		return err
	}
	return s.UnmarshalText([]byte(text))
}
