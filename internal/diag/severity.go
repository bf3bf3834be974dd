package diag

import (
	"fmt"
	"strings"
)

// Severity defines the importance of an offense. The scale and its ordering
// follow RuboCop: info < refactor < convention < warning < error < fatal.
type Severity uint8

const (
	SevInfo Severity = iota
	SevRefactor
	SevConvention
	// SevWarning is the default for Lint and Rails cops.
	SevWarning
	SevError
	// SevFatal is reserved for offenses that stop analysis of a file,
	// such as syntax errors.
	SevFatal
)

var severityNames = [...]string{
	SevInfo:       "info",
	SevRefactor:   "refactor",
	SevConvention: "convention",
	SevWarning:    "warning",
	SevError:      "error",
	SevFatal:      "fatal",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "unknown"
}

// Letter returns the one-letter code used by progress and clang-style output.
func (s Severity) Letter() string {
	switch s {
	case SevInfo:
		return "I"
	case SevRefactor:
		return "R"
	case SevConvention:
		return "C"
	case SevWarning:
		return "W"
	case SevError:
		return "E"
	case SevFatal:
		return "F"
	}
	return "?"
}

// ParseSeverity accepts the lower-case names returned by String.
func ParseSeverity(name string) (Severity, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range severityNames {
		if s == n {
			return Severity(i), nil
		}
	}
	return SevInfo, fmt.Errorf("unknown severity %q (want one of %s)", name, strings.Join(severityNames[:], ", "))
}

// MarshalText lets severities appear by name in TOML and JSON.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
