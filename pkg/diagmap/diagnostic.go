// Package diagmap maps diagnostics reported against rewritten Python text
// back onto the Sage text the user wrote.
package diagmap

import (
	"fmt"
	"strings"

	"github.com/yaklabco/gosage/pkg/source"
)

// Severity follows the editor protocol's numbering.
type Severity int

const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "info"
	case SeverityHint:
		return "hint"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity parses a severity name.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(name) {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "info", "information":
		return SeverityInformation, nil
	case "hint":
		return SeverityHint, nil
	}
	return 0, fmt.Errorf("unknown severity %q", name)
}

// Origin records how a mapped diagnostic relates to the user's text.
type Origin string

const (
	// OriginDirect diagnostics point at text the user wrote.
	OriginDirect Origin = "direct"

	// OriginGenerated diagnostics were reported inside code generated for a
	// declaration and point at the whole declaration.
	OriginGenerated Origin = "generated"

	// OriginSynthetic diagnostics were reported inside inserted text and
	// point at the insertion point.
	OriginSynthetic Origin = "synthetic"
)

// Diagnostic is an analyzer finding.
type Diagnostic struct {
	Range    source.Range `json:"range"`
	Severity Severity     `json:"severity"`
	Code     string       `json:"code,omitempty"`
	Message  string       `json:"message"`
	Source   string       `json:"source,omitempty"`
	Origin   Origin       `json:"origin,omitempty"`
}
