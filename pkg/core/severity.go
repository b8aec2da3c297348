package core

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// =============================================================================
// Severity
// =============================================================================

// Severity indicates the importance of a diagnostic.
type Severity int

// Severity levels for diagnostics.
const (
	// SeverityError marks a failure; the affected file is not written.
	SeverityError Severity = iota
	// SeverityWarning marks a suspicious input that did not stop generation.
	SeverityWarning
	// SeverityInfo marks informational feedback.
	SeverityInfo
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityWarning and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	default:
		return SeverityWarning, false
	}
}

// =============================================================================
// Diagnostic
// =============================================================================

// Diagnostic is one entry of a batch report: a (location, kind, message) tuple.
type Diagnostic struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Kind     Kind     `json:"kind,omitempty" yaml:"kind,omitempty"`
	Location Location `json:"location" yaml:"location"`
	Message  string   `json:"message" yaml:"message"`
}

// DiagnosticFromError converts an error into an error-severity diagnostic.
// Unclassified errors get the fallback location.
func DiagnosticFromError(err error, fallback Location) Diagnostic {
	d := Diagnostic{Severity: SeverityError, Location: fallback, Message: err.Error()}
	var ge *Error
	if errors.As(err, &ge) {
		d.Kind = ge.Kind
		d.Message = ge.Message
		if ge.Location != (Location{}) {
			d.Location = ge.Location
		}
	}
	return d
}

// Warning creates a warning diagnostic.
func Warning(loc Location, message string) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Location: loc, Message: message}
}
