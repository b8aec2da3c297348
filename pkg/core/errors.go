package core

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// =============================================================================
// Error taxonomy
// =============================================================================

// Kind classifies a generation failure. Every kind is scoped to one class or
// one file; none of them stops a batch.
type Kind string

// Error kinds reported by the generation pipeline.
const (
	// KindNonStaticMetadata means the metadata descriptor is not an object
	// literal that can be read without executing code.
	KindNonStaticMetadata Kind = "NonStaticMetadata"
	// KindMemberKindConflict means one name is used by members of different kinds.
	KindMemberKindConflict Kind = "MemberKindConflict"
	// KindUnknownDefaultAggregation means defaultAggregation names no aggregation.
	KindUnknownDefaultAggregation Kind = "UnknownDefaultAggregation"
	// KindCorruptGeneratedRegion means the generated-region markers are malformed.
	KindCorruptGeneratedRegion Kind = "CorruptGeneratedRegion"
	// KindUnresolvedBaseSurface means the base class surface is missing, failed,
	// or the class takes part in an inheritance cycle.
	KindUnresolvedBaseSurface Kind = "UnresolvedBaseSurface"
	// KindSourceUnreadable means the source file could not be read or parsed.
	KindSourceUnreadable Kind = "SourceUnreadable"
	// KindVerificationFailed means the merged output is not valid TypeScript.
	KindVerificationFailed Kind = "VerificationFailed"
	// KindWriteFailed means the merged output could not be written.
	KindWriteFailed Kind = "WriteFailed"
)

// Location identifies where an error was found.
type Location struct {
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
	Class string `json:"class,omitempty" yaml:"class,omitempty"`
	Line  int    `json:"line,omitempty" yaml:"line,omitempty"`
}

// String renders the location as file:line (class).
func (l Location) String() string {
	var sb strings.Builder
	sb.WriteString(l.File)
	if l.Line > 0 {
		fmt.Fprintf(&sb, ":%d", l.Line)
	}
	if l.Class != "" {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "(%s)", l.Class)
	}
	return sb.String()
}

// Error is a classified generation failure.
type Error struct {
	Kind     Kind
	Location Location
	Message  string
	cause    error
}

func (e *Error) Error() string {
	loc := e.Location.String()
	if loc == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", loc, e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Errorf creates a classified error.
func Errorf(kind Kind, loc Location, format string, args ...any) *Error {
	return &Error{Kind: kind, Location: loc, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error. The cause stays reachable through
// errors.Is and errors.As.
func Wrap(err error, kind Kind, loc Location, msg string) *Error {
	message := msg
	if err != nil {
		if message == "" {
			message = err.Error()
		} else {
			message = message + ": " + err.Error()
		}
	}
	return &Error{Kind: kind, Location: loc, Message: message, cause: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// WithLocation fills the empty fields of the error's location. Non-classified
// errors are returned unchanged.
func WithLocation(err error, loc Location) error {
	var ge *Error
	if !errors.As(err, &ge) {
		return err
	}
	if ge.Location.File == "" {
		ge.Location.File = loc.File
	}
	if ge.Location.Class == "" {
		ge.Location.Class = loc.Class
	}
	if ge.Location.Line == 0 {
		ge.Location.Line = loc.Line
	}
	return err
}
