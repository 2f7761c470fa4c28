package compval

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every failure this package returns wraps exactly one of
// these with fmt.Errorf's %w, so callers can keep using errors.Is.
var (
	// ErrInvalidTypeDefinition is returned by Register when a signature is
	// malformed, names an unknown field type, or collides with an already
	// registered name.
	ErrInvalidTypeDefinition = errors.New("compval: invalid type definition")

	// ErrInvalidLiteral is returned by Parse when the text does not match
	// the composite-literal grammar for the target type: wrong opening
	// delimiter, unknown field name, duplicate size/data in an extended
	// variable-array literal, mixed indexed/positional array elements, and
	// so on.
	ErrInvalidLiteral = errors.New("compval: invalid composite literal")

	// ErrIndexOutOfBounds is returned when a fixed-array index exceeds the
	// array's declared length, or a path step indexes past an array's end.
	// A data index at or past an extended variable-array literal's own
	// size is ErrInvalidLiteral instead.
	ErrIndexOutOfBounds = errors.New("compval: index out of bounds")

	// ErrAtomicParseFailure is returned when an atomic token fails to
	// parse as its declared kind (not a valid bool/int/real token).
	ErrAtomicParseFailure = errors.New("compval: atomic parse failure")

	// ErrUnknownField is returned by the Path Engine when a path segment
	// names a field that does not exist on the record in scope.
	ErrUnknownField = errors.New("compval: unknown field")

	// ErrInternal marks a defect in the engine itself rather than bad
	// input: a layout invariant violated, a handle with no backing entry,
	// and the like. Never expected to surface from well-formed input.
	ErrInternal = errors.New("compval: internal error")
)

func wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
}

// Reporter receives structured diagnostics as the engine works, letting a
// caller plug in a logger rather than the package writing to stderr
// itself. A nil Reporter is valid; Report then becomes a no-op.
type Reporter interface {
	Report(level ReportLevel, msg string, fields map[string]any)
}

// ReportLevel classifies a Reporter event.
type ReportLevel uint8

const (
	ReportDebug ReportLevel = iota
	ReportInfo
	ReportWarn
)

func (l ReportLevel) String() string {
	switch l {
	case ReportDebug:
		return "debug"
	case ReportInfo:
		return "info"
	case ReportWarn:
		return "warn"
	default:
		return "unknown"
	}
}

func report(r Reporter, level ReportLevel, msg string, fields map[string]any) {
	if r == nil {
		return
	}
	r.Report(level, msg, fields)
}

// NopReporter discards every event. Used as the zero-value Config default.
type NopReporter struct{}

func (NopReporter) Report(ReportLevel, string, map[string]any) {}
