package pops

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies the taxonomy of errors the engine can raise, per the
// propagation policy: actions never swallow errors, they all bubble up to
// the Model which aborts the run.
type Kind int

const (
	// KindInvalidArgument covers unknown enum strings, kernel names,
	// weather types, seed-stream names, negative rates, scale <= 0.
	KindInvalidArgument Kind = iota
	// KindOutOfRange covers date math over/underflow and off-grid cell
	// indices passed to an API that does not admit them.
	KindOutOfRange
	// KindLogicState covers reading a field that was never set, or
	// running an action whose feature switch is off.
	KindLogicState
	// KindShapeMismatch covers combining two rasters of unequal dimensions.
	KindShapeMismatch
	// KindParseError covers malformed network/seed input.
	KindParseError
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindOutOfRange:
		return "out of range"
	case KindLogicState:
		return "logic state"
	case KindShapeMismatch:
		return "shape mismatch"
	case KindParseError:
		return "parse error"
	default:
		return "unknown"
	}
}

// Error is the engine's structured error type. Op names the operation that
// failed (e.g. "Raster.Plus", "Environment.WeatherCoefficientAt") so the
// Model can log a useful trace without the caller needing to inspect Err.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError builds an *Error, wrapping msg with errors.Errorf so the wrapped
// error carries a stack trace for the Model's abort-on-error log.
func newError(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: errors.Errorf(format, args...)}
}

// wrapError decorates an existing error with the operation and kind,
// preserving the original as the cause.
func wrapError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: errors.Wrap(err, op)}
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
