// internal/sanitize/errors.go
//
// Closed error set for the field validators.
//
// Context
//   Every validator returns either a clean string or a *Error whose Kind is
//   one of Empty, TooLong, or InvalidFormat.  Callers switch on the Kind and
//   never probe message text.  There are no other failure shapes.
//
//------------------------------------------------------------------------------

package sanitize

import (
	"errors"
	"fmt"
)

// Kind enumerates the ways a field value can be rejected.
type Kind int

const (
	// Empty means nothing was left after sanitizing.
	Empty Kind = iota + 1
	// TooLong means the sanitized value exceeded its maximum rune count.
	TooLong
	// InvalidFormat means the value did not match the field's shape.
	InvalidFormat
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case TooLong:
		return "too_long"
	case InvalidFormat:
		return "invalid_format"
	default:
		return "unknown"
	}
}

// Error is the single error type produced by this package.  Max is set only
// for TooLong.
type Error struct {
	Kind Kind
	Max  int
}

func (e *Error) Error() string {
	switch e.Kind {
	case Empty:
		return "value is required"
	case TooLong:
		return fmt.Sprintf("value is too long (max %d characters)", e.Max)
	case InvalidFormat:
		return "value has an invalid format"
	default:
		return "invalid value"
	}
}

// KindOf returns the Kind carried by err, or 0 when err is nil or did not
// come from this package.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

func fail(k Kind) error { return &Error{Kind: k} }

func tooLong(max int) error { return &Error{Kind: TooLong, Max: max} }
