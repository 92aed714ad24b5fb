// internal/form/state.go
//
// Submission lifecycle as an explicit finite-state machine.
//
//	Idle       --EventSubmit-->   Submitting
//	Submitting --EventAccepted--> Success
//	Submitting --EventFailed-->   Idle
//	Success    --EventReset-->    Idle
//
// Every other pair is illegal.  Transition is the only place the table
// lives, and it knows nothing about fields, errors, or rendering.

package form

import (
	"errors"
	"fmt"
)

// State is where a form instance sits in its lifecycle.
type State int

const (
	Idle State = iota
	Submitting
	Success
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText renders the lowercase name in JSON responses.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Event drives Transition.
type Event int

const (
	EventSubmit Event = iota + 1
	EventAccepted
	EventFailed
	EventReset
)

func (e Event) String() string {
	switch e {
	case EventSubmit:
		return "submit"
	case EventAccepted:
		return "accepted"
	case EventFailed:
		return "failed"
	case EventReset:
		return "reset"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// ErrIllegalTransition is wrapped by Transition for pairs outside the table.
var ErrIllegalTransition = errors.New("form: illegal state transition")

// Transition returns the state that follows s on e.
func Transition(s State, e Event) (State, error) {
	switch {
	case s == Idle && e == EventSubmit:
		return Submitting, nil
	case s == Submitting && e == EventAccepted:
		return Success, nil
	case s == Submitting && e == EventFailed:
		return Idle, nil
	case s == Success && e == EventReset:
		return Idle, nil
	}
	return s, fmt.Errorf("%w: %s on %s", ErrIllegalTransition, s, e)
}
