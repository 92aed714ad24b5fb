// internal/form/errors.go
//
// Error taxonomy returned by Controller.Submit.
//
//   •  *ValidationError     per-field, visitor-correctable.
//   •  *RateLimitError      whole-form and transient, carries the wait.
//   •  *TransportError      whole-form, generic text only; the cause is kept
//                           for logs and never rendered.
//   •  *ConfigurationError  no submission endpoint or key configured.
//   •  ErrNotIdle           a submit arrived while not idle and was ignored.
//
// In every case the controller has already written the visitor-facing text
// into its error map, so callers may simply re-render.

package form

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Reserved error-map keys.
const (
	SubmitKey   = "submit"
	ScheduleKey = "schedule"
	PackageKey  = "package"
)

// Visitor-facing whole-form messages.
const (
	MsgGeneric        = "Failed to submit. Please try again or contact us directly."
	MsgNotConfigured  = "This form is temporarily unavailable. Please contact us directly."
	MsgScheduleNeeded = "Please select a date and time for your booking"
	MsgScheduleTaken  = "That date or time is not available"
	MsgPackageNeeded  = "Please choose a package"
	MsgTokenInvalid   = "Security token invalid.  Please refresh and try again."
	MsgTokenTooFast   = "Form submitted too quickly.  Please enter the fields manually."
	MsgTokenExpired   = "Form expired.  Please reload and submit again."
)

// ErrNotIdle is returned when Submit is called while a submission is in
// flight or has already succeeded.  Nothing changes.
var ErrNotIdle = errors.New("form: not idle")

// ValidationError lists every failing field.  Fields maps field name (or a
// reserved key) to the visitor-facing message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("form validation failed: %d field(s)", len(e.Fields))
}

// RateLimitError carries the time until the next allowed submission.
type RateLimitError struct {
	Wait time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited for %ds", e.Seconds())
}

// Seconds is Wait rounded up to whole seconds.
func (e *RateLimitError) Seconds() int {
	return int(math.Ceil(e.Wait.Seconds()))
}

// TransportError wraps a failed or timed-out submission call.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string { return "form: submission failed: " + e.Cause.Error() }
func (e *TransportError) Unwrap() error { return e.Cause }

// ConfigurationError names the missing piece of configuration.
type ConfigurationError struct {
	What string
}

func (e *ConfigurationError) Error() string { return "form: not configured: " + e.What }

func rateLimitMessage(wait time.Duration) string {
	return fmt.Sprintf("Please wait %d seconds before submitting again.", (&RateLimitError{Wait: wait}).Seconds())
}
