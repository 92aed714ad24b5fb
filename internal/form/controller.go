// internal/form/controller.go
//
// Forms subsystem: submission controller.
//
// Context
//   A Controller owns one form instance: its field values, its error map,
//   and its lifecycle state.  It consults an injected rate limiter, runs the
//   field validators, builds the payload, and hands it to a Submitter.  The
//   lifecycle moves only through Transition (state.go).
//
// Workflow (Submit)
//   1.  Not idle → ErrNotIdle, nothing changes.
//   2.  No Submitter → *ConfigurationError.
//   3.  Limiter refuses → whole-form wait message, *RateLimitError.
//   4.  Validate every field, plus package/date/slot for bookings.  Any
//       failure → *ValidationError, state stays idle.
//   5.  Idle → Submitting, build payload, call the Submitter under a
//       deadline.
//   6.  Success → record with the limiter, clear fields and errors,
//       Submitting → Success.
//   7.  Failure or deadline → Submitting → Idle, generic message,
//       *TransportError.
//
// Notes
//   •  The mutex is released while the Submitter runs so State and Errors
//      stay readable; the Submitting state is what blocks a second submit.
//   •  Submitted values are never logged.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/legacyfilm/internal/availability"
	"github.com/yanizio/legacyfilm/internal/pricing"
)

// DefaultSubmitTimeout bounds one Submitter call.
const DefaultSubmitTimeout = 15 * time.Second

// Submitter delivers a payload to the outside world.  Any non-nil error is
// a failed submission.
type Submitter interface {
	Submit(ctx context.Context, payload any) error
}

// Limiter is the part of ratelimit.Limiter the controller needs.
type Limiter interface {
	CanSubmit(ctx context.Context) bool
	RecordSubmission(ctx context.Context)
	TimeUntilNextSubmission(ctx context.Context) time.Duration
}

// Controller is safe for concurrent use.
type Controller struct {
	def     *FormDef
	limiter Limiter
	sub     Submitter
	now     func() time.Time
	loc     *time.Location
	timeout time.Duration

	mu     sync.Mutex
	state  State
	fields FormData
	errs   map[string]string
	sched  schedule
}

// Option tunes a Controller.
type Option func(*Controller)

// WithClock replaces time.Now for timestamps and date checks.
func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

// WithLocation sets the business time zone for booking date-times.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithTimeout bounds each Submitter call.  d <= 0 keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewController returns an idle controller for fd.  sub may be nil, in which
// case Submit reports a ConfigurationError.
func NewController(fd *FormDef, limiter Limiter, sub Submitter, opts ...Option) *Controller {
	c := &Controller{
		def:     fd,
		limiter: limiter,
		sub:     sub,
		now:     time.Now,
		loc:     time.UTC,
		timeout: DefaultSubmitTimeout,
		fields:  newFormData(fd),
		errs:    map[string]string{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// -----------------------------------------------------------------------------
// Field and selection updates
// -----------------------------------------------------------------------------

// OnFieldChange stores a raw value.  An existing error for the field is
// cleared without re-validating.  Unknown names are ignored.
func (c *Controller) OnFieldChange(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.fields.find(name)
	if f == nil {
		return
	}
	f.Raw = value
	f.Clean = ""
	if f.Error != "" {
		f.Error = ""
		delete(c.errs, name)
	}
}

// SelectPackage chooses the package a booking is for.
func (c *Controller) SelectPackage(id string) error {
	p, err := pricing.Lookup(id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sched.pkg = &p
	delete(c.errs, PackageKey)
	return nil
}

// SelectDate chooses the booking day and clears any chosen slot, since slots
// differ by weekday.
func (c *Controller) SelectDate(d availability.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sched.date = d
	c.sched.slot = ""
	delete(c.errs, ScheduleKey)
}

// SelectTime chooses the slot label.
func (c *Controller) SelectTime(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sched.slot = label
	delete(c.errs, ScheduleKey)
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Submit runs one submission attempt.  See the file header for the order of
// checks.  On every non-nil return the error map already holds the text to
// show.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()

	if c.state != Idle {
		c.mu.Unlock()
		return ErrNotIdle
	}

	if c.sub == nil {
		c.errs = map[string]string{SubmitKey: MsgNotConfigured}
		c.mu.Unlock()
		return &ConfigurationError{What: "submission endpoint for " + c.def.ID}
	}

	if !c.limiter.CanSubmit(ctx) {
		wait := c.limiter.TimeUntilNextSubmission(ctx)
		c.fields.clearErrors()
		c.errs = map[string]string{SubmitKey: rateLimitMessage(wait)}
		c.mu.Unlock()
		return &RateLimitError{Wait: wait}
	}

	now := c.now()
	errs := validateFields(c.def, c.fields)
	if c.def.Schedule {
		checkSchedule(c.sched, now.In(c.loc), errs)
	}
	if len(errs) > 0 {
		c.errs = errs
		c.mu.Unlock()
		return &ValidationError{Fields: copyErrs(errs)}
	}

	next, err := Transition(c.state, EventSubmit)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = next
	c.errs = map[string]string{}
	payload, buildErr := buildPayload(c.def, c.fields, c.sched, now, c.loc)
	c.mu.Unlock()

	sendErr := buildErr
	if sendErr == nil {
		sendErr = c.send(ctx, payload)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if sendErr != nil {
		c.state, _ = Transition(c.state, EventFailed)
		c.errs = map[string]string{SubmitKey: MsgGeneric}
		zap.S().Warnw("form submission failed", "form", c.def.ID, "err", sendErr)
		return &TransportError{Cause: sendErr}
	}

	c.limiter.RecordSubmission(context.WithoutCancel(ctx))
	c.fields = newFormData(c.def)
	c.sched = schedule{}
	c.errs = map[string]string{}
	c.state, _ = Transition(c.state, EventAccepted)
	zap.S().Infow("form submitted", "form", c.def.ID)
	return nil
}

func (c *Controller) send(ctx context.Context, payload any) (err error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("submitter panic: %v", r)
		}
	}()
	return c.sub.Submit(ctx, payload)
}

// Reset returns a successful form to idle with empty fields.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := Transition(c.state, EventReset)
	if err != nil {
		return err
	}
	c.state = next
	c.fields = newFormData(c.def)
	c.sched = schedule{}
	c.errs = map[string]string{}
	return nil
}

// -----------------------------------------------------------------------------
// Read accessors
// -----------------------------------------------------------------------------

// State reports the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Errors returns a copy of the error map.
func (c *Controller) Errors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyErrs(c.errs)
}

// Fields returns a copy of the field set.
func (c *Controller) Fields() FormData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(FormData(nil), c.fields...)
}

// Def returns the form definition the controller was built for.
func (c *Controller) Def() *FormDef { return c.def }

func copyErrs(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
