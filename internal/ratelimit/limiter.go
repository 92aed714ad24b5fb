// internal/ratelimit/limiter.go
//
// Sliding-window submission limiter.
//
// Context
//   Each limiter owns one key and remembers the epoch-millisecond timestamps
//   of recent accepted submissions in a Store.  A timestamp counts while
//   now - ts < window.  The limiter is advisory: it discourages accidental
//   double-submits and light abuse, it is not a security boundary.
//
// Failure policy
//   •  A Store read error fails OPEN.  CanSubmit reports true and the wait is
//      zero.
//   •  A Store error while recording is logged at warn and otherwise ignored.
//   •  Read-modify-write is not atomic.  Two racing submits on one key may
//      both pass CanSubmit before either records.
//
//------------------------------------------------------------------------------

package ratelimit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Defaults used when the caller passes zero values to New.
const (
	DefaultMax    = 3
	DefaultWindow = time.Minute

	keyPrefix = "rate_limit_"
)

// Store persists one timestamp sequence per key.  A missing key loads as an
// empty slice and a nil error.
type Store interface {
	Load(ctx context.Context, key string) ([]int64, error)
	Save(ctx context.Context, key string, ts []int64) error
}

// Limiter is safe for concurrent use as long as its Store is.
type Limiter struct {
	store  Store
	key    string
	max    int
	window time.Duration
	now    func() time.Time
}

// Option tunes a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.  Tests use it to move time deterministically.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New returns a limiter for key.  max < 1 selects DefaultMax and window <= 0
// selects DefaultWindow.
func New(store Store, key string, max int, window time.Duration, opts ...Option) *Limiter {
	if max < 1 {
		max = DefaultMax
	}
	if window <= 0 {
		window = DefaultWindow
	}
	l := &Limiter{
		store:  store,
		key:    keyPrefix + key,
		max:    max,
		window: window,
		now:    time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Key returns the storage key, including the rate_limit_ prefix.
func (l *Limiter) Key() string { return l.key }

// CanSubmit reports whether fewer than max submissions fall inside the window.
func (l *Limiter) CanSubmit(ctx context.Context) bool {
	valid, _, err := l.valid(ctx)
	if err != nil {
		zap.S().Debugw("rate limit read failed, allowing", "key", l.key, "err", err)
		return true
	}
	return len(valid) < l.max
}

// RecordSubmission appends now to the pruned sequence and persists it.
func (l *Limiter) RecordSubmission(ctx context.Context) {
	valid, now, err := l.valid(ctx)
	if err != nil {
		zap.S().Warnw("rate limit read failed, submission not recorded", "key", l.key, "err", err)
		return
	}
	valid = append(valid, now)
	if err := l.store.Save(ctx, l.key, valid); err != nil {
		zap.S().Warnw("rate limit write failed", "key", l.key, "err", err)
	}
}

// TimeUntilNextSubmission is zero while under the limit.  Otherwise it is
// the time until the oldest in-window entry ages out, never negative.
func (l *Limiter) TimeUntilNextSubmission(ctx context.Context) time.Duration {
	valid, now, err := l.valid(ctx)
	if err != nil || len(valid) < l.max || len(valid) == 0 {
		return 0
	}
	oldest := valid[0]
	for _, ts := range valid[1:] {
		if ts < oldest {
			oldest = ts
		}
	}
	wait := l.window - time.Duration(now-oldest)*time.Millisecond
	if wait < 0 {
		return 0
	}
	return wait
}

// valid loads the sequence and keeps only entries inside the window.
func (l *Limiter) valid(ctx context.Context) ([]int64, int64, error) {
	now := l.now().UnixMilli()
	all, err := l.store.Load(ctx, l.key)
	if err != nil {
		return nil, now, err
	}
	win := l.window.Milliseconds()
	out := make([]int64, 0, len(all))
	for _, ts := range all {
		if now-ts < win {
			out = append(out, ts)
		}
	}
	return out, now, nil
}
