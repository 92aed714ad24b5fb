// internal/ratelimit/limiter_test.go
//
// Unit-tests for the sliding window and its failure policy.
//
// Run: go test ./internal/ratelimit -v

package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)}
}

func TestLimiterWindow(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	l := New(NewMemoryStore(0), "cta", 3, time.Minute, WithClock(clk.now))

	for i := 0; i < 3; i++ {
		if !l.CanSubmit(ctx) {
			t.Fatalf("submit %d refused under the limit", i+1)
		}
		if w := l.TimeUntilNextSubmission(ctx); w != 0 {
			t.Fatalf("wait under limit = %v, want 0", w)
		}
		l.RecordSubmission(ctx)
		clk.advance(10 * time.Second)
	}

	// Three entries at +0s, +10s, +20s; clock is at +30s.
	if l.CanSubmit(ctx) {
		t.Fatal("fourth submit allowed inside window")
	}
	if w := l.TimeUntilNextSubmission(ctx); w != 30*time.Second {
		t.Fatalf("wait = %v, want 30s", w)
	}

	// Exactly one window after the first entry it no longer counts.
	clk.advance(30 * time.Second)
	if !l.CanSubmit(ctx) {
		t.Fatal("submit refused after oldest entry aged out")
	}
	if w := l.TimeUntilNextSubmission(ctx); w != 0 {
		t.Fatalf("wait after age-out = %v, want 0", w)
	}
}

func TestLimiterPrunesOnRecord(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	store := NewMemoryStore(0)
	l := New(store, "booking", 3, time.Minute, WithClock(clk.now))

	l.RecordSubmission(ctx)
	clk.advance(2 * time.Minute)
	l.RecordSubmission(ctx)

	ts, _ := store.Load(ctx, "rate_limit_booking")
	if len(ts) != 1 || ts[0] != clk.t.UnixMilli() {
		t.Fatalf("stored = %v, want only the latest entry", ts)
	}
}

func TestLimiterDefaults(t *testing.T) {
	l := New(NewMemoryStore(0), "x", 0, 0)
	if l.max != DefaultMax || l.window != DefaultWindow {
		t.Fatalf("defaults = %d/%v", l.max, l.window)
	}
	if l.Key() != "rate_limit_x" {
		t.Fatalf("Key = %q", l.Key())
	}
}

type brokenStore struct {
	loadErr, saveErr error
	saves            int
}

func (b *brokenStore) Load(context.Context, string) ([]int64, error) {
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	return []int64{1, 2, 3, 4}, nil
}

func (b *brokenStore) Save(context.Context, string, []int64) error {
	b.saves++
	return b.saveErr
}

func TestLimiterFailsOpenOnReadError(t *testing.T) {
	ctx := context.Background()
	bs := &brokenStore{loadErr: errors.New("disk gone")}
	l := New(bs, "cta", 1, time.Hour)

	if !l.CanSubmit(ctx) {
		t.Fatal("CanSubmit = false on read error, want true")
	}
	if w := l.TimeUntilNextSubmission(ctx); w != 0 {
		t.Fatalf("wait on read error = %v, want 0", w)
	}
	l.RecordSubmission(ctx)
	if bs.saves != 0 {
		t.Fatalf("Save called %d times after read error", bs.saves)
	}
}

func TestLimiterSwallowsWriteError(t *testing.T) {
	bs := &brokenStore{saveErr: errors.New("read-only")}
	l := New(bs, "cta", 3, time.Hour, WithClock(func() time.Time { return time.UnixMilli(10) }))

	l.RecordSubmission(context.Background())
	if bs.saves != 1 {
		t.Fatalf("saves = %d, want 1", bs.saves)
	}
}
