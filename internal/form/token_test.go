package form

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestTokens(at *time.Time) *Tokens {
	tk := NewTokens(bytes.Repeat([]byte("k"), 32))
	tk.now = func() time.Time { return *at }
	return tk
}

func TestTokenLifecycle(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	tk := newTestTokens(&now)

	tok, err := tk.Issue()
	if err != nil {
		t.Fatal(err)
	}
	if err := tk.Verify(tok); !errors.Is(err, ErrTokenTooFast) {
		t.Fatalf("immediate verify = %v, want too fast", err)
	}

	now = now.Add(5 * time.Second)
	if err := tk.Verify(tok); err != nil {
		t.Fatalf("verify after 5s = %v", err)
	}

	now = now.Add(3 * time.Hour)
	if err := tk.Verify(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("verify after 3h = %v, want expired", err)
	}
}

func TestTokenRejectsForgery(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	tk := newTestTokens(&now)
	tok, _ := tk.Issue()
	now = now.Add(10 * time.Second)

	other := NewTokens(bytes.Repeat([]byte("z"), 32))
	other.now = tk.now
	if err := other.Verify(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("foreign key verify = %v", err)
	}

	// Flip one character well inside the signature part.
	b := []byte(tok)
	i := len(b) - 10
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	if err := tk.Verify(string(b)); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("tampered verify = %v", err)
	}
	for _, junk := range []string{"", "short", strings.Repeat("x", 200)} {
		if err := tk.Verify(junk); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("Verify(%q) = %v", junk, err)
		}
	}
}

func TestTokenMessage(t *testing.T) {
	if TokenMessage(ErrTokenTooFast) != MsgTokenTooFast ||
		TokenMessage(ErrTokenExpired) != MsgTokenExpired ||
		TokenMessage(ErrTokenInvalid) != MsgTokenInvalid {
		t.Fatal("token message mapping wrong")
	}
}
