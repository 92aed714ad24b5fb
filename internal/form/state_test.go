package form

import (
	"errors"
	"testing"
)

func TestTransition(t *testing.T) {
	legal := map[[2]int]State{
		{int(Idle), int(EventSubmit)}:         Submitting,
		{int(Submitting), int(EventAccepted)}: Success,
		{int(Submitting), int(EventFailed)}:   Idle,
		{int(Success), int(EventReset)}:       Idle,
	}
	for _, s := range []State{Idle, Submitting, Success} {
		for _, e := range []Event{EventSubmit, EventAccepted, EventFailed, EventReset} {
			got, err := Transition(s, e)
			want, ok := legal[[2]int{int(s), int(e)}]
			switch {
			case ok && (err != nil || got != want):
				t.Errorf("%s on %s = %s, %v; want %s", s, e, got, err, want)
			case !ok && !errors.Is(err, ErrIllegalTransition):
				t.Errorf("%s on %s err = %v, want ErrIllegalTransition", s, e, err)
			case !ok && got != s:
				t.Errorf("%s on %s moved to %s on error", s, e, got)
			}
		}
	}
}

func TestStateText(t *testing.T) {
	b, _ := Submitting.MarshalText()
	if string(b) != "submitting" {
		t.Fatalf("MarshalText = %q", b)
	}
}
