// internal/availability/slots.go
//
// Interview slot table.
//
// Context
//   Offered times are a fixed lookup by weekday, not a live calendar.  Sunday
//   offers nothing, Saturday three slots, and Monday through Friday two.
//   Labels use the visitor-facing "h:mm AM" form and are what the booking
//   payload carries; ParseSlot recovers the 24-hour clock time.
//
//------------------------------------------------------------------------------

package availability

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Slot is one bookable start time.
type Slot struct {
	Label  string `json:"label"`
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
}

var (
	saturdaySlots = []string{"9:00 AM", "2:00 PM", "6:00 PM"}
	weekdaySlots  = []string{"11:00 AM", "4:00 PM"}

	reSlot = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([AaPp][Mm])$`)

	// ErrBadSlot is wrapped by ParseSlot for any label it cannot read.
	ErrBadSlot = errors.New("availability: bad time slot")
)

// SlotsFor returns the slots offered on d, in display order.  Every call
// builds a fresh slice, so callers may keep or modify the result.
func SlotsFor(d Date) []Slot {
	var labels []string
	switch d.Weekday() {
	case time.Sunday:
		return []Slot{}
	case time.Saturday:
		labels = saturdaySlots
	default:
		labels = weekdaySlots
	}
	out := make([]Slot, 0, len(labels))
	for _, l := range labels {
		s, err := ParseSlot(l)
		if err != nil {
			panic(err) // static table
		}
		out = append(out, s)
	}
	return out
}

// IsSlotOffered reports whether label is one of SlotsFor(d).
func IsSlotOffered(d Date, label string) bool {
	for _, s := range SlotsFor(d) {
		if s.Label == label {
			return true
		}
	}
	return false
}

// ParseSlot converts "h:mm AM" or "h:mm PM" into a Slot.  12 AM is hour 0
// and 12 PM is hour 12.
func ParseSlot(label string) (Slot, error) {
	m := reSlot.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return Slot{}, fmt.Errorf("%w: %q", ErrBadSlot, label)
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if h < 1 || h > 12 || mm > 59 {
		return Slot{}, fmt.Errorf("%w: %q", ErrBadSlot, label)
	}
	pm := strings.EqualFold(m[3], "PM")
	switch {
	case pm && h != 12:
		h += 12
	case !pm && h == 12:
		h = 0
	}
	return Slot{Label: label, Hour: h, Minute: mm}, nil
}

// On combines the slot with d in loc.
func (s Slot) On(d Date, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, s.Hour, s.Minute, 0, 0, loc)
}

// Labels lists the labels of slots in order.
func Labels(slots []Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Label
	}
	return out
}
