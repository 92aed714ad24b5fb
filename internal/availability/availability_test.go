// internal/availability/availability_test.go
//
// Unit-tests for the slot table, selectability, and the month grid.
//
// Run: go test ./internal/availability -v

package availability

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestSlotsFor(t *testing.T) {
	tests := []struct {
		date string
		want []string
	}{
		{"2025-06-08", []string{}},                              // Sunday
		{"2025-06-09", []string{"11:00 AM", "4:00 PM"}},           // Monday
		{"2025-06-13", []string{"11:00 AM", "4:00 PM"}},           // Friday
		{"2025-06-14", []string{"9:00 AM", "2:00 PM", "6:00 PM"}}, // Saturday
	}
	for _, tt := range tests {
		got := Labels(SlotsFor(mustDate(t, tt.date)))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SlotsFor(%s) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestSlotsForReturnsFreshSlice(t *testing.T) {
	d := mustDate(t, "2025-06-14")
	a := SlotsFor(d)
	a[0].Label = "mutated"
	if b := SlotsFor(d); b[0].Label != "9:00 AM" {
		t.Fatalf("second call saw mutation: %v", b[0])
	}
}

func TestIsDateSelectable(t *testing.T) {
	// Tuesday 10 June 2025, late evening.
	now := time.Date(2025, 6, 10, 23, 30, 0, 0, time.UTC)
	tests := []struct {
		date string
		want bool
	}{
		{"2025-06-09", false}, // yesterday
		{"2025-06-10", true},  // today, time of day ignored
		{"2025-06-11", true},
		{"2025-06-15", false}, // Sunday
		{"2025-06-14", true},  // Saturday
		{"2024-12-31", false},
	}
	for _, tt := range tests {
		if got := IsDateSelectable(mustDate(t, tt.date), now); got != tt.want {
			t.Errorf("IsDateSelectable(%s) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestIsDateSelectableUsesNowLocation(t *testing.T) {
	// 02:00 UTC on the 11th is still the 10th in New York.
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	now := time.Date(2025, 6, 11, 2, 0, 0, 0, time.UTC).In(ny)
	if !IsDateSelectable(mustDate(t, "2025-06-10"), now) {
		t.Fatal("local today rejected")
	}
}

func TestMonthGrid(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		lead  int
		cells int
	}{
		{2015, time.February, 0, 35}, // 28 days starting Sunday
		{2025, time.June, 0, 35},     // 30 days starting Sunday
		{2025, time.March, 6, 42},    // 31 days starting Saturday
		{2024, time.February, 4, 35}, // leap year, starts Thursday
		{2025, time.August, 5, 42},   // 31 days starting Friday
	}
	for _, tt := range tests {
		grid := MonthGrid(tt.year, tt.month)
		if len(grid) != tt.cells {
			t.Errorf("%d-%02d: %d cells, want %d", tt.year, tt.month, len(grid), tt.cells)
		}
		for i := 0; i < tt.lead; i++ {
			if grid[i] != nil {
				t.Errorf("%d-%02d: cell %d should be empty", tt.year, tt.month, i)
			}
		}
		if first := grid[tt.lead]; first == nil || first.Day != 1 {
			t.Errorf("%d-%02d: first day at wrong cell", tt.year, tt.month)
		}
		n := 0
		for _, c := range grid {
			if c != nil {
				n++
			}
		}
		if want := daysIn(tt.year, tt.month); n != want {
			t.Errorf("%d-%02d: %d days, want %d", tt.year, tt.month, n, want)
		}
	}
}

func TestMonthGridBounds(t *testing.T) {
	for y := 2024; y <= 2030; y++ {
		for m := time.January; m <= time.December; m++ {
			if n := len(MonthGrid(y, m)); n < 35 || n > 42 || n%7 != 0 {
				t.Fatalf("%d-%02d: %d cells", y, m, n)
			}
		}
	}
}

func TestParseSlot(t *testing.T) {
	tests := []struct {
		in   string
		h, m int
	}{
		{"9:00 AM", 9, 0},
		{"11:00 AM", 11, 0},
		{"12:00 PM", 12, 0},
		{"12:15 AM", 0, 15},
		{"4:00 PM", 16, 0},
		{"6:30 pm", 18, 30},
	}
	for _, tt := range tests {
		s, err := ParseSlot(tt.in)
		if err != nil {
			t.Errorf("ParseSlot(%q): %v", tt.in, err)
			continue
		}
		if s.Hour != tt.h || s.Minute != tt.m {
			t.Errorf("ParseSlot(%q) = %d:%02d, want %d:%02d", tt.in, s.Hour, s.Minute, tt.h, tt.m)
		}
	}
	for _, bad := range []string{"", "13:00 PM", "9:60 AM", "0:30 AM", "9 AM", "noon"} {
		if _, err := ParseSlot(bad); !errors.Is(err, ErrBadSlot) {
			t.Errorf("ParseSlot(%q) err = %v, want ErrBadSlot", bad, err)
		}
	}
}

func TestSlotOn(t *testing.T) {
	d := mustDate(t, "2025-06-10")
	s, _ := ParseSlot("11:00 AM")
	got := s.On(d, time.UTC)
	if got.Hour() != 11 || got.Minute() != 0 || DateOf(got) != d {
		t.Fatalf("On = %v", got)
	}
}

func TestIsSlotOffered(t *testing.T) {
	tue := mustDate(t, "2025-06-10")
	if !IsSlotOffered(tue, "4:00 PM") {
		t.Error("4:00 PM not offered on Tuesday")
	}
	if IsSlotOffered(tue, "9:00 AM") {
		t.Error("Saturday slot offered on Tuesday")
	}
	if IsSlotOffered(mustDate(t, "2025-06-15"), "11:00 AM") {
		t.Error("slot offered on Sunday")
	}
}

func TestParseDate(t *testing.T) {
	d := mustDate(t, "2025-01-05")
	if d.String() != "2025-01-05" || d.Weekday() != time.Sunday {
		t.Fatalf("ParseDate = %v (%v)", d, d.Weekday())
	}
	if _, err := ParseDate("2025-02-30"); err == nil {
		t.Fatal("impossible day accepted")
	}
	if !mustDate(t, "2024-12-31").Before(d) || d.Before(d) {
		t.Fatal("Before ordering wrong")
	}
}
