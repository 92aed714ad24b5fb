package availability

import "time"

// IsDateSelectable is false for Sundays and for any day before the calendar
// day of now, taken in now's location.
func IsDateSelectable(d Date, now time.Time) bool {
	if d.Before(DateOf(now)) {
		return false
	}
	return d.Weekday() != time.Sunday
}

// MonthGrid lays out a month as week rows starting on Sunday.  Leading nils
// stand for the weekdays before the 1st and trailing nils complete the last
// row.  The grid always spans at least five rows, so it holds 35 to 42 cells.
// The result depends on (year, month) only.
func MonthGrid(year int, month time.Month) []*Date {
	first := Date{Year: year, Month: month, Day: 1}
	lead := int(first.Weekday())
	days := daysIn(year, month)

	cells := lead + days
	if cells < 35 {
		cells = 35
	} else if r := cells % 7; r != 0 {
		cells += 7 - r
	}

	grid := make([]*Date, cells)
	for i := 1; i <= days; i++ {
		d := Date{Year: year, Month: month, Day: i}
		grid[lead+i-1] = &d
	}
	return grid
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
