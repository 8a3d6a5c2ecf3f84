package valueobject

import "time"

// Date drops the clock part of t, keeping its calendar date, and returns it
// at midnight UTC. All due dates and as-of dates are compared at this
// granularity.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole calendar days from -> to; negative when to
// precedes from.
func DaysBetween(from, to time.Time) int {
	return int(Date(to).Sub(Date(from)).Hours() / 24)
}
