package shared

import "time"

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// DateOf truncates t to midnight UTC of its calendar day.
// Calendar-date columns are always stored in this form so that range
// comparisons behave the same on every driver.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current UTC calendar date whatever the host zone
func Today() time.Time {
	return DateOf(time.Now().UTC())
}

// ParseDate parses a YYYY-MM-DD string into a UTC date
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// MustDate is ParseDate for constant inputs
func MustDate(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// DatePtr returns a pointer to DateOf(t)
func DatePtr(t time.Time) *time.Time {
	d := DateOf(t)
	return &d
}

// DayRange returns the instants that bound the calendar dates start
// through end as observed in loc: from is midnight of start and to is
// midnight of the day after end, both in loc. Callers compare with
// from <= t < to.
func DayRange(start, end time.Time, loc *time.Location) (from, to time.Time) {
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	return time.Date(sy, sm, sd, 0, 0, 0, 0, loc), time.Date(ey, em, ed+1, 0, 0, 0, 0, loc)
}
