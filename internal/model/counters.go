package model

import "time"

const DateLayout = "2006-01-02"

// Counters is the durable tally of completed focus sessions.
type Counters struct {
	Total         int
	Today         int
	LastResetDate string
}

// DateKey formats t as a calendar date in loc.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

// Rollover zeroes Today when today differs from LastResetDate. The second
// return value reports whether anything changed.
func (c Counters) Rollover(today string) (Counters, bool) {
	if c.LastResetDate == today {
		return c, false
	}
	c.LastResetDate = today
	c.Today = 0
	return c, true
}
