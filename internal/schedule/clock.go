package schedule

import "time"

// Clock supplies the current time. Risk evaluation reads "today" through a
// Clock so callers can pin the date.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in Location (time.Local when nil).
type SystemClock struct {
	Location *time.Location
}

// Now returns the current time in the clock's location.
func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns T.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed time.
func (c FixedClock) Now() time.Time { return c.T }

// Today returns midnight of the clock's current day, in the clock's location.
func Today(c Clock) time.Time {
	if c == nil {
		c = SystemClock{}
	}
	return midnight(c.Now())
}
