package ports

import "time"

// Clock supplies the current time to components that compare grant expiry.
// Keeping now an input keeps expiry checks deterministic in tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock returns wall-clock time.
func SystemClock() Clock {
	return ClockFunc(time.Now)
}
