package clock

import "time"

// Clock abstracts "now" so that the day being served can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in the process's local zone, since "today" is
// the user's calendar day.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// Func adapts a plain function.
type Func func() time.Time

func (f Func) Now() time.Time {
	return f()
}
