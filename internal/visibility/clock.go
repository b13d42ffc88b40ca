package visibility

import "time"

// Clock is the source of "now" for a request.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock and reports it in Location.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	now := time.Now()
	if c.Location != nil {
		return now.In(c.Location)
	}
	return now
}

// FixedClock always returns the same instant. Useful in tests and previews.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }
