package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

// Clock is a time of day as the offset from midnight.
type Clock time.Duration

// NewClock builds a Clock from hour, minute and second.
func NewClock(h, m, s int) Clock {
	return Clock(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second)
}

// ParseClock accepts "15:04" or "15:04:05".
func ParseClock(s string) (Clock, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return NewClock(t.Hour(), t.Minute(), t.Second()), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

// ClockOf returns the time of day of t in t's location, to the nanosecond.
func ClockOf(t time.Time) Clock {
	return NewClock(t.Hour(), t.Minute(), t.Second()) + Clock(t.Nanosecond())
}

func (c Clock) Hour() int   { return int(time.Duration(c) / time.Hour) }
func (c Clock) Minute() int { return int(time.Duration(c) % time.Hour / time.Minute) }
func (c Clock) Second() int { return int(time.Duration(c) % time.Minute / time.Second) }

// String formats c as "15:04:05", the stored form.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
}

// Short formats c as "15:04", or "15:04:05" when seconds are set.
func (c Clock) Short() string {
	if c.Second() != 0 {
		return c.String()
	}
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Short())
}

func (c *Clock) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("time of day must be a string: %w", err)
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Window is a daily time range with inclusive bounds.
type Window struct {
	From *Clock
	To   *Clock
}

// Contains reports whether c falls within [From, To]. A window missing
// either bound is unrestricted. A window with From after To (wrapping
// midnight) is not supported and contains nothing.
func (w Window) Contains(c Clock) bool {
	if w.From == nil || w.To == nil {
		return true
	}
	return *w.From <= c && c <= *w.To
}

// Wraps reports whether the window crosses midnight, which Contains never matches.
func (w Window) Wraps() bool {
	return w.From != nil && w.To != nil && *w.From > *w.To
}
