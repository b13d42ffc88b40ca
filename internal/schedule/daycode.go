package schedule

import (
	"strings"
	"time"
)

// DayCode identifies a weekday for recurring weekly availability.
type DayCode string

const (
	Sat DayCode = "sat"
	Sun DayCode = "sun"
	Mon DayCode = "mon"
	Tue DayCode = "tue"
	Wed DayCode = "wed"
	Thu DayCode = "thu"
	Fri DayCode = "fri"
)

// week is ordered the way menus display it: the week starts on Saturday.
var week = [7]DayCode{Sat, Sun, Mon, Tue, Wed, Thu, Fri}

// byIndex maps Monday=0 .. Sunday=6 to day codes. Do not reorder.
var byIndex = [7]DayCode{Mon, Tue, Wed, Thu, Fri, Sat, Sun}

var labels = map[DayCode]string{
	Sat: "Saturday",
	Sun: "Sunday",
	Mon: "Monday",
	Tue: "Tuesday",
	Wed: "Wednesday",
	Thu: "Thursday",
	Fri: "Friday",
}

// Week returns the seven day codes in display order, starting on Saturday.
func Week() []DayCode {
	out := make([]DayCode, len(week))
	copy(out, week[:])
	return out
}

// DayCodeFromIndex maps a Monday-based weekday index (Monday=0, Sunday=6).
func DayCodeFromIndex(i int) (DayCode, bool) {
	if i < 0 || i >= len(byIndex) {
		return "", false
	}
	return byIndex[i], true
}

// DayCodeOf returns the day code of t in t's location.
func DayCodeOf(t time.Time) DayCode {
	// time.Weekday is Sunday=0; shift to Monday=0.
	idx := (int(t.Weekday()) + 6) % 7
	return byIndex[idx]
}

// Valid reports whether d is one of the seven known codes.
func (d DayCode) Valid() bool {
	_, ok := labels[d]
	return ok
}

// Label returns the display name for d, or the raw code if unknown.
func Label(d DayCode) string {
	if l, ok := labels[d]; ok {
		return l
	}
	return string(d)
}

// DaySet is the set of days an item is offered on.
type DaySet []DayCode

// ParseDaySet parses a comma-separated list such as "sat, sun".
// Blank entries are skipped; unknown codes are kept and simply never match.
func ParseDaySet(s string) DaySet {
	var set DaySet
	for _, part := range strings.Split(s, ",") {
		code := DayCode(strings.ToLower(strings.TrimSpace(part)))
		if code == "" || set.Contains(code) {
			continue
		}
		set = append(set, code)
	}
	return set
}

func (s DaySet) Contains(d DayCode) bool {
	for _, c := range s {
		if c == d {
			return true
		}
	}
	return false
}

func (s DaySet) IsEmpty() bool { return len(s) == 0 }

// Invalid returns the codes in s that are not known day codes.
func (s DaySet) Invalid() []DayCode {
	var bad []DayCode
	for _, c := range s {
		if !c.Valid() {
			bad = append(bad, c)
		}
	}
	return bad
}

// String joins the set in stored form ("sat,sun").
func (s DaySet) String() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}

// Labels returns display names in week order.
func (s DaySet) Labels() []string {
	var out []string
	for _, d := range week {
		if s.Contains(d) {
			out = append(out, labels[d])
		}
	}
	return out
}
