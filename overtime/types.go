/*
Package overtime holds the domain core of the overtime board: shift entries,
calendar bucketing, the manager alias table and the Tracker that turns stored
entries into week/day/month/quarter views.

DATA MODEL:

	Entry = "employee X works overtime shift S on date D"

	- Login is always lowercase (NormalizeLogin)
	- WorkDate is a calendar date at UTC midnight (no time component)
	- Shift is "day" or "night"
	- CreatedAt only orders entries ("who signed up first")

INVARIANT:

	At most one Entry per (Login, WorkDate). A second insert for the same pair
	is rejected with ErrDuplicateEntry, never merged or overwritten. The Store
	enforces this, not the Tracker.

LIFECYCLE:

	Created by Tracker.Add, removed by Tracker.Remove (full triple), never
	updated in place.

SEE ALSO:
  - calendar.go: week/quarter math
  - tracker.go: views and summaries
  - store.go: persistence contract
*/
package overtime

import (
	"strings"
	"time"
)

// Shift is the kind of overtime shift.
type Shift string

const (
	ShiftDay   Shift = "day"
	ShiftNight Shift = "night"
)

// Valid reports whether s is one of the known shift kinds.
func (s Shift) Valid() bool {
	return s == ShiftDay || s == ShiftNight
}

func (s Shift) String() string { return string(s) }

// ParseShift normalizes raw input into a Shift.
// An empty value is rejected; callers that accept a default apply it first.
func ParseShift(raw string) (Shift, error) {
	s := Shift(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", Invalid("shift", "shift must be one of: day, night")
	}
	return s, nil
}

// Entry is one recorded overtime assignment.
type Entry struct {
	ID        int64
	Login     string
	WorkDate  time.Time
	Shift     Shift
	CreatedAt time.Time
}

// LoginCount is the number of entries one login has in a range.
type LoginCount struct {
	Login string
	Count int
}

// NormalizeLogin trims and lowercases an employee identifier.
func NormalizeLogin(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}
