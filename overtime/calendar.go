package overtime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// CALENDAR - Pure date math, weeks start on Sunday
// =============================================================================

const (
	// DateLayout is the ISO-8601 calendar date used on the wire and in storage.
	DateLayout = "2006-01-02"

	// PrettyLayout is the DD/MM/YYYY form shown next to week labels.
	PrettyLayout = "02/01/2006"
)

// Date truncates t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDate builds a calendar date.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a strict YYYY-MM-DD value for the named field.
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, Invalid(field, field+" is required")
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, Invalid(field, field+" must be ISO format YYYY-MM-DD")
	}
	return t, nil
}

// ParseMonth parses a month number 1..12.
func ParseMonth(value string) (int, error) {
	m, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || m < 1 || m > 12 {
		return 0, OutOfRange("month", "month must be 1-12")
	}
	return m, nil
}

// ParseQuarter parses a quarter number 1..4.
func ParseQuarter(value string) (int, error) {
	q, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || q < 1 || q > 4 {
		return 0, OutOfRange("q", "q must be 1-4")
	}
	return q, nil
}

// WeekStart returns the most recent Sunday on or before d.
func WeekStart(d time.Time) time.Time {
	d = Date(d)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// IsWeekStart reports whether d falls on a Sunday.
func IsWeekStart(d time.Time) bool {
	return d.Weekday() == time.Sunday
}

// WeekDates returns Sunday..Saturday starting at sunday.
// The caller must pass a Sunday (derive it with WeekStart).
func WeekDates(sunday time.Time) []time.Time {
	sunday = Date(sunday)
	dates := make([]time.Time, 7)
	for i := range dates {
		dates[i] = sunday.AddDate(0, 0, i)
	}
	return dates
}

// WeekOfYear numbers weeks with Sunday as the first day of the week.
// Days before the year's first Sunday are week 0 (strftime %U).
func WeekOfYear(d time.Time) int {
	yday := d.YearDay() - 1
	return (yday + 7 - int(d.Weekday())) / 7
}

// WeekLabel renders "WW / YYYY" for a week starting on sunday.
// The year is the Sunday's own year, even when the week spills into January.
func WeekLabel(sunday time.Time) string {
	return fmt.Sprintf("%02d / %d", WeekOfYear(sunday), sunday.Year())
}

// Week is one selectable week in the week picker.
type Week struct {
	Label string
	Start time.Time
}

// WeeksAround returns the weeks from `before` weeks ahead of today's week to
// `after` weeks past it, ascending, each starting 7 days after the previous.
func WeeksAround(today time.Time, before, after int) []Week {
	current := WeekStart(today)
	weeks := make([]Week, 0, before+after+1)
	for i := -before; i <= after; i++ {
		start := current.AddDate(0, 0, 7*i)
		weeks = append(weeks, Week{Label: WeekLabel(start), Start: start})
	}
	return weeks
}

// QuarterMonths maps a quarter 1..4 to its three months.
func QuarterMonths(q int) ([]int, error) {
	if q < 1 || q > 4 {
		return nil, OutOfRange("q", "q must be 1-4")
	}
	first := (q-1)*3 + 1
	return []int{first, first + 1, first + 2}, nil
}
