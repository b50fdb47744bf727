package overtime_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/overtime-board/overtime"
)

func TestWeekStart_ReturnsPrecedingSunday(t *testing.T) {
	tests := []struct {
		name string
		day  time.Time
		want time.Time
	}{
		{"wednesday", overtime.NewDate(2024, time.March, 6), overtime.NewDate(2024, time.March, 3)},
		{"sunday itself", overtime.NewDate(2024, time.March, 3), overtime.NewDate(2024, time.March, 3)},
		{"saturday", overtime.NewDate(2024, time.March, 9), overtime.NewDate(2024, time.March, 3)},
		{"across year boundary", overtime.NewDate(2024, time.January, 2), overtime.NewDate(2023, time.December, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, overtime.WeekStart(tt.day))
		})
	}
}

func TestWeekStart_DropsTimeOfDay(t *testing.T) {
	got := overtime.WeekStart(time.Date(2024, time.March, 6, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, overtime.NewDate(2024, time.March, 3), got)
}

func TestWeekDates_SundayThroughSaturday(t *testing.T) {
	dates := overtime.WeekDates(overtime.NewDate(2024, time.March, 3))

	require.Len(t, dates, 7)
	assert.Equal(t, time.Sunday, dates[0].Weekday())
	assert.Equal(t, time.Saturday, dates[6].Weekday())
	for i := 1; i < len(dates); i++ {
		assert.Equal(t, 24*time.Hour, dates[i].Sub(dates[i-1]))
	}
}

func TestWeekLabel_SundayBasedWeekNumber(t *testing.T) {
	tests := []struct {
		sunday time.Time
		want   string
	}{
		{overtime.NewDate(2024, time.January, 7), "01 / 2024"},
		{overtime.NewDate(2024, time.March, 3), "09 / 2024"},
		// 2023 starts on a Sunday, so its last Sunday is week 53
		{overtime.NewDate(2023, time.December, 31), "53 / 2023"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, overtime.WeekLabel(tt.sunday))
		})
	}
}

func TestWeekOfYear_DaysBeforeFirstSundayAreWeekZero(t *testing.T) {
	assert.Equal(t, 0, overtime.WeekOfYear(overtime.NewDate(2024, time.January, 1)))
	assert.Equal(t, 0, overtime.WeekOfYear(overtime.NewDate(2024, time.January, 6)))
	assert.Equal(t, 1, overtime.WeekOfYear(overtime.NewDate(2024, time.January, 7)))
}

func TestWeeksAround_SevenAscendingWeeks(t *testing.T) {
	// GIVEN: Today is a Wednesday
	today := overtime.NewDate(2024, time.March, 6)

	// WHEN: Building the picker window
	weeks := overtime.WeeksAround(today, 3, 3)

	// THEN: 7 Sundays, 7 days apart, current week in the middle
	require.Len(t, weeks, 7)
	assert.Equal(t, overtime.NewDate(2024, time.March, 3), weeks[3].Start)
	for i, w := range weeks {
		assert.Equal(t, time.Sunday, w.Start.Weekday())
		assert.Equal(t, overtime.WeekLabel(w.Start), w.Label)
		if i > 0 {
			assert.Equal(t, 7*24*time.Hour, w.Start.Sub(weeks[i-1].Start))
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := overtime.ParseDate("day", "2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, overtime.NewDate(2024, time.March, 5), d)

	for _, bad := range []string{"", "05/03/2024", "2024-13-01", "2024-3-5", "yesterday"} {
		_, err := overtime.ParseDate("day", bad)
		assert.ErrorIs(t, err, overtime.ErrValidation, "input %q", bad)

		var verr *overtime.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "day", verr.Field)
	}
}

func TestParseMonth(t *testing.T) {
	m, err := overtime.ParseMonth("12")
	require.NoError(t, err)
	assert.Equal(t, 12, m)

	for _, bad := range []string{"0", "13", "-1", "march", ""} {
		_, err := overtime.ParseMonth(bad)
		assert.ErrorIs(t, err, overtime.ErrInvalidArgument, "input %q", bad)
		assert.ErrorIs(t, err, overtime.ErrValidation, "input %q", bad)
	}
}

func TestQuarterMonths(t *testing.T) {
	tests := []struct {
		q    int
		want []int
	}{
		{1, []int{1, 2, 3}},
		{2, []int{4, 5, 6}},
		{3, []int{7, 8, 9}},
		{4, []int{10, 11, 12}},
	}
	for _, tt := range tests {
		got, err := overtime.QuarterMonths(tt.q)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := overtime.QuarterMonths(5)
	assert.ErrorIs(t, err, overtime.ErrInvalidArgument)

	_, err = overtime.ParseQuarter("0")
	assert.ErrorIs(t, err, overtime.ErrInvalidArgument)
}

func TestParseShift(t *testing.T) {
	s, err := overtime.ParseShift(" Night ")
	require.NoError(t, err)
	assert.Equal(t, overtime.ShiftNight, s)

	_, err = overtime.ParseShift("evening")
	assert.ErrorIs(t, err, overtime.ErrValidation)

	_, err = overtime.ParseShift("")
	assert.ErrorIs(t, err, overtime.ErrValidation)
}
