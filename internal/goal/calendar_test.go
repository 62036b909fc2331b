package goal_test

import (
	"testing"
	"time"

	"goaltrack-service/internal/goal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

var monFri = []int{0, 1, 2, 3, 4}

func TestRemainingBusinessDays_MonthInThePast(t *testing.T) {
	// GIVEN: today is in July, asking about June
	today := date(2025, time.July, 15)

	got := goal.RemainingBusinessDays(2025, time.June, monFri, nil, today)

	assert.Equal(t, 0, got, "a closed month has no remaining days")
}

func TestRemainingBusinessDays_IncludesTodayWhenWorking(t *testing.T) {
	// GIVEN: June 2025 ends on Monday the 30th, today is Wednesday the 25th
	// WHEN: counting with a Mon-Fri working week and no holidays
	today := date(2025, time.June, 25)

	got := goal.RemainingBusinessDays(2025, time.June, monFri, nil, today)

	// THEN: Wed 25, Thu 26, Fri 27 and Mon 30 - today itself counts
	assert.Equal(t, 4, got)
}

func TestRemainingBusinessDays_HolidayExcluded(t *testing.T) {
	today := date(2025, time.June, 25)
	holidays := []time.Time{date(2025, time.June, 26)}

	got := goal.RemainingBusinessDays(2025, time.June, monFri, holidays, today)

	assert.Equal(t, 3, got, "Thursday the 26th is a holiday")
}

func TestRemainingBusinessDays_TodayOnWeekend(t *testing.T) {
	// Saturday June 28; only Monday the 30th remains
	today := date(2025, time.June, 28)

	got := goal.RemainingBusinessDays(2025, time.June, monFri, nil, today)

	assert.Equal(t, 1, got)
}

func TestRemainingBusinessDays_FutureMonthCountsWholeMonth(t *testing.T) {
	// Asking about January 2026 from December 2025
	today := date(2025, time.December, 10)

	got := goal.RemainingBusinessDays(2026, time.January, monFri, nil, today)

	// January 2026 has 22 Mon-Fri days
	assert.Equal(t, 22, got)
}

func TestRemainingBusinessDays_SundayOnlyCalendar(t *testing.T) {
	// Weekday index 6 is Sunday in the stored convention
	today := date(2025, time.June, 1)

	got := goal.RemainingBusinessDays(2025, time.June, []int{6}, nil, today)

	// Sundays in June 2025: 1, 8, 15, 22, 29
	assert.Equal(t, 5, got)
}

func TestRemainingBusinessDays_EveryDayHoliday(t *testing.T) {
	today := date(2025, time.June, 25)
	holidays := []time.Time{
		date(2025, time.June, 25),
		date(2025, time.June, 26),
		date(2025, time.June, 27),
		date(2025, time.June, 30),
	}

	got := goal.RemainingBusinessDays(2025, time.June, monFri, holidays, today)

	assert.Equal(t, 0, got)
}

func TestRemainingBusinessDays_EmptyWorkingSet(t *testing.T) {
	today := date(2025, time.June, 1)

	got := goal.RemainingBusinessDays(2025, time.June, nil, nil, today)

	assert.Equal(t, 0, got, "no configured working days means nothing to count")
}

func TestParseWeekdays_Default(t *testing.T) {
	got, err := goal.ParseWeekdays("")

	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got, "absent config defaults to Monday-Friday")
}

func TestParseWeekdays_RoundTrip(t *testing.T) {
	serialized := goal.SerializeWeekdays([]int{0, 2, 4})

	got, err := goal.ParseWeekdays(serialized)

	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4}, got)
}

func TestParseWeekdays_OutOfRange(t *testing.T) {
	_, err := goal.ParseWeekdays("[0,7]")

	assert.Error(t, err)
}

func TestParseWeekdays_Garbage(t *testing.T) {
	_, err := goal.ParseWeekdays("not json")

	assert.Error(t, err)
}

func TestParseWeekdays_DuplicatesCollapse(t *testing.T) {
	got, err := goal.ParseWeekdays("[4,4,0,0]")

	require.NoError(t, err)
	assert.Equal(t, []int{0, 4}, got)
}
