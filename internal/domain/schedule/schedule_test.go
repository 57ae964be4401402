package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAgeYears(t *testing.T) {
	birth := date(2020, time.June, 15)

	tests := []struct {
		name  string
		today time.Time
		want  int
	}{
		{"same day", birth, 0},
		{"day before first birthday", date(2021, time.June, 14), 0},
		{"first birthday", date(2021, time.June, 15), 1},
		{"earlier month", date(2024, time.March, 1), 3},
		{"later month", date(2024, time.July, 1), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeYears(birth, tt.today))
		})
	}
}

func TestAgeMonths(t *testing.T) {
	birth := date(2024, time.January, 31)

	assert.Equal(t, 0, AgeMonths(birth, birth))
	assert.Equal(t, 0, AgeMonths(birth, date(2024, time.February, 29)))
	assert.Equal(t, 2, AgeMonths(birth, date(2024, time.March, 31)))
	assert.Equal(t, 1, AgeMonths(birth, date(2024, time.March, 30)))
	assert.Equal(t, 13, AgeMonths(birth, date(2025, time.March, 1)))

	// nacimiento "en el futuro" respecto de hoy: se clampa a 0
	assert.Equal(t, 0, AgeMonths(date(2025, time.May, 1), date(2025, time.January, 1)))
}

func TestAgeMonths_NeverBelowYearsTimesTwelve(t *testing.T) {
	birth := date(2019, time.February, 28)
	today := birth
	for i := 0; i < 2000; i++ {
		years := AgeYears(birth, today)
		months := AgeMonths(birth, today)
		require.GreaterOrEqual(t, years, 0)
		require.GreaterOrEqual(t, months, years*12, "today=%s", today.Format(time.DateOnly))
		today = today.AddDate(0, 0, 1)
	}
}

func TestAddMonths_EndOfMonthClamp(t *testing.T) {
	assert.Equal(t, date(2024, time.February, 29), AddMonths(date(2024, time.January, 31), 1))
	assert.Equal(t, date(2025, time.February, 28), AddMonths(date(2025, time.January, 31), 1))
	assert.Equal(t, date(2024, time.April, 30), AddMonths(date(2024, time.March, 31), 1))
	assert.Equal(t, date(2026, time.January, 15), AddMonths(date(2024, time.January, 15), 24))
	assert.Equal(t, date(2023, time.December, 15), AddMonths(date(2024, time.January, 15), -1))
}

func TestNextDoseDate(t *testing.T) {
	// Escenario A
	next := NextDoseDate(date(2024, time.January, 15), 12)
	require.NotNil(t, next)
	assert.Equal(t, date(2025, time.January, 15), *next)

	assert.Nil(t, NextDoseDate(date(2024, time.January, 15), 0))
}

func TestNextDoseDate_MonotonicInDuration(t *testing.T) {
	administered := date(2023, time.August, 31)
	prev := *NextDoseDate(administered, 1)
	for months := 2; months <= 60; months++ {
		next := NextDoseDate(administered, months)
		require.NotNil(t, next)
		assert.False(t, next.Before(prev), "months=%d", months)
		prev = *next
	}
}

func TestClassify(t *testing.T) {
	next := date(2025, time.January, 15)

	t.Run("due soon", func(t *testing.T) {
		// Escenario B
		today := date(2025, time.January, 10)
		assert.Equal(t, StatusDueSoon, Classify(&next, today))
		require.NotNil(t, DaysUntilDue(&next, today))
		assert.Equal(t, 5, *DaysUntilDue(&next, today))
	})

	t.Run("overdue", func(t *testing.T) {
		// Escenario C
		today := date(2025, time.February, 1)
		assert.Equal(t, StatusOverdue, Classify(&next, today))
		assert.Equal(t, -17, *DaysUntilDue(&next, today))
	})

	t.Run("window bounds inclusive", func(t *testing.T) {
		assert.Equal(t, StatusDueSoon, Classify(&next, next))
		assert.Equal(t, StatusDueSoon, Classify(&next, next.AddDate(0, 0, -30)))
		assert.Equal(t, StatusScheduled, Classify(&next, next.AddDate(0, 0, -31)))
	})

	t.Run("no schedule", func(t *testing.T) {
		assert.Equal(t, StatusNoSchedule, Classify(nil, next))
		assert.Nil(t, DaysUntilDue(nil, next))
	})
}

func TestDay_IgnoresClockAndZone(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	late := time.Date(2025, time.January, 10, 23, 30, 0, 0, loc)

	assert.Equal(t, date(2025, time.January, 10), Day(late))
	assert.Equal(t, 5, DaysBetween(late, date(2025, time.January, 15)))
}
