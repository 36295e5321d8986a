package calendar

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryan-cox/sprintledger/internal/model"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func classes(days []Day) map[string]model.DayClass {
	out := make(map[string]model.DayClass, len(days))
	for _, d := range days {
		out[d.Date.Format("2006-01-02")] = d.Class
	}
	return out
}

func TestFillGapsInfersLeaveInsideSpan(t *testing.T) {
	obs := []Observation{
		{Author: "Alice", Date: day("2024-01-01"), Hours: 8},
		{Author: "Alice", Date: day("2024-01-05"), Hours: 6},
	}
	days := FillGaps(obs, DefaultPolicy())
	require.Len(t, days, 5)

	got := classes(days)
	assert.Equal(t, model.Work, got["2024-01-01"])
	assert.Equal(t, model.Leave, got["2024-01-02"])
	assert.Equal(t, model.Leave, got["2024-01-03"])
	assert.Equal(t, model.Leave, got["2024-01-04"])
	assert.Equal(t, model.Work, got["2024-01-05"])
}

func TestFillGapsIsContiguous(t *testing.T) {
	obs := []Observation{
		{Author: "Alice", Date: day("2024-03-29"), Hours: 2},
		{Author: "Bob", Date: day("2024-03-01"), Hours: 3},
		{Author: "Alice", Date: day("2024-03-15"), Hours: 0},
	}
	days := FillGaps(obs, DefaultPolicy())
	require.Len(t, days, 29)
	for i := 1; i < len(days); i++ {
		assert.Equal(t, days[i-1].Date.AddDate(0, 0, 1), days[i].Date)
		assert.NotEmpty(t, days[i].Class)
	}
	assert.Equal(t, model.NoWork, classes(days)["2024-03-15"])
}

func TestFillGapsPrecedence(t *testing.T) {
	// 2024-01-06 is a Saturday and also listed as a holiday.
	p := NewPolicy(nil, 8, []time.Time{day("2024-01-06"), day("2024-01-03")})
	obs := []Observation{
		{Author: "Alice", Date: day("2024-01-01"), Hours: 4},
		{Author: "Alice", Date: day("2024-01-06"), Hours: 2},
		{Author: "Alice", Date: day("2024-01-08"), Hours: 4},
	}
	got := classes(FillGaps(obs, p))

	assert.Equal(t, model.NonWorkingDay, got["2024-01-06"], "weekend beats holiday")
	assert.Equal(t, model.Holiday, got["2024-01-03"])
	assert.Equal(t, model.Leave, got["2024-01-02"])
	assert.Equal(t, model.NonWorkingDay, got["2024-01-07"])
}

func TestFillGapsEdgeCases(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, FillGaps(nil, DefaultPolicy()))
	})

	t.Run("single date never yields leave", func(t *testing.T) {
		obs := []Observation{
			{Author: "Alice", Date: day("2024-01-02").Add(9 * time.Hour), Hours: 1},
			{Author: "Alice", Date: day("2024-01-02").Add(15 * time.Hour), Hours: 2},
		}
		days := FillGaps(obs, DefaultPolicy())
		require.Len(t, days, 1)
		assert.Equal(t, model.Work, days[0].Class)
		assert.Equal(t, 3.0, days[0].Hours)
		assert.Equal(t, 2, days[0].Entries)
	})
}

func TestFillGapsByAuthorBoundsLeave(t *testing.T) {
	obs := []Observation{
		{Author: "Alice", Date: day("2024-01-01"), Hours: 8},
		{Author: "Alice", Date: day("2024-01-03"), Hours: 8},
		{Author: "Bob", Date: day("2024-01-03"), Hours: 8},
		{Author: "Bob", Date: day("2024-01-05"), Hours: 8},
	}
	byAuthor := FillGapsByAuthor(obs, DefaultPolicy())
	require.Len(t, byAuthor, 2)

	alice := byAuthor["Alice"]
	assert.Equal(t, []time.Time{day("2024-01-02")}, LeaveDates(alice))
	assert.Equal(t, day("2024-01-03"), alice[len(alice)-1].Date, "no dates after the last logged date")

	bob := byAuthor["Bob"]
	assert.Equal(t, []time.Time{day("2024-01-04")}, LeaveDates(bob))
	assert.Equal(t, day("2024-01-03"), bob[0].Date, "no dates before the first logged date")
}

func TestPolicy(t *testing.T) {
	days, err := ParseWeekdays([]string{"Sunday", "mon", " Tuesday ", "wed", "thu"})
	require.NoError(t, err)
	p := NewPolicy(days, 9, []time.Time{day("2024-12-25")})

	assert.Equal(t, 9.0, p.WorkingHours())
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Sunday}, p.Weekdays())
	assert.True(t, p.IsPolicyDay(day("2024-01-07")), "Sunday")
	assert.False(t, p.IsPolicyDay(day("2024-01-05")), "Friday")
	assert.True(t, p.IsHoliday(day("2024-12-25").Add(10*time.Hour)))
	assert.False(t, p.IsHoliday(day("2025-12-25")), "one-time holiday does not recur")
	assert.False(t, p.IsStandardWorkday(day("2024-12-25")))
	assert.True(t, p.IsStandardWorkday(day("2024-12-24")))

	_, err = ParseWeekdays([]string{"Funday"})
	assert.Error(t, err)

	_, err = ParseHolidays([]string{"2024-13-01"})
	assert.Error(t, err)
	hol, err := ParseHolidays([]string{"2024-01-01", ""})
	require.NoError(t, err)
	assert.Len(t, hol, 1)
}

func TestFillGapsConcurrentPolicies(t *testing.T) {
	obs := []Observation{
		{Author: "Alice", Date: day("2024-01-01"), Hours: 8},
		{Author: "Alice", Date: day("2024-01-03"), Hours: 8},
	}
	withHoliday := NewPolicy(nil, 8, []time.Time{day("2024-01-02")})
	plain := DefaultPolicy()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.Equal(t, model.Holiday, classes(FillGaps(obs, withHoliday))["2024-01-02"])
		}()
		go func() {
			defer wg.Done()
			assert.Equal(t, model.Leave, classes(FillGaps(obs, plain))["2024-01-02"])
		}()
	}
	wg.Wait()
}
