package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umorjyoti/simplifly/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 13, 45, 10, 0, time.UTC)
}

func TestMonthEndIsOneMillisecondBeforeNextMonth(t *testing.T) {
	for year := 2023; year <= 2024; year++ {
		for m := time.January; m <= time.December; m++ {
			d := date(year, m, 15)
			next := MonthStart(time.Date(year, m+1, 1, 0, 0, 0, 0, time.UTC))
			assert.Equal(t, next.Add(-time.Millisecond), MonthEnd(d), "%d-%02d", year, m)
		}
	}
}

func TestMonthEndFebruary(t *testing.T) {
	assert.Equal(t, time.Date(2024, time.February, 29, 23, 59, 59, 999_000_000, time.UTC), MonthEnd(date(2024, time.February, 10)))
	assert.Equal(t, time.Date(2023, time.February, 28, 23, 59, 59, 999_000_000, time.UTC), MonthEnd(date(2023, time.February, 10)))
}

func TestWeekStartIsMonday(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		d := start.AddDate(0, 0, i).Add(7 * time.Hour)
		ws := WeekStart(d)
		we := WeekEnd(d)
		assert.Equal(t, time.Monday, ws.Weekday(), d.String())
		assert.Equal(t, 0, ws.Hour()+ws.Minute()+ws.Second()+ws.Nanosecond())
		assert.Equal(t, 6*24*time.Hour+23*time.Hour+59*time.Minute+59*time.Second+999*time.Millisecond, we.Sub(ws))
		assert.True(t, !d.Before(ws) && !d.After(we))
	}
}

func TestWeekEndAcrossDSTChange(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	d := time.Date(2024, time.March, 6, 15, 0, 0, 0, loc)

	start, end := WeekStart(d), WeekEnd(d)
	assert.True(t, start.Equal(time.Date(2024, time.March, 4, 0, 0, 0, 0, loc)), start.String())
	assert.True(t, end.Equal(time.Date(2024, time.March, 10, 23, 59, 59, 999_000_000, loc)), end.String())
	assert.Equal(t, 7*24*time.Hour-time.Hour-time.Millisecond, end.Sub(start))

	utc := d.UTC()
	assert.Equal(t, 7*24*time.Hour-time.Millisecond, WeekEnd(utc).Sub(WeekStart(utc)))
}

func TestWeekStartOnSunday(t *testing.T) {
	// 2024-03-10 is a Sunday
	ws := WeekStart(date(2024, time.March, 10))
	assert.Equal(t, time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), ws)
}

func TestQuarterForNovember(t *testing.T) {
	d := date(2024, time.November, 20)
	assert.Equal(t, time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC), QuarterStart(d))
	assert.Equal(t, time.Date(2024, time.December, 31, 23, 59, 59, 999_000_000, time.UTC), QuarterEnd(d))
}

func TestQuarterBoundaries(t *testing.T) {
	cases := []struct {
		month time.Month
		start time.Month
	}{
		{time.January, time.January},
		{time.March, time.January},
		{time.April, time.April},
		{time.June, time.April},
		{time.July, time.July},
		{time.September, time.July},
		{time.October, time.October},
		{time.December, time.October},
	}
	for _, tc := range cases {
		d := date(2023, tc.month, 5)
		assert.Equal(t, tc.start, QuarterStart(d).Month(), tc.month.String())
		assert.Equal(t, QuarterStart(d).AddDate(0, 3, 0).Add(-time.Millisecond), QuarterEnd(d))
	}
}

func TestForDateLabels(t *testing.T) {
	d := date(2024, time.November, 20)

	r := ForDate(d, models.PeriodWeekly)
	assert.Equal(t, "Nov 18 - Nov 24, 2024", r.Label)

	r = ForDate(d, models.PeriodMonthly)
	assert.Equal(t, "November 2024", r.Label)

	r = ForDate(d, models.PeriodQuarterly)
	assert.Equal(t, "Q4 2024", r.Label)
}

func TestForDateUnknownTypeIsMonthly(t *testing.T) {
	d := date(2024, time.February, 3)
	r := ForDate(d, models.PeriodType("fortnightly"))
	assert.Equal(t, models.PeriodMonthly, r.Type)
	assert.Equal(t, MonthStart(d), r.Start)
	assert.Equal(t, MonthEnd(d), r.End)
	assert.Equal(t, models.PeriodMonthly, ParseType("bogus"))
	assert.Equal(t, models.PeriodWeekly, ParseType(" Weekly "))
}

func TestContains(t *testing.T) {
	start := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	end := MonthEnd(start)

	assert.False(t, Contains(nil, start, end))
	assert.True(t, Contains(&start, start, end))
	assert.True(t, Contains(&end, start, end))
	after := end.Add(time.Millisecond)
	assert.False(t, Contains(&after, start, end))
	before := start.Add(-time.Millisecond)
	assert.False(t, Contains(&before, start, end))
}

func TestMonthsInYear(t *testing.T) {
	months := MonthsInYear(2024, nil)
	require.Len(t, months, 12)
	assert.Equal(t, 0, months[0].Index)
	assert.Equal(t, "January", months[0].Name)
	assert.Equal(t, "February", months[1].Name)
	assert.Equal(t, 29, months[1].End.Day())
	assert.Equal(t, 11, months[11].Index)
}

func TestYearsFromTickets(t *testing.T) {
	d := func(y int) *time.Time {
		v := time.Date(y, time.June, 1, 0, 0, 0, 0, time.UTC)
		return &v
	}
	tickets := []models.Ticket{
		{GoLiveDate: d(2022)},
		{GoLiveDate: nil},
		{GoLiveDate: d(2024)},
		{GoLiveDate: d(2022)},
		{GoLiveDate: d(2023)},
	}
	assert.Equal(t, []int{2024, 2023, 2022}, YearsFromTickets(tickets))
	assert.Empty(t, YearsFromTickets(nil))
}
