// Package period computes calendar ranges (week, month, quarter) used to
// group tickets and billable work. Weeks start on Monday regardless of locale.
// All boundaries are computed in the location of the reference date.
package period

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/umorjyoti/simplifly/internal/models"
)

// Range is an inclusive [Start, End] interval with a display label
type Range struct {
	Type  models.PeriodType `json:"type"`
	Start time.Time         `json:"start"`
	End   time.Time         `json:"end"`
	Label string            `json:"label"`
}

// Month describes one calendar month of a year
type Month struct {
	Index int       `json:"index"`
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func startOfDay(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, d.Location())
}

// WeekStart returns Monday 00:00:00.000 of the week containing d
func WeekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	day := startOfDay(d)
	return time.Date(day.Year(), day.Month(), day.Day()-offset, 0, 0, 0, 0, d.Location())
}

// WeekEnd returns Sunday 23:59:59.999 wall clock of the week containing d.
// In a zone that shifts its offset during the week the elapsed time from
// WeekStart is off by that shift; callers working in UTC always see
// 7 days minus a millisecond.
func WeekEnd(d time.Time) time.Time {
	start := WeekStart(d)
	return start.AddDate(0, 0, 7).Add(-time.Millisecond)
}

// MonthStart returns the first instant of the month containing d
func MonthStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
}

// MonthEnd returns one millisecond before the first instant of the next month
func MonthEnd(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month()+1, 1, 0, 0, 0, 0, d.Location()).Add(-time.Millisecond)
}

func quarterStartMonth(d time.Time) time.Month {
	return time.Month((int(d.Month())-1)/3*3 + 1)
}

// QuarterStart returns the first instant of the quarter containing d
func QuarterStart(d time.Time) time.Time {
	return time.Date(d.Year(), quarterStartMonth(d), 1, 0, 0, 0, 0, d.Location())
}

// QuarterEnd returns one millisecond before the start of the next quarter
func QuarterEnd(d time.Time) time.Time {
	return time.Date(d.Year(), quarterStartMonth(d)+3, 1, 0, 0, 0, 0, d.Location()).Add(-time.Millisecond)
}

// ParseType converts a raw period name. Anything unrecognised is monthly.
func ParseType(raw string) models.PeriodType {
	p := models.PeriodType(strings.ToLower(strings.TrimSpace(raw)))
	if !p.Valid() {
		return models.PeriodMonthly
	}
	return p
}

// ForDate returns the range of the given type that contains d.
// An unknown period type falls back to monthly.
func ForDate(d time.Time, p models.PeriodType) Range {
	switch p {
	case models.PeriodWeekly:
		start, end := WeekStart(d), WeekEnd(d)
		return Range{
			Type:  p,
			Start: start,
			End:   end,
			Label: fmt.Sprintf("%s - %s", start.Format("Jan 2"), end.Format("Jan 2, 2006")),
		}
	case models.PeriodQuarterly:
		start := QuarterStart(d)
		return Range{
			Type:  p,
			Start: start,
			End:   QuarterEnd(d),
			Label: fmt.Sprintf("Q%d %d", (int(start.Month())-1)/3+1, start.Year()),
		}
	default:
		start := MonthStart(d)
		return Range{
			Type:  models.PeriodMonthly,
			Start: start,
			End:   MonthEnd(d),
			Label: start.Format("January 2006"),
		}
	}
}

// Contains reports whether date lies within [start, end]. A nil date is never inside a period.
func Contains(date *time.Time, start, end time.Time) bool {
	if date == nil {
		return false
	}
	return !date.Before(start) && !date.After(end)
}

// MonthsInYear lists the twelve months of year in loc
func MonthsInYear(year int, loc *time.Location) []Month {
	if loc == nil {
		loc = time.UTC
	}
	months := make([]Month, 0, 12)
	for m := time.January; m <= time.December; m++ {
		first := time.Date(year, m, 1, 0, 0, 0, 0, loc)
		months = append(months, Month{
			Index: int(m) - 1,
			Name:  m.String(),
			Start: first,
			End:   MonthEnd(first),
		})
	}
	return months
}

// YearsFromTickets returns the distinct go-live years of tickets, newest first.
// Backlog tickets are skipped.
func YearsFromTickets(tickets []models.Ticket) []int {
	seen := make(map[int]struct{})
	years := make([]int, 0)
	for _, t := range tickets {
		if t.GoLiveDate == nil {
			continue
		}
		y := t.GoLiveDate.Year()
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}
