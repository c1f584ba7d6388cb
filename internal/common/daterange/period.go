// Package daterange resolves period tokens such as "this week" or
// "last month" into concrete time ranges.
//
// "last" periods are closed ranges covering the whole previous period.
// "this" periods run from the period start up to now, not to the period end.
package daterange

import (
	"strings"
	"time"
)

const (
	Today     = "today"
	Yesterday = "yesterday"
	ThisWeek  = "this week"
	LastWeek  = "last week"
	ThisMonth = "this month"
	LastMonth = "last month"
	ThisYear  = "this year"
	LastYear  = "last year"
)

// Periods lists every token Resolve understands
var Periods = []string{Today, Yesterday, ThisWeek, LastWeek, ThisMonth, LastMonth, ThisYear, LastYear}

// WeekStart is the first day of the week used by week periods
var WeekStart = time.Sunday

type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Resolve maps a period token onto a range relative to now, in now's location.
func Resolve(period string, now time.Time) (Range, bool) {
	today := startOfDay(now)

	switch strings.ToLower(strings.TrimSpace(period)) {
	case Today:
		return Range{Start: today, End: now}, true
	case Yesterday:
		start := today.AddDate(0, 0, -1)
		return Range{Start: start, End: today.Add(-time.Nanosecond)}, true
	case ThisWeek:
		return Range{Start: startOfWeek(now), End: now}, true
	case LastWeek:
		end := startOfWeek(now)
		return Range{Start: end.AddDate(0, 0, -7), End: end.Add(-time.Nanosecond)}, true
	case ThisMonth:
		return Range{Start: startOfMonth(now), End: now}, true
	case LastMonth:
		end := startOfMonth(now)
		return Range{Start: end.AddDate(0, -1, 0), End: end.Add(-time.Nanosecond)}, true
	case ThisYear:
		return Range{Start: startOfYear(now), End: now}, true
	case LastYear:
		end := startOfYear(now)
		return Range{Start: end.AddDate(-1, 0, 0), End: end.Add(-time.Nanosecond)}, true
	default:
		return Range{}, false
	}
}

// IsPeriod reports whether token is one Resolve accepts
func IsPeriod(token string) bool {
	_, ok := Resolve(token, time.Now())
	return ok
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) - int(WeekStart) + 7) % 7
	return startOfDay(t).AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
