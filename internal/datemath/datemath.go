// Package datemath provides exact, date-only calendar arithmetic.
//
// Every function first reduces its arguments to a calendar date: the year,
// month and day are read in the value's own location and re-anchored at
// midnight UTC. No timezone conversion or DST adjustment takes place, so two
// values describing the same wall-calendar day always compare equal.
package datemath

import "time"

// Layout is the canonical YYYY-MM-DD date layout.
const Layout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// Date returns the calendar date of t at midnight UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dayNumber counts days since the Unix epoch. Midnight UTC is always an exact
// multiple of a day, so the division never truncates.
func dayNumber(t time.Time) int64 {
	return Date(t).Unix() / secondsPerDay
}

// DiffInDays returns the signed number of whole days from d1 to d2.
func DiffInDays(d1, d2 time.Time) int {
	return int(dayNumber(d2) - dayNumber(d1))
}

// DiffInYears returns the signed calendar-year difference from d1 to d2.
func DiffInYears(d1, d2 time.Time) int {
	return d2.Year() - d1.Year()
}

// DiffInMonths subtracts calendar fields; the day of month is ignored.
func DiffInMonths(d1, d2 time.Time) int {
	return DiffInYears(d1, d2)*12 + int(d2.Month()) - int(d1.Month())
}

// StartOfMonth returns the first day of the month containing t.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// StartOfYear returns January 1st of the year containing t.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// DayOfYear returns the zero-based day index within the year (January 1st is 0).
func DayOfYear(t time.Time) int {
	return DiffInDays(StartOfYear(t), t)
}

// Calendar carries the week convention used by week-relative calculations.
// The zero value starts weeks on Sunday.
type Calendar struct {
	WeekStart time.Weekday
}

// StartOfWeek returns the most recent WeekStart on or before t.
func (c Calendar) StartOfWeek(t time.Time) time.Time {
	d := Date(t)
	offset := (int(d.Weekday()) - int(c.WeekStart) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

// DiffInWeeks counts week boundaries crossed from d1 to d2, not 7-day spans.
func (c Calendar) DiffInWeeks(d1, d2 time.Time) int {
	return DiffInDays(c.StartOfWeek(d1), c.StartOfWeek(d2)) / 7
}

// WeekOfMonth returns the zero-based week row of t within its month.
func (c Calendar) WeekOfMonth(t time.Time) int {
	return c.DiffInWeeks(StartOfMonth(t), t)
}

// WeekOfYear returns the zero-based week row of t within its year.
func (c Calendar) WeekOfYear(t time.Time) int {
	return c.DiffInWeeks(StartOfYear(t), t)
}
