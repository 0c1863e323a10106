/*
Package recurrence decides whether a calendar date belongs to a declaratively
configured recurrence, such as "every 2nd week, on Monday and Friday, starting
2020-01-01".

# Basic Usage

A Config lists independent rules; a date matches only if every configured rule
accepts it:

	rule, err := recurrence.New(recurrence.Config{
		Start:          mo.Some(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
		WeeklyInterval: mo.Some(2),
		Weekdays:       recurrence.Names("mon", "fri"),
	})
	if err != nil {
		log.Fatal(err)
	}
	ok := rule.Matches(time.Date(2020, 1, 13, 0, 0, 0, 0, time.UTC))

A Rule is immutable once built and may be shared between goroutines.

# Loosely Typed Input

FromMap and NewFromMap accept the shapes produced by decoding JSON or form
data, keyed by rule name:

	rule, err := recurrence.NewFromMap(map[string]any{
		"start":                  "2024-01-01",
		"ordinalWeekdaysInMonth": map[string]any{"1": "mon"},
	})

# Dates

Only the calendar date of a time.Time is used. Year, month and day are read in
the value's own location; time of day is discarded and no timezone conversion
takes place.

# Errors

Every rejection is an *Error whose Type is one of the Err constants; use
IsType to branch on it. Configuration errors surface from New, malformed dates
from MatchesString and MatchesValue.
*/
package recurrence
