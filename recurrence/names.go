package recurrence

import (
	"strings"
	"time"
)

var dayNames = map[string]int{
	"sun": 0, "sunday": 0,
	"mon": 1, "monday": 1,
	"tue": 2, "tuesday": 2,
	"wed": 3, "wednesday": 3,
	"thu": 4, "thursday": 4,
	"fri": 5, "friday": 5,
	"sat": 6, "saturday": 6,
}

var monthNames = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// LookupWeekday resolves a full or three-letter weekday name, ignoring case.
func LookupWeekday(name string) (time.Weekday, bool) {
	n, ok := dayNames[strings.ToLower(name)]
	return time.Weekday(n), ok
}

// LookupMonth resolves a full or three-letter month name, ignoring case.
func LookupMonth(name string) (time.Month, bool) {
	n, ok := monthNames[strings.ToLower(name)]
	return time.Month(n), ok
}
