package recurrence

import (
	"strconv"
	"strings"
	"time"

	"github.com/samber/mo"
)

// RuleType identifies one matching rule. Its String form is the
// configuration key used by FromMap.
type RuleType int

const (
	DailyInterval RuleType = iota
	WeeklyInterval
	MonthlyInterval
	YearlyInterval
	Weekdays
	DaysInMonth
	WeeksInMonth
	OrdinalWeekdaysInMonth
	WeeksInYear
	OrdinalWeekdaysInYear
	MonthsInYear
)

var ruleTypeNames = [...]string{
	DailyInterval:          "dailyInterval",
	WeeklyInterval:         "weeklyInterval",
	MonthlyInterval:        "monthlyInterval",
	YearlyInterval:         "yearlyInterval",
	Weekdays:               "weekdays",
	DaysInMonth:            "daysInMonth",
	WeeksInMonth:           "weeksInMonth",
	OrdinalWeekdaysInMonth: "ordinalWeekdaysInMonth",
	WeeksInYear:            "weeksInYear",
	OrdinalWeekdaysInYear:  "ordinalWeekdaysInYear",
	MonthsInYear:           "monthsInYear",
}

func (t RuleType) String() string {
	if t < 0 || int(t) >= len(ruleTypeNames) {
		return "RuleType(" + strconv.Itoa(int(t)) + ")"
	}
	return ruleTypeNames[t]
}

// IsInterval reports whether t is one of the every-N rules that need a start date.
func (t RuleType) IsInterval() bool {
	return t <= YearlyInterval
}

type valueKind uint8

const (
	valueUnset valueKind = iota
	valueInt
	valueName
	valueList
)

// Value is the input for a component rule: a number, a name resolved through
// the rule's vocabulary, or a list of either. The zero Value means unset.
type Value struct {
	kind valueKind
	num  int
	name string
	list []Value
}

// Int returns a numeric component value.
func Int(n int) Value { return Value{kind: valueInt, num: n} }

// Name returns a component value resolved by name, e.g. "mon" or "January".
func Name(s string) Value { return Value{kind: valueName, name: s} }

// List flattens its members into one set. An empty list is a configured rule
// that admits nothing.
func List(vs ...Value) Value {
	return Value{kind: valueList, list: append([]Value{}, vs...)}
}

// Ints is shorthand for a List of Int values.
func Ints(ns ...int) Value {
	vs := make([]Value, len(ns))
	for i, n := range ns {
		vs[i] = Int(n)
	}
	return List(vs...)
}

// Names is shorthand for a List of Name values.
func Names(ss ...string) Value {
	vs := make([]Value, len(ss))
	for i, s := range ss {
		vs[i] = Name(s)
	}
	return List(vs...)
}

// IsSet reports whether v was given.
func (v Value) IsSet() bool {
	return v.kind != valueUnset
}

// String renders v canonically; names are lower-cased since lookups ignore case.
func (v Value) String() string {
	switch v.kind {
	case valueInt:
		return strconv.Itoa(v.num)
	case valueName:
		return strconv.Quote(strings.ToLower(v.name))
	case valueList:
		parts := make([]string, len(v.list))
		for i, m := range v.list {
			parts[i] = m.String()
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return "<unset>"
	}
}

// Config declares a recurrence. Every configured rule must hold for a date to
// match; unset rules are ignored.
type Config struct {
	// Start and End are inclusive bounds. Start is required by interval rules.
	Start mo.Option[time.Time]
	End   mo.Option[time.Time]

	// StartOfWeek is 1 (Monday) through 7 (Sunday) or a weekday name. Sunday
	// names resolve to 0 and are rejected; use 7 for a Sunday week start.
	// Monday when unset.
	StartOfWeek Value

	DailyInterval   mo.Option[int]
	WeeklyInterval  mo.Option[int]
	MonthlyInterval mo.Option[int]
	YearlyInterval  mo.Option[int]

	Weekdays     Value // 0-7, Sunday is both 0 and 7
	DaysInMonth  Value // 1-31
	WeeksInMonth Value // 1-5, matched against the zero-based week row
	WeeksInYear  Value // 1-53, matched against the zero-based week row
	MonthsInYear Value // 1-12

	// Ordinal rules map an ordinal (1-5) to a weekday set; for example
	// {1: Name("mon")} is the first Monday.
	OrdinalWeekdaysInMonth map[int]Value
	OrdinalWeekdaysInYear  map[int]Value
}
