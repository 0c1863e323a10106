package recurrence

import (
	"regexp"
	"strings"
	"time"

	"github.com/cyp0633/daterecur/internal/datemath"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate parses a YYYY-MM-DD string into a date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, newError(ErrMalformedDate, "", "unknown date format: %q", s)
	}
	t, err := time.Parse(datemath.Layout, s)
	if err != nil {
		return time.Time{}, &Error{Type: ErrMalformedDate, Message: "unknown date format: " + s, Err: err}
	}
	return t, nil
}

// componentSet holds the allowed values of one component rule.
type componentSet map[int]bool

type componentSpec struct {
	min, max int
	lookup   map[string]int
	// sundayAlias folds 7 onto 0 so both ISO and zero-based Sunday work.
	sundayAlias bool
}

var weekdaySpec = componentSpec{min: 0, max: 7, lookup: dayNames, sundayAlias: true}

var componentSpecs = map[RuleType]componentSpec{
	Weekdays:               weekdaySpec,
	DaysInMonth:            {min: 1, max: 31},
	WeeksInMonth:           {min: 1, max: 5},
	OrdinalWeekdaysInMonth: weekdaySpec,
	WeeksInYear:            {min: 1, max: 53},
	OrdinalWeekdaysInYear:  weekdaySpec,
	MonthsInYear:           {min: 1, max: 12, lookup: monthNames},
}

const (
	minOrdinal = 1
	maxOrdinal = 5
)

func (s componentSpec) collect(rule RuleType, v Value, into componentSet) error {
	switch v.kind {
	case valueInt:
		if v.num < s.min || v.num > s.max {
			return newError(ErrOutOfRange, rule.String(),
				"acceptable range is from %d to %d, got %d", s.min, s.max, v.num)
		}
		n := v.num
		if s.sundayAlias && n == 7 {
			n = 0
		}
		into[n] = true
	case valueName:
		if s.lookup == nil {
			return newError(ErrUnresolvableName, rule.String(), "not allowed to use strings, got %q", v.name)
		}
		n, ok := s.lookup[strings.ToLower(v.name)]
		if !ok {
			return newError(ErrUnresolvableName, rule.String(), "unknown name %q", v.name)
		}
		into[n] = true
	case valueList:
		for _, m := range v.list {
			if err := s.collect(rule, m, into); err != nil {
				return err
			}
		}
	default:
		return newError(ErrUnsupportedType, rule.String(), "not allowed to use an unset value")
	}
	return nil
}

func compileComponent(rule RuleType, v Value) (componentSet, error) {
	set := componentSet{}
	if err := componentSpecs[rule].collect(rule, v, set); err != nil {
		return nil, err
	}
	return set, nil
}

func compileOrdinals(rule RuleType, m map[int]Value) (map[int]componentSet, error) {
	ordinals := make(map[int]componentSet, len(m))
	for ordinal, v := range m {
		if ordinal < minOrdinal || ordinal > maxOrdinal {
			return nil, newError(ErrOutOfRange, rule.String(),
				"acceptable ordinal range is from %d to %d, got %d", minOrdinal, maxOrdinal, ordinal)
		}
		set, err := compileComponent(rule, v)
		if err != nil {
			return nil, err
		}
		ordinals[ordinal] = set
	}
	return ordinals, nil
}

// resolveStartOfWeek accepts 1-7 or a weekday name. Names use the weekday
// vocabulary with Sunday moved from 0 to 7.
func resolveStartOfWeek(v Value) (time.Weekday, error) {
	const rule = "startOfWeek"
	n := 0
	switch v.kind {
	case valueInt:
		n = v.num
	case valueName:
		d, ok := dayNames[strings.ToLower(v.name)]
		if !ok {
			return 0, newError(ErrUnresolvableName, rule, "unknown weekday %q", v.name)
		}
		n = d
	default:
		return 0, newError(ErrUnsupportedType, rule, "must be a number or a weekday name")
	}
	if n < 1 || n > 7 {
		return 0, newError(ErrOutOfRange, rule, "must be between 1 and 7, got %d", n)
	}
	return time.Weekday(n % 7), nil
}
