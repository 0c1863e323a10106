package recurrence

import (
	"encoding/json"
	"errors"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/mo"

	"github.com/cyp0633/daterecur/internal/datemath"
)

// fieldSetter stores one loosely typed configuration entry into cfg.
type fieldSetter func(cfg *Config, v any) error

func intervalSetter(t RuleType, field func(*Config) *mo.Option[int]) fieldSetter {
	return func(cfg *Config, v any) error {
		n, err := intervalFromAny(t.String(), v).Get()
		if err != nil {
			return err
		}
		*field(cfg) = mo.Some(n)
		return nil
	}
}

func valueSetter(t RuleType, field func(*Config) *Value) fieldSetter {
	return func(cfg *Config, v any) error {
		val, err := valueFromAny(t.String(), v).Get()
		if err != nil {
			return err
		}
		*field(cfg) = val
		return nil
	}
}

func ordinalSetter(t RuleType, field func(*Config) *map[int]Value) fieldSetter {
	return func(cfg *Config, v any) error {
		m, err := ordinalsFromAny(t.String(), v).Get()
		if err != nil {
			return err
		}
		*field(cfg) = m
		return nil
	}
}

var fieldSetters = map[string]fieldSetter{
	"start": func(cfg *Config, v any) error {
		d, err := dateFromAny("start", v).Get()
		if err != nil {
			return err
		}
		cfg.Start = mo.Some(d)
		return nil
	},
	"end": func(cfg *Config, v any) error {
		d, err := dateFromAny("end", v).Get()
		if err != nil {
			return err
		}
		cfg.End = mo.Some(d)
		return nil
	},
	"startOfWeek": func(cfg *Config, v any) error {
		val, err := valueFromAny("startOfWeek", v).Get()
		if err != nil {
			return err
		}
		cfg.StartOfWeek = val
		return nil
	},
	DailyInterval.String():          intervalSetter(DailyInterval, func(c *Config) *mo.Option[int] { return &c.DailyInterval }),
	WeeklyInterval.String():         intervalSetter(WeeklyInterval, func(c *Config) *mo.Option[int] { return &c.WeeklyInterval }),
	MonthlyInterval.String():        intervalSetter(MonthlyInterval, func(c *Config) *mo.Option[int] { return &c.MonthlyInterval }),
	YearlyInterval.String():         intervalSetter(YearlyInterval, func(c *Config) *mo.Option[int] { return &c.YearlyInterval }),
	Weekdays.String():               valueSetter(Weekdays, func(c *Config) *Value { return &c.Weekdays }),
	DaysInMonth.String():            valueSetter(DaysInMonth, func(c *Config) *Value { return &c.DaysInMonth }),
	WeeksInMonth.String():           valueSetter(WeeksInMonth, func(c *Config) *Value { return &c.WeeksInMonth }),
	WeeksInYear.String():            valueSetter(WeeksInYear, func(c *Config) *Value { return &c.WeeksInYear }),
	MonthsInYear.String():           valueSetter(MonthsInYear, func(c *Config) *Value { return &c.MonthsInYear }),
	OrdinalWeekdaysInMonth.String(): ordinalSetter(OrdinalWeekdaysInMonth, func(c *Config) *map[int]Value { return &c.OrdinalWeekdaysInMonth }),
	OrdinalWeekdaysInYear.String():  ordinalSetter(OrdinalWeekdaysInYear, func(c *Config) *map[int]Value { return &c.OrdinalWeekdaysInYear }),
}

// FromMap converts a loosely typed configuration, such as a decoded JSON
// object, into a Config. Keys are the RuleType names plus "start", "end" and
// "startOfWeek"; nil values are treated as unset. Range checks happen in New.
func FromMap(m map[string]any) (Config, error) {
	var cfg Config
	for _, key := range slices.Sorted(maps.Keys(m)) {
		v := m[key]
		if v == nil {
			continue
		}
		set, ok := fieldSetters[key]
		if !ok {
			return Config{}, newError(ErrUnknownRule, key, "unknown configuration key")
		}
		if err := set(&cfg, v); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// NewFromMap is FromMap followed by New.
func NewFromMap(m map[string]any, opts ...Option) (*Rule, error) {
	cfg, err := FromMap(m)
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

func dateFromAny(rule string, v any) mo.Result[time.Time] {
	switch d := v.(type) {
	case time.Time:
		return mo.Ok(datemath.Date(d))
	case *time.Time:
		if d != nil {
			return mo.Ok(datemath.Date(*d))
		}
	case string:
		t, err := ParseDate(d)
		if err != nil {
			var rerr *Error
			if errors.As(err, &rerr) {
				rerr.Rule = rule
			}
			return mo.Err[time.Time](err)
		}
		return mo.Ok(t)
	}
	return mo.Err[time.Time](newError(ErrMalformedDate, rule, "unknown date format: %v", v))
}

// numberShape classifies a loosely typed value handed to wholeNumber.
type numberShape uint8

const (
	notNumber numberShape = iota
	wholeInt
	fractional
	overflow
)

// wholeNumber extracts an integer from the numeric shapes decoders produce.
// Values that do not fit in an int report overflow instead of wrapping.
func wholeNumber(v any) (int, numberShape) {
	switch x := v.(type) {
	case int:
		return x, wholeInt
	case int8:
		return int(x), wholeInt
	case int16:
		return int(x), wholeInt
	case int32:
		return int(x), wholeInt
	case int64:
		return wholeInt64(x)
	case uint:
		return wholeUint64(uint64(x))
	case uint8:
		return int(x), wholeInt
	case uint16:
		return int(x), wholeInt
	case uint32:
		return wholeUint64(uint64(x))
	case uint64:
		return wholeUint64(x)
	case float32:
		return wholeFloat(float64(x))
	case float64:
		return wholeFloat(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return wholeInt64(i)
		}
		f, err := x.Float64()
		if err != nil && !math.IsInf(f, 0) {
			return 0, fractional
		}
		return wholeFloat(f)
	}
	return 0, notNumber
}

func wholeInt64(i int64) (int, numberShape) {
	if i < math.MinInt || i > math.MaxInt {
		return 0, overflow
	}
	return int(i), wholeInt
}

func wholeUint64(u uint64) (int, numberShape) {
	if u > math.MaxInt {
		return 0, overflow
	}
	return int(u), wholeInt
}

func wholeFloat(f float64) (int, numberShape) {
	switch {
	case math.IsNaN(f):
		return 0, fractional
	case f < math.MinInt || f >= -math.MinInt:
		return 0, overflow
	case f != math.Trunc(f):
		return 0, fractional
	}
	return int(f), wholeInt
}

func intervalFromAny(rule string, v any) mo.Result[int] {
	if s, ok := v.(string); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return mo.Err[int](&Error{Type: ErrUnsupportedType, Rule: rule, Message: "interval must be an integer", Err: err})
		}
		return mo.Ok(n)
	}
	n, shape := wholeNumber(v)
	switch shape {
	case wholeInt:
		return mo.Ok(n)
	case overflow:
		return mo.Err[int](newError(ErrOutOfRange, rule, "interval %v does not fit in an int", v))
	case fractional:
		return mo.Err[int](newError(ErrUnsupportedType, rule, "interval must be a whole number, got %v", v))
	default:
		return mo.Err[int](newError(ErrUnsupportedType, rule, "not allowed to use %T", v))
	}
}

func valueFromAny(rule string, v any) mo.Result[Value] {
	switch x := v.(type) {
	case Value:
		return mo.Ok(x)
	case string:
		return mo.Ok(Name(x))
	case []string:
		return mo.Ok(Names(x...))
	case []int:
		return mo.Ok(Ints(x...))
	case []any:
		members := make([]Value, 0, len(x))
		for _, item := range x {
			m, err := valueFromAny(rule, item).Get()
			if err != nil {
				return mo.Err[Value](err)
			}
			members = append(members, m)
		}
		return mo.Ok(List(members...))
	}
	n, shape := wholeNumber(v)
	switch shape {
	case wholeInt:
		return mo.Ok(Int(n))
	case overflow:
		return mo.Err[Value](newError(ErrOutOfRange, rule, "%v does not fit in an int", v))
	case fractional:
		return mo.Err[Value](newError(ErrUnsupportedType, rule, "not allowed to use fractional number %v", v))
	default:
		return mo.Err[Value](newError(ErrUnsupportedType, rule, "not allowed to use %T", v))
	}
}

func ordinalsFromAny(rule string, v any) mo.Result[map[int]Value] {
	out := map[int]Value{}
	switch x := v.(type) {
	case map[int]Value:
		return mo.Ok(maps.Clone(x))
	case map[int]any:
		for k, item := range x {
			val, err := valueFromAny(rule, item).Get()
			if err != nil {
				return mo.Err[map[int]Value](err)
			}
			out[k] = val
		}
	case map[string]any:
		for k, item := range x {
			ordinal, err := strconv.Atoi(strings.TrimSpace(k))
			if err != nil {
				return mo.Err[map[int]Value](newError(ErrOutOfRange, rule, "ordinal key %q is not an integer", k))
			}
			val, err := valueFromAny(rule, item).Get()
			if err != nil {
				return mo.Err[map[int]Value](err)
			}
			out[ordinal] = val
		}
	default:
		return mo.Err[map[int]Value](newError(ErrUnsupportedType, rule, "an object must be specified, got %T", v))
	}
	return mo.Ok(out)
}
