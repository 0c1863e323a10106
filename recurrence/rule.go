package recurrence

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/samber/mo"

	"github.com/cyp0633/daterecur/internal/datemath"
)

// matcher is one compiled rule. Only the fields relevant to typ are set.
type matcher struct {
	typ      RuleType
	interval int
	set      componentSet
	ordinals map[int]componentSet
}

// Rule is a validated, immutable recurrence. It is safe for concurrent use.
type Rule struct {
	start mo.Option[time.Time]
	end   mo.Option[time.Time]
	cal   datemath.Calendar
	rules []matcher
}

type options struct {
	logger *slog.Logger
}

// Option configures New.
type Option func(*options)

// WithLogger sets the logger used while compiling a rule.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New validates cfg and compiles it into a Rule.
func New(cfg Config, opts ...Option) (*Rule, error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	r, err := compile(cfg)
	if err != nil {
		o.logger.Debug("recurrence rule rejected", "error", err)
		return nil, err
	}

	o.logger.Debug("recurrence rule compiled",
		"rules", fmt.Sprint(r.Types()),
		"start_of_week", r.cal.WeekStart.String())
	return r, nil
}

func compile(cfg Config) (*Rule, error) {
	r := &Rule{
		start: normalizeDate(cfg.Start),
		end:   normalizeDate(cfg.End),
		cal:   datemath.Calendar{WeekStart: time.Monday},
	}

	if cfg.StartOfWeek.IsSet() {
		ws, err := resolveStartOfWeek(cfg.StartOfWeek)
		if err != nil {
			return nil, err
		}
		r.cal.WeekStart = ws
	}

	intervals := []struct {
		typ RuleType
		n   mo.Option[int]
	}{
		{DailyInterval, cfg.DailyInterval},
		{WeeklyInterval, cfg.WeeklyInterval},
		{MonthlyInterval, cfg.MonthlyInterval},
		{YearlyInterval, cfg.YearlyInterval},
	}
	for _, iv := range intervals {
		n, ok := iv.n.Get()
		if !ok {
			continue
		}
		if r.start.IsAbsent() {
			return nil, newError(ErrMissingPrerequisite, iv.typ.String(),
				"an interval can only be set if the recurrence has a start date")
		}
		if n <= 0 {
			return nil, newError(ErrOutOfRange, iv.typ.String(), "interval must be at least 1, got %d", n)
		}
		r.rules = append(r.rules, matcher{typ: iv.typ, interval: n})
	}

	components := []struct {
		typ      RuleType
		v        Value
		ordinals map[int]Value
	}{
		{typ: Weekdays, v: cfg.Weekdays},
		{typ: DaysInMonth, v: cfg.DaysInMonth},
		{typ: WeeksInMonth, v: cfg.WeeksInMonth},
		{typ: OrdinalWeekdaysInMonth, ordinals: cfg.OrdinalWeekdaysInMonth},
		{typ: WeeksInYear, v: cfg.WeeksInYear},
		{typ: OrdinalWeekdaysInYear, ordinals: cfg.OrdinalWeekdaysInYear},
		{typ: MonthsInYear, v: cfg.MonthsInYear},
	}
	for _, c := range components {
		switch {
		case c.ordinals != nil:
			ordinals, err := compileOrdinals(c.typ, c.ordinals)
			if err != nil {
				return nil, err
			}
			r.rules = append(r.rules, matcher{typ: c.typ, ordinals: ordinals})
		case c.v.IsSet():
			set, err := compileComponent(c.typ, c.v)
			if err != nil {
				return nil, err
			}
			r.rules = append(r.rules, matcher{typ: c.typ, set: set})
		}
	}

	return r, nil
}

func normalizeDate(d mo.Option[time.Time]) mo.Option[time.Time] {
	if t, ok := d.Get(); ok {
		return mo.Some(datemath.Date(t))
	}
	return d
}

// Types lists the configured rules in evaluation order.
func (r *Rule) Types() []RuleType {
	types := make([]RuleType, len(r.rules))
	for i, rl := range r.rules {
		types[i] = rl.typ
	}
	return types
}

// StartOfWeek returns the weekday that begins a week for this rule.
func (r *Rule) StartOfWeek() time.Weekday {
	return r.cal.WeekStart
}

// Start returns the inclusive lower bound, if any.
func (r *Rule) Start() mo.Option[time.Time] { return r.start }

// End returns the inclusive upper bound, if any.
func (r *Rule) End() mo.Option[time.Time] { return r.end }

// Matches reports whether the calendar date of t satisfies every configured rule.
func (r *Rule) Matches(t time.Time) bool {
	d := datemath.Date(t)
	if start, ok := r.start.Get(); ok && d.Before(start) {
		return false
	}
	if end, ok := r.end.Get(); ok && d.After(end) {
		return false
	}
	for _, rl := range r.rules {
		if !r.eval(rl, d) {
			return false
		}
	}
	return true
}

// MatchesString is Matches for a YYYY-MM-DD string.
func (r *Rule) MatchesString(s string) (bool, error) {
	d, err := ParseDate(s)
	if err != nil {
		return false, err
	}
	return r.Matches(d), nil
}

// MatchesValue is Matches for a loosely typed date: a time.Time, a non-nil
// *time.Time or a YYYY-MM-DD string.
func (r *Rule) MatchesValue(v any) (bool, error) {
	d, err := dateFromAny("", v).Get()
	if err != nil {
		return false, err
	}
	return r.Matches(d), nil
}

func (r *Rule) eval(rl matcher, d time.Time) bool {
	start := r.start.OrEmpty()
	switch rl.typ {
	case DailyInterval:
		return onInterval(datemath.DiffInDays(start, d), rl.interval)
	case WeeklyInterval:
		return onInterval(r.cal.DiffInWeeks(start, d), rl.interval)
	case MonthlyInterval:
		return onInterval(datemath.DiffInMonths(start, d), rl.interval)
	case YearlyInterval:
		return onInterval(datemath.DiffInYears(start, d), rl.interval)
	case Weekdays:
		return rl.set[int(d.Weekday())]
	case DaysInMonth:
		return rl.set[d.Day()]
	case WeeksInMonth:
		return rl.set[r.cal.WeekOfMonth(d)]
	case WeeksInYear:
		return rl.set[r.cal.WeekOfYear(d)]
	case MonthsInYear:
		return rl.set[int(d.Month())]
	case OrdinalWeekdaysInMonth:
		return ordinalMatches(rl.ordinals, d.Weekday(), d.Day())
	case OrdinalWeekdaysInYear:
		// Windows are laid over the one-based day of year so that {1: mon}
		// means the first Monday of the year, as it does within a month.
		// The zero-based DayOfYear would shift every window back one day.
		return ordinalMatches(rl.ordinals, d.Weekday(), datemath.DayOfYear(d)+1)
	default:
		return false
	}
}

// onInterval treats a negative offset as a mismatch; offsets are never
// negative once the start bound has been checked.
func onInterval(offset, n int) bool {
	return offset >= 0 && offset%n == 0
}

// ordinalMatches reports whether day (1-based) falls in the window
// [7k-6, 7k] of some ordinal k whose weekday set holds weekday.
func ordinalMatches(ordinals map[int]componentSet, weekday time.Weekday, day int) bool {
	for k, weekdays := range ordinals {
		if day < 7*k-6 || day > 7*k {
			continue
		}
		if weekdays[int(weekday)] {
			return true
		}
	}
	return false
}
