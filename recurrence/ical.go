package recurrence

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/cyp0633/daterecur/internal/datemath"
)

// DefaultMaxOccurrences caps MatchingOccurrences when no limit is given.
const DefaultMaxOccurrences = 1000

// componentStart returns DTSTART, or DUE for a VTODO without DTSTART.
// found is false when the component carries neither.
func componentStart(comp *ical.Component) (start time.Time, found bool, err error) {
	if prop := comp.Props.Get(ical.PropDateTimeStart); prop != nil {
		start, err = prop.DateTime(time.UTC)
		if err != nil {
			return time.Time{}, true, fmt.Errorf("failed to parse DTSTART: %w", err)
		}
		return start, true, nil
	}

	if comp.Name == ical.CompToDo {
		if prop := comp.Props.Get(ical.PropDue); prop != nil {
			start, err = prop.DateTime(time.UTC)
			if err != nil {
				return time.Time{}, true, fmt.Errorf("failed to parse DUE: %w", err)
			}
			return start, true, nil
		}
	}

	return time.Time{}, false, nil
}

// DateOfComponent returns the calendar date an event or to-do falls on.
func DateOfComponent(comp *ical.Component) (time.Time, error) {
	if comp == nil {
		return time.Time{}, newError(ErrMalformedDate, "", "no component")
	}
	start, found, err := componentStart(comp)
	if err != nil {
		return time.Time{}, &Error{Type: ErrMalformedDate, Message: comp.Name, Err: err}
	}
	if !found {
		return time.Time{}, newError(ErrMalformedDate, "", "%s has no start date", comp.Name)
	}
	return datemath.Date(start), nil
}

// MatchesComponent reports whether the date of comp satisfies the rule.
func (r *Rule) MatchesComponent(comp *ical.Component) (bool, error) {
	d, err := DateOfComponent(comp)
	if err != nil {
		return false, err
	}
	return r.Matches(d), nil
}

// FilterCalendar returns the VEVENT and VTODO children of cal whose date
// matches. To-dos without any date are skipped.
func (r *Rule) FilterCalendar(cal *ical.Calendar) ([]*ical.Component, error) {
	var matched []*ical.Component
	for _, child := range cal.Children {
		if child.Name != ical.CompEvent && child.Name != ical.CompToDo {
			continue
		}
		start, found, err := componentStart(child)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", componentUID(child), err)
		}
		if found && r.Matches(start) {
			matched = append(matched, child)
		}
	}
	return matched, nil
}

// MatchingOccurrences expands the component's own RRULE inside the inclusive
// window [rangeStart, rangeEnd] and keeps the occurrences whose dates the rule
// accepts. RDATE values join the candidates and EXDATE values are dropped.
// A component without RRULE contributes its start plus any RDATE values. At
// most limit occurrences are returned; a limit of 0 means
// DefaultMaxOccurrences.
func (r *Rule) MatchingOccurrences(comp *ical.Component, rangeStart, rangeEnd time.Time, limit int) ([]time.Time, error) {
	if comp == nil {
		return nil, newError(ErrMalformedDate, "", "no component")
	}
	if limit <= 0 {
		limit = DefaultMaxOccurrences
	}
	start, found, err := componentStart(comp)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("component %s has no start date", componentUID(comp))
	}

	candidates := []time.Time{start}
	if prop := comp.Props.Get(ical.PropRecurrenceRule); prop != nil && prop.Value != "" {
		candidates, err = expandRRule(start, prop.Value, rangeStart, rangeEnd)
		if err != nil {
			return nil, err
		}
	}
	candidates = append(candidates, propDates(comp, ical.PropRecurrenceDates)...)
	slices.SortFunc(candidates, time.Time.Compare)
	candidates = slices.CompactFunc(candidates, time.Time.Equal)
	exdates := propDates(comp, ical.PropExceptionDates)

	var out []time.Time
	for _, occ := range candidates {
		if occ.Before(rangeStart) || occ.After(rangeEnd) {
			continue
		}
		if isExcluded(occ, exdates) || !r.Matches(occ) {
			continue
		}
		out = append(out, occ)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func expandRRule(start time.Time, value string, rangeStart, rangeEnd time.Time) ([]time.Time, error) {
	opt, err := rrule.StrToROption(value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RRULE '%s': %w", value, err)
	}
	opt.Dtstart = start
	rr, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build RRULE '%s': %w", value, err)
	}
	return rr.Between(rangeStart, rangeEnd, true), nil
}

// propDates collects every value of a date-list property such as RDATE or
// EXDATE. Date-only values are stored as midnight UTC.
func propDates(comp *ical.Component, name string) []time.Time {
	var dates []time.Time
	for _, prop := range comp.Props[name] {
		dateOnly := strings.EqualFold(prop.Params.Get(ical.ParamValue), string(ical.ValueDate))
		for _, raw := range strings.Split(prop.Value, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			if t, err := time.Parse("20060102T150405Z", raw); err == nil && !dateOnly {
				dates = append(dates, t)
				continue
			}
			if t, err := time.Parse("20060102", raw); err == nil {
				dates = append(dates, t)
			}
		}
	}
	return dates
}

// isExcluded checks exact instants, and whole days for date-only exceptions.
func isExcluded(t time.Time, exdates []time.Time) bool {
	for _, exdate := range exdates {
		if t.Equal(exdate) {
			return true
		}
		if exdate.Equal(datemath.Date(exdate)) && datemath.Date(t).Equal(exdate) {
			return true
		}
	}
	return false
}

func componentUID(comp *ical.Component) string {
	if prop := comp.Props.Get(ical.PropUID); prop != nil {
		return prop.Value
	}
	return comp.Name
}
