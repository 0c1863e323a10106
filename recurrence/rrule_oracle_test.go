package recurrence

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"
)

// assertAgreesWithRRule checks, day by day over [from, to], that r accepts
// exactly the dates rrule-go generates for opt.
func assertAgreesWithRRule(t *testing.T, r *Rule, opt rrule.ROption, from, to time.Time) {
	t.Helper()
	opt.Dtstart = from
	opt.Until = to
	oracle, err := rrule.NewRRule(opt)
	require.NoError(t, err)

	want := map[string]bool{}
	for _, occ := range oracle.All() {
		want[occ.Format("2006-01-02")] = true
	}
	require.NotEmpty(t, want, "oracle produced no occurrences")

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		if got := r.Matches(d); got != want[key] {
			t.Fatalf("Matches(%s) = %v, rrule says %v", key, got, want[key])
		}
	}
}

func TestRule_AgreesWithRRule(t *testing.T) {
	from := date(2020, 1, 6) // a Monday
	to := date(2023, 12, 31)

	tests := []struct {
		name string
		cfg  Config
		opt  rrule.ROption
	}{
		{
			name: "every third day",
			cfg:  Config{Start: mo.Some(from), DailyInterval: mo.Some(3)},
			opt:  rrule.ROption{Freq: rrule.DAILY, Interval: 3},
		},
		{
			name: "every other week on monday and friday",
			cfg:  Config{Start: mo.Some(from), WeeklyInterval: mo.Some(2), Weekdays: Names("mon", "fri")},
			opt:  rrule.ROption{Freq: rrule.WEEKLY, Interval: 2, Byweekday: []rrule.Weekday{rrule.MO, rrule.FR}, Wkst: rrule.MO},
		},
		{
			name: "every third week on sunday with sunday week start",
			cfg: Config{
				Start:          mo.Some(from),
				StartOfWeek:    Int(7),
				WeeklyInterval: mo.Some(3),
				Weekdays:       Names("sun", "wed"),
			},
			opt: rrule.ROption{Freq: rrule.WEEKLY, Interval: 3, Byweekday: []rrule.Weekday{rrule.SU, rrule.WE}, Wkst: rrule.SU},
		},
		{
			name: "every other month on the 15th",
			cfg:  Config{Start: mo.Some(from), MonthlyInterval: mo.Some(2), DaysInMonth: Int(15)},
			opt:  rrule.ROption{Freq: rrule.MONTHLY, Interval: 2, Bymonthday: []int{15}},
		},
		{
			name: "every other year on march 1st",
			cfg:  Config{Start: mo.Some(from), YearlyInterval: mo.Some(2), MonthsInYear: Name("mar"), DaysInMonth: Int(1)},
			opt:  rrule.ROption{Freq: rrule.YEARLY, Interval: 2, Bymonth: []int{3}, Bymonthday: []int{1}},
		},
		{
			name: "13th and 29th of february and august",
			cfg:  Config{MonthsInYear: Names("feb", "aug"), DaysInMonth: Ints(13, 29)},
			opt:  rrule.ROption{Freq: rrule.YEARLY, Bymonth: []int{2, 8}, Bymonthday: []int{13, 29}},
		},
		{
			name: "first and third tuesday of the month",
			cfg:  Config{OrdinalWeekdaysInMonth: map[int]Value{1: Name("tue"), 3: Name("tue")}},
			opt:  rrule.ROption{Freq: rrule.MONTHLY, Byweekday: []rrule.Weekday{rrule.TU.Nth(1), rrule.TU.Nth(3)}},
		},
		{
			name: "fifth friday of the month",
			cfg:  Config{OrdinalWeekdaysInMonth: map[int]Value{5: Name("fri")}},
			opt:  rrule.ROption{Freq: rrule.MONTHLY, Byweekday: []rrule.Weekday{rrule.FR.Nth(5)}},
		},
		{
			name: "second monday and second thursday of the year",
			cfg:  Config{OrdinalWeekdaysInYear: map[int]Value{2: Names("mon", "thu")}},
			opt:  rrule.ROption{Freq: rrule.YEARLY, Byweekday: []rrule.Weekday{rrule.MO.Nth(2), rrule.TH.Nth(2)}},
		},
		{
			name: "weekends in december",
			cfg:  Config{MonthsInYear: Name("december"), Weekdays: Ints(6, 7)},
			opt:  rrule.ROption{Freq: rrule.DAILY, Bymonth: []int{12}, Byweekday: []rrule.Weekday{rrule.SA, rrule.SU}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.cfg)
			require.NoError(t, err)
			assertAgreesWithRRule(t, r, tt.opt, from, to)
		})
	}
}
