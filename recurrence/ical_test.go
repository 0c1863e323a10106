package recurrence

import (
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeCalendar(t *testing.T, body string) *ical.Calendar {
	t.Helper()
	body = strings.ReplaceAll(strings.TrimSpace(body), "\n", "\r\n") + "\r\n"
	cal, err := ical.NewDecoder(strings.NewReader(body)).Decode()
	require.NoError(t, err)
	return cal
}

func componentUIDs(comps []*ical.Component) []string {
	uids := make([]string, len(comps))
	for i, c := range comps {
		uids[i] = c.Props.Get(ical.PropUID).Value
	}
	return uids
}

const sampleCalendar = `
BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//daterecur//test//EN
BEGIN:VEVENT
UID:standup-0304
DTSTART;VALUE=DATE:20240304
SUMMARY:Planning
END:VEVENT
BEGIN:VEVENT
UID:standup-0305
DTSTART:20240305T090000Z
SUMMARY:Review
END:VEVENT
BEGIN:VEVENT
UID:standup-0311
DTSTART:20240311T233000
SUMMARY:Late planning
END:VEVENT
BEGIN:VTODO
UID:todo-undated
SUMMARY:Someday
END:VTODO
BEGIN:VTODO
UID:todo-due
DUE;VALUE=DATE:20240401
SUMMARY:Quarterly report
END:VTODO
END:VCALENDAR
`

func TestDateOfComponent(t *testing.T) {
	ev := ical.NewEvent()
	ev.Props.SetDateTime(ical.PropDateTimeStart, time.Date(2024, 3, 4, 23, 30, 0, 0, time.UTC))
	d, err := DateOfComponent(ev.Component)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 4), d)

	allDay := ical.NewEvent()
	allDay.Props.SetDate(ical.PropDateTimeStart, date(2024, 2, 29))
	d, err = DateOfComponent(allDay.Component)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 2, 29), d)

	todo := ical.NewComponent(ical.CompToDo)
	todo.Props.SetDate(ical.PropDue, date(2024, 4, 1))
	d, err = DateOfComponent(todo)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 4, 1), d)

	_, err = DateOfComponent(ical.NewEvent().Component)
	assert.True(t, IsType(err, ErrMalformedDate), "got %v", err)

	_, err = DateOfComponent(nil)
	assert.True(t, IsType(err, ErrMalformedDate), "got %v", err)

	broken := ical.NewEvent()
	broken.Props.SetText(ical.PropDateTimeStart, "yesterday")
	_, err = DateOfComponent(broken.Component)
	assert.True(t, IsType(err, ErrMalformedDate), "got %v", err)
}

func TestRule_MatchesComponent(t *testing.T) {
	r, err := New(Config{Weekdays: Name("mon")})
	require.NoError(t, err)

	monday := ical.NewEvent()
	monday.Props.SetDate(ical.PropDateTimeStart, date(2024, 3, 4))
	ok, err := r.MatchesComponent(monday.Component)
	require.NoError(t, err)
	assert.True(t, ok)

	tuesday := ical.NewEvent()
	tuesday.Props.SetDate(ical.PropDateTimeStart, date(2024, 3, 5))
	ok, err = r.MatchesComponent(tuesday.Component)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRule_FilterCalendar(t *testing.T) {
	cal := decodeCalendar(t, sampleCalendar)

	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{"mondays", Config{Weekdays: Name("mon")}, []string{"standup-0304", "standup-0311", "todo-due"}},
		{"first monday", Config{OrdinalWeekdaysInMonth: map[int]Value{1: Name("mon")}}, []string{"standup-0304", "todo-due"}},
		{"tuesdays", Config{Weekdays: Name("tue")}, []string{"standup-0305"}},
		{"no match", Config{MonthsInYear: Name("dec")}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.cfg)
			require.NoError(t, err)
			got, err := r.FilterCalendar(cal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, componentUIDs(got))
		})
	}
}

func TestRule_FilterCalendarBadStart(t *testing.T) {
	cal := decodeCalendar(t, `
BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//daterecur//test//EN
BEGIN:VEVENT
UID:broken
DTSTART:not-a-date
END:VEVENT
END:VCALENDAR
`)
	r, err := New(Config{})
	require.NoError(t, err)

	_, err = r.FilterCalendar(cal)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestRule_MatchingOccurrences(t *testing.T) {
	firstMonday, err := New(Config{OrdinalWeekdaysInMonth: map[int]Value{1: Name("mon")}})
	require.NoError(t, err)

	weekly := func(extra ...string) *ical.Component {
		body := "BEGIN:VCALENDAR\nVERSION:2.0\nPRODID:-//daterecur//test//EN\nBEGIN:VEVENT\nUID:weekly\n" +
			"DTSTART;VALUE=DATE:20240101\nRRULE:FREQ=WEEKLY;BYDAY=MO\n" +
			strings.Join(extra, "\n") + "\nEND:VEVENT\nEND:VCALENDAR"
		return decodeCalendar(t, strings.ReplaceAll(body, "\n\n", "\n")).Children[0]
	}

	rangeStart := date(2024, 1, 1)
	rangeEnd := date(2024, 6, 30)

	tests := []struct {
		name  string
		comp  *ical.Component
		limit int
		want  []time.Time
	}{
		{
			name: "first mondays",
			comp: weekly(),
			want: []time.Time{date(2024, 1, 1), date(2024, 2, 5), date(2024, 3, 4), date(2024, 4, 1), date(2024, 5, 6), date(2024, 6, 3)},
		},
		{
			name: "date exception removed",
			comp: weekly("EXDATE;VALUE=DATE:20240304,20240401"),
			want: []time.Time{date(2024, 1, 1), date(2024, 2, 5), date(2024, 5, 6), date(2024, 6, 3)},
		},
		{
			name: "extra dates already in the expansion are not repeated",
			comp: weekly("RDATE;VALUE=DATE:20240304,20240205,20240109"),
			want: []time.Time{date(2024, 1, 1), date(2024, 2, 5), date(2024, 3, 4), date(2024, 4, 1), date(2024, 5, 6), date(2024, 6, 3)},
		},
		{
			name: "extra date on a first monday is kept unless excepted",
			comp: decodeCalendar(t, `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//daterecur//test//EN
BEGIN:VEVENT
UID:tuesdays
DTSTART;VALUE=DATE:20240102
RRULE:FREQ=WEEKLY;BYDAY=TU
RDATE;VALUE=DATE:20240304,20240401
EXDATE;VALUE=DATE:20240401
END:VEVENT
END:VCALENDAR`).Children[0],
			want: []time.Time{date(2024, 3, 4)},
		},
		{
			name:  "limit",
			comp:  weekly(),
			limit: 2,
			want:  []time.Time{date(2024, 1, 1), date(2024, 2, 5)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := firstMonday.MatchingOccurrences(tt.comp, rangeStart, rangeEnd, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRule_MatchingOccurrencesSingleEvent(t *testing.T) {
	r, err := New(Config{Weekdays: Name("mon")})
	require.NoError(t, err)

	ev := ical.NewEvent()
	ev.Props.SetDateTime(ical.PropDateTimeStart, time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC))

	got, err := r.MatchingOccurrences(ev.Component, date(2024, 3, 1), date(2024, 3, 31), 0)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}, got)

	got, err = r.MatchingOccurrences(ev.Component, date(2024, 4, 1), date(2024, 4, 30), 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	rdate := ical.NewProp(ical.PropRecurrenceDates)
	rdate.Value = "20240312T090000Z,20240311T090000Z"
	ev.Props.Set(rdate)
	got, err = r.MatchingOccurrences(ev.Component, date(2024, 3, 1), date(2024, 3, 31), 0)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC),
	}, got)

	ev.Props.SetText(ical.PropRecurrenceRule, "FREQ=SOMETIMES")
	_, err = r.MatchingOccurrences(ev.Component, date(2024, 3, 1), date(2024, 3, 31), 0)
	assert.Error(t, err)

	_, err = r.MatchingOccurrences(ical.NewEvent().Component, date(2024, 3, 1), date(2024, 3, 31), 0)
	assert.Error(t, err)

	_, err = r.MatchingOccurrences(nil, date(2024, 3, 1), date(2024, 3, 31), 0)
	assert.True(t, IsType(err, ErrMalformedDate), "got %v", err)
}
