package ics

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/zapponejosh/ordinarium/internal/calendar"
)

// Sundays lists every Sunday in [from, to], both ends inclusive.
func Sundays(from, to time.Time) []time.Time {
	from, to = calendar.Day(from), calendar.Day(to)
	if from.IsZero() || to.Before(from) {
		return nil
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rrule.SU},
		Dtstart:   from,
		Until:     to,
	})
	if err != nil {
		return nil
	}

	out := r.All()
	for i := range out {
		out[i] = calendar.Day(out[i])
	}
	return out
}

// YearSundays lists every Sunday of the calendar year.
func YearSundays(year int) []time.Time {
	return Sundays(calendar.Date(year, time.January, 1), calendar.Date(year, time.December, 31))
}
