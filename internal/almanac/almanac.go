// Package almanac summarizes a year: its movable dates and the observance,
// season and reading cycle of every Sunday.
package almanac

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/zapponejosh/ordinarium/internal/calendar"
	"github.com/zapponejosh/ordinarium/internal/ics"
	"github.com/zapponejosh/ordinarium/internal/observance"
)

// Resolver is the subset of observance.Resolver the almanac needs.
type Resolver interface {
	Resolve(ctx context.Context, date time.Time, handle string) *observance.Observance
	Subcycle(ctx context.Context, date time.Time) string
}

// Sunday is one row of the almanac.
type Sunday struct {
	Date     string          `json:"date"`
	Title    *string         `json:"title"`
	Handle   *string         `json:"handle"`
	Season   calendar.Season `json:"season"`
	Subcycle *string         `json:"subcycle"`
}

// Almanac is the summary of one calendar year.
type Almanac struct {
	Year     int               `json:"year"`
	KeyDates calendar.KeyDates `json:"key_dates"`
	Sundays  []Sunday          `json:"sundays"`
}

// Build resolves every Sunday of year.
func Build(ctx context.Context, r Resolver, year int) Almanac {
	a := Almanac{
		Year:     year,
		KeyDates: calendar.CalculateKeyDates(year),
	}

	for _, date := range ics.YearSundays(year) {
		s := Sunday{
			Date:     calendar.FormatDate(date),
			Season:   calendar.ResolveSeason(date),
			Subcycle: optional(r.Subcycle(ctx, date)),
		}
		if o := r.Resolve(ctx, date, ""); o != nil {
			s.Title = optional(o.Title())
			s.Handle = optional(o.Handle)
		}
		a.Sundays = append(a.Sundays, s)
	}
	return a
}

// Write prints the almanac as aligned text.
func (a Almanac) Write(w io.Writer) error {
	kd := a.KeyDates
	fmt.Fprintf(w, "=== Liturgical Almanac for %d ===\n\n", a.Year)
	fmt.Fprintln(w, "Key Dates:")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range []struct {
		label string
		date  time.Time
	}{
		{"Ash Wednesday", kd.AshWednesday},
		{"Palm Sunday", kd.PalmSunday},
		{"Maundy Thursday", kd.MaundyThursday},
		{"Good Friday", kd.GoodFriday},
		{"Easter", kd.Easter},
		{"Ascension", kd.Ascension},
		{"Pentecost", kd.Pentecost},
		{"Trinity Sunday", kd.TrinitySunday},
		{"Christ the King", kd.ChristTheKing},
		{"Advent Start", kd.AdventStart},
	} {
		fmt.Fprintf(tw, "  %s:\t%s\t%s\n", row.label, calendar.FormatDate(row.date), calendar.DayName(row.date))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sundays:")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, s := range a.Sundays {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", s.Date, s.Season, deref(s.Subcycle), deref(s.Title))
	}
	return tw.Flush()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
