// Package ics renders resolved observances as iCalendar feeds and checks
// them against a published reference calendar.
package ics

import (
	"context"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/zapponejosh/ordinarium/internal/calendar"
	"github.com/zapponejosh/ordinarium/internal/observance"
)

// ProductID identifies feeds produced by this package.
const ProductID = "-//ordinarium//Liturgical Calendar//EN"

// Resolver is the subset of observance.Resolver used by this package.
type Resolver interface {
	Options(ctx context.Context, date time.Time) []observance.Observance
	Resolve(ctx context.Context, date time.Time, handle string) *observance.Observance
}

// Day is one calendar day that has an observance.
type Day struct {
	Date       time.Time
	Season     calendar.Season
	Observance observance.Observance
}

// Year resolves every day of year and returns those with an observance,
// in date order.
func Year(ctx context.Context, r Resolver, year int) []Day {
	var days []Day
	for _, date := range calendar.DaysInYear(year) {
		o := r.Resolve(ctx, date, "")
		if o == nil {
			continue
		}
		days = append(days, Day{
			Date:       date,
			Season:     calendar.ResolveSeason(date),
			Observance: *o,
		})
	}
	return days
}

// Export builds an all-day event for the primary observance of every day
// of year that has one.
//
// stamp becomes every event's DTSTAMP; pass the load time of the tables so
// the same tables always yield the same feed. A zero stamp falls back to
// January 1 of year.
func Export(ctx context.Context, r Resolver, year int, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetMethod(ical.MethodPublish)
	cal.SetCalscale("GREGORIAN")
	cal.SetXWRCalName(fmt.Sprintf("Liturgical Calendar %d", year))

	if stamp.IsZero() {
		stamp = calendar.Date(year, time.January, 1)
	}
	stamp = stamp.UTC().Truncate(time.Second)

	for _, day := range Year(ctx, r, year) {
		o := day.Observance
		ev := cal.AddEvent(eventUID(day.Date, o.Handle))
		ev.SetDtStampTime(stamp)
		ev.SetAllDayStartAt(day.Date)
		ev.SetAllDayEndAt(day.Date.AddDate(0, 0, 1))
		ev.SetSummary(o.Title())
		ev.SetTimeTransparency(ical.TransparencyTransparent)
		if day.Season != calendar.SeasonNone {
			ev.AddCategory(day.Season.String())
		}
		ev.SetDescription(describe(o))
	}
	return cal
}

func eventUID(date time.Time, handle string) string {
	return fmt.Sprintf("%s-%s@ordinarium", date.Format("20060102"), strings.ReplaceAll(handle, " ", "-"))
}

func describe(o observance.Observance) string {
	var b strings.Builder
	if o.Subcycle != "" {
		fmt.Fprintf(&b, "Cycle: %s\n", o.Subcycle)
	}
	if propers := o.Propers(); len(propers) > 0 {
		fmt.Fprintf(&b, "Propers: %s\n", strings.Join(propers, ", "))
	}
	return strings.TrimSuffix(b.String(), "\n")
}
