// Package calendar provides liturgical calendar calculations: movable feasts,
// season classification and the date-rule language used by observance tables.
package calendar

import (
	"time"
)

// Date returns midnight UTC for the given calendar day. All dates produced by
// this package are normalized this way so they can be compared with Equal.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Day strips the clock and location from t, keeping its calendar day.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return Date(t.Year(), t.Month(), t.Day())
}

// EasterDate calculates the date of Easter Sunday for a given year
// using the anonymous Gregorian computus (Meeus/Jones/Butcher).
//
// Only integer arithmetic is used. The result is valid for every year of the
// proleptic Gregorian calendar from 1583 onward.
func EasterDate(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return Date(year, time.Month(month), day)
}

// AdventStart calculates the first Sunday of Advent: the first Sunday on or
// after November 27 of the given year.
func AdventStart(year int) time.Time {
	nov27 := Date(year, time.November, 27)
	return NextWeekday(nov27, time.Sunday)
}

// NextWeekday advances t by zero to six days so that it lands on wd.
// A date already on wd is returned unchanged.
func NextWeekday(t time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, days)
}

// KeyDates holds the movable and anchor dates of one calendar year.
type KeyDates struct {
	Year           int       `json:"year"`
	AshWednesday   time.Time `json:"ash_wednesday"`
	PalmSunday     time.Time `json:"palm_sunday"`
	MaundyThursday time.Time `json:"maundy_thursday"`
	GoodFriday     time.Time `json:"good_friday"`
	Easter         time.Time `json:"easter"`
	Ascension      time.Time `json:"ascension"`
	Pentecost      time.Time `json:"pentecost"`
	TrinitySunday  time.Time `json:"trinity_sunday"`
	ChristTheKing  time.Time `json:"christ_the_king"`
	AdventStart    time.Time `json:"advent_start"`
}

// CalculateKeyDates derives every season boundary for a year from Easter
// and the start of Advent.
//
// Ash Wednesday is 46 days before Easter (40 days of Lent + 6 Sundays),
// Ascension 39 days after, Pentecost 49 and Trinity Sunday 56. Christ the
// King is the Sunday before Advent.
func CalculateKeyDates(year int) KeyDates {
	easter := EasterDate(year)
	advent := AdventStart(year)

	return KeyDates{
		Year:           year,
		AshWednesday:   easter.AddDate(0, 0, -46),
		PalmSunday:     easter.AddDate(0, 0, -7),
		MaundyThursday: easter.AddDate(0, 0, -3),
		GoodFriday:     easter.AddDate(0, 0, -2),
		Easter:         easter,
		Ascension:      easter.AddDate(0, 0, 39),
		Pentecost:      easter.AddDate(0, 0, 49),
		TrinitySunday:  easter.AddDate(0, 0, 56),
		ChristTheKing:  advent.AddDate(0, 0, -7),
		AdventStart:    advent,
	}
}
