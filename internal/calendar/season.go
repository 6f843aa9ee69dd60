package calendar

import "time"

// Season is a liturgical season or a named one-day observance that the
// season classifier reports in place of a season.
type Season string

const (
	SeasonNone           Season = ""
	SeasonChristmastide  Season = "Christmastide"
	SeasonChristTheKing  Season = "Christ the King"
	SeasonAdvent         Season = "Advent"
	SeasonEpiphanytide   Season = "Epiphanytide"
	SeasonMaundyThursday Season = "Maundy Thursday"
	SeasonHolyWeek       Season = "Holy Week"
	SeasonAscension      Season = "Ascension"
	SeasonPentecost      Season = "Pentecost"
	SeasonTrinitySunday  Season = "Trinity Sunday"
	SeasonEaster         Season = "Easter"
	SeasonLent           Season = "Lent"
	SeasonOrdinaryTime   Season = "Ordinary Time"
)

// Seasons returns every season the classifier can produce, in precedence order.
func Seasons() []Season {
	return []Season{
		SeasonChristmastide,
		SeasonChristTheKing,
		SeasonAdvent,
		SeasonEpiphanytide,
		SeasonMaundyThursday,
		SeasonHolyWeek,
		SeasonAscension,
		SeasonPentecost,
		SeasonTrinitySunday,
		SeasonEaster,
		SeasonLent,
		SeasonOrdinaryTime,
	}
}

// String implements fmt.Stringer.
func (s Season) String() string {
	return string(s)
}

// ResolveSeason classifies a date into exactly one season.
// A zero date yields SeasonNone.
//
// Ranges overlap at their boundaries, so the checks below run in a fixed
// order and the first match wins. Easter Day falls through Holy Week
// (which ends the day before) and lands in Easter.
func ResolveSeason(date time.Time) Season {
	if date.IsZero() {
		return SeasonNone
	}
	date = Day(date)
	year := date.Year()
	kd := CalculateKeyDates(year)

	month, day := date.Month(), date.Day()

	switch {
	case month == time.December && day >= 25:
		return SeasonChristmastide
	case month == time.January && day <= 5:
		return SeasonChristmastide
	case date.Equal(kd.ChristTheKing):
		return SeasonChristTheKing
	case within(date, kd.AdventStart, Date(year, time.December, 25)):
		return SeasonAdvent
	case within(date, Date(year, time.January, 6), kd.AshWednesday):
		return SeasonEpiphanytide
	case date.Equal(kd.MaundyThursday):
		return SeasonMaundyThursday
	case within(date, kd.PalmSunday, kd.Easter):
		return SeasonHolyWeek
	case date.Equal(kd.Ascension):
		return SeasonAscension
	case date.Equal(kd.Pentecost):
		return SeasonPentecost
	case date.Equal(kd.TrinitySunday):
		return SeasonTrinitySunday
	case within(date, kd.Easter, kd.Pentecost):
		return SeasonEaster
	case within(date, kd.AshWednesday, kd.PalmSunday):
		return SeasonLent
	}

	return SeasonOrdinaryTime
}

// within reports whether start <= date < end.
func within(date, start, end time.Time) bool {
	return !date.Before(start) && date.Before(end)
}
