package calendar

import "time"

// LiturgicalYear returns the liturgical year that contains the given date.
//
// The liturgical year begins on the first Sunday of Advent, so dates on or
// after that Sunday belong to the following calendar year's reckoning:
//   - November 30, 2024 (before Advent 2024): 2024
//   - December 1, 2024 (Advent I): 2025
//   - March 15, 2025: 2025
func LiturgicalYear(date time.Time) int {
	date = Day(date)
	year := date.Year()

	if !date.Before(AdventStart(year)) {
		return year + 1
	}
	return year
}

// CycleIndex returns the zero-based position of a liturgical year within a
// rotating reading cycle of the given length anchored at epoch.
// A non-positive length is treated as a cycle of one year.
func CycleIndex(liturgicalYear, epoch, length int) int {
	if length <= 0 {
		length = 1
	}
	idx := (liturgicalYear - epoch) % length
	if idx < 0 {
		idx += length
	}
	return idx
}
