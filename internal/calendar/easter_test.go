package calendar

import (
	"testing"
	"time"
)

func TestEasterDate_KnownYears(t *testing.T) {
	tests := []struct {
		year int
		want time.Time
	}{
		{1583, Date(1583, time.April, 10)},
		{1818, Date(1818, time.March, 22)},
		{1943, Date(1943, time.April, 25)},
		{2000, Date(2000, time.April, 23)},
		{2019, Date(2019, time.April, 21)},
		{2024, Date(2024, time.March, 31)},
		{2025, Date(2025, time.April, 20)},
		{2026, Date(2026, time.April, 5)},
		{2038, Date(2038, time.April, 25)},
		{2285, Date(2285, time.March, 22)},
	}

	for _, tt := range tests {
		if got := EasterDate(tt.year); !got.Equal(tt.want) {
			t.Errorf("EasterDate(%d) = %s, want %s", tt.year, FormatDate(got), FormatDate(tt.want))
		}
	}
}

func TestEasterDate_AlwaysSundayInRange(t *testing.T) {
	for year := 1900; year <= 2400; year++ {
		easter := EasterDate(year)

		if easter.Weekday() != time.Sunday {
			t.Errorf("EasterDate(%d) = %s is a %s", year, FormatDate(easter), easter.Weekday())
		}

		earliest := Date(year, time.March, 22)
		latest := Date(year, time.April, 25)
		if easter.Before(earliest) || easter.After(latest) {
			t.Errorf("EasterDate(%d) = %s outside March 22 - April 25", year, FormatDate(easter))
		}
	}
}

func TestAdventStart(t *testing.T) {
	tests := []struct {
		year int
		want time.Time
	}{
		{2022, Date(2022, time.November, 27)}, // Nov 27 is itself a Sunday
		{2023, Date(2023, time.December, 3)},
		{2024, Date(2024, time.December, 1)}, // Nov 27 is a Wednesday
		{2025, Date(2025, time.November, 30)},
	}

	for _, tt := range tests {
		got := AdventStart(tt.year)
		if !got.Equal(tt.want) {
			t.Errorf("AdventStart(%d) = %s, want %s", tt.year, FormatDate(got), FormatDate(tt.want))
		}
		if got.Weekday() != time.Sunday {
			t.Errorf("AdventStart(%d) is a %s", tt.year, got.Weekday())
		}
	}
}

func TestNextWeekday(t *testing.T) {
	wed := Date(2024, time.November, 27)

	if got := NextWeekday(wed, time.Wednesday); !got.Equal(wed) {
		t.Errorf("NextWeekday(Wed, Wednesday) = %s, want same day", FormatDate(got))
	}
	if got := NextWeekday(wed, time.Sunday); !got.Equal(Date(2024, time.December, 1)) {
		t.Errorf("NextWeekday(Wed, Sunday) = %s, want 2024-12-01", FormatDate(got))
	}
	if got := NextWeekday(wed, time.Tuesday); !got.Equal(Date(2024, time.December, 3)) {
		t.Errorf("NextWeekday(Wed, Tuesday) = %s, want 2024-12-03", FormatDate(got))
	}
}

func TestCalculateKeyDates_2024(t *testing.T) {
	kd := CalculateKeyDates(2024)

	checks := []struct {
		name string
		got  time.Time
		want string
	}{
		{"AshWednesday", kd.AshWednesday, "2024-02-14"},
		{"PalmSunday", kd.PalmSunday, "2024-03-24"},
		{"MaundyThursday", kd.MaundyThursday, "2024-03-28"},
		{"GoodFriday", kd.GoodFriday, "2024-03-29"},
		{"Easter", kd.Easter, "2024-03-31"},
		{"Ascension", kd.Ascension, "2024-05-09"},
		{"Pentecost", kd.Pentecost, "2024-05-19"},
		{"TrinitySunday", kd.TrinitySunday, "2024-05-26"},
		{"ChristTheKing", kd.ChristTheKing, "2024-11-24"},
		{"AdventStart", kd.AdventStart, "2024-12-01"},
	}

	for _, c := range checks {
		if FormatDate(c.got) != c.want {
			t.Errorf("%s = %s, want %s", c.name, FormatDate(c.got), c.want)
		}
	}
}

func TestDay_StripsClockAndZone(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	in := time.Date(2024, time.March, 31, 23, 30, 0, 0, loc)

	got := Day(in)
	if !got.Equal(Date(2024, time.March, 31)) {
		t.Errorf("Day() = %v, want 2024-03-31 UTC", got)
	}
	if !Day(time.Time{}).IsZero() {
		t.Error("Day(zero) should stay zero")
	}
}
