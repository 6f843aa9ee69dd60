package calendar

import (
	"testing"
	"time"
)

func TestLiturgicalYear(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want int
	}{
		{"before Advent 2024", Date(2024, time.November, 30), 2024},
		{"Advent I 2024", Date(2024, time.December, 1), 2025},
		{"Christmas 2024", Date(2024, time.December, 25), 2025},
		{"spring 2025", Date(2025, time.March, 15), 2025},
		{"Advent I 2025", Date(2025, time.November, 30), 2026},
		{"New Year 2026", Date(2026, time.January, 1), 2026},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LiturgicalYear(tt.date); got != tt.want {
				t.Errorf("LiturgicalYear(%s) = %d, want %d", FormatDate(tt.date), got, tt.want)
			}
		})
	}
}

func TestCycleIndex(t *testing.T) {
	tests := []struct {
		year, epoch, length int
		want                int
	}{
		{2023, 2023, 3, 0},
		{2025, 2023, 3, 2},
		{2026, 2023, 3, 0},
		{2021, 2023, 3, 1}, // before the epoch wraps backwards
		{2020, 2023, 3, 0},
		{2025, 2024, 2, 1},
		{2025, 2024, 0, 0}, // non-positive length acts as a one-year cycle
	}

	for _, tt := range tests {
		if got := CycleIndex(tt.year, tt.epoch, tt.length); got != tt.want {
			t.Errorf("CycleIndex(%d, %d, %d) = %d, want %d", tt.year, tt.epoch, tt.length, got, tt.want)
		}
	}
}

func TestOrdinal(t *testing.T) {
	tests := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 22: "22nd", 103: "103rd"}
	for n, want := range tests {
		if got := Ordinal(n); got != want {
			t.Errorf("Ordinal(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestDaysInYear(t *testing.T) {
	if got := len(DaysInYear(2024)); got != 366 {
		t.Errorf("len(DaysInYear(2024)) = %d, want 366", got)
	}
	if got := len(DaysInYear(2025)); got != 365 {
		t.Errorf("len(DaysInYear(2025)) = %d, want 365", got)
	}
}
