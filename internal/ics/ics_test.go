package ics

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/zapponejosh/ordinarium/internal/calendar"
	"github.com/zapponejosh/ordinarium/internal/observance"
)

type staticSource map[observance.Table][]observance.Row

func (s staticSource) Rows(_ context.Context, table observance.Table) ([]observance.Row, error) {
	return s[table], nil
}

func testResolver(t *testing.T) *observance.Resolver {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	src := staticSource{
		observance.TableObservances: {
			{"handle": "AdventI", "date_rule": "11/27→Sun", "style": "Sunday", "priority": "1",
				"propers": "CollectAdventI", "name": "The First Sunday in Advent"},
			{"handle": "Christmas", "date_rule": "12/25", "priority": "1",
				"propers": "CollectChristmas", "name": "The Nativity of Our Lord"},
			{"handle": "HolyFamily", "date_rule": "12/29", "priority": "1", "name": "The Holy Family"},
		},
		observance.TableSubcycles: {
			{"handle": "Year C", "epoch": "2025", "order": "0", "full_cycle": "1"},
		},
	}
	return observance.NewResolver(observance.NewCache(src, logger), logger)
}

func dates(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = calendar.FormatDate(t)
	}
	return out
}

// -----------------------------------------------------------------
// Sundays
// -----------------------------------------------------------------

func TestSundays(t *testing.T) {
	tests := []struct {
		name      string
		from, to  time.Time
		wantCount int
		wantFirst string
	}{
		{"december 2024", calendar.Date(2024, 12, 1), calendar.Date(2024, 12, 31), 5, "2024-12-01"},
		{"starts on monday", calendar.Date(2024, 12, 2), calendar.Date(2024, 12, 31), 4, "2024-12-08"},
		{"single sunday", calendar.Date(2024, 12, 1), calendar.Date(2024, 12, 1), 1, "2024-12-01"},
		{"no sunday", calendar.Date(2024, 12, 2), calendar.Date(2024, 12, 7), 0, ""},
		{"reversed", calendar.Date(2024, 12, 31), calendar.Date(2024, 12, 1), 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sundays(tt.from, tt.to)
			if len(got) != tt.wantCount {
				t.Fatalf("Sundays() = %v, want %d dates", dates(got), tt.wantCount)
			}
			for _, d := range got {
				if d.Weekday() != time.Sunday {
					t.Errorf("%s is a %s", calendar.FormatDate(d), d.Weekday())
				}
			}
			if tt.wantCount > 0 && calendar.FormatDate(got[0]) != tt.wantFirst {
				t.Errorf("first Sunday = %s, want %s", calendar.FormatDate(got[0]), tt.wantFirst)
			}
		})
	}
}

func TestYearSundays(t *testing.T) {
	if got := len(YearSundays(2023)); got != 53 {
		t.Errorf("len(YearSundays(2023)) = %d, want 53", got)
	}
	if got := len(YearSundays(2024)); got != 52 {
		t.Errorf("len(YearSundays(2024)) = %d, want 52", got)
	}
}

// -----------------------------------------------------------------
// Export
// -----------------------------------------------------------------

func TestYear(t *testing.T) {
	days := Year(context.Background(), testResolver(t), 2024)

	got := make([]string, len(days))
	for i, d := range days {
		got[i] = calendar.FormatDate(d.Date) + " " + d.Observance.Handle
	}
	want := []string{"2024-12-01 AdventI", "2024-12-25 Christmas", "2024-12-29 HolyFamily"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Year() = %v, want %v", got, want)
	}
	if days[0].Season != calendar.SeasonAdvent {
		t.Errorf("Advent I season = %q", days[0].Season)
	}
}

func TestExport(t *testing.T) {
	out := Export(context.Background(), testResolver(t), 2024, time.Time{}).Serialize()

	if n := strings.Count(out, "BEGIN:VEVENT"); n != 3 {
		t.Errorf("exported %d events, want 3", n)
	}
	for _, want := range []string{
		"SUMMARY:The First Sunday in Advent",
		"DTSTART;VALUE=DATE:20241201",
		"DTEND;VALUE=DATE:20241202",
		"UID:20241225-Christmas@ordinarium",
		"CATEGORIES:Christmastide",
		ProductID,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q", want)
		}
	}
}

func TestExport_SameTablesSameFeed(t *testing.T) {
	ctx := context.Background()
	r := testResolver(t)
	loaded := time.Date(2024, time.June, 1, 9, 30, 15, 500, time.UTC)

	first := Export(ctx, r, 2024, loaded).Serialize()
	second := Export(ctx, r, 2024, loaded).Serialize()
	if first != second {
		t.Errorf("two exports of the same tables differ:\n%s\n---\n%s", first, second)
	}
	if !strings.Contains(first, "DTSTAMP:20240601T093015Z") {
		t.Errorf("export does not carry the load time as DTSTAMP:\n%s", first)
	}

	fallback := Export(ctx, r, 2024, time.Time{}).Serialize()
	if !strings.Contains(fallback, "DTSTAMP:20240101T000000Z") {
		t.Errorf("zero stamp should fall back to January 1:\n%s", fallback)
	}
}

func TestYear_CoversLeapYear(t *testing.T) {
	src := staticSource{
		observance.TableObservances: {
			{"handle": "LeapDay", "date_rule": "2/29", "name": "Leap Day"},
			{"handle": "NewYearsEve", "date_rule": "12/31", "name": "New Year's Eve"},
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := observance.NewResolver(observance.NewCache(src, logger), logger)

	days := Year(context.Background(), r, 2024)
	if len(days) != 2 {
		t.Fatalf("Year(2024) returned %d days, want 2", len(days))
	}
	if got := calendar.FormatDate(days[1].Date); got != "2024-12-31" {
		t.Errorf("last day = %s, want 2024-12-31", got)
	}
	if n := len(Year(context.Background(), r, 2023)); n != 1 {
		t.Errorf("Year(2023) returned %d days, want 1", n)
	}
}

func TestExport_RoundTripsThroughParseReference(t *testing.T) {
	out := Export(context.Background(), testResolver(t), 2024, time.Time{}).Serialize()

	events, err := ParseReference(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ParseReference() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("ParseReference() returned %d events, want 3", len(events))
	}
	if !events[0].Date.Equal(calendar.Date(2024, time.December, 1)) {
		t.Errorf("first event date = %s", calendar.FormatDate(events[0].Date))
	}
	if events[0].Summary != "The First Sunday in Advent" {
		t.Errorf("first event summary = %q", events[0].Summary)
	}
}

func TestParseReference(t *testing.T) {
	doc := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:a",
		"DTSTART;VALUE=DATE:20250608",
		"SUMMARY:Pentecost",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:b",
		"DTSTART:20250615T100000Z",
		"SUMMARY:Trinity Sunday",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:c",
		"SUMMARY:No date",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	events, err := ParseReference(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseReference() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("ParseReference() returned %d events, want 2", len(events))
	}
	if calendar.FormatDate(events[1].Date) != "2025-06-15" || events[1].Summary != "Trinity Sunday" {
		t.Errorf("timed event = %+v", events[1])
	}
}

// -----------------------------------------------------------------
// Alignment
// -----------------------------------------------------------------

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The First Sunday in Advent", "first advent"},
		{"First Sunday of Advent", "first advent"},
		{"Trinity Sunday (Year B)", "trinity"},
		{"St. Michael's Day", "st michaels"},
		{"Proper 12", "proper"},
		{"The Day of Pentecost", "pentecost"},
		{"Pentecost", "pentecost"},
		{"Palm-Sunday", "palm"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExpectedTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sunday after Ascension", "The Seventh Sunday of Easter"},
		{"Pentecost", "The Day of Pentecost"},
		{"Pentecost 5", "The fifth Sunday After Pentecost"},
		{"Pentecost 21", "The twenty first Sunday After Pentecost"},
		{"Pentecost 40", "Pentecost 40"},
		{" Advent 1 ", "Advent 1"},
	}

	for _, tt := range tests {
		if got := ExpectedTitle(tt.in); got != tt.want {
			t.Errorf("ExpectedTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInferSeason(t *testing.T) {
	tests := []struct {
		in   string
		want calendar.Season
	}{
		{"First Sunday of Advent", calendar.SeasonAdvent},
		{"First Sunday after Christmas", calendar.SeasonChristmastide},
		{"Second Sunday after Epiphany", calendar.SeasonEpiphanytide},
		{"Third Sunday in Lent", calendar.SeasonLent},
		{"Palm Sunday", calendar.SeasonHolyWeek},
		{"Pentecost", calendar.SeasonPentecost},
		{"Trinity Sunday", calendar.SeasonTrinitySunday},
		{"Christ the King", calendar.SeasonChristTheKing},
		{"Last Sunday after Pentecost", calendar.SeasonChristTheKing},
		{"Pentecost 7", calendar.SeasonOrdinaryTime},
		{"Sixth Sunday after Pentecost", calendar.SeasonOrdinaryTime},
		{"Ascension", calendar.SeasonAscension},
		{"Sunday after Ascension", calendar.SeasonEaster},
		{"Second Sunday of Easter", calendar.SeasonEaster},
		{"Proper 12", calendar.SeasonNone},
	}

	for _, tt := range tests {
		if got := InferSeason(tt.in); got != tt.want {
			t.Errorf("InferSeason(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAlign(t *testing.T) {
	events := []ReferenceEvent{
		{Date: calendar.Date(2024, 12, 1), Summary: "Parish breakfast"},
		{Date: calendar.Date(2024, 12, 1), Summary: "First Sunday of Advent"},
		{Date: calendar.Date(2024, 12, 8), Summary: "Second Sunday of Advent"}, // no local option
		{Date: calendar.Date(2024, 12, 29), Summary: "First Sunday after Christmas"},
		{Date: calendar.Date(2024, 12, 15), Summary: "Choir concert"},
	}
	opts := AlignOptions{
		From: calendar.Date(2024, 11, 1),
		To:   calendar.Date(2024, 12, 31),
		Seed: 42,
	}

	report := Align(context.Background(), testResolver(t), events, opts)
	if report.Checked() != 2 {
		t.Fatalf("Checked() = %d, want 2: %v", report.Checked(), report.Checks)
	}
	if report.Failed != 1 {
		t.Errorf("Failed = %d, want 1", report.Failed)
	}

	for _, c := range report.Checks {
		switch calendar.FormatDate(c.Date) {
		case "2024-12-01":
			if !c.OK() {
				t.Errorf("Advent I check failed: %s", c)
			}
		case "2024-12-29":
			if c.TitleMatch {
				t.Errorf("Holy Family should not match %q", c.Expected)
			}
			if !c.SeasonMatch {
				t.Errorf("Christmastide season should match: %s", c)
			}
		default:
			t.Errorf("unexpected check %s", c)
		}
	}
}

func TestAlign_Sample(t *testing.T) {
	events := []ReferenceEvent{
		{Date: calendar.Date(2024, 12, 1), Summary: "First Sunday of Advent"},
		{Date: calendar.Date(2024, 12, 29), Summary: "First Sunday after Christmas"},
	}
	opts := AlignOptions{From: calendar.Date(2024, 11, 1), To: calendar.Date(2024, 12, 31), Sample: 1}

	first := Align(context.Background(), testResolver(t), events, opts)
	second := Align(context.Background(), testResolver(t), events, opts)
	if first.Checked() != 1 {
		t.Fatalf("Checked() = %d, want 1", first.Checked())
	}
	if !first.Checks[0].Date.Equal(second.Checks[0].Date) {
		t.Error("same seed sampled different Sundays")
	}
}
