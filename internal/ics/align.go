package ics

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/zapponejosh/ordinarium/internal/calendar"
)

// AlignOptions bounds an alignment run.
type AlignOptions struct {
	From   time.Time // first candidate Sunday (inclusive)
	To     time.Time // last candidate Sunday (inclusive)
	Sample int       // Sundays to check; 0 checks every usable Sunday
	Seed   uint64    // shuffle seed, so a run can be repeated
}

// Check is the comparison made for one Sunday.
type Check struct {
	Date           time.Time       `json:"date"`
	Summary        string          `json:"summary"`
	Expected       string          `json:"expected"`
	Options        []string        `json:"options"`
	ExpectedSeason calendar.Season `json:"expected_season"`
	Season         calendar.Season `json:"season"`
	TitleMatch     bool            `json:"title_match"`
	SeasonMatch    bool            `json:"season_match"`
}

// OK reports whether both title and season agree with the reference.
func (c Check) OK() bool {
	return c.TitleMatch && c.SeasonMatch
}

func (c Check) String() string {
	status := "ok"
	switch {
	case !c.TitleMatch:
		status = "title mismatch"
	case !c.SeasonMatch:
		status = "season mismatch"
	}
	return fmt.Sprintf("%s %s: reference=%q local=%v season=%q/%q",
		calendar.FormatDate(c.Date), status, c.Summary, c.Options, c.ExpectedSeason, c.Season)
}

// Report summarizes an alignment run.
type Report struct {
	Checks []Check `json:"checks"`
	Failed int     `json:"failed"`
}

// Checked returns how many Sundays were compared.
func (r Report) Checked() int {
	return len(r.Checks)
}

// Align compares the local resolution of sampled Sundays against the
// reference calendar. A Sunday is usable when the reference has a Sunday
// entry for it whose season can be inferred and the resolver has at least
// one option for it. The title check passes when the normalized expected
// title equals the normalized title of any option.
func Align(ctx context.Context, r Resolver, events []ReferenceEvent, opts AlignOptions) Report {
	byDate := make(map[time.Time][]ReferenceEvent)
	for _, ev := range events {
		byDate[ev.Date] = append(byDate[ev.Date], ev)
	}

	candidates := Sundays(opts.From, opts.To)
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	var report Report
	for _, date := range candidates {
		if opts.Sample > 0 && report.Checked() >= opts.Sample {
			break
		}

		summary := sundaySummary(byDate[date])
		if summary == "" {
			continue
		}
		expectedSeason := InferSeason(summary)
		if expectedSeason == calendar.SeasonNone {
			continue
		}
		options := r.Options(ctx, date)
		if len(options) == 0 {
			continue
		}

		check := Check{
			Date:           date,
			Summary:        summary,
			Expected:       ExpectedTitle(summary),
			ExpectedSeason: expectedSeason,
			Season:         calendar.ResolveSeason(date),
		}
		want := NormalizeTitle(check.Expected)
		for _, o := range options {
			check.Options = append(check.Options, o.Title())
			if NormalizeTitle(o.Title()) == want {
				check.TitleMatch = true
			}
		}
		check.SeasonMatch = check.Season == expectedSeason
		if !check.OK() {
			report.Failed++
		}
		report.Checks = append(report.Checks, check)
	}
	return report
}

// sundaySummary picks the first event that names a Sunday or Pentecost.
func sundaySummary(events []ReferenceEvent) string {
	for _, ev := range events {
		lower := strings.ToLower(ev.Summary)
		if strings.Contains(lower, "sunday") || strings.HasPrefix(lower, "pentecost") {
			return ev.Summary
		}
	}
	return ""
}

var (
	parenthetical  = regexp.MustCompile(`\([^)]*\)`)
	nonAlnum       = regexp.MustCompile(`[^a-z0-9]+`)
	pentecostCount = regexp.MustCompile(`pentecost\s*(\d+)`)
)

var titleStopWords = map[string]bool{
	"the": true, "of": true, "in": true, "after": true, "sunday": true,
	"day": true, "optional": true, "or": true, "year": true, "and": true,
}

// NormalizeTitle reduces a title to its distinguishing words so that
// "The First Sunday in Advent" and "Advent 1 (First Sunday)" style variants
// can be compared. Parentheticals, apostrophes, punctuation, numbers and
// common filler words are removed.
func NormalizeTitle(title string) string {
	title = parenthetical.ReplaceAllString(title, "")
	title = strings.ToLower(title)
	title = strings.NewReplacer("'", "", "’", "").Replace(title)
	title = nonAlnum.ReplaceAllString(title, " ")

	var kept []string
	for _, tok := range strings.Fields(title) {
		if titleStopWords[tok] || isDigits(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

func isDigits(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

var ordinalWords = []string{
	"", "first", "second", "third", "fourth", "fifth", "sixth", "seventh",
	"eighth", "ninth", "tenth", "eleventh", "twelfth", "thirteenth",
	"fourteenth", "fifteenth", "sixteenth", "seventeenth", "eighteenth",
	"nineteenth", "twentieth", "twenty first", "twenty second",
	"twenty third", "twenty fourth", "twenty fifth", "twenty sixth",
	"twenty seventh",
}

// ExpectedTitle maps a reference summary onto the observance title used
// locally. Summaries with no special form are returned unchanged.
func ExpectedTitle(summary string) string {
	summary = strings.TrimSpace(summary)
	lower := strings.ToLower(summary)

	if strings.Contains(lower, "sunday after ascension") {
		return "The Seventh Sunday of Easter"
	}
	if lower == "pentecost" {
		return "The Day of Pentecost"
	}
	if m := pentecostCount.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 && n < len(ordinalWords) {
			return fmt.Sprintf("The %s Sunday After Pentecost", ordinalWords[n])
		}
	}
	return summary
}

// InferSeason guesses the season a reference summary belongs to, or
// SeasonNone when the summary gives no clue.
func InferSeason(summary string) calendar.Season {
	lower := strings.ToLower(strings.TrimSpace(summary))

	switch {
	case strings.Contains(lower, "advent"):
		return calendar.SeasonAdvent
	case strings.Contains(lower, "christmas"):
		return calendar.SeasonChristmastide
	case strings.Contains(lower, "epiphany"):
		return calendar.SeasonEpiphanytide
	case strings.Contains(lower, "lent"):
		return calendar.SeasonLent
	case strings.Contains(lower, "palm sunday"), strings.Contains(lower, "holy week"):
		return calendar.SeasonHolyWeek
	case lower == "pentecost":
		return calendar.SeasonPentecost
	case strings.Contains(lower, "trinity sunday"):
		return calendar.SeasonTrinitySunday
	case strings.Contains(lower, "christ the king"), strings.Contains(lower, "last sunday after pentecost"):
		return calendar.SeasonChristTheKing
	case strings.Contains(lower, "after pentecost"), strings.HasPrefix(lower, "pentecost "):
		return calendar.SeasonOrdinaryTime
	case lower == "ascension":
		return calendar.SeasonAscension
	case strings.Contains(lower, "ascension"), strings.Contains(lower, "easter"):
		return calendar.SeasonEaster
	}
	return calendar.SeasonNone
}
