package observance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/zapponejosh/ordinarium/internal/calendar"
)

// Tables is the normalized, read-only content of a Source.
type Tables struct {
	Observances []ObservanceRecord
	Fragments   []FragmentRecord
	Subcycles   []SubcycleRecord
	LoadedAt    time.Time
}

// LoadTables reads every table from src and normalizes it.
//
// Rows that cannot describe an observance (no handle, or no name of either
// kind) are skipped with a warning. Malformed date rules are kept: their bad
// alternatives simply never match. A nil src yields empty tables.
func LoadTables(ctx context.Context, src Source, logger *slog.Logger) (*Tables, error) {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tables{LoadedAt: time.Now()}
	if src == nil {
		return t, nil
	}

	rows, err := src.Rows(ctx, TableObservances)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", TableObservances, err)
	}
	t.Observances = normalizeObservances(rows, logger)

	rows, err = src.Rows(ctx, TableFragments)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", TableFragments, err)
	}
	t.Fragments = normalizeFragments(rows, logger)

	rows, err = src.Rows(ctx, TableSubcycles)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", TableSubcycles, err)
	}
	t.Subcycles = normalizeSubcycles(rows)

	logger.Info("observance tables loaded",
		slog.Int("observances", len(t.Observances)),
		slog.Int("fragments", len(t.Fragments)),
		slog.Int("subcycles", len(t.Subcycles)),
	)

	return t, nil
}

func normalizeObservances(rows []Row, logger *slog.Logger) []ObservanceRecord {
	records := make([]ObservanceRecord, 0, len(rows))
	for i, row := range rows {
		rec := ObservanceRecord{
			Index:           i + 1,
			Handle:          row.Get(FieldHandle),
			Name:            row.Get(FieldName),
			AlternativeName: row.Get(FieldAlternativeName),
			Rule:            calendar.ParseRule(row.Get(FieldDateRule, FieldDate)),
			Style:           row.Get(FieldStyle),
			Priority:        parseInt(row.Get(FieldPriority), DefaultPriority),
			Propers:         ParsePropers(row.Get(FieldPropers)),
		}

		if rec.Handle == "" || rec.Title() == "" {
			logger.Warn("skipping observance row without handle or name",
				slog.Int("index", rec.Index),
				slog.String("handle", rec.Handle),
			)
			continue
		}
		for _, err := range rec.Rule.Errors() {
			logger.Warn("observance date rule has malformed alternative",
				slog.String("handle", rec.Handle),
				slog.Any("error", err),
			)
		}

		records = append(records, rec)
	}
	return records
}

func normalizeFragments(rows []Row, logger *slog.Logger) []FragmentRecord {
	records := make([]FragmentRecord, 0, len(rows))
	for i, row := range rows {
		rec := FragmentRecord{
			Index:     i + 1,
			Rule:      calendar.ParseRule(row.Get(FieldDateRule, FieldDate)),
			Behaviour: row.Get(FieldBehaviour),
			Propers:   ParsePropers(row.Get(FieldPropers)),
		}
		for _, err := range rec.Rule.Errors() {
			logger.Warn("fragment date rule has malformed alternative",
				slog.Int("index", rec.Index),
				slog.Any("error", err),
			)
		}
		records = append(records, rec)
	}
	return records
}

func normalizeSubcycles(rows []Row) []SubcycleRecord {
	records := make([]SubcycleRecord, 0, len(rows))
	for _, row := range rows {
		full := parseInt(row.Get(FieldFullCycle), DefaultFullCycle)
		if full <= 0 {
			full = DefaultFullCycle
		}
		records = append(records, SubcycleRecord{
			Handle:    row.Get(FieldHandle),
			Epoch:     parseInt(row.Get(FieldEpoch), 0),
			Order:     parseInt(row.Get(FieldOrder), 0),
			FullCycle: full,
		})
	}
	return records
}

// =============================================================================
// Resolution over a loaded table set
// =============================================================================

// Options returns every observance whose rule yields date, ranked by
// (priority, index). Sunday-style observances carry the propers of any
// Append fragment matching the same date after their own. The result is
// empty, never nil, when nothing matches or date is zero.
func (t *Tables) Options(date time.Time) []Observance {
	if t == nil || date.IsZero() {
		return []Observance{}
	}
	date = calendar.Day(date)

	var matched []*ObservanceRecord
	for i := range t.Observances {
		if t.Observances[i].Rule.Matches(date) {
			matched = append(matched, &t.Observances[i])
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority < matched[j].Priority
		}
		return matched[i].Index < matched[j].Index
	})

	options := make([]Observance, 0, len(matched))
	if len(matched) == 0 {
		return options
	}

	subcycle := t.Subcycle(date)
	var fragments []string
	fragmentsDone := false

	for _, rec := range matched {
		propers := append([]string(nil), rec.Propers...)
		if rec.IsSunday() {
			if !fragmentsDone {
				fragments = t.fragmentPropers(date)
				fragmentsDone = true
			}
			propers = append(propers, fragments...)
		}
		options = append(options, newObservance(rec, dedupe(propers), subcycle))
	}
	return options
}

// Resolve returns the option with the given handle when it is among the
// date's options, otherwise the top-ranked option. It returns nil when the
// date has no observance.
func (t *Tables) Resolve(date time.Time, handle string) *Observance {
	options := t.Options(date)
	if len(options) == 0 {
		return nil
	}
	if handle != "" {
		for i := range options {
			if options[i].Handle == handle {
				return &options[i]
			}
		}
	}
	return &options[0]
}

// Subcycle returns the handle of the reading-cycle year containing date.
//
// The first record's epoch and cycle length govern the whole table. When
// two records claim the same order the first one wins; that input is
// malformed and the choice is not guaranteed.
func (t *Tables) Subcycle(date time.Time) string {
	if t == nil || date.IsZero() || len(t.Subcycles) == 0 {
		return ""
	}
	first := t.Subcycles[0]
	idx := calendar.CycleIndex(calendar.LiturgicalYear(date), first.Epoch, first.FullCycle)

	for _, sc := range t.Subcycles {
		if sc.Order == idx {
			return sc.Handle
		}
	}
	return ""
}

// fragmentPropers collects, in fragment-table order, the propers of every
// Append fragment whose rule yields date.
func (t *Tables) fragmentPropers(date time.Time) []string {
	var out []string
	for _, f := range t.Fragments {
		if !f.Appends() {
			continue
		}
		if f.Rule.Matches(date) {
			out = append(out, f.Propers...)
		}
	}
	return out
}
