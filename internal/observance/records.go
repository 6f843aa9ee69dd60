// Package observance resolves the feast, season or Sunday that governs a
// service date and assembles the proper texts attached to it.
//
// Tables of observances, fragments and subcycles are read from a Source
// (flat files or a database), normalized once, cached, and treated as
// read-only afterwards.
package observance

import (
	"context"
	"strconv"
	"strings"

	"github.com/zapponejosh/ordinarium/internal/calendar"
)

// Table names a raw record table exposed by a Source.
type Table string

const (
	TableObservances Table = "observances"
	TableFragments   Table = "fragments"
	TableSubcycles   Table = "subcycles"
)

// AllTables returns every table a Source is expected to serve.
func AllTables() []Table {
	return []Table{TableObservances, TableFragments, TableSubcycles}
}

// Row is one raw record keyed by normalized field name. Values are the
// untyped strings found in the backing store.
type Row map[string]string

// Get returns the first non-empty value among keys, trimmed.
func (r Row) Get(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r[k]); v != "" {
			return v
		}
	}
	return ""
}

// Source lists the raw rows of a table, in table order. A table that does
// not exist yields no rows and no error.
type Source interface {
	Rows(ctx context.Context, table Table) ([]Row, error)
}

// Field names shared by all sources.
const (
	FieldHandle          = "handle"
	FieldDateRule        = "date_rule"
	FieldDate            = "date" // accepted alias of date_rule
	FieldStyle           = "style"
	FieldPriority        = "priority"
	FieldPropers         = "propers"
	FieldName            = "name"
	FieldAlternativeName = "alternative_name"
	FieldBehaviour       = "behaviour"
	FieldEpoch           = "epoch"
	FieldOrder           = "order"
	FieldFullCycle       = "full_cycle"
)

const (
	// DefaultPriority is assigned to observances without a usable priority.
	// Lower values win, so this sorts after every explicit priority.
	DefaultPriority = 99

	// DefaultFullCycle is the cycle length of a subcycle row without one.
	DefaultFullCycle = 1

	// StyleSunday marks observances that take fragment propers.
	StyleSunday = "Sunday"

	// BehaviourAppend is the only fragment behaviour with an effect.
	BehaviourAppend = "Append"
)

// ObservanceRecord is a normalized row of the observance table.
type ObservanceRecord struct {
	Index           int
	Handle          string
	Name            string
	AlternativeName string
	Rule            calendar.Rule
	Style           string
	Priority        int
	Propers         []string
}

// Title returns the display name, falling back to the alternative name.
func (r ObservanceRecord) Title() string {
	if r.Name != "" {
		return r.Name
	}
	return r.AlternativeName
}

// IsSunday reports whether the record takes fragment propers.
func (r ObservanceRecord) IsSunday() bool {
	return strings.EqualFold(strings.TrimSpace(r.Style), StyleSunday)
}

// FragmentRecord contributes extra propers to the observance on the same date.
type FragmentRecord struct {
	Index     int
	Rule      calendar.Rule
	Behaviour string
	Propers   []string
}

// Appends reports whether the fragment's behaviour is Append.
// Any other behaviour is inert.
func (f FragmentRecord) Appends() bool {
	return strings.TrimSpace(f.Behaviour) == BehaviourAppend
}

// SubcycleRecord places one year of a rotating lectionary cycle.
type SubcycleRecord struct {
	Handle    string
	Epoch     int
	Order     int
	FullCycle int
}

// ParsePropers splits a comma-separated proper list. Tokens are trimmed;
// empty tokens and the "_" placeholder are dropped.
func ParsePropers(raw string) []string {
	var out []string
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" || tok == "_" {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// dedupe returns propers without repeats, keeping first occurrences.
func dedupe(propers []string) []string {
	seen := make(map[string]bool, len(propers))
	out := make([]string, 0, len(propers))
	for _, p := range propers {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// parseInt reads an integer field, returning def when it is missing or
// unparseable. Values like "3.0" written by spreadsheet exports are accepted.
func parseInt(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == float64(int(f)) {
		return int(f)
	}
	return def
}
