package observance

import (
	"encoding/json"
	"slices"
)

// Observance is the resolved value for one date. It is built fresh on every
// resolution and never modified afterwards; Propers returns a copy.
type Observance struct {
	Handle          string
	Name            string
	AlternativeName string
	Style           string
	Priority        int
	// Subcycle is the reading-cycle handle for the date, or "" if unknown.
	Subcycle string

	propers []string
}

func newObservance(rec *ObservanceRecord, propers []string, subcycle string) Observance {
	return Observance{
		Handle:          rec.Handle,
		Name:            rec.Name,
		AlternativeName: rec.AlternativeName,
		Style:           rec.Style,
		Priority:        rec.Priority,
		Subcycle:        subcycle,
		propers:         propers,
	}
}

// Propers returns the ordered, de-duplicated proper identifiers.
func (o Observance) Propers() []string {
	return slices.Clone(o.propers)
}

// Title returns Name, or AlternativeName when Name is empty.
func (o Observance) Title() string {
	if o.Name != "" {
		return o.Name
	}
	return o.AlternativeName
}

// Equal reports whether two observances carry identical values.
func (o Observance) Equal(other Observance) bool {
	return o.Handle == other.Handle &&
		o.Name == other.Name &&
		o.AlternativeName == other.AlternativeName &&
		o.Style == other.Style &&
		o.Priority == other.Priority &&
		o.Subcycle == other.Subcycle &&
		slices.Equal(o.propers, other.propers)
}

type observanceJSON struct {
	Handle          string   `json:"handle"`
	Name            string   `json:"name"`
	AlternativeName string   `json:"alternative_name"`
	Title           string   `json:"title"`
	Style           string   `json:"style"`
	Priority        int      `json:"priority"`
	Propers         []string `json:"propers"`
	Subcycle        *string  `json:"subcycle"`
}

// MarshalJSON implements json.Marshaler. An unknown subcycle encodes as null.
func (o Observance) MarshalJSON() ([]byte, error) {
	out := observanceJSON{
		Handle:          o.Handle,
		Name:            o.Name,
		AlternativeName: o.AlternativeName,
		Title:           o.Title(),
		Style:           o.Style,
		Priority:        o.Priority,
		Propers:         o.Propers(),
	}
	if out.Propers == nil {
		out.Propers = []string{}
	}
	if o.Subcycle != "" {
		sc := o.Subcycle
		out.Subcycle = &sc
	}
	return json.Marshal(out)
}
