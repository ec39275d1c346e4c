// Package filters turns raw request filters into a storage-agnostic
// predicate over restaurant records.
package filters

import (
	"math"
	"slices"
	"strings"

	"restoanalytics/models"
)

// Placeholder is the value API clients send for "filter not supplied".
const Placeholder = "string"

// Field names a filterable restaurant attribute. Field names match the
// storage column names.
type Field string

const (
	Country       Field = "country"
	Province      Field = "province"
	City          Field = "city"
	PriceLevelCat Field = "price_level_cat"
	Claimed       Field = "claimed"
	VeganOptions  Field = "vegan_options"
	GlutenFree    Field = "gluten_free"
	MealsList     Field = "meals_list"
	CuisinesList  Field = "cuisines_list"
	TopTagsList   Field = "top_tags_list"
	Service       Field = "service"
	Food          Field = "food"
	Latitude      Field = "latitude"
	Longitude     Field = "longitude"
)

// Kind is the shape of a constraint.
type Kind int

const (
	Equal   Kind = iota // field == value
	In                  // field (a set) shares at least one element with values
	AtLeast             // field >= min
	Between             // min <= field <= max
)

// fieldOrder fixes both the set of filterable fields and the order in which
// constraints appear in a predicate.
var fieldOrder = []Field{
	Country, Province, City, PriceLevelCat, Claimed, VeganOptions, GlutenFree,
	MealsList, CuisinesList, TopTagsList, Service, Food, Latitude, Longitude,
}

var fieldKinds = map[Field]Kind{
	Country:       Equal,
	Province:      Equal,
	City:          Equal,
	PriceLevelCat: Equal,
	Claimed:       Equal,
	VeganOptions:  Equal,
	GlutenFree:    Equal,
	MealsList:     In,
	CuisinesList:  In,
	TopTagsList:   In,
	Service:       AtLeast,
	Food:          AtLeast,
	Latitude:      Between,
	Longitude:     Between,
}

// Kind reports the constraint kind the field accepts.
func (f Field) Kind() Kind {
	return fieldKinds[f]
}

// CaseInsensitive reports whether equality on f ignores letter case. The
// yes/no flags are stored as "SI", "Si" or "si" interchangeably.
func (f Field) CaseInsensitive() bool {
	return f == VeganOptions || f == GlutenFree
}

// Constraint is a single normalized condition on one field.
type Constraint struct {
	Field  Field
	Value  string
	Values []string
	Min    float64
	Max    float64
}

// Kind reports the constraint kind of c.
func (c Constraint) Kind() Kind {
	return c.Field.Kind()
}

// Predicate is a conjunction of constraints, at most one per field. The zero
// value matches every record.
type Predicate struct {
	constraints []Constraint
}

// Constraints returns the constraints of p in field order.
func (p Predicate) Constraints() []Constraint {
	return slices.Clone(p.constraints)
}

// Len reports the number of constraints.
func (p Predicate) Len() int {
	return len(p.constraints)
}

// Lookup returns the constraint on f, if any.
func (p Predicate) Lookup(f Field) (Constraint, bool) {
	for _, c := range p.constraints {
		if c.Field == f {
			return c, true
		}
	}
	return Constraint{}, false
}

// with returns a copy of p with c set, replacing any previous constraint on
// the same field and keeping field order.
func (p Predicate) with(c Constraint) Predicate {
	out := make([]Constraint, 0, len(p.constraints)+1)
	for _, f := range fieldOrder {
		if f == c.Field {
			out = append(out, c)
			continue
		}
		if existing, ok := p.Lookup(f); ok {
			out = append(out, existing)
		}
	}
	return Predicate{constraints: out}
}

// WithBounds conjoins the viewport bounding box. An inverted box is kept as
// is and simply matches nothing.
func (p Predicate) WithBounds(vp models.Viewport) Predicate {
	p = p.with(Constraint{Field: Latitude, Min: vp.South, Max: vp.North})
	return p.with(Constraint{Field: Longitude, Min: vp.West, Max: vp.East})
}

// ValidString reports whether s carries a real filter value.
func ValidString(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v != "" && v != Placeholder
}

// ValidList reports whether every element of a non-empty list is valid.
func ValidList(values []string) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if !ValidString(v) {
			return false
		}
	}
	return true
}

// Normalize drops placeholder and empty values from c and returns the
// remaining constraints. Service and food become minimum thresholds.
func Normalize(c models.FilterCriteria) Predicate {
	var p Predicate
	equals := []struct {
		field Field
		value string
	}{
		{Country, c.Country},
		{Province, c.Province},
		{City, c.City},
		{PriceLevelCat, c.PriceLevelCat},
		{Claimed, c.Claimed},
		{VeganOptions, c.VeganOptions},
		{GlutenFree, c.GlutenFree},
	}
	for _, e := range equals {
		if ValidString(e.value) {
			p = p.with(Constraint{Field: e.field, Value: strings.TrimSpace(e.value)})
		}
	}

	lists := []struct {
		field  Field
		values []string
	}{
		{MealsList, c.MealsList},
		{CuisinesList, c.CuisinesList},
		{TopTagsList, c.TopTagsList},
	}
	for _, l := range lists {
		if !ValidList(l.values) {
			continue
		}
		values := make([]string, len(l.values))
		for i, v := range l.values {
			values[i] = strings.TrimSpace(v)
		}
		p = p.with(Constraint{Field: l.field, Values: values})
	}

	thresholds := []struct {
		field Field
		value *float64
	}{
		{Service, c.Service},
		{Food, c.Food},
	}
	for _, t := range thresholds {
		if t.value != nil && *t.value > 0 {
			p = p.with(Constraint{Field: t.field, Min: *t.value})
		}
	}
	return p
}

// ForViewport normalizes c and conjoins the viewport bounding box.
func ForViewport(c models.FilterCriteria, vp models.Viewport) Predicate {
	return Normalize(c).WithBounds(vp)
}

// Match reports whether r satisfies every constraint of p.
func (p Predicate) Match(r models.Restaurant) bool {
	for _, c := range p.constraints {
		if !c.Match(r) {
			return false
		}
	}
	return true
}

// Match reports whether r satisfies c.
func (c Constraint) Match(r models.Restaurant) bool {
	switch c.Kind() {
	case Equal:
		if c.Field.CaseInsensitive() {
			return strings.EqualFold(textField(r, c.Field), c.Value)
		}
		return textField(r, c.Field) == c.Value
	case In:
		for _, v := range listField(r, c.Field) {
			if slices.Contains(c.Values, v) {
				return true
			}
		}
		return false
	case AtLeast:
		return numberField(r, c.Field) >= c.Min
	case Between:
		v := numberField(r, c.Field)
		return v >= c.Min && v <= c.Max
	}
	return false
}

func textField(r models.Restaurant, f Field) string {
	switch f {
	case Country:
		return r.Country
	case Province:
		return r.Province
	case City:
		return r.City
	case PriceLevelCat:
		return r.PriceLevelCat
	case Claimed:
		return r.Claimed
	case VeganOptions:
		return r.VeganOptions
	case GlutenFree:
		return r.GlutenFree
	}
	return ""
}

func listField(r models.Restaurant, f Field) []string {
	switch f {
	case MealsList:
		return r.MealsList
	case CuisinesList:
		return r.CuisinesList
	case TopTagsList:
		return r.TopTagsList
	}
	return nil
}

func numberField(r models.Restaurant, f Field) float64 {
	switch f {
	case Service:
		return r.Service
	case Food:
		return r.Food
	case Latitude:
		return r.Latitude
	case Longitude:
		return r.Longitude
	}
	return math.NaN()
}
