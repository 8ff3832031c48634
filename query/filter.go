package query

import (
	"github.com/CaliLuke/go-odm/docstore"
)

// Filter is a composable query predicate.
type Filter interface {
	// ToDocument renders the filter as a docstore filter document.
	ToDocument() docstore.Document
}

// Raw wraps an existing filter document.
type Raw docstore.Document

// ToDocument returns the wrapped document.
func (r Raw) ToDocument() docstore.Document { return docstore.Document(r) }

// --- Comparison filters ---

// ComparisonFilter compares a field to a value using a comparison operator.
type ComparisonFilter struct {
	Field string
	Op    string // "$eq", "$ne", "$gt", "$gte", "$lt" or "$lte"
	Value any
}

// ToDocument renders {field: {op: value}}, or {field: value} for equality.
func (f *ComparisonFilter) ToDocument() docstore.Document {
	if f.Op == "$eq" {
		if _, isDoc := f.Value.(docstore.Document); !isDoc {
			return docstore.Document{f.Field: f.Value}
		}
	}
	return docstore.Document{f.Field: docstore.Document{f.Op: f.Value}}
}

// Eq matches documents whose field equals value.
func Eq(field string, value any) Filter {
	return &ComparisonFilter{Field: field, Op: "$eq", Value: value}
}

// Ne matches documents whose field does not equal value.
func Ne(field string, value any) Filter {
	return &ComparisonFilter{Field: field, Op: "$ne", Value: value}
}

// Gt creates a greater-than filter.
func Gt(field string, value any) Filter {
	return &ComparisonFilter{Field: field, Op: "$gt", Value: value}
}

// Gte creates a greater-or-equal filter.
func Gte(field string, value any) Filter {
	return &ComparisonFilter{Field: field, Op: "$gte", Value: value}
}

// Lt creates a less-than filter.
func Lt(field string, value any) Filter {
	return &ComparisonFilter{Field: field, Op: "$lt", Value: value}
}

// Lte creates a less-or-equal filter.
func Lte(field string, value any) Filter {
	return &ComparisonFilter{Field: field, Op: "$lte", Value: value}
}

// ByID matches the document with the given identity.
func ByID(id any) Filter {
	return Eq(docstore.IDKey, id)
}

// --- Range filter ---

// RangeFilter matches field values between Min and Max, inclusive.
type RangeFilter struct {
	Field string
	Min   any
	Max   any
}

// ToDocument renders {field: {$gte: min, $lte: max}}.
func (f *RangeFilter) ToDocument() docstore.Document {
	return docstore.Document{f.Field: docstore.Document{"$gte": f.Min, "$lte": f.Max}}
}

// Range creates an inclusive range filter.
func Range(field string, min, max any) Filter {
	return &RangeFilter{Field: field, Min: min, Max: max}
}

// --- Set membership filters ---

// InFilter checks whether a field value is in a set of values.
type InFilter struct {
	Field   string
	Values  []any
	Negated bool
}

// ToDocument renders {field: {$in: values}} or {$nin} when negated.
func (f *InFilter) ToDocument() docstore.Document {
	op := "$in"
	if f.Negated {
		op = "$nin"
	}
	values := f.Values
	if values == nil {
		values = []any{}
	}
	return docstore.Document{f.Field: docstore.Document{op: values}}
}

// In matches documents whose field is one of values.
func In(field string, values ...any) Filter {
	return &InFilter{Field: field, Values: values}
}

// NotIn matches documents whose field is none of values.
func NotIn(field string, values ...any) Filter {
	return &InFilter{Field: field, Values: values, Negated: true}
}

// --- Regex filter ---

// RegexFilter matches a string field against a regular expression.
type RegexFilter struct {
	Field   string
	Pattern string
	Options string // "i", "m", "s" flags
}

// ToDocument renders {field: {$regex: pattern[, $options: options]}}.
func (f *RegexFilter) ToDocument() docstore.Document {
	ops := docstore.Document{"$regex": f.Pattern}
	if f.Options != "" {
		ops["$options"] = f.Options
	}
	return docstore.Document{f.Field: ops}
}

// Regex creates a regular expression filter.
func Regex(field, pattern string) Filter {
	return &RegexFilter{Field: field, Pattern: pattern}
}

// RegexOptions creates a regular expression filter with flags.
func RegexOptions(field, pattern, options string) Filter {
	return &RegexFilter{Field: field, Pattern: pattern, Options: options}
}

// --- Existence filter ---

// ExistsFilter checks whether a field is present.
type ExistsFilter struct {
	Field   string
	Negated bool
}

// ToDocument renders {field: {$exists: bool}}.
func (f *ExistsFilter) ToDocument() docstore.Document {
	return docstore.Document{f.Field: docstore.Document{"$exists": !f.Negated}}
}

// Exists matches documents that carry field.
func Exists(field string) Filter {
	return &ExistsFilter{Field: field}
}

// Missing matches documents that do not carry field.
func Missing(field string) Filter {
	return &ExistsFilter{Field: field, Negated: true}
}

// --- Boolean combinators ---

// AndFilter combines filters with a conjunction.
type AndFilter struct {
	Filters []Filter
}

// ToDocument renders {$and: [...]}. A single child renders as itself and
// an empty conjunction matches everything.
func (f *AndFilter) ToDocument() docstore.Document {
	switch len(f.Filters) {
	case 0:
		return docstore.Document{}
	case 1:
		return f.Filters[0].ToDocument()
	}
	return docstore.Document{"$and": renderAll(f.Filters)}
}

// And combines filters with logical AND, flattening nested conjunctions.
func And(filters ...Filter) Filter {
	var flat []Filter
	for _, f := range filters {
		if a, ok := f.(*AndFilter); ok {
			flat = append(flat, a.Filters...)
		} else {
			flat = append(flat, f)
		}
	}
	return &AndFilter{Filters: flat}
}

// OrFilter combines alternatives with a disjunction.
type OrFilter struct {
	Filters []Filter
}

// ToDocument renders {$or: [...]}.
func (f *OrFilter) ToDocument() docstore.Document {
	return docstore.Document{"$or": renderAll(f.Filters)}
}

// Or combines filters with logical OR.
func Or(filters ...Filter) Filter {
	return &OrFilter{Filters: filters}
}

// NotFilter negates a filter.
type NotFilter struct {
	Inner Filter
}

// ToDocument renders {$nor: [inner]}.
func (f *NotFilter) ToDocument() docstore.Document {
	return docstore.Document{"$nor": []any{f.Inner.ToDocument()}}
}

// Not negates a filter.
func Not(filter Filter) Filter {
	return &NotFilter{Inner: filter}
}

func renderAll(filters []Filter) []any {
	out := make([]any, len(filters))
	for i, f := range filters {
		out[i] = f.ToDocument()
	}
	return out
}
