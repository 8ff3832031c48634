package query

import "github.com/CaliLuke/go-odm/docstore"

// Stage is a single aggregation pipeline stage.
type Stage = docstore.Document

// Pipeline is an ordered list of aggregation stages.
type Pipeline []Stage

// NewPipeline creates a pipeline from stages.
func NewPipeline(stages ...Stage) Pipeline {
	return Pipeline(stages)
}

// Then appends stages and returns the extended pipeline.
func (p Pipeline) Then(stages ...Stage) Pipeline {
	return append(p, stages...)
}

// Build returns the pipeline in the form docstore.Store.Aggregate accepts.
func (p Pipeline) Build() []docstore.Document {
	out := make([]docstore.Document, len(p))
	copy(out, p)
	return out
}

// Match creates a $match stage.
func Match(filter Filter) Stage {
	return Stage{"$match": filter.ToDocument()}
}

// Lookup creates a $lookup stage joining documents of collection from whose
// foreignField equals localField, stored in the array field as.
func Lookup(from, localField, foreignField, as string) Stage {
	return Stage{"$lookup": docstore.Document{
		"from":         from,
		"localField":   localField,
		"foreignField": foreignField,
		"as":           as,
	}}
}

// Unwind creates an $unwind stage for an array field.
func Unwind(field string) Stage {
	return Stage{"$unwind": "$" + field}
}

// Sort creates a $sort stage. Keys are applied in order.
func Sort(keys ...docstore.SortField) Stage {
	return Stage{"$sort": keys}
}

// Asc sorts ascending by field.
func Asc(field string) docstore.SortField {
	return docstore.SortField{Field: field}
}

// Desc sorts descending by field.
func Desc(field string) docstore.SortField {
	return docstore.SortField{Field: field, Desc: true}
}

// Skip creates a $skip stage.
func Skip(n int64) Stage {
	return Stage{"$skip": n}
}

// Limit creates a $limit stage.
func Limit(n int64) Stage {
	return Stage{"$limit": n}
}

// Count creates a $count stage writing the count to field.
func Count(field string) Stage {
	return Stage{"$count": field}
}

// Project creates a $project stage.
func Project(spec docstore.Document) Stage {
	return Stage{"$project": spec}
}

// Group creates a $group stage keyed by id with the given accumulators.
func Group(id any, accumulators ...Accumulator) Stage {
	spec := docstore.Document{docstore.IDKey: id}
	for _, a := range accumulators {
		spec[a.Field] = docstore.Document{a.Op: a.Expr}
	}
	return Stage{"$group": spec}
}

// Accumulator computes one output field of a $group stage.
type Accumulator struct {
	Field string
	Op    string
	Expr  any
}

// Sum totals expr over the group.
func Sum(field string, expr any) Accumulator {
	return Accumulator{Field: field, Op: "$sum", Expr: expr}
}

// First keeps the first value of expr in the group.
func First(field string, expr any) Accumulator {
	return Accumulator{Field: field, Op: "$first", Expr: expr}
}

// Last keeps the last value of expr in the group.
func Last(field string, expr any) Accumulator {
	return Accumulator{Field: field, Op: "$last", Expr: expr}
}

// Push collects every value of expr in the group.
func Push(field string, expr any) Accumulator {
	return Accumulator{Field: field, Op: "$push", Expr: expr}
}

// AddToSet collects the distinct values of expr in the group.
func AddToSet(field string, expr any) Accumulator {
	return Accumulator{Field: field, Op: "$addToSet", Expr: expr}
}

// Ref returns the "$field" expression referencing a field path.
func Ref(field string) string {
	return "$" + field
}

// FirstOf returns the {$first: expr} expression.
func FirstOf(expr any) docstore.Document {
	return docstore.Document{"$first": expr}
}

// SizeOf returns the {$size: expr} expression.
func SizeOf(expr any) docstore.Document {
	return docstore.Document{"$size": expr}
}
