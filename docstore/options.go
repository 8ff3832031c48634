package docstore

import "time"

// FindOptions tunes a Find call. The zero value returns every match in
// insertion order.
type FindOptions struct {
	// Sort is an ordered spec of field -> 1 (ascending) or -1 (descending).
	Sort []SortField
	// Skip drops the first Skip matches.
	Skip int64
	// Limit caps the number of results (0 = unlimited).
	Limit int64
	// Projection keeps (1) or drops (0) fields from each result.
	Projection Document
	// MaxTime bounds the call; zero means no bound.
	MaxTime time.Duration
}

// SortField is one key of a sort specification.
type SortField struct {
	Field string
	Desc  bool
}

// ReplaceOptions tunes ReplaceOne.
type ReplaceOptions struct {
	// Upsert inserts the replacement when no document matches.
	Upsert bool
}

// CountOptions tunes Count.
type CountOptions struct {
	Skip  int64
	Limit int64
}

// UpdateOptions tunes UpdateMany.
type UpdateOptions struct {
	// Upsert inserts a document built from the equality parts of the filter
	// and the update when nothing matches.
	Upsert bool
}

// AggregateOptions tunes Aggregate.
type AggregateOptions struct {
	// MaxTime bounds the call; zero means no bound.
	MaxTime time.Duration
}
