package docstore

import "context"

// IDKey is the name of the identity field every stored document carries.
const IDKey = "_id"

// Document is a single schemaless record. Filters, update specs, sort specs,
// and pipeline stages share the same representation.
type Document = map[string]any

// Store is the interface that all document store backends implement.
// Implementations must be safe for concurrent use.
type Store interface {
	// FindOne returns the first document in collection matching filter,
	// or nil if none matches.
	FindOne(ctx context.Context, collection string, filter Document) (Document, error)

	// Find returns a cursor over all documents in collection matching filter.
	Find(ctx context.Context, collection string, filter Document, opts *FindOptions) (Cursor, error)

	// InsertOne adds a new document. The document must carry an _id that is
	// not already present in the collection.
	InsertOne(ctx context.Context, collection string, doc Document) (InsertResult, error)

	// ReplaceOne replaces the first document matching filter with doc.
	// With opts.Upsert set, doc is inserted when nothing matches.
	ReplaceOne(ctx context.Context, collection string, filter, doc Document, opts *ReplaceOptions) (ReplaceResult, error)

	// DeleteOne removes the first document matching filter.
	DeleteOne(ctx context.Context, collection string, filter Document) (DeleteResult, error)

	// Count returns the number of documents matching filter.
	Count(ctx context.Context, collection string, filter Document, opts *CountOptions) (int64, error)

	// UpdateMany applies update to every document matching filter.
	UpdateMany(ctx context.Context, collection string, filter, update Document, opts *UpdateOptions) (UpdateResult, error)

	// Aggregate runs pipeline over collection and returns a cursor over its output.
	Aggregate(ctx context.Context, collection string, pipeline []Document, opts *AggregateOptions) (Cursor, error)

	// Collections returns the sorted names of all collections holding documents.
	Collections(ctx context.Context) ([]string, error)

	// Close releases the resources held by the store.
	Close() error
}

// Cursor iterates lazily over a finite result set. It is single-pass.
type Cursor interface {
	// Next advances to the next document, returning false when exhausted.
	Next() bool
	// Decode returns the current document.
	Decode() Document
	// Err returns the first error encountered during iteration.
	Err() error
	// Close releases the cursor.
	Close() error
}

// InsertResult reports the identity of an inserted document.
type InsertResult struct {
	InsertedID any
}

// ReplaceResult reports the outcome of ReplaceOne.
type ReplaceResult struct {
	MatchedCount  int64
	ModifiedCount int64
	UpsertedID    any
}

// DeleteResult reports the outcome of DeleteOne.
type DeleteResult struct {
	DeletedCount int64
}

// UpdateResult reports the outcome of UpdateMany.
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
}

// All drains a cursor into a slice and closes it.
func All(c Cursor) ([]Document, error) {
	defer c.Close()
	var docs []Document
	for c.Next() {
		docs = append(docs, c.Decode())
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// sliceCursor is a Cursor over an already materialized result set.
type sliceCursor struct {
	docs []Document
	pos  int
}

func newSliceCursor(docs []Document) *sliceCursor {
	return &sliceCursor{docs: docs, pos: -1}
}

func (c *sliceCursor) Next() bool {
	if c.pos+1 >= len(c.docs) {
		c.pos = len(c.docs)
		return false
	}
	c.pos++
	return true
}

func (c *sliceCursor) Decode() Document {
	if c.pos < 0 || c.pos >= len(c.docs) {
		return nil
	}
	return c.docs[c.pos]
}

func (c *sliceCursor) Err() error   { return nil }
func (c *sliceCursor) Close() error { c.docs = nil; return nil }
