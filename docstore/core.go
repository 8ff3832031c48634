package docstore

import (
	"context"
	"fmt"
)

// backend is the primitive storage layer a concrete store provides.
// Query semantics (filters, updates, pipelines) live in core and are shared
// by every backend.
type backend interface {
	// scan returns fresh copies of every document in insertion order.
	scan(ctx context.Context, collection string) ([]Document, error)
	// get returns a fresh copy of the document stored under key.
	get(ctx context.Context, collection, key string) (Document, bool, error)
	// insert stores doc under key, failing with ErrDuplicateKey if present.
	insert(ctx context.Context, collection, key string, doc Document) error
	// replace overwrites the document stored under key.
	replace(ctx context.Context, collection, key string, doc Document) error
	// remove deletes the document under key and reports whether it existed.
	remove(ctx context.Context, collection, key string) (bool, error)
	// names returns collection names holding at least one document.
	names(ctx context.Context) ([]string, error)
}

// core implements Store on top of a backend.
type core struct {
	b backend
}

func (c core) FindOne(ctx context.Context, collection string, filter Document) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if key, ok := idOnly(filter); ok {
		doc, found, err := c.b.get(ctx, collection, key)
		if err != nil || !found {
			return nil, err
		}
		return doc, nil
	}
	docs, err := c.b.scan(ctx, collection)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		ok, err := Match(d, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			return d, nil
		}
	}
	return nil, nil
}

func (c core) Find(ctx context.Context, collection string, filter Document, opts *FindOptions) (Cursor, error) {
	if opts == nil {
		opts = &FindOptions{}
	}
	if opts.MaxTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.MaxTime)
		defer cancel()
	}
	docs, err := c.matching(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	sortDocs(docs, opts.Sort)
	docs = skipLimit(docs, opts.Skip, opts.Limit)
	if len(opts.Projection) > 0 {
		for i, d := range docs {
			if docs[i], err = project(d, opts.Projection); err != nil {
				return nil, err
			}
		}
	}
	return newSliceCursor(docs), nil
}

func (c core) InsertOne(ctx context.Context, collection string, doc Document) (InsertResult, error) {
	if err := ctx.Err(); err != nil {
		return InsertResult{}, err
	}
	id, ok := doc[IDKey]
	if !ok || id == nil {
		return InsertResult{}, ErrMissingID
	}
	key, err := KeyOf(id)
	if err != nil {
		return InsertResult{}, err
	}
	if err := c.b.insert(ctx, collection, key, doc); err != nil {
		return InsertResult{}, err
	}
	return InsertResult{InsertedID: id}, nil
}

func (c core) ReplaceOne(ctx context.Context, collection string, filter, doc Document, opts *ReplaceOptions) (ReplaceResult, error) {
	if err := ctx.Err(); err != nil {
		return ReplaceResult{}, err
	}
	for k := range doc {
		if len(k) > 0 && k[0] == '$' {
			return ReplaceResult{}, &OperatorError{Operator: k, Message: "replacement documents may not contain operators"}
		}
	}
	target, err := c.FindOne(ctx, collection, filter)
	if err != nil {
		return ReplaceResult{}, err
	}

	if target == nil {
		if opts == nil || !opts.Upsert {
			return ReplaceResult{}, nil
		}
		seeded := copyShallow(doc)
		if _, ok := seeded[IDKey]; !ok {
			if id, ok := upsertSeed(filter)[IDKey]; ok {
				seeded[IDKey] = id
			}
		}
		res, err := c.InsertOne(ctx, collection, seeded)
		if err != nil {
			return ReplaceResult{}, err
		}
		return ReplaceResult{UpsertedID: res.InsertedID}, nil
	}

	id := target[IDKey]
	replacement := copyShallow(doc)
	if newID, ok := replacement[IDKey]; ok && !Equal(newID, id) {
		return ReplaceResult{}, &OperatorError{Operator: IDKey, Message: "_id is immutable"}
	}
	replacement[IDKey] = id
	key, err := KeyOf(id)
	if err != nil {
		return ReplaceResult{}, err
	}
	res := ReplaceResult{MatchedCount: 1}
	if Equal(target, replacement) {
		return res, nil
	}
	if err := c.b.replace(ctx, collection, key, replacement); err != nil {
		return ReplaceResult{}, err
	}
	res.ModifiedCount = 1
	return res, nil
}

func (c core) DeleteOne(ctx context.Context, collection string, filter Document) (DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return DeleteResult{}, err
	}
	target, err := c.FindOne(ctx, collection, filter)
	if err != nil || target == nil {
		return DeleteResult{}, err
	}
	key, err := KeyOf(target[IDKey])
	if err != nil {
		return DeleteResult{}, err
	}
	removed, err := c.b.remove(ctx, collection, key)
	if err != nil {
		return DeleteResult{}, err
	}
	if !removed {
		return DeleteResult{}, nil
	}
	return DeleteResult{DeletedCount: 1}, nil
}

func (c core) Count(ctx context.Context, collection string, filter Document, opts *CountOptions) (int64, error) {
	docs, err := c.matching(ctx, collection, filter)
	if err != nil {
		return 0, err
	}
	if opts != nil {
		docs = skipLimit(docs, opts.Skip, opts.Limit)
	}
	return int64(len(docs)), nil
}

func (c core) UpdateMany(ctx context.Context, collection string, filter, update Document, opts *UpdateOptions) (UpdateResult, error) {
	docs, err := c.matching(ctx, collection, filter)
	if err != nil {
		return UpdateResult{}, err
	}

	if len(docs) == 0 && opts != nil && opts.Upsert {
		seed := upsertSeed(filter)
		if _, err := ApplyUpdate(seed, update); err != nil {
			return UpdateResult{}, err
		}
		if _, err := c.InsertOne(ctx, collection, seed); err != nil {
			return UpdateResult{}, err
		}
		return UpdateResult{}, nil
	}

	var res UpdateResult
	for _, d := range docs {
		res.MatchedCount++
		changed, err := ApplyUpdate(d, update)
		if err != nil {
			return res, err
		}
		if !changed {
			continue
		}
		key, err := KeyOf(d[IDKey])
		if err != nil {
			return res, err
		}
		if err := c.b.replace(ctx, collection, key, d); err != nil {
			return res, fmt.Errorf("update %v: %w", d[IDKey], err)
		}
		res.ModifiedCount++
	}
	return res, nil
}

func (c core) Aggregate(ctx context.Context, collection string, pipeline []Document, opts *AggregateOptions) (Cursor, error) {
	if opts != nil && opts.MaxTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.MaxTime)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs, err := c.b.scan(ctx, collection)
	if err != nil {
		return nil, err
	}
	out, err := runPipeline(ctx, docs, pipeline, c.b.scan)
	if err != nil {
		return nil, err
	}
	return newSliceCursor(out), nil
}

func (c core) Collections(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.b.names(ctx)
}

func (c core) matching(ctx context.Context, collection string, filter Document) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if key, ok := idOnly(filter); ok {
		doc, found, err := c.b.get(ctx, collection, key)
		if err != nil || !found {
			return nil, err
		}
		return []Document{doc}, nil
	}
	docs, err := c.b.scan(ctx, collection)
	if err != nil {
		return nil, err
	}
	return filterDocs(docs, filter)
}

// idOnly recognizes the {_id: scalar} filter so backends can serve it by key.
func idOnly(filter Document) (string, bool) {
	if len(filter) != 1 {
		return "", false
	}
	id, ok := filter[IDKey]
	if !ok || id == nil {
		return "", false
	}
	if _, isOp := operatorDocument(id); isOp {
		return "", false
	}
	if _, isArr := asSlice(id); isArr {
		return "", false
	}
	key, err := KeyOf(id)
	if err != nil {
		return "", false
	}
	return key, true
}
