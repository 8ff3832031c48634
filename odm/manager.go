package odm

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/CaliLuke/go-odm/docstore"
)

// Manager provides typed access to the collection of record type T.
type Manager[T any] struct {
	client *Client
	info   *ModelInfo
	log    *slog.Logger
}

// NewManager returns a manager for T. T must have been registered with c.
func NewManager[T any](c *Client) (*Manager[T], error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, &NotRegisteredError{TypeName: "<nil>"}
	}
	info, ok := c.ModelInfoFor(t)
	if !ok {
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		return nil, &NotRegisteredError{TypeName: t.Name()}
	}
	return &Manager[T]{
		client: c,
		info:   info,
		log:    c.logger.With("collection", info.CollectionName),
	}, nil
}

// Client returns the client the manager belongs to.
func (m *Manager[T]) Client() *Client { return m.client }

// Info returns the mapping metadata of T.
func (m *Manager[T]) Info() *ModelInfo { return m.info }

// Collection returns the collection T is stored in.
func (m *Manager[T]) Collection() string { return m.info.CollectionName }

// Descriptor returns the schema descriptor of rec with foreign-key values
// filled in from the instance.
func (m *Manager[T]) Descriptor(rec *T) (SchemaDescriptor, error) {
	v := reflect.ValueOf(rec).Elem()
	desc := SchemaDescriptor{CollectionName: m.info.CollectionName}
	for _, r := range m.info.Relations {
		d := r.Descriptor
		val, err := m.foreignKeyValue(v, r)
		if err != nil {
			return SchemaDescriptor{}, err
		}
		d.FieldValue = val
		desc.Relations = append(desc.Relations, d)
	}
	return desc, nil
}

// FindOne returns the first record matching filter, or nil when none does.
func (m *Manager[T]) FindOne(ctx context.Context, filter docstore.Document, opts ...FindOption) (*T, error) {
	if err := checkCtx(ctx, "find one", m.info.TypeName); err != nil {
		return nil, err
	}
	cfg := newFindConfig(opts)
	var doc docstore.Document
	var err error
	if len(cfg.opts.Sort) > 0 || cfg.opts.Skip > 0 {
		cfg.opts.Limit = 1
		var docs []docstore.Document
		docs, err = m.findDocs(ctx, filter, &cfg.opts)
		if len(docs) > 0 {
			doc = docs[0]
		}
	} else {
		doc, err = m.client.store.FindOne(ctx, m.info.CollectionName, filter)
		if err != nil {
			err = &StoreError{Op: "find_one", Collection: m.info.CollectionName, Cause: err}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("find one %s: %w", m.info.TypeName, err)
	}
	if doc == nil {
		return nil, nil
	}
	rec, err := m.decode(doc)
	if err != nil {
		return nil, fmt.Errorf("find one %s: %w", m.info.TypeName, err)
	}
	if cfg.withRelations {
		if err := m.PopulateAll(ctx, rec); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// FindByID returns the record with the given identity, or nil.
func (m *Manager[T]) FindByID(ctx context.Context, id any, opts ...FindOption) (*T, error) {
	sid, err := storedValue(id)
	if err != nil {
		return nil, fmt.Errorf("find %s by id: %w", m.info.TypeName, &EncodeError{TypeName: m.info.TypeName, Cause: err})
	}
	return m.FindOne(ctx, docstore.Document{docstore.IDKey: sid}, opts...)
}

// Find returns every record matching filter.
func (m *Manager[T]) Find(ctx context.Context, filter docstore.Document, opts ...FindOption) ([]*T, error) {
	if err := checkCtx(ctx, "find", m.info.TypeName); err != nil {
		return nil, err
	}
	cfg := newFindConfig(opts)
	docs, err := m.findDocs(ctx, filter, &cfg.opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", m.info.TypeName, err)
	}
	out := make([]*T, 0, len(docs))
	for _, doc := range docs {
		rec, err := m.decode(doc)
		if err != nil {
			return nil, fmt.Errorf("find %s: %w", m.info.TypeName, err)
		}
		if cfg.withRelations {
			if err := m.PopulateAll(ctx, rec); err != nil {
				return nil, err
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// Count returns the number of documents matching filter. WithSkip and
// WithLimit are honored.
func (m *Manager[T]) Count(ctx context.Context, filter docstore.Document, opts ...FindOption) (int64, error) {
	if err := checkCtx(ctx, "count", m.info.TypeName); err != nil {
		return 0, err
	}
	cfg := newFindConfig(opts)
	n, err := m.client.store.Count(ctx, m.info.CollectionName, filter,
		&docstore.CountOptions{Skip: cfg.opts.Skip, Limit: cfg.opts.Limit})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", m.info.TypeName,
			&StoreError{Op: "count", Collection: m.info.CollectionName, Cause: err})
	}
	return n, nil
}

// UpdateMany applies update ($set, $unset, $inc, $push) to every document
// matching filter. Hooks and uniqueness checks do not run.
func (m *Manager[T]) UpdateMany(ctx context.Context, filter, update docstore.Document) (docstore.UpdateResult, error) {
	if err := checkCtx(ctx, "update", m.info.TypeName); err != nil {
		return docstore.UpdateResult{}, err
	}
	res, err := m.client.store.UpdateMany(ctx, m.info.CollectionName, filter, update, nil)
	if err != nil {
		return res, fmt.Errorf("update %s: %w", m.info.TypeName,
			&StoreError{Op: "update_many", Collection: m.info.CollectionName, Cause: err})
	}
	m.log.Debug("updated documents", "op", "update_many", "matched", res.MatchedCount, "modified", res.ModifiedCount)
	return res, nil
}

// Aggregate runs pipeline on the collection of T and decodes every output
// document into R. R may be docstore.Document.
func Aggregate[T, R any](ctx context.Context, m *Manager[T], pipeline []docstore.Document) ([]R, error) {
	if err := checkCtx(ctx, "aggregate", m.info.TypeName); err != nil {
		return nil, err
	}
	coll := m.info.CollectionName
	cur, err := m.client.store.Aggregate(ctx, coll, pipeline, nil)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", m.info.TypeName,
			&StoreError{Op: "aggregate", Collection: coll, Cause: err})
	}
	docs, err := docstore.All(cur)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", m.info.TypeName,
			&StoreError{Op: "aggregate", Collection: coll, Cause: err})
	}
	out := make([]R, 0, len(docs))
	for _, doc := range docs {
		var r R
		if d, ok := any(&r).(*docstore.Document); ok {
			*d = doc
		} else if err := decodeInto(doc, &r); err != nil {
			var zero R
			return nil, fmt.Errorf("aggregate %s: %w", m.info.TypeName,
				&DecodeError{TypeName: fmt.Sprintf("%T", zero), Cause: err})
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *Manager[T]) findDocs(ctx context.Context, filter docstore.Document, opts *docstore.FindOptions) ([]docstore.Document, error) {
	coll := m.info.CollectionName
	cur, err := m.client.store.Find(ctx, coll, filter, opts)
	if err != nil {
		return nil, &StoreError{Op: "find", Collection: coll, Cause: err}
	}
	docs, err := docstore.All(cur)
	if err != nil {
		return nil, &StoreError{Op: "find", Collection: coll, Cause: err}
	}
	return docs, nil
}

func (m *Manager[T]) decode(doc docstore.Document) (*T, error) {
	rec := new(T)
	if err := decodeInto(doc, rec); err != nil {
		return nil, &DecodeError{TypeName: m.info.TypeName, Cause: err}
	}
	return rec, nil
}

// checkCtx returns an error if the context is already cancelled or expired.
func checkCtx(ctx context.Context, op, typeName string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s %s: context cancelled: %w", op, typeName, err)
	}
	return nil
}
