package odm

import (
	"context"
	"fmt"
	"reflect"

	"github.com/CaliLuke/go-odm/docstore"
)

// Populate loads the related record(s) of one relation field of rec and
// stores them in that field. field is the Go field name or the document
// name of the relation.
//
// OneToOne and ManyToOne relations fetch the target by the foreign key.
// OneToMany relations look up the target schema in the registry, find its
// ManyToOne relation pointing back at this collection, and fetch every
// target whose foreign key equals rec's identity, in store order.
//
// Unknown fields, unset foreign keys, missing targets, unregistered target
// schemas and missing reverse links leave rec unchanged and return nil.
// Only store and decode failures are reported.
func (m *Manager[T]) Populate(ctx context.Context, rec *T, field string) error {
	if rec == nil {
		return fmt.Errorf("populate %s: instance must not be nil", m.info.TypeName)
	}
	if err := checkCtx(ctx, "populate", m.info.TypeName); err != nil {
		return err
	}
	for _, rel := range m.info.Relations {
		if !rel.Descriptor.Matches(field) {
			continue
		}
		v := reflect.ValueOf(rec).Elem()
		var err error
		switch rel.Descriptor.Kind {
		case OneToOne, ManyToOne:
			err = m.populateOne(ctx, v, rel)
		case OneToMany:
			err = m.populateMany(ctx, v, rel)
		}
		if err != nil {
			return fmt.Errorf("populate %s.%s: %w", m.info.TypeName, rel.Descriptor.FieldName, err)
		}
		return nil
	}
	m.log.Debug("no relation to populate", "op", "populate", "field", field)
	return nil
}

// PopulateAll populates every relation of rec in declaration order and
// stops at the first error.
func (m *Manager[T]) PopulateAll(ctx context.Context, rec *T) error {
	for _, rel := range m.info.Relations {
		if err := m.Populate(ctx, rec, rel.Descriptor.FieldName); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager[T]) populateOne(ctx context.Context, v reflect.Value, rel RelationInfo) error {
	d := rel.Descriptor
	key, err := m.foreignKeyValue(v, rel)
	if err != nil {
		return err
	}
	if key == nil {
		m.log.Debug("foreign key not set", "op", "populate", "field", d.DocField)
		return nil
	}
	doc, err := m.client.store.FindOne(ctx, d.TargetCollection, docstore.Document{docstore.IDKey: key})
	if err != nil {
		return &StoreError{Op: "find_one", Collection: d.TargetCollection, Cause: err}
	}
	if doc == nil {
		m.log.Debug("related document not found", "op", "populate", "field", d.DocField, "target", d.TargetCollection)
		return nil
	}
	ptr, err := decodeRecord(doc, rel.ElemType)
	if err != nil {
		return err
	}
	f := v.Field(rel.FieldIndex)
	if rel.ElemIsPointer {
		f.Set(ptr)
	} else {
		f.Set(ptr.Elem())
	}
	return nil
}

func (m *Manager[T]) populateMany(ctx context.Context, v reflect.Value, rel RelationInfo) error {
	d := rel.Descriptor
	target, ok := m.client.registry.Lookup(d.TargetCollection)
	if !ok {
		m.log.Warn("relation target is not registered", "op", "populate", "field", d.DocField, "target", d.TargetCollection)
		return nil
	}
	var reverse *RelationDescriptor
	for i, r := range target.Relations {
		if r.Kind == ManyToOne && r.TargetCollection == m.info.CollectionName {
			reverse = &target.Relations[i]
			break
		}
	}
	if reverse == nil {
		m.log.Warn("relation target has no many_to_one link back", "op", "populate", "field", d.DocField, "target", d.TargetCollection)
		return nil
	}

	id, err := identity(m.info, v)
	if err != nil {
		return err
	}
	cur, err := m.client.store.Find(ctx, d.TargetCollection, docstore.Document{reverse.ForeignKeyField(): id}, nil)
	if err != nil {
		return &StoreError{Op: "find", Collection: d.TargetCollection, Cause: err}
	}
	docs, err := docstore.All(cur)
	if err != nil {
		return &StoreError{Op: "find", Collection: d.TargetCollection, Cause: err}
	}

	out := reflect.MakeSlice(rel.FieldType, 0, len(docs))
	for _, doc := range docs {
		ptr, err := decodeRecord(doc, rel.ElemType)
		if err != nil {
			return err
		}
		if rel.ElemIsPointer {
			out = reflect.Append(out, ptr)
		} else {
			out = reflect.Append(out, ptr.Elem())
		}
	}
	v.Field(rel.FieldIndex).Set(out)
	return nil
}

// foreignKeyValue returns the stored form of the key a OneToOne or
// ManyToOne relation points at: the loaded target's identity when the
// relation field is set and the target type is registered, otherwise the
// companion key field. Zero keys yield nil.
func (m *Manager[T]) foreignKeyValue(v reflect.Value, rel RelationInfo) (any, error) {
	if !rel.Descriptor.Kind.holdsForeignKey() {
		return nil, nil
	}
	if rf := v.Field(rel.FieldIndex); !rf.IsZero() {
		if targetInfo, ok := m.client.ModelInfoFor(rel.ElemType); ok {
			if rf.Kind() == reflect.Ptr {
				rf = rf.Elem()
			}
			if idf := rf.Field(targetInfo.ID.FieldIndex); !idf.IsZero() {
				return identity(targetInfo, rf)
			}
		}
	}
	fk := v.Field(rel.ForeignKey.FieldIndex)
	if fk.IsZero() {
		return nil, nil
	}
	key, err := storedValue(fk.Interface())
	if err != nil {
		return nil, &EncodeError{TypeName: m.info.TypeName, Cause: fmt.Errorf("field %s: %w", rel.ForeignKey.FieldName, err)}
	}
	return key, nil
}
