package odm

import (
	"context"
	"fmt"
	"reflect"

	"github.com/CaliLuke/go-odm/docstore"
)

// Save persists rec.
//
// Order of operations:
//  1. an empty string identity is assigned NewID();
//  2. CheckUnique;
//  3. the collection is probed for rec's identity;
//  4. if a document exists, BeforeUpdate runs and the document is replaced
//     (upsert); otherwise BeforeCreate runs and rec is inserted.
//
// Hooks run on rec itself, so their changes are persisted. A hook error
// aborts the save before anything is written.
func (m *Manager[T]) Save(ctx context.Context, rec *T) error {
	if rec == nil {
		return fmt.Errorf("save %s: instance must not be nil", m.info.TypeName)
	}
	if err := checkCtx(ctx, "save", m.info.TypeName); err != nil {
		return err
	}
	v := reflect.ValueOf(rec).Elem()
	assignID(m.info, v)

	if err := m.CheckUnique(ctx, rec); err != nil {
		return fmt.Errorf("save %s: %w", m.info.TypeName, err)
	}

	id, err := identity(m.info, v)
	if err != nil {
		return fmt.Errorf("save %s: %w", m.info.TypeName, err)
	}
	coll := m.info.CollectionName
	byID := docstore.Document{docstore.IDKey: id}
	existing, err := m.client.store.FindOne(ctx, coll, byID)
	if err != nil {
		return fmt.Errorf("save %s: %w", m.info.TypeName, &StoreError{Op: "find_one", Collection: coll, Cause: err})
	}

	if existing != nil {
		if h, ok := any(rec).(BeforeUpdater); ok {
			if err := h.BeforeUpdate(ctx, m.client); err != nil {
				return fmt.Errorf("save %s: before update: %w", m.info.TypeName, err)
			}
		}
		doc, err := encodeRecord(m.info, v)
		if err != nil {
			return fmt.Errorf("save %s: %w", m.info.TypeName, err)
		}
		res, err := m.client.store.ReplaceOne(ctx, coll, byID, doc, &docstore.ReplaceOptions{Upsert: true})
		if err != nil {
			return fmt.Errorf("save %s: %w", m.info.TypeName, &StoreError{Op: "replace_one", Collection: coll, Cause: err})
		}
		m.log.Debug("replaced document", "op", "save", "id", id, "modified", res.ModifiedCount)
		return nil
	}

	if h, ok := any(rec).(BeforeCreator); ok {
		if err := h.BeforeCreate(ctx, m.client); err != nil {
			return fmt.Errorf("save %s: before create: %w", m.info.TypeName, err)
		}
	}
	doc, err := encodeRecord(m.info, v)
	if err != nil {
		return fmt.Errorf("save %s: %w", m.info.TypeName, err)
	}
	if _, err := m.client.store.InsertOne(ctx, coll, doc); err != nil {
		return fmt.Errorf("save %s: %w", m.info.TypeName, &StoreError{Op: "insert_one", Collection: coll, Cause: err})
	}
	m.log.Debug("inserted document", "op", "save", "id", id)
	return nil
}

// Remove deletes the document of rec and reports whether one was deleted.
// Related records are not touched. A BeforeDelete hook returning false
// cancels the removal.
func (m *Manager[T]) Remove(ctx context.Context, rec *T) (bool, error) {
	if rec == nil {
		return false, fmt.Errorf("remove %s: instance must not be nil", m.info.TypeName)
	}
	if err := checkCtx(ctx, "remove", m.info.TypeName); err != nil {
		return false, err
	}
	if h, ok := any(rec).(BeforeDeleter); ok {
		proceed, err := h.BeforeDelete(ctx, m.client)
		if err != nil {
			return false, fmt.Errorf("remove %s: before delete: %w", m.info.TypeName, err)
		}
		if !proceed {
			m.log.Debug("removal vetoed by hook", "op", "remove")
			return false, nil
		}
	}
	id, err := identity(m.info, reflect.ValueOf(rec).Elem())
	if err != nil {
		return false, fmt.Errorf("remove %s: %w", m.info.TypeName, err)
	}
	coll := m.info.CollectionName
	res, err := m.client.store.DeleteOne(ctx, coll, docstore.Document{docstore.IDKey: id})
	if err != nil {
		return false, fmt.Errorf("remove %s: %w", m.info.TypeName, &StoreError{Op: "delete_one", Collection: coll, Cause: err})
	}
	m.log.Debug("removed document", "op", "remove", "id", id, "deleted", res.DeletedCount)
	return res.DeletedCount == 1, nil
}

// Create inserts rec after the uniqueness check. Unlike Save it runs no
// hooks and does not probe for an existing document, so an identity that
// is already stored fails with docstore.ErrDuplicateKey.
func (m *Manager[T]) Create(ctx context.Context, rec *T) (docstore.InsertResult, error) {
	if rec == nil {
		return docstore.InsertResult{}, fmt.Errorf("create %s: instance must not be nil", m.info.TypeName)
	}
	if err := checkCtx(ctx, "create", m.info.TypeName); err != nil {
		return docstore.InsertResult{}, err
	}
	v := reflect.ValueOf(rec).Elem()
	assignID(m.info, v)
	if err := m.CheckUnique(ctx, rec); err != nil {
		return docstore.InsertResult{}, fmt.Errorf("create %s: %w", m.info.TypeName, err)
	}
	doc, err := encodeRecord(m.info, v)
	if err != nil {
		return docstore.InsertResult{}, fmt.Errorf("create %s: %w", m.info.TypeName, err)
	}
	coll := m.info.CollectionName
	res, err := m.client.store.InsertOne(ctx, coll, doc)
	if err != nil {
		return docstore.InsertResult{}, fmt.Errorf("create %s: %w", m.info.TypeName, &StoreError{Op: "insert_one", Collection: coll, Cause: err})
	}
	m.log.Debug("inserted document", "op", "create", "id", res.InsertedID)
	return res, nil
}
