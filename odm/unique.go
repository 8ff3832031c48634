package odm

import (
	"context"
	"fmt"
	"reflect"

	"github.com/CaliLuke/go-odm/docstore"
)

// CheckUnique verifies that no other document of the collection holds the
// value of any unique field of rec. Fields are checked in declaration
// order; the first conflict is returned as a *DuplicatedSchemaFieldError.
//
// The check reads before the caller writes, so two concurrent saves can
// both pass it. A unique index in the store is the only hard guarantee.
func (m *Manager[T]) CheckUnique(ctx context.Context, rec *T) error {
	if rec == nil {
		return fmt.Errorf("check unique %s: instance must not be nil", m.info.TypeName)
	}
	if err := checkCtx(ctx, "check unique", m.info.TypeName); err != nil {
		return err
	}
	if len(m.info.UniqueFields) == 0 {
		return nil
	}

	v := reflect.ValueOf(rec).Elem()
	id, err := identity(m.info, v)
	if err != nil {
		return err
	}
	coll := m.info.CollectionName
	for _, fi := range m.info.UniqueFields {
		raw := v.Field(fi.FieldIndex).Interface()
		value := raw
		if fi.Converter != nil {
			value = fi.Converter(raw)
		}
		value, err := storedValue(value)
		if err != nil {
			return &EncodeError{TypeName: m.info.TypeName, Cause: fmt.Errorf("field %s: %w", fi.FieldName, err)}
		}
		found, err := m.client.store.FindOne(ctx, coll, docstore.Document{fi.DocName: value})
		if err != nil {
			return &StoreError{Op: "find_one", Collection: coll, Cause: err}
		}
		if found != nil && !docstore.Equal(found[docstore.IDKey], id) {
			m.log.Debug("unique field taken", "op", "check_unique", "field", fi.DocName)
			return &DuplicatedSchemaFieldError{Field: fi.DocName, Value: fmt.Sprint(raw)}
		}
	}
	return nil
}
