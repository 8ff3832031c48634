package odm

import (
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/CaliLuke/go-odm/docstore"
)

// encodeRecord converts a record into the document stored for it. Relation
// fields are never part of the document.
func encodeRecord(info *ModelInfo, v reflect.Value) (docstore.Document, error) {
	raw := make(docstore.Document, len(info.Fields))
	for _, fi := range info.Fields {
		fv := v.Field(fi.FieldIndex)
		if fi.OmitEmpty && fv.IsZero() {
			continue
		}
		raw[fi.DocName] = fv.Interface()
	}
	doc, err := docstore.Clone(raw)
	if err != nil {
		return nil, &EncodeError{TypeName: info.TypeName, Cause: err}
	}
	return doc, nil
}

// decodeInto fills the value pointed to by target from doc. Fields missing
// from doc keep their zero value; unknown document fields are ignored.
func decodeInto(doc docstore.Document, target any) error {
	b, err := docstore.EncodeDocument(doc)
	if err != nil {
		return err
	}
	return msgpack.Unmarshal(b, target)
}

// decodeRecord decodes doc into a new value of type t and returns a pointer
// to it.
func decodeRecord(doc docstore.Document, t reflect.Type) (reflect.Value, error) {
	ptr := reflect.New(t)
	if err := decodeInto(doc, ptr.Interface()); err != nil {
		return reflect.Value{}, &DecodeError{TypeName: t.Name(), Cause: err}
	}
	return ptr, nil
}

// storedValue converts a Go value to the representation the store holds,
// so named types and nested structs compare equal to stored documents.
func storedValue(v any) (any, error) {
	doc, err := docstore.Clone(docstore.Document{"v": v})
	if err != nil {
		return nil, err
	}
	return doc["v"], nil
}

// identity returns the stored form of the record's identity.
func identity(info *ModelInfo, v reflect.Value) (any, error) {
	id, err := storedValue(v.Field(info.ID.FieldIndex).Interface())
	if err != nil {
		return nil, &EncodeError{TypeName: info.TypeName, Cause: fmt.Errorf("identity: %w", err)}
	}
	return id, nil
}

// assignID gives an empty string identity a fresh NewID.
func assignID(info *ModelInfo, v reflect.Value) bool {
	f := v.Field(info.ID.FieldIndex)
	if f.Kind() != reflect.String || f.Len() > 0 || !f.CanSet() {
		return false
	}
	f.SetString(NewID())
	return true
}
