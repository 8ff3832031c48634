package odm

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/CaliLuke/go-odm/docstore"
)

// FieldInfo contains metadata about a persisted field of a record struct.
type FieldInfo struct {
	// Tag is the parsed 'odm' struct tag.
	Tag FieldTag
	// FieldName is the name of the field in the Go struct.
	FieldName string
	// FieldIndex is the 0-based index of the field in the Go struct.
	FieldIndex int
	// FieldType is the reflection type of the field.
	FieldType reflect.Type
	// DocName is the name the field is stored under, taken from its
	// msgpack tag.
	DocName string
	// OmitEmpty mirrors the msgpack omitempty option.
	OmitEmpty bool
	// Converter is the resolved unique-value converter, if any.
	Converter Converter
}

// RelationInfo contains metadata about a relation field.
type RelationInfo struct {
	// Descriptor is the static descriptor registered for the relation.
	Descriptor RelationDescriptor
	// FieldIndex is the 0-based index of the relation field.
	FieldIndex int
	// FieldType is the reflection type of the relation field.
	FieldType reflect.Type
	// ElemType is the related record struct type.
	ElemType reflect.Type
	// IsSlice is true for OneToMany fields.
	IsSlice bool
	// ElemIsPointer is true for *Target and []*Target fields.
	ElemIsPointer bool
	// ForeignKey is the companion key field. Zero for OneToMany.
	ForeignKey FieldInfo
}

// ModelInfo contains the mapping metadata of a registered record type.
type ModelInfo struct {
	// GoType is the reflection type of the record struct.
	GoType reflect.Type
	// TypeName is the Go type name.
	TypeName string
	// CollectionName is the collection documents of this type are stored in.
	CollectionName string
	// ID is the identity field, stored as _id.
	ID FieldInfo
	// Fields lists every persisted field in declaration order, ID included.
	Fields []FieldInfo
	// UniqueFields is the subset of Fields marked unique, in declaration order.
	UniqueFields []FieldInfo
	// Relations lists relation fields in declaration order.
	Relations []RelationInfo
}

// FieldByName retrieves FieldInfo by the Go struct field name.
func (m *ModelInfo) FieldByName(name string) (FieldInfo, bool) {
	for _, f := range m.Fields {
		if f.FieldName == name {
			return f, true
		}
	}
	return FieldInfo{}, false
}

// FieldByDocName retrieves FieldInfo by the stored document field name.
func (m *ModelInfo) FieldByDocName(name string) (FieldInfo, bool) {
	for _, f := range m.Fields {
		if f.DocName == name {
			return f, true
		}
	}
	return FieldInfo{}, false
}

// Descriptor returns the static schema descriptor of the model.
func (m *ModelInfo) Descriptor() SchemaDescriptor {
	desc := SchemaDescriptor{CollectionName: m.CollectionName}
	for _, r := range m.Relations {
		desc.Relations = append(desc.Relations, r.Descriptor)
	}
	return desc
}

// ExtractModelInfo analyzes a record struct type and extracts its mapping
// metadata. Unique converters are resolved against converters.
//
// Relation target collections are resolved from the target struct type
// itself, so registration order does not matter.
func ExtractModelInfo(t reflect.Type, converters map[string]Converter) (*ModelInfo, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct, got %s", t.Kind())
	}

	info := &ModelInfo{
		GoType:         t,
		TypeName:       t.Name(),
		CollectionName: DefaultCollectionName(t.Name()),
	}
	invalid := func(format string, args ...any) error {
		return &SchemaValidationError{TypeName: t.Name(), Message: fmt.Sprintf(format, args...)}
	}

	var (
		hasID       bool
		collection  string
		foreignKeys []FieldInfo
		seen        = make(map[string]string)
	)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tag, err := ParseTag(field.Tag.Get("odm"))
		if err != nil {
			return nil, invalid("field %s: %v", field.Name, err)
		}
		if tag.Skip {
			continue
		}
		if tag.Collection != "" && collection == "" {
			collection = tag.Collection
		}

		docName, omitEmpty, skipped := msgpackName(field)
		if field.Anonymous && !skipped {
			return nil, invalid("embedded field %s is not supported", field.Name)
		}

		if tag.Relation {
			rel, err := buildRelationInfo(field, i, tag, docName, skipped)
			if err != nil {
				return nil, invalid("%v", err)
			}
			if tag.ID || tag.Unique || tag.ForeignKey != "" {
				return nil, invalid("relation field %s cannot also be id, unique or fk", field.Name)
			}
			info.Relations = append(info.Relations, rel)
			continue
		}
		if skipped {
			if tag.ID || tag.Unique || tag.ForeignKey != "" {
				return nil, invalid("field %s is excluded by its msgpack tag but tagged %q", field.Name, field.Tag.Get("odm"))
			}
			continue
		}

		fi := FieldInfo{
			Tag:        tag,
			FieldName:  field.Name,
			FieldIndex: i,
			FieldType:  field.Type,
			DocName:    docName,
			OmitEmpty:  omitEmpty,
		}

		if tag.ID {
			if hasID {
				return nil, invalid("more than one id field")
			}
			if docName != docstore.IDKey {
				return nil, invalid("id field %s must be stored as %q, add `msgpack:\"_id\"`", field.Name, docstore.IDKey)
			}
			hasID = true
			info.ID = fi
		} else {
			if docName == docstore.IDKey {
				return nil, invalid("field %s is stored as %q but is not tagged odm:\"id\"", field.Name, docstore.IDKey)
			}
			if err := ValidateFieldName(docName); err != nil {
				return nil, invalid("field %s: %v", field.Name, err)
			}
		}
		if other, dup := seen[docName]; dup {
			return nil, invalid("fields %s and %s are both stored as %q", other, field.Name, docName)
		}
		seen[docName] = field.Name

		if tag.Convert != "" && !tag.Unique {
			return nil, invalid("field %s: convert requires unique", field.Name)
		}
		if tag.Unique {
			if tag.Convert != "" {
				conv, ok := converters[tag.Convert]
				if !ok {
					return nil, invalid("field %s: unknown converter %q", field.Name, tag.Convert)
				}
				fi.Converter = conv
			}
			info.UniqueFields = append(info.UniqueFields, fi)
		}
		if tag.ForeignKey != "" {
			foreignKeys = append(foreignKeys, fi)
		}
		info.Fields = append(info.Fields, fi)
	}

	if !hasID {
		return nil, invalid("no field tagged odm:\"id\"")
	}
	if collection != "" {
		info.CollectionName = collection
	}
	if err := ValidateCollectionName(info.CollectionName); err != nil {
		return nil, invalid("%v", err)
	}
	if err := bindForeignKeys(info, foreignKeys); err != nil {
		return nil, invalid("%v", err)
	}
	return info, nil
}

func buildRelationInfo(field reflect.StructField, index int, tag FieldTag, docName string, skipped bool) (RelationInfo, error) {
	rel := RelationInfo{FieldIndex: index, FieldType: field.Type}

	ft := field.Type
	if tag.Kind == OneToMany {
		if ft.Kind() != reflect.Slice {
			return rel, fmt.Errorf("one_to_many field %s must be a slice, got %s", field.Name, ft)
		}
		rel.IsSlice = true
		ft = ft.Elem()
	}
	if ft.Kind() == reflect.Ptr {
		rel.ElemIsPointer = true
		ft = ft.Elem()
	}
	if ft.Kind() != reflect.Struct {
		return rel, fmt.Errorf("relation field %s must hold a struct, got %s", field.Name, field.Type)
	}
	rel.ElemType = ft

	target := tag.Target
	if target == "" {
		target = ft.Name()
	}
	if target != ft.Name() {
		return rel, fmt.Errorf("relation field %s declares target %s but holds %s", field.Name, target, ft.Name())
	}

	if skipped || docName == "" {
		docName = ToSnakeCase(field.Name)
	}
	if err := ValidateFieldName(docName); err != nil {
		return rel, fmt.Errorf("relation field %s: %v", field.Name, err)
	}

	rel.Descriptor = RelationDescriptor{
		FieldName:        field.Name,
		DocField:         docName,
		Kind:             tag.Kind,
		TargetTypeName:   target,
		TargetCollection: CollectionOf(ft),
	}
	return rel, nil
}

// bindForeignKeys attaches each fk companion to its relation and checks
// that every key-holding relation has exactly one, stored as <field>_id.
func bindForeignKeys(info *ModelInfo, foreignKeys []FieldInfo) error {
	for _, fk := range foreignKeys {
		idx := -1
		for i, r := range info.Relations {
			if r.Descriptor.Matches(fk.Tag.ForeignKey) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("field %s: fk names unknown relation %q", fk.FieldName, fk.Tag.ForeignKey)
		}
		rel := &info.Relations[idx]
		if !rel.Descriptor.Kind.holdsForeignKey() {
			return fmt.Errorf("field %s: %s relation %s holds no foreign key", fk.FieldName, rel.Descriptor.Kind, rel.Descriptor.FieldName)
		}
		if rel.ForeignKey.FieldName != "" {
			return fmt.Errorf("relation %s has more than one fk field", rel.Descriptor.FieldName)
		}
		if want := rel.Descriptor.ForeignKeyField(); fk.DocName != want {
			return fmt.Errorf("fk field %s must be stored as %q, got %q", fk.FieldName, want, fk.DocName)
		}
		rel.ForeignKey = fk
	}
	for _, r := range info.Relations {
		if r.Descriptor.Kind.holdsForeignKey() && r.ForeignKey.FieldName == "" {
			return fmt.Errorf("%s relation %s has no field tagged odm:\"fk=%s\"", r.Descriptor.Kind, r.Descriptor.FieldName, r.Descriptor.FieldName)
		}
	}
	return nil
}

// msgpackName returns the stored name of a field following msgpack's rules.
func msgpackName(field reflect.StructField) (name string, omitEmpty, skipped bool) {
	tag := field.Tag.Get("msgpack")
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = field.Name
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

// CollectionOf returns the collection a record struct type is stored in:
// the first `odm:"collection=..."` option among its fields, otherwise
// DefaultCollectionName of the type name. Fields with malformed tags are
// passed over; ExtractModelInfo reports them.
func CollectionOf(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag, err := ParseTag(field.Tag.Get("odm"))
		if err != nil || tag.Skip {
			continue
		}
		if tag.Collection != "" {
			return tag.Collection
		}
	}
	return DefaultCollectionName(t.Name())
}

// DefaultCollectionName derives a collection name from a type name: an
// underscore before every uppercase ASCII letter but the first, lower
// cased, plus "s" (PostComment → post_comments, HTTPServer →
// h_t_t_p_servers).
func DefaultCollectionName(typeName string) string {
	var b strings.Builder
	for i := 0; i < len(typeName); i++ {
		c := typeName[i]
		if c >= 'A' && c <= 'Z' {
			if b.Len() > 0 {
				b.WriteByte('_')
			}
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	b.WriteByte('s')
	return b.String()
}

// ToSnakeCase converts a PascalCase Go field name to snake_case, keeping
// acronyms together. It names relation fields, not collections.
// e.g. "PostComment" → "post_comment", "HTTPServer" → "http_server"
func ToSnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
