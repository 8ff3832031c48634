package odm

import "fmt"

// RelationKind is the cardinality of a relation between two schemas.
type RelationKind int

const (
	// OneToOne links a record to a single record through a foreign key it holds.
	OneToOne RelationKind = iota
	// OneToMany links a record to every record of the target whose ManyToOne
	// relation points back at it. The source holds no foreign key.
	OneToMany
	// ManyToOne links a record to a single parent through a foreign key it holds.
	ManyToOne
)

// String returns the tag spelling of the kind.
func (k RelationKind) String() string {
	switch k {
	case OneToOne:
		return "one_to_one"
	case OneToMany:
		return "one_to_many"
	case ManyToOne:
		return "many_to_one"
	}
	return fmt.Sprintf("RelationKind(%d)", int(k))
}

// holdsForeignKey reports whether the source record stores <field>_id.
func (k RelationKind) holdsForeignKey() bool {
	switch k {
	case OneToOne, ManyToOne:
		return true
	case OneToMany:
		return false
	}
	return false
}

// ParseRelationKind parses "one_to_one", "one_to_many" or "many_to_one".
// Any other text yields ErrNotImplemented.
func ParseRelationKind(s string) (RelationKind, error) {
	switch s {
	case "one_to_one":
		return OneToOne, nil
	case "one_to_many":
		return OneToMany, nil
	case "many_to_one":
		return ManyToOne, nil
	}
	return 0, fmt.Errorf("relation kind %q: %w", s, ErrNotImplemented)
}

// RelationDescriptor describes one relation field of a schema.
type RelationDescriptor struct {
	// FieldName is the Go struct field holding the related record(s).
	FieldName string
	// DocField is the document name of the relation; the foreign key is
	// stored as DocField + "_id".
	DocField string
	// FieldValue is the foreign-key value for OneToOne and ManyToOne
	// descriptors built from an instance. It is nil for OneToMany and for
	// the static descriptors held by the registry.
	FieldValue any
	Kind       RelationKind
	// TargetTypeName is the Go type name of the related schema.
	TargetTypeName string
	// TargetCollection is the collection the related schema is stored in.
	TargetCollection string
}

// ForeignKeyField returns the document field holding the foreign key.
func (r RelationDescriptor) ForeignKeyField() string {
	return r.DocField + "_id"
}

// Matches reports whether field names this relation, by Go or document name.
func (r RelationDescriptor) Matches(field string) bool {
	return field == r.FieldName || field == r.DocField
}

// SchemaDescriptor is the static description of a registered schema.
type SchemaDescriptor struct {
	CollectionName string
	Relations      []RelationDescriptor
}

// Relation returns the descriptor of the named relation field.
func (s SchemaDescriptor) Relation(field string) (RelationDescriptor, bool) {
	for _, r := range s.Relations {
		if r.Matches(field) {
			return r, true
		}
	}
	return RelationDescriptor{}, false
}

func (s SchemaDescriptor) clone() SchemaDescriptor {
	out := SchemaDescriptor{CollectionName: s.CollectionName}
	if s.Relations != nil {
		out.Relations = make([]RelationDescriptor, len(s.Relations))
		copy(out.Relations, s.Relations)
	}
	return out
}
