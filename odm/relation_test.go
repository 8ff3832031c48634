package odm

import (
	"errors"
	"testing"
)

func TestParseRelationKind(t *testing.T) {
	tests := map[string]RelationKind{
		"one_to_one":  OneToOne,
		"one_to_many": OneToMany,
		"many_to_one": ManyToOne,
	}
	for s, want := range tests {
		got, err := ParseRelationKind(s)
		if err != nil {
			t.Fatalf("ParseRelationKind(%q): %v", s, err)
		}
		if got != want {
			t.Errorf("ParseRelationKind(%q) = %v, want %v", s, got, want)
		}
		if got.String() != s {
			t.Errorf("%v.String() = %q, want %q", got, got.String(), s)
		}
	}
}

func TestParseRelationKind_NotImplemented(t *testing.T) {
	for _, s := range []string{"many_to_many", "", "OneToOne"} {
		_, err := ParseRelationKind(s)
		if !errors.Is(err, ErrNotImplemented) {
			t.Errorf("ParseRelationKind(%q) error = %v, want ErrNotImplemented", s, err)
		}
	}
}

func TestRelationDescriptor(t *testing.T) {
	d := RelationDescriptor{FieldName: "Author", DocField: "author", Kind: ManyToOne}
	if got := d.ForeignKeyField(); got != "author_id" {
		t.Errorf("ForeignKeyField() = %q, want author_id", got)
	}
	if !d.Matches("Author") || !d.Matches("author") {
		t.Error("descriptor should match its Go and document names")
	}
	if d.Matches("author_id") {
		t.Error("descriptor should not match its foreign key field")
	}

	s := SchemaDescriptor{CollectionName: "posts", Relations: []RelationDescriptor{d}}
	if _, ok := s.Relation("author"); !ok {
		t.Error("Relation(author) not found")
	}
	if _, ok := s.Relation("missing"); ok {
		t.Error("Relation(missing) should not be found")
	}
}
