package odm

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// FieldTag contains the structured representation of a parsed `odm` struct tag.
type FieldTag struct {
	// ID marks the identity field.
	ID bool
	// Unique marks a field whose value must not be held by another document.
	Unique bool
	// Convert names the converter applied to a unique value before lookup.
	Convert string
	// Relation is set when the field holds related records.
	Relation bool
	// Kind is the relation kind; meaningful only when Relation is set.
	Kind RelationKind
	// Target is the Go type name of the related schema. Empty means the
	// field's element type.
	Target string
	// ForeignKey names the relation field this field stores the key of.
	ForeignKey string
	// Collection overrides the schema's collection name.
	Collection string
	// Skip indicates the field should be ignored by the mapper.
	Skip bool
}

// --- Participle grammar ---

// tagGrammar parses: option ( "," option )*
type tagGrammar struct {
	Options []*tagOption `parser:"@@ ( ',' @@ )*"`
}

// tagOption parses: "-" | name [ "=" value ]
type tagOption struct {
	Skip  bool    `parser:"  @Dash"`
	Name  string  `parser:"| @Ident"`
	Value *string `parser:"  ( '=' @Ident )?"`
}

var tagLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.\-]*`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Punct", Pattern: `[,=]`},
})

var tagParser = participle.MustBuild[tagGrammar](
	participle.Lexer(tagLexer),
	participle.Elide("Whitespace"),
)

// ParseTag parses the content of an `odm` struct tag.
//
// Options: id, unique, convert=<name>, one_to_one=<Type>,
// many_to_one=<Type>, one_to_many=<Type>, fk=<RelationField>,
// collection=<name>, and "-" to skip the field.
func ParseTag(tag string) (FieldTag, error) {
	if strings.TrimSpace(tag) == "" {
		return FieldTag{}, nil
	}
	ast, err := tagParser.ParseString("", tag)
	if err != nil {
		return FieldTag{}, fmt.Errorf("parse tag %q: %w", tag, err)
	}

	var ft FieldTag
	for _, opt := range ast.Options {
		if opt.Skip {
			ft.Skip = true
			continue
		}
		value := ""
		if opt.Value != nil {
			value = *opt.Value
		}
		switch opt.Name {
		case "id", "unique":
			if opt.Value != nil {
				return FieldTag{}, fmt.Errorf("tag option %q takes no value", opt.Name)
			}
			if opt.Name == "id" {
				ft.ID = true
			} else {
				ft.Unique = true
			}
		case "convert", "fk", "collection":
			if value == "" {
				return FieldTag{}, fmt.Errorf("tag option %q requires a value", opt.Name)
			}
			switch opt.Name {
			case "convert":
				ft.Convert = value
			case "fk":
				ft.ForeignKey = value
			default:
				ft.Collection = value
			}
		default:
			if !strings.Contains(opt.Name, "_to_") {
				return FieldTag{}, fmt.Errorf("unknown tag option: %q", opt.Name)
			}
			kind, err := ParseRelationKind(opt.Name)
			if err != nil {
				return FieldTag{}, err
			}
			if ft.Relation {
				return FieldTag{}, fmt.Errorf("field declares more than one relation")
			}
			ft.Relation = true
			ft.Kind = kind
			ft.Target = value
		}
	}
	return ft, nil
}
