package odm

import (
	"errors"
	"testing"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		tag  string
		want FieldTag
	}{
		{"", FieldTag{}},
		{"-", FieldTag{Skip: true}},
		{"id", FieldTag{ID: true}},
		{"unique", FieldTag{Unique: true}},
		{"unique,convert=lower", FieldTag{Unique: true, Convert: "lower"}},
		{"unique, convert=fold", FieldTag{Unique: true, Convert: "fold"}},
		{"many_to_one=User", FieldTag{Relation: true, Kind: ManyToOne, Target: "User"}},
		{"one_to_many=PostComment", FieldTag{Relation: true, Kind: OneToMany, Target: "PostComment"}},
		{"one_to_one", FieldTag{Relation: true, Kind: OneToOne}},
		{"fk=Author", FieldTag{ForeignKey: "Author"}},
		{"id,collection=people", FieldTag{ID: true, Collection: "people"}},
		{"collection=blog.posts", FieldTag{Collection: "blog.posts"}},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseTag(tt.tag)
			if err != nil {
				t.Fatalf("ParseTag(%q): %v", tt.tag, err)
			}
			if got != tt.want {
				t.Errorf("ParseTag(%q) = %+v, want %+v", tt.tag, got, tt.want)
			}
		})
	}
}

func TestParseTag_Errors(t *testing.T) {
	for _, tag := range []string{
		"bogus",
		"id=1",
		"convert",
		"fk=",
		"unique,,id",
		"many_to_one=User,one_to_one=User",
	} {
		if _, err := ParseTag(tag); err == nil {
			t.Errorf("ParseTag(%q) should fail", tag)
		}
	}

	_, err := ParseTag("many_to_many=Tag")
	if !errors.Is(err, ErrNotImplemented) {
		t.Errorf("unknown relation kind error = %v, want ErrNotImplemented", err)
	}
}
