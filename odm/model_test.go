package odm

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractModelInfo(t *testing.T) {
	info, err := ExtractModelInfo(reflect.TypeOf(PostComment{}), builtinConverters())
	require.NoError(t, err)

	assert.Equal(t, "PostComment", info.TypeName)
	assert.Equal(t, "post_comments", info.CollectionName)
	assert.Equal(t, "ID", info.ID.FieldName)
	assert.Equal(t, "_id", info.ID.DocName)

	var docNames []string
	for _, f := range info.Fields {
		docNames = append(docNames, f.DocName)
	}
	assert.Equal(t, []string{"_id", "message", "post_id", "author_id"}, docNames)

	require.Len(t, info.Relations, 2)
	post := info.Relations[0]
	assert.Equal(t, RelationDescriptor{
		FieldName:        "Post",
		DocField:         "post",
		Kind:             ManyToOne,
		TargetTypeName:   "Post",
		TargetCollection: "posts",
	}, post.Descriptor)
	assert.Equal(t, "PostID", post.ForeignKey.FieldName)
	assert.True(t, post.ElemIsPointer)
	assert.False(t, post.IsSlice)
	assert.Equal(t, reflect.TypeOf(Post{}), post.ElemType)
}

func TestExtractModelInfo_OneToMany(t *testing.T) {
	info, err := ExtractModelInfo(reflect.TypeOf(&Post{}), builtinConverters())
	require.NoError(t, err)

	require.Len(t, info.Relations, 2)
	comments := info.Relations[1]
	assert.Equal(t, OneToMany, comments.Descriptor.Kind)
	assert.Equal(t, "comments", comments.Descriptor.DocField)
	assert.Equal(t, "post_comments", comments.Descriptor.TargetCollection)
	assert.True(t, comments.IsSlice)
	assert.False(t, comments.ElemIsPointer)
	assert.Empty(t, comments.ForeignKey.FieldName)

	desc := info.Descriptor()
	assert.Equal(t, "posts", desc.CollectionName)
	assert.Len(t, desc.Relations, 2)
}

func TestExtractModelInfo_UniqueAndOverrides(t *testing.T) {
	type Person struct {
		Key      string `msgpack:"_id" odm:"id,collection=people"`
		Email    string `msgpack:"email,omitempty" odm:"unique,convert=fold"`
		Nickname string `odm:"unique"`
		internal string
		Ignored  string `odm:"-"`
		NotSaved string `msgpack:"-"`
	}
	info, err := ExtractModelInfo(reflect.TypeOf(Person{}), builtinConverters())
	require.NoError(t, err)

	assert.Equal(t, "people", info.CollectionName)
	require.Len(t, info.UniqueFields, 2)
	assert.Equal(t, "email", info.UniqueFields[0].DocName)
	assert.True(t, info.UniqueFields[0].OmitEmpty)
	assert.NotNil(t, info.UniqueFields[0].Converter)
	assert.Equal(t, "Nickname", info.UniqueFields[1].DocName, "untagged names follow msgpack's default")
	assert.Len(t, info.Fields, 3)

	_, ok := info.FieldByName("Ignored")
	assert.False(t, ok)
	f, ok := info.FieldByDocName("email")
	assert.True(t, ok)
	assert.Equal(t, "Email", f.FieldName)
}

func TestExtractModelInfo_Errors(t *testing.T) {
	type NoID struct {
		Name string `msgpack:"name"`
	}
	type IDNotUnderscore struct {
		ID string `msgpack:"id" odm:"id"`
	}
	type TwoIDs struct {
		A string `msgpack:"_id" odm:"id"`
		B string `msgpack:"b" odm:"id"`
	}
	type MissingFK struct {
		ID     string `msgpack:"_id" odm:"id"`
		Author *User  `msgpack:"-" odm:"many_to_one=User"`
	}
	type MisnamedFK struct {
		ID     string `msgpack:"_id" odm:"id"`
		Writer string `msgpack:"writer" odm:"fk=Author"`
		Author *User  `msgpack:"-" odm:"many_to_one=User"`
	}
	type FKToUnknown struct {
		ID       string `msgpack:"_id" odm:"id"`
		AuthorID string `msgpack:"author_id" odm:"fk=Author"`
	}
	type WrongTarget struct {
		ID       string `msgpack:"_id" odm:"id"`
		AuthorID string `msgpack:"author_id" odm:"fk=Author"`
		Author   *User  `msgpack:"-" odm:"many_to_one=Post"`
	}
	type ManyNotSlice struct {
		ID    string `msgpack:"_id" odm:"id"`
		Posts *Post  `msgpack:"-" odm:"one_to_many=Post"`
	}
	type UnknownConverter struct {
		ID   string `msgpack:"_id" odm:"id"`
		Name string `msgpack:"name" odm:"unique,convert=shout"`
	}
	type DollarField struct {
		ID   string `msgpack:"_id" odm:"id"`
		Name string `msgpack:"$name"`
	}
	type DuplicateName struct {
		ID string `msgpack:"_id" odm:"id"`
		A  string `msgpack:"x"`
		B  string `msgpack:"x"`
	}
	type Embedded struct {
		Plain
		Extra string `msgpack:"extra"`
	}

	for _, typ := range []any{
		NoID{}, IDNotUnderscore{}, TwoIDs{}, MissingFK{}, MisnamedFK{}, FKToUnknown{},
		WrongTarget{}, ManyNotSlice{}, UnknownConverter{}, DollarField{}, DuplicateName{}, Embedded{},
	} {
		t.Run(reflect.TypeOf(typ).Name(), func(t *testing.T) {
			_, err := ExtractModelInfo(reflect.TypeOf(typ), builtinConverters())
			var sve *SchemaValidationError
			assert.True(t, errors.As(err, &sve), "got %v", err)
		})
	}

	_, err := ExtractModelInfo(reflect.TypeOf(42), nil)
	assert.Error(t, err)
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"User":        "user",
		"PostComment": "post_comment",
		"HTTPServer":  "http_server",
		"UserID":      "user_id",
		"V2Item":      "v2_item",
		"already":     "already",
	}
	for in, want := range tests {
		assert.Equal(t, want, ToSnakeCase(in), in)
	}
	assert.Equal(t, "post_comments", DefaultCollectionName("PostComment"))
	assert.Equal(t, "h_t_t_p_servers", DefaultCollectionName("HTTPServer"))
	assert.Equal(t, "users", DefaultCollectionName("User"))
	assert.Equal(t, "v2_items", DefaultCollectionName("V2Item"))
}

func TestValidateNames(t *testing.T) {
	assert.NoError(t, ValidateFieldName("author_id"))
	assert.Error(t, ValidateFieldName(""))
	assert.Error(t, ValidateFieldName("$set"))
	assert.Error(t, ValidateFieldName("a.b"))

	assert.NoError(t, ValidateCollectionName("blog.posts"))
	assert.Error(t, ValidateCollectionName("system.users"))
	assert.Error(t, ValidateCollectionName("a$b"))
}
