package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyUpdate(t *testing.T) {
	doc := Document{"_id": 1, "content": "Content 1", "views": int64(2), "meta": Document{"a": 1}}

	changed, err := ApplyUpdate(doc, Document{"$set": Document{"content": "Content 3", "meta.b": 2}})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "Content 3", doc["content"])
	assert.Equal(t, Document{"a": 1, "b": 2}, doc["meta"])

	changed, err = ApplyUpdate(doc, Document{"$set": Document{"content": "Content 3"}})
	require.NoError(t, err)
	assert.False(t, changed, "setting an equal value is not a modification")

	changed, err = ApplyUpdate(doc, Document{"$inc": Document{"views": 3, "likes": 1}})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, int64(5), doc["views"])
	assert.Equal(t, 1, doc["likes"])

	changed, err = ApplyUpdate(doc, Document{"$push": Document{"tags": "go"}})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []any{"go"}, doc["tags"])

	changed, err = ApplyUpdate(doc, Document{"$unset": Document{"meta": ""}})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotContains(t, doc, "meta")
}

func TestApplyUpdate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		update Document
	}{
		{"empty", Document{}},
		{"replacement style", Document{"content": "x"}},
		{"immutable id", Document{"$set": Document{"_id": 2}}},
		{"unknown operator", Document{"$rename": Document{"a": "b"}}},
		{"non numeric inc", Document{"$inc": Document{"n": "x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyUpdate(Document{"_id": 1, "n": 1}, tt.update)
			var opErr *OperatorError
			assert.ErrorAs(t, err, &opErr)
		})
	}
}
