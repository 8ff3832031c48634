package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedBlog(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	for _, u := range []Document{
		{"_id": "u1", "username": "daniel", "realname": "Daniel Solarte", "age": 19},
		{"_id": "u2", "username": "robert", "realname": "Robert", "age": 25},
	} {
		_, err := s.InsertOne(ctx, "users", u)
		require.NoError(t, err)
	}
	_, err := s.InsertOne(ctx, "posts", Document{"_id": "p1", "title": "go-odm v0.1.0 released!", "author_id": "u2"})
	require.NoError(t, err)
	for _, c := range []Document{
		{"_id": "c1", "message": "Hello! First comment", "post_id": "p1", "author_id": "u1"},
		{"_id": "c2", "message": "OMG, aggregations finally! :)", "post_id": "p1", "author_id": "u2"},
		{"_id": "c3", "message": "nospace", "post_id": "p1", "author_id": "u2"},
	} {
		_, err := s.InsertOne(ctx, "post_comments", c)
		require.NoError(t, err)
	}
}

func TestAggregate_LookupGroup(t *testing.T) {
	s := NewMemoryStore()
	seedBlog(t, s)

	cur, err := s.Aggregate(context.Background(), "post_comments", []Document{
		{"$match": Document{"message": Document{"$regex": " "}}},
		{"$lookup": Document{"from": "users", "localField": "author_id", "foreignField": "_id", "as": "users"}},
		{"$lookup": Document{"from": "posts", "localField": "post_id", "foreignField": "_id", "as": "posts"}},
		{"$group": Document{
			"_id":                 "1",
			"posts_with_comments": Document{"$addToSet": Document{"$first": "$posts.title"}},
			"users_with_comments": Document{"$addToSet": Document{"$first": "$users.realname"}},
		}},
	}, nil)
	require.NoError(t, err)
	out, err := All(cur)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, []any{"go-odm v0.1.0 released!"}, out[0]["posts_with_comments"])
	assert.ElementsMatch(t, []any{"Daniel Solarte", "Robert"}, out[0]["users_with_comments"])
}

func TestAggregate_Stages(t *testing.T) {
	s := NewMemoryStore()
	seedBlog(t, s)
	ctx := context.Background()

	run := func(pipeline ...Document) []Document {
		t.Helper()
		cur, err := s.Aggregate(ctx, "users", pipeline, nil)
		require.NoError(t, err)
		out, err := All(cur)
		require.NoError(t, err)
		return out
	}

	out := run(Document{"$sort": Document{"age": -1}}, Document{"$limit": 1})
	require.Len(t, out, 1)
	assert.Equal(t, "robert", out[0]["username"])

	out = run(Document{"$skip": 1})
	require.Len(t, out, 1)
	assert.Equal(t, "u2", out[0]["_id"])

	out = run(Document{"$count": "n"})
	assert.Equal(t, []Document{{"n": int64(2)}}, out)

	out = run(Document{"$project": Document{"username": 1, "_id": 0}})
	assert.Equal(t, []Document{{"username": "daniel"}, {"username": "robert"}}, out)

	out = run(Document{"$group": Document{"_id": nil, "total": Document{"$sum": "$age"}}})
	require.Len(t, out, 1)
	assert.Equal(t, int64(44), out[0]["total"])

	out = run(
		Document{"$lookup": Document{"from": "post_comments", "localField": "_id", "foreignField": "author_id", "as": "comments"}},
		Document{"$unwind": "$comments"},
		Document{"$project": Document{"who": "$username", "msg": "$comments.message"}},
	)
	assert.Len(t, out, 3)
}

func TestAggregate_Errors(t *testing.T) {
	s := NewMemoryStore()
	seedBlog(t, s)

	for _, pipeline := range [][]Document{
		{{"$sort": Document{"a": 1, "b": 1}}},
		{{"$limit": 0}},
		{{"$bucket": Document{}}},
		{{"$match": Document{}, "$limit": 1}},
		{{"$group": Document{"total": Document{"$sum": 1}}}},
	} {
		_, err := s.Aggregate(context.Background(), "users", pipeline, nil)
		var opErr *OperatorError
		assert.ErrorAs(t, err, &opErr, "pipeline %v", pipeline)
	}
}
