package query

import (
	"context"
	"testing"

	"github.com/CaliLuke/go-odm/docstore"
)

func TestPipelineStages(t *testing.T) {
	p := NewPipeline(
		Match(Regex("message", " ")),
		Lookup("users", "author_id", "_id", "users"),
	).Then(
		Group("1", AddToSet("users_with_comments", FirstOf(Ref("users.realname")))),
		Sort(Desc("age"), Asc("name")),
		Skip(1),
		Limit(2),
		Count("n"),
		Unwind("tags"),
		Project(D{"n": 1}),
	)
	stages := p.Build()
	if len(stages) != 9 {
		t.Fatalf("expected 9 stages, got %d", len(stages))
	}
	assertDoc(t, stages[1], D{"$lookup": D{"from": "users", "localField": "author_id", "foreignField": "_id", "as": "users"}})
	assertDoc(t, stages[2], D{"$group": D{"_id": "1", "users_with_comments": D{"$addToSet": D{"$first": "$users.realname"}}}})
	assertDoc(t, stages[3], D{"$sort": []docstore.SortField{{Field: "age", Desc: true}, {Field: "name"}}})
	assertDoc(t, stages[7], D{"$unwind": "$tags"})
}

func TestPipelineRunsOnStore(t *testing.T) {
	ctx := context.Background()
	s := docstore.NewMemoryStore()
	defer s.Close()
	for _, d := range []D{
		{"_id": "c1", "post_id": "p1", "likes": 2},
		{"_id": "c2", "post_id": "p1", "likes": 3},
		{"_id": "c3", "post_id": "p2", "likes": 5},
	} {
		if _, err := s.InsertOne(ctx, "comments", d); err != nil {
			t.Fatal(err)
		}
	}

	p := NewPipeline(
		Group(Ref("post_id"), Sum("likes", Ref("likes")), Push("ids", Ref("_id"))),
		Sort(Desc("likes")),
	)
	cur, err := s.Aggregate(ctx, "comments", p.Build(), nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := docstore.All(cur)
	if err != nil {
		t.Fatal(err)
	}
	want := []D{
		{"_id": "p1", "likes": int64(5), "ids": []any{"c1", "c2"}},
		{"_id": "p2", "likes": int64(5), "ids": []any{"c3"}},
	}
	if len(out) != len(want) {
		t.Fatalf("got %d groups, want %d", len(out), len(want))
	}
	for i := range want {
		assertDoc(t, out[i], want[i])
	}
}
