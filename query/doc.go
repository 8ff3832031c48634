// Package query provides builders for filter, update, and aggregation
// documents understood by a docstore.Store.
//
// Builders are plain values; call ToDocument (filters, updates) or Build
// (pipelines) to obtain the docstore.Document form:
//
//	f := query.And(query.Eq("author_id", id), query.Gte("views", 10))
//	cur, err := store.Find(ctx, "posts", f.ToDocument(), nil)
package query
