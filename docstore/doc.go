// Package docstore provides the schemaless document store used by the ODM.
//
// A Store holds named collections of documents. Documents are plain
// map[string]any values keyed by "_id". Filters, update specs, and
// aggregation pipelines are documents too, written in a MongoDB-like operator
// language and evaluated by the store itself.
//
// Two backends are available:
//
//   - MemoryStore: in-process and ephemeral, used by tests.
//   - SQLiteStore: a single SQLite file (modernc.org/sqlite, no CGo) with
//     msgpack-encoded document bodies.
//
// Use Open to pick a backend from a Config.
package docstore
