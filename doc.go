// Package goodm is an object-document mapper for Go with relations.
//
// Define records as Go structs with struct tags and get typed save, find,
// remove and aggregate operations over a schemaless document store, with
// application-level unique fields, on-demand relation population and
// pre-persistence hooks.
//
// The module is organized into three packages and one command:
//
//   - [github.com/CaliLuke/go-odm/odm]: mapper core with registration, managers, relations and the persistence lifecycle
//   - [github.com/CaliLuke/go-odm/docstore]: document store interface with memory and SQLite backends
//   - [github.com/CaliLuke/go-odm/query]: builders for filter, update and pipeline documents
//   - cmd/odmctl: command-line inspection of a store
//
// Nothing requires CGo or an external database server.
package goodm
