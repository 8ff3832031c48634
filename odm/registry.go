package odm

import (
	"sort"
	"sync"
)

// Registry maps collection names to schema descriptors. It is consulted by
// the relation resolver to find reverse links for OneToMany relations.
//
// A Registry is created explicitly and shared by the clients that should
// see each other's schemas. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]SchemaDescriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]SchemaDescriptor)}
}

// Register inserts desc under its collection name unless that name is
// already present. The first registration wins. It reports whether desc
// was inserted.
func (r *Registry) Register(desc SchemaDescriptor) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.schemas[desc.CollectionName]; exists {
		return false
	}
	r.schemas[desc.CollectionName] = desc.clone()
	return true
}

// Lookup returns a copy of the descriptor registered for collection.
func (r *Registry) Lookup(collection string) (SchemaDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.schemas[collection]
	if !ok {
		return SchemaDescriptor{}, false
	}
	return desc.clone(), true
}

// Collections returns the registered collection names, sorted.
func (r *Registry) Collections() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered schemas.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}
