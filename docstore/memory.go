package docstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps every collection in memory. Data is lost when the
// process exits. Safe for concurrent use; each primitive operation is atomic,
// multi-document operations are not.
type MemoryStore struct {
	core
	mu          sync.RWMutex
	collections map[string]*memCollection
	closed      bool
}

type memCollection struct {
	keys []string // insertion order
	docs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{collections: make(map[string]*memCollection)}
	m.core = core{b: m}
	return m
}

// Close marks the store closed and drops its contents.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.collections = nil
	return nil
}

func (m *MemoryStore) scan(_ context.Context, collection string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	coll, ok := m.collections[collection]
	if !ok {
		return nil, nil
	}
	out := make([]Document, 0, len(coll.keys))
	for _, k := range coll.keys {
		doc, err := DecodeDocument(coll.docs[k])
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (m *MemoryStore) get(_ context.Context, collection, key string) (Document, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	coll, ok := m.collections[collection]
	if !ok {
		return nil, false, nil
	}
	b, ok := coll.docs[key]
	if !ok {
		return nil, false, nil
	}
	doc, err := DecodeDocument(b)
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func (m *MemoryStore) insert(_ context.Context, collection, key string, doc Document) error {
	b, err := EncodeDocument(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	coll, ok := m.collections[collection]
	if !ok {
		coll = &memCollection{docs: make(map[string][]byte)}
		m.collections[collection] = coll
	}
	if _, exists := coll.docs[key]; exists {
		return ErrDuplicateKey
	}
	coll.keys = append(coll.keys, key)
	coll.docs[key] = b
	return nil
}

func (m *MemoryStore) replace(_ context.Context, collection, key string, doc Document) error {
	b, err := EncodeDocument(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	coll, ok := m.collections[collection]
	if !ok {
		return nil
	}
	if _, exists := coll.docs[key]; exists {
		coll.docs[key] = b
	}
	return nil
}

func (m *MemoryStore) remove(_ context.Context, collection, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, ErrClosed
	}
	coll, ok := m.collections[collection]
	if !ok {
		return false, nil
	}
	if _, exists := coll.docs[key]; !exists {
		return false, nil
	}
	delete(coll.docs, key)
	for i, k := range coll.keys {
		if k == key {
			coll.keys = append(coll.keys[:i], coll.keys[i+1:]...)
			break
		}
	}
	if len(coll.keys) == 0 {
		delete(m.collections, collection)
	}
	return true, nil
}

func (m *MemoryStore) names(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
