package odm

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/CaliLuke/go-odm/docstore"
)

// Client binds record types to collections of a document store.
//
// A Client is safe for concurrent use. Types are registered with Register
// and used through a Manager obtained from NewManager.
type Client struct {
	store      docstore.Store
	registry   *Registry
	logger     *slog.Logger
	converters map[string]Converter
	pool       *Pool

	mu     sync.RWMutex
	byType map[reflect.Type]*ModelInfo
	byName map[string]*ModelInfo
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger used for debug and warning records.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithConverter adds or replaces a unique-value converter usable as
// `odm:"unique,convert=<name>"`.
func WithConverter(name string, fn Converter) ClientOption {
	return func(c *Client) {
		c.converters[name] = fn
	}
}

// WithPool sets the worker pool used by NewAsync when none is given.
func WithPool(p *Pool) ClientOption {
	return func(c *Client) {
		c.pool = p
	}
}

// NewClient creates a client over store. Schemas registered through the
// client are published to registry, which may be shared by several clients.
// A nil registry gets a private one.
func NewClient(store docstore.Store, registry *Registry, opts ...ClientOption) *Client {
	if registry == nil {
		registry = NewRegistry()
	}
	c := &Client{
		store:      store,
		registry:   registry,
		logger:     slog.Default(),
		converters: builtinConverters(),
		byType:     make(map[reflect.Type]*ModelInfo),
		byName:     make(map[string]*ModelInfo),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the underlying document store.
func (c *Client) Store() docstore.Store { return c.store }

// Registry returns the schema registry the client publishes to.
func (c *Client) Registry() *Registry { return c.registry }

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger { return c.logger }

// Pool returns the client's worker pool, or nil.
func (c *Client) Pool() *Pool { return c.pool }

// Register adds the record type T to the client and publishes its schema
// descriptor to the registry. Registering a type twice is a no-op.
// Related types may be registered in any order.
func Register[T any](c *Client) error {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return fmt.Errorf("registering: type parameter must be a struct, got interface")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byType[t]; ok {
		return nil
	}
	info, err := ExtractModelInfo(t, c.converters)
	if err != nil {
		return fmt.Errorf("registering %s: %w", t.Name(), err)
	}
	if existing, ok := c.byName[info.TypeName]; ok {
		return fmt.Errorf("registering %s: type name already registered to %s", info.TypeName, existing.GoType)
	}
	if !c.registry.Register(info.Descriptor()) {
		c.logger.Debug("schema already in registry",
			"op", "register", "collection", info.CollectionName, "type", info.TypeName)
	}
	c.byType[t] = info
	c.byName[info.TypeName] = info
	c.logger.Debug("registered schema",
		"op", "register", "collection", info.CollectionName, "type", info.TypeName,
		"unique", len(info.UniqueFields), "relations", len(info.Relations))
	return nil
}

// MustRegister is a helper that calls Register and panics if an error occurs.
// It is intended for use during application initialization.
func MustRegister[T any](c *Client) {
	if err := Register[T](c); err != nil {
		panic(err)
	}
}

// ModelInfoFor returns the mapping metadata of a registered type.
func (c *Client) ModelInfoFor(t reflect.Type) (*ModelInfo, bool) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.byType[t]
	return info, ok
}

// RegisteredTypes returns the metadata of every type registered with the client.
func (c *Client) RegisteredTypes() []*ModelInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*ModelInfo, 0, len(c.byType))
	for _, info := range c.byType {
		out = append(out, info)
	}
	return out
}
