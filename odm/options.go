package odm

import (
	"time"

	"github.com/CaliLuke/go-odm/docstore"
)

// FindOption configures FindOne, FindByID, Find and Count.
type FindOption func(*findConfig)

type findConfig struct {
	opts          docstore.FindOptions
	withRelations bool
}

func newFindConfig(opts []FindOption) findConfig {
	var cfg findConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithSort orders results by the given keys, applied in order.
func WithSort(keys ...docstore.SortField) FindOption {
	return func(c *findConfig) {
		c.opts.Sort = append(c.opts.Sort, keys...)
	}
}

// WithSkip skips the first n results.
func WithSkip(n int64) FindOption {
	return func(c *findConfig) {
		c.opts.Skip = n
	}
}

// WithLimit returns at most n results. Zero means no limit.
func WithLimit(n int64) FindOption {
	return func(c *findConfig) {
		c.opts.Limit = n
	}
}

// WithMaxTime bounds the time the store may spend on the query.
func WithMaxTime(d time.Duration) FindOption {
	return func(c *findConfig) {
		c.opts.MaxTime = d
	}
}

// WithRelations populates every relation of each returned record.
func WithRelations() FindOption {
	return func(c *findConfig) {
		c.withRelations = true
	}
}
