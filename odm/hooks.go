package odm

import "context"

// BeforeCreator is implemented by records that need to adjust themselves
// before their first insert. Returning an error aborts the save.
type BeforeCreator interface {
	BeforeCreate(ctx context.Context, c *Client) error
}

// BeforeUpdater is implemented by records that need to adjust themselves
// before an existing document is replaced. Returning an error aborts the
// save.
type BeforeUpdater interface {
	BeforeUpdate(ctx context.Context, c *Client) error
}

// BeforeDeleter is implemented by records that may veto their removal.
// Returning false cancels the delete without an error.
type BeforeDeleter interface {
	BeforeDelete(ctx context.Context, c *Client) (bool, error)
}
