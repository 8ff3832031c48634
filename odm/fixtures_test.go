package odm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CaliLuke/go-odm/docstore"
)

type User struct {
	ID       string  `msgpack:"_id" odm:"id"`
	Username string  `msgpack:"username" odm:"unique"`
	Realname string  `msgpack:"realname"`
	Posts    []*Post `msgpack:"-" odm:"one_to_many=Post"`
}

type Post struct {
	ID       int           `msgpack:"_id" odm:"id"`
	Content  string        `msgpack:"content"`
	AuthorID string        `msgpack:"author_id" odm:"fk=Author"`
	Author   *User         `msgpack:"-" odm:"many_to_one=User"`
	Comments []PostComment `msgpack:"-" odm:"one_to_many=PostComment"`
}

type PostComment struct {
	ID       string `msgpack:"_id" odm:"id"`
	Message  string `msgpack:"message"`
	PostID   int    `msgpack:"post_id" odm:"fk=Post"`
	Post     *Post  `msgpack:"-" odm:"many_to_one=Post"`
	AuthorID string `msgpack:"author_id" odm:"fk=Author"`
	Author   *User  `msgpack:"-" odm:"many_to_one=User"`
}

// Plain has no unique fields and no relations.
type Plain struct {
	ID    int64  `msgpack:"_id" odm:"id"`
	Label string `msgpack:"label"`
}

var errHookFailed = errors.New("hook failed")

type Account struct {
	ID         string `msgpack:"_id" odm:"id"`
	Email      string `msgpack:"email" odm:"unique,convert=lower"`
	Creates    int    `msgpack:"creates"`
	Updates    int    `msgpack:"updates"`
	Locked     bool   `msgpack:"locked"`
	FailCreate bool   `msgpack:"-"`
}

func (a *Account) BeforeCreate(ctx context.Context, c *Client) error {
	if a.FailCreate {
		return errHookFailed
	}
	a.Creates++
	return nil
}

func (a *Account) BeforeUpdate(ctx context.Context, c *Client) error {
	a.Updates++
	return nil
}

func (a *Account) BeforeDelete(ctx context.Context, c *Client) (bool, error) {
	return !a.Locked, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newBlogClient returns a client over a fresh memory store with the blog
// types registered.
func newBlogClient(t *testing.T, opts ...ClientOption) *Client {
	t.Helper()
	return newBlogClientOn(t, docstore.NewMemoryStore(), opts...)
}

func newBlogClientOn(t *testing.T, store docstore.Store, opts ...ClientOption) *Client {
	t.Helper()
	t.Cleanup(func() { _ = store.Close() })
	c := NewClient(store, NewRegistry(), append([]ClientOption{WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, Register[User](c))
	require.NoError(t, Register[Post](c))
	require.NoError(t, Register[PostComment](c))
	require.NoError(t, Register[Plain](c))
	require.NoError(t, Register[Account](c))
	return c
}

// forEachStore runs fn against a memory-backed and a SQLite-backed client.
func forEachStore(t *testing.T, fn func(t *testing.T, c *Client)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, newBlogClient(t))
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := docstore.NewSQLiteStore(filepath.Join(t.TempDir(), "odm.db"))
		require.NoError(t, err)
		fn(t, newBlogClientOn(t, s))
	})
}

func mustManager[T any](t *testing.T, c *Client) *Manager[T] {
	t.Helper()
	m, err := NewManager[T](c)
	require.NoError(t, err)
	return m
}
