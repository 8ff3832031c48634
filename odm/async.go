package odm

import (
	"context"
	"fmt"

	"github.com/CaliLuke/go-odm/docstore"
)

// Future is the pending result of an operation running on a Pool.
type Future[R any] struct {
	done chan struct{}
	val  R
	err  error
}

// Done is closed when the operation has finished.
func (f *Future[R]) Done() <-chan struct{} { return f.done }

// Wait blocks until the operation finishes or ctx is done. Abandoning a
// wait does not cancel the operation.
func (f *Future[R]) Wait(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Go runs fn on pool and returns its future. If the pool rejects the task
// the future completes immediately with the rejection error.
func Go[R any](ctx context.Context, pool *Pool, fn func(context.Context) (R, error)) *Future[R] {
	f := &Future[R]{done: make(chan struct{})}
	err := pool.Submit(ctx, func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("odm: async operation panicked: %v", r)
			}
		}()
		f.val, f.err = fn(ctx)
	})
	if err != nil {
		f.err = err
		close(f.done)
	}
	return f
}

// Async exposes the operations of a Manager as futures. Each operation runs
// unchanged on one pool worker.
type Async[T any] struct {
	m    *Manager[T]
	pool *Pool
}

// NewAsync wraps m. A nil pool falls back to the client's pool; if neither
// is set NewAsync returns ErrNoPool.
func NewAsync[T any](m *Manager[T], pool *Pool) (*Async[T], error) {
	if pool == nil {
		pool = m.client.Pool()
	}
	if pool == nil {
		return nil, ErrNoPool
	}
	return &Async[T]{m: m, pool: pool}, nil
}

// Manager returns the wrapped manager.
func (a *Async[T]) Manager() *Manager[T] { return a.m }

// Save runs Manager.Save.
func (a *Async[T]) Save(ctx context.Context, rec *T) *Future[struct{}] {
	return Go(ctx, a.pool, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.m.Save(ctx, rec)
	})
}

// Create runs Manager.Create.
func (a *Async[T]) Create(ctx context.Context, rec *T) *Future[docstore.InsertResult] {
	return Go(ctx, a.pool, func(ctx context.Context) (docstore.InsertResult, error) {
		return a.m.Create(ctx, rec)
	})
}

// Remove runs Manager.Remove.
func (a *Async[T]) Remove(ctx context.Context, rec *T) *Future[bool] {
	return Go(ctx, a.pool, func(ctx context.Context) (bool, error) {
		return a.m.Remove(ctx, rec)
	})
}

// CheckUnique runs Manager.CheckUnique.
func (a *Async[T]) CheckUnique(ctx context.Context, rec *T) *Future[struct{}] {
	return Go(ctx, a.pool, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.m.CheckUnique(ctx, rec)
	})
}

// Populate runs Manager.Populate.
func (a *Async[T]) Populate(ctx context.Context, rec *T, field string) *Future[struct{}] {
	return Go(ctx, a.pool, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.m.Populate(ctx, rec, field)
	})
}

// FindOne runs Manager.FindOne.
func (a *Async[T]) FindOne(ctx context.Context, filter docstore.Document, opts ...FindOption) *Future[*T] {
	return Go(ctx, a.pool, func(ctx context.Context) (*T, error) {
		return a.m.FindOne(ctx, filter, opts...)
	})
}

// FindByID runs Manager.FindByID.
func (a *Async[T]) FindByID(ctx context.Context, id any, opts ...FindOption) *Future[*T] {
	return Go(ctx, a.pool, func(ctx context.Context) (*T, error) {
		return a.m.FindByID(ctx, id, opts...)
	})
}

// Find runs Manager.Find.
func (a *Async[T]) Find(ctx context.Context, filter docstore.Document, opts ...FindOption) *Future[[]*T] {
	return Go(ctx, a.pool, func(ctx context.Context) ([]*T, error) {
		return a.m.Find(ctx, filter, opts...)
	})
}

// Count runs Manager.Count.
func (a *Async[T]) Count(ctx context.Context, filter docstore.Document, opts ...FindOption) *Future[int64] {
	return Go(ctx, a.pool, func(ctx context.Context) (int64, error) {
		return a.m.Count(ctx, filter, opts...)
	})
}

// UpdateMany runs Manager.UpdateMany.
func (a *Async[T]) UpdateMany(ctx context.Context, filter, update docstore.Document) *Future[docstore.UpdateResult] {
	return Go(ctx, a.pool, func(ctx context.Context) (docstore.UpdateResult, error) {
		return a.m.UpdateMany(ctx, filter, update)
	})
}
