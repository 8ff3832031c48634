package odm

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool_InvalidConfig(t *testing.T) {
	_, err := NewPool(PoolConfig{Workers: 0})
	assert.ErrorContains(t, err, "Workers")

	_, err = NewPool(PoolConfig{Workers: 1, QueueSize: -1})
	assert.ErrorContains(t, err, "QueueSize")
}

func TestPool_SubmitAndClose(t *testing.T) {
	p, err := NewPool(DefaultPoolConfig())
	require.NoError(t, err)

	var n atomic.Int64
	for i := 0; i < 50; i++ {
		require.NoError(t, p.Submit(context.Background(), func() { n.Add(1) }))
	}
	p.Close()
	p.Close()

	assert.Equal(t, int64(50), n.Load(), "queued tasks finish before Close returns")
	assert.Equal(t, uint64(50), p.Stats().Completed)
	assert.ErrorIs(t, p.Submit(context.Background(), func() {}), ErrPoolClosed)
}

func TestPool_Timeout(t *testing.T) {
	p, err := NewPool(PoolConfig{Workers: 1, QueueSize: 0, WaitTimeout: 100 * time.Millisecond})
	require.NoError(t, err)
	defer p.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.Submit(context.Background(), func() {
		close(started)
		<-release
	}))
	<-started

	err = p.Submit(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrPoolTimeout)

	stats := p.Stats()
	assert.Equal(t, 1, stats.Workers)
	assert.Equal(t, 1, stats.Busy)
	assert.Zero(t, stats.Waiting)
	close(release)
}

func TestPool_SubmitCanceled(t *testing.T) {
	p, err := NewPool(PoolConfig{Workers: 1})
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Submit(ctx, func() {}), context.Canceled)

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.Submit(context.Background(), func() {
		close(started)
		<-release
	}))
	<-started

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Submit(ctx, func() {}), context.DeadlineExceeded)
	close(release)
}

func TestPool_Concurrency(t *testing.T) {
	p, err := NewPool(PoolConfig{Workers: 3, QueueSize: 1, WaitTimeout: time.Second})
	require.NoError(t, err)

	var (
		mu      sync.Mutex
		running int
		peak    int
	)
	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(context.Background(), func() {
			defer wg.Done()
			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			running--
			mu.Unlock()
		}))
	}
	wg.Wait()
	p.Close()
	assert.LessOrEqual(t, peak, 3)
}
