package odm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// PoolConfig specifies worker pool behavior.
type PoolConfig struct {
	// Workers is the number of goroutines executing tasks.
	Workers int `yaml:"workers"`
	// QueueSize is the number of submitted tasks that may wait for a worker
	// (0 = unbuffered, a task is accepted only when a worker takes it).
	QueueSize int `yaml:"queue_size"`
	// WaitTimeout is the maximum time Submit waits for queue space (0 = no timeout).
	WaitTimeout time.Duration `yaml:"wait_timeout"`
}

// DefaultPoolConfig returns a reasonable default pool configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Workers:     4,
		QueueSize:   64,
		WaitTimeout: 10 * time.Second,
	}
}

var (
	// ErrPoolClosed is returned when submitting to a closed pool.
	ErrPoolClosed = errors.New("worker pool is closed")
	// ErrPoolTimeout is returned when waiting for queue space times out.
	ErrPoolTimeout = errors.New("timeout waiting for worker pool queue")
)

// Pool runs submitted tasks on a fixed set of worker goroutines.
type Pool struct {
	config PoolConfig
	tasks  chan func()

	mu        sync.RWMutex // held for reading while sending on tasks
	closed    bool
	wg        sync.WaitGroup
	statsMu   sync.Mutex
	busy      int
	waiting   int
	completed uint64
}

// NewPool creates a pool and starts its workers.
func NewPool(config PoolConfig) (*Pool, error) {
	if config.Workers <= 0 {
		return nil, fmt.Errorf("invalid pool config: Workers (%d) must be positive", config.Workers)
	}
	if config.QueueSize < 0 {
		return nil, fmt.Errorf("invalid pool config: QueueSize (%d) must not be negative", config.QueueSize)
	}
	p := &Pool{
		config: config,
		tasks:  make(chan func(), config.QueueSize),
	}
	p.wg.Add(config.Workers)
	for i := 0; i < config.Workers; i++ {
		go p.worker()
	}
	return p, nil
}

// Submit queues task for execution. If the queue is full it waits for
// space, up to WaitTimeout.
// Returns ErrPoolClosed if the pool is closed, or ErrPoolTimeout if WaitTimeout is exceeded.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	// Fast path: check context before acquiring lock
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		return nil
	default:
	}

	// Queue is full - must wait for a worker to drain it
	p.adjustWaiting(1)
	defer p.adjustWaiting(-1)

	waitCtx := ctx
	if p.config.WaitTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, p.config.WaitTimeout)
		defer cancel()
	}

	select {
	case p.tasks <- task:
		return nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrPoolTimeout
	}
}

// Close stops accepting tasks, lets queued tasks finish, and waits for the
// workers to exit.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}

// Stats returns current pool statistics.
func (p *Pool) Stats() PoolStats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return PoolStats{
		Workers:   p.config.Workers,
		Busy:      p.busy,
		Queued:    len(p.tasks),
		Waiting:   p.waiting,
		Completed: p.completed,
	}
}

// PoolStats provides statistics about the worker pool.
type PoolStats struct {
	Workers   int    // worker goroutines
	Busy      int    // workers currently running a task
	Queued    int    // tasks accepted but not started
	Waiting   int    // Submit calls waiting for queue space
	Completed uint64 // tasks finished since the pool started
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.statsMu.Lock()
		p.busy++
		p.statsMu.Unlock()

		task()

		p.statsMu.Lock()
		p.busy--
		p.completed++
		p.statsMu.Unlock()
	}
}

func (p *Pool) adjustWaiting(delta int) {
	p.statsMu.Lock()
	p.waiting += delta
	p.statsMu.Unlock()
}
