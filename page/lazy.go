package page

import (
	"context"
	"sync"
)

// Lazy is a compute-once slot: the first Get runs the computation and stores
// the result, and later Gets return the stored value without recomputing.
// Each slot owns its own state, so unrelated page objects never share results.
//
// By default a failed computation leaves the slot uncomputed, so the next Get
// retries. With CacheFailures the error itself is stored and replayed on every
// subsequent Get. The policy is fixed at construction; there is no mode where
// both happen.
type Lazy[T any] struct {
	mu            sync.Mutex
	compute       func(context.Context) (T, error)
	cacheFailures bool
	computed      bool
	value         T
	err           error
}

// LazyOption adjusts the behavior of a Lazy slot.
type LazyOption func(*lazyConfig)

type lazyConfig struct {
	cacheFailures bool
}

// CacheFailures makes a failed computation permanent: the error is stored and
// returned on every later Get instead of retrying.
func CacheFailures() LazyOption {
	return func(c *lazyConfig) { c.cacheFailures = true }
}

// NewLazy creates a slot around the given computation.
func NewLazy[T any](compute func(context.Context) (T, error), opts ...LazyOption) *Lazy[T] {
	var cfg lazyConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Lazy[T]{compute: compute, cacheFailures: cfg.cacheFailures}
}

// Get returns the slot's value, computing it on first access.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.computed {
		return l.value, l.err
	}

	value, err := l.compute(ctx)
	if err != nil {
		if l.cacheFailures {
			l.computed = true
			l.err = err
		}
		var zero T
		return zero, err
	}

	l.computed = true
	l.value = value
	return l.value, nil
}

// Computed reports whether the slot holds a stored outcome.
func (l *Lazy[T]) Computed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.computed
}
