package client

import (
	"context"
	"sync"
)

// Fetcher loads one value.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Loader holds the state of a blocking load: Loading until the first result arrives,
// then Data or Err. Results that land after Close or after a newer fetch started are dropped.
type Loader[T any] struct {
	fetch Fetcher[T]
	cache *Cache
	key   string

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	loading bool
	err     string
	data    T
	gen     uint64

	ready     chan struct{}
	readyOnce sync.Once
}

// NewLoader starts fetching in the background immediately.
func NewLoader[T any](ctx context.Context, fetch func(context.Context) (T, error)) *Loader[T] {
	return NewCachedLoader(ctx, nil, "", fetch)
}

// NewCachedLoader memoizes through c under key. Refetch invalidates key first.
func NewCachedLoader[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) *Loader[T] {
	lctx, cancel := context.WithCancel(ctx)
	l := &Loader[T]{
		fetch:   fetch,
		cache:   c,
		key:     key,
		ctx:     lctx,
		cancel:  cancel,
		loading: true,
		ready:   make(chan struct{}),
	}
	gen := l.begin()
	go func() { _ = l.run(lctx, gen) }()
	return l
}

func (l *Loader[T]) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

// Err is the last fetch error message, empty on success.
func (l *Loader[T]) Err() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

func (l *Loader[T]) Data() T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.data
}

// Wait blocks until the first fetch has settled or ctx is done.
func (l *Loader[T]) Wait(ctx context.Context) error {
	select {
	case <-l.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Refetch runs the fetch again and blocks until it settles.
func (l *Loader[T]) Refetch(ctx context.Context) error {
	if l.cache != nil && l.key != "" {
		l.cache.Invalidate(l.key)
	}
	merged, stop := mergeCancel(ctx, l.ctx)
	defer stop()
	return l.run(merged, l.begin())
}

// Close cancels any in-flight fetch. Later results are discarded.
func (l *Loader[T]) Close() {
	l.cancel()
	l.markReady()
}

func (l *Loader[T]) begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.loading = true
	return l.gen
}

func (l *Loader[T]) run(ctx context.Context, gen uint64) error {
	var (
		data T
		err  error
	)
	if l.cache != nil && l.key != "" {
		data, err = Memo[T](ctx, l.cache, l.key, l.fetch)
	} else {
		data, err = l.fetch(ctx)
	}

	l.mu.Lock()
	stale := gen != l.gen || l.ctx.Err() != nil
	if !stale {
		l.loading = false
		if err != nil {
			l.err = err.Error()
		} else {
			l.err = ""
			l.data = data
		}
	}
	l.mu.Unlock()

	if !stale {
		l.markReady()
	}
	return err
}

func (l *Loader[T]) markReady() {
	l.readyOnce.Do(func() { close(l.ready) })
}

// mergeCancel returns a context that ends when either a or b ends.
func mergeCancel(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(a)
	stop := context.AfterFunc(b, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
