package client

import (
	"context"
	"sync"
)

// Instant serves fallback data right away and swaps in fetched data once it arrives.
// A failed fetch leaves the current data untouched.
type Instant[T any] struct {
	fetch Fetcher[T]

	mu       sync.RWMutex
	data     T
	updating bool
	closed   bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewInstant[T any](fallback T, fetch func(context.Context) (T, error)) *Instant[T] {
	return &Instant[T]{fetch: fetch, data: fallback}
}

func (i *Instant[T]) Data() T {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.data
}

func (i *Instant[T]) IsUpdating() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.updating
}

// Start fetches in the background. It is a no-op while an update is running or after Close.
func (i *Instant[T]) Start(ctx context.Context) {
	i.mu.Lock()
	if i.closed || i.updating {
		i.mu.Unlock()
		return
	}
	fctx, cancel := context.WithCancel(ctx)
	i.cancel = cancel
	i.updating = true
	i.wg.Add(1)
	i.mu.Unlock()

	go func() {
		defer i.wg.Done()
		defer cancel()
		data, err := i.fetch(fctx)

		i.mu.Lock()
		defer i.mu.Unlock()
		i.updating = false
		if err != nil || i.closed || fctx.Err() != nil {
			return
		}
		i.data = data
	}()
}

// Wait blocks until the running update, if any, has finished.
func (i *Instant[T]) Wait() {
	i.wg.Wait()
}

// Close cancels the running update and freezes the current data.
func (i *Instant[T]) Close() {
	i.mu.Lock()
	i.closed = true
	cancel := i.cancel
	i.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
