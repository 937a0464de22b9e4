package client

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoCachesUntilInvalidated(t *testing.T) {
	c := NewCache(0)
	var calls atomic.Int32
	fetch := func(context.Context) (int, error) { return int(calls.Add(1)), nil }

	v, err := Memo(context.Background(), c, "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	v, _ = Memo(context.Background(), c, "k", fetch)
	assert.Equal(t, 1, v)

	c.Invalidate("k")
	v, _ = Memo(context.Background(), c, "k", fetch)
	assert.Equal(t, 2, v)
}

func TestMemoSkipsErrors(t *testing.T) {
	c := NewCache(time.Minute)
	_, err := Memo(context.Background(), c, "k", func(context.Context) (string, error) { return "", errors.New("down") })
	require.Error(t, err)

	v, err := Memo(context.Background(), c, "k", func(context.Context) (string, error) { return "up", nil })
	require.NoError(t, err)
	assert.Equal(t, "up", v)
}

func TestLoaderLifecycle(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	l := NewLoader(context.Background(), func(ctx context.Context) (int, error) {
		n := calls.Add(1)
		if n == 1 {
			<-release
		}
		if n == 3 {
			return 0, errors.New("boom")
		}
		return int(n) * 10, nil
	})
	defer l.Close()

	assert.True(t, l.Loading())
	close(release)
	require.NoError(t, l.Wait(context.Background()))
	assert.False(t, l.Loading())
	assert.Equal(t, 10, l.Data())
	assert.Empty(t, l.Err())

	require.NoError(t, l.Refetch(context.Background()))
	assert.Equal(t, 20, l.Data())

	require.Error(t, l.Refetch(context.Background()))
	assert.Equal(t, "boom", l.Err())
	assert.Equal(t, 20, l.Data())
}

func TestCachedLoaderRefetchInvalidates(t *testing.T) {
	c := NewCache(time.Minute)
	var calls atomic.Int32
	l := NewCachedLoader(context.Background(), c, "skills", func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	})
	defer l.Close()
	require.NoError(t, l.Wait(context.Background()))
	assert.Equal(t, 1, l.Data())

	// A second loader on the same key is served from the cache.
	other := NewCachedLoader(context.Background(), c, "skills", func(context.Context) (int, error) {
		return -1, nil
	})
	defer other.Close()
	require.NoError(t, other.Wait(context.Background()))
	assert.Equal(t, 1, other.Data())

	require.NoError(t, l.Refetch(context.Background()))
	assert.Equal(t, 2, l.Data())
}

func TestLoaderCloseDropsLateResult(t *testing.T) {
	started := make(chan struct{})
	l := NewLoader(context.Background(), func(ctx context.Context) (string, error) {
		close(started)
		<-ctx.Done()
		return "late", nil
	})
	<-started
	l.Close()
	require.NoError(t, l.Wait(context.Background()))
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, "", l.Data())
}

func TestInstantReplacesFallback(t *testing.T) {
	release := make(chan struct{})
	in := NewInstant([]string{"placeholder"}, func(context.Context) ([]string, error) {
		<-release
		return []string{"real"}, nil
	})
	assert.Equal(t, []string{"placeholder"}, in.Data())

	in.Start(context.Background())
	assert.True(t, in.IsUpdating())
	in.Start(context.Background())

	close(release)
	in.Wait()
	assert.False(t, in.IsUpdating())
	assert.Equal(t, []string{"real"}, in.Data())
}

func TestInstantKeepsFallbackOnError(t *testing.T) {
	in := NewInstant("fallback", func(context.Context) (string, error) { return "", errors.New("offline") })
	in.Start(context.Background())
	in.Wait()
	assert.Equal(t, "fallback", in.Data())
	assert.False(t, in.IsUpdating())
}

func TestInstantCloseCancels(t *testing.T) {
	in := NewInstant("fallback", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "late", nil
	})
	in.Start(context.Background())
	in.Close()
	in.Wait()
	assert.Equal(t, "fallback", in.Data())

	in.Start(context.Background())
	assert.False(t, in.IsUpdating())
}

func TestDebouncerRunsLastCall(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var got atomic.Value
	done := make(chan struct{}, 3)
	for _, q := range []string{"g", "go", "gol"} {
		d.Trigger(func() {
			got.Store(q)
			done <- struct{}{}
		})
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced call never ran")
	}
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, "gol", got.Load())
	assert.Len(t, done, 0)

	d.Trigger(func() { done <- struct{}{} })
	d.Stop()
	time.Sleep(40 * time.Millisecond)
	assert.Len(t, done, 0)
}
