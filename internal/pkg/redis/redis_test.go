package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := Connect(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestNilClientIsNoop(t *testing.T) {
	var c *Client
	ctx := context.Background()
	assert.False(t, c.Enabled())
	assert.NoError(t, c.Set(ctx, "k", "v", 0))
	v, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Empty(t, v)
	ok, err := c.SetNX(ctx, "k", "v", time.Second)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, c.Close())
}

func TestGetSetDel(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, Key("a"), "1", time.Minute))
	v, err := c.Get(ctx, Key("a"))
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	require.NoError(t, c.Del(ctx, Key("a")))
	v, err = c.Get(ctx, Key("a"))
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestIncrWindow(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	n, ttl, err := c.Incr(ctx, "rl", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Greater(t, ttl, time.Duration(0))

	n, _, err = c.Incr(ctx, "rl", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	mr.FastForward(2 * time.Minute)
	n, _, err = c.Incr(ctx, "rl", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestDelPattern(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	for _, k := range []string{"cache:a", "cache:b", "other"} {
		require.NoError(t, c.Set(ctx, Key(k), "x", 0))
	}
	removed, err := c.DelPattern(ctx, Key("cache:*"))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	v, _ := c.Get(ctx, Key("other"))
	assert.Equal(t, "x", v)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "folio:cache:abc", Key("cache", "abc"))
}
