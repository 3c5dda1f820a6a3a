package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedPage struct {
	Texts []string `json:"texts"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestGetSetJSONRoundtrip(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	in := cachedPage{Texts: []string{"first", "second"}}
	require.NoError(t, SetJSON(ctx, IndexPageKey(1), in, IndexPageTTL))

	var out cachedPage
	found, err := GetJSON(ctx, IndexPageKey(1), &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestGetJSONMiss(t *testing.T) {
	setupMiniredis(t)

	var out cachedPage
	found, err := GetJSON(context.Background(), IndexPageKey(42), &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAsideFetchesOnce(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedPage) func() error {
		return func() error {
			calls++
			dest.Texts = []string{"hello"}
			return nil
		}
	}

	var first cachedPage
	require.NoError(t, Aside(ctx, IndexPageKey(1), &first, IndexPageTTL, fetch(&first)))
	assert.Equal(t, 1, calls)

	var second cachedPage
	require.NoError(t, Aside(ctx, IndexPageKey(1), &second, IndexPageTTL, fetch(&second)))
	assert.Equal(t, 1, calls, "second read should be served from cache")
	assert.Equal(t, first, second)
}

func TestAsideServesStaleUntilExpiry(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	source := cachedPage{Texts: []string{"about to be deleted"}}
	var page cachedPage
	require.NoError(t, Aside(ctx, IndexPageKey(1), &page, IndexPageTTL, func() error {
		page = source
		return nil
	}))

	// The backing data changes but the entry has not expired: readers still
	// see the old rendering.
	source = cachedPage{Texts: nil}
	var stale cachedPage
	require.NoError(t, Aside(ctx, IndexPageKey(1), &stale, IndexPageTTL, func() error {
		stale = source
		return nil
	}))
	assert.Equal(t, []string{"about to be deleted"}, stale.Texts)

	mr.FastForward(IndexPageTTL + time.Second)

	var fresh cachedPage
	require.NoError(t, Aside(ctx, IndexPageKey(1), &fresh, IndexPageTTL, func() error {
		fresh = source
		return nil
	}))
	assert.Empty(t, fresh.Texts)
}

func TestFlushIndex(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	for page := 1; page <= 3; page++ {
		require.NoError(t, SetJSON(ctx, IndexPageKey(page), cachedPage{Texts: []string{"x"}}, IndexPageTTL))
	}
	require.NoError(t, FlushIndex(ctx))

	for page := 1; page <= 3; page++ {
		var out cachedPage
		found, err := GetJSON(ctx, IndexPageKey(page), &out)
		require.NoError(t, err)
		assert.False(t, found)
	}
}

func TestNilClientPassesThrough(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	calls := 0
	var page cachedPage
	require.NoError(t, Aside(ctx, IndexPageKey(1), &page, IndexPageTTL, func() error {
		calls++
		page.Texts = []string{"uncached"}
		return nil
	}))
	require.NoError(t, Aside(ctx, IndexPageKey(1), &page, IndexPageTTL, func() error {
		calls++
		return nil
	}))
	assert.Equal(t, 2, calls, "without Redis every read recomputes")
}
