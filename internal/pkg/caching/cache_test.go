package caching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type memoryCache struct {
	items   map[string][]byte
	readErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, target any) error {
	if m.readErr != nil {
		return m.readErr
	}
	b, ok := m.items[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return msgpack.Unmarshal(b, target)
}

func (m *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := msgpack.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = b
	return nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	if _, ok := m.items[key]; !ok {
		return cache.ErrCacheMiss
	}
	delete(m.items, key)
	return nil
}

func TestUseCacheFillsOnMiss(t *testing.T) {
	ctx := context.Background()
	mem := newMemoryCache()
	calls := 0
	load := func() (uint32, error) {
		calls++
		return 42, nil
	}

	v, err := UseCache(ctx, mem, "seqno", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), v)

	v, err = UseCache(ctx, mem, "seqno", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), v)
	assert.Equal(t, 1, calls)
}

func TestUseCacheWithROReadsReplica(t *testing.T) {
	ctx := context.Background()
	primary, replica := newMemoryCache(), newMemoryCache()
	require.NoError(t, replica.Set(ctx, "k", "from-replica", time.Minute))

	v, err := UseCacheWithRO(ctx, replica, primary, "k", time.Minute, func() (string, error) {
		return "loaded", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "from-replica", v)
	assert.Empty(t, primary.items)
}

func TestUseCacheCallbackErrorNotCached(t *testing.T) {
	ctx := context.Background()
	mem := newMemoryCache()
	boom := errors.New("boom")

	_, err := UseCache(ctx, mem, "k", time.Minute, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, mem.items)
}

func TestUseCacheReadErrorSkipsCallback(t *testing.T) {
	ctx := context.Background()
	mem := newMemoryCache()
	mem.readErr = errors.New("redis down")

	_, err := UseCache(ctx, mem, "k", time.Minute, func() (int, error) {
		t.Fatal("callback must not run")
		return 0, nil
	})
	assert.Error(t, err)
}

func TestInvalidateIgnoresMissing(t *testing.T) {
	ctx := context.Background()
	mem := newMemoryCache()
	require.NoError(t, mem.Set(ctx, "a", 1, time.Minute))

	Invalidate(ctx, mem, "a", "b")
	assert.Empty(t, mem.items)
}
