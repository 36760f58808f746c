package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jobboard/apiserver/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRedis implements the three commands the cache uses.
type memoryRedis struct {
	redis.Cmdable
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memoryRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.values[key] = string(v)
	case string:
		m.values[key] = v
	}
	m.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (m *memoryRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := m.values[key]; ok {
			delete(m.values, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRatingCacheRoundTrip(t *testing.T) {
	backend := newMemoryRedis()
	c := NewRatingCache(backend)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, 7, types.RatingSummary{Average: 4.25, Count: 4}))
	assert.Equal(t, `{"averageRating":4.25,"count":4}`, backend.values["rating:avg:7"])
	assert.Equal(t, 10*time.Minute, backend.ttls["rating:avg:7"])

	summary, ok, err := c.Get(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, types.RatingSummary{Average: 4.25, Count: 4}, summary)

	require.NoError(t, c.Invalidate(ctx, 7))
	_, ok, err = c.Get(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRatingCacheCorruptValue(t *testing.T) {
	backend := newMemoryRedis()
	backend.values["rating:avg:1"] = "not json"

	_, ok, err := NewRatingCache(backend).Get(context.Background(), 1)
	assert.Error(t, err)
	assert.False(t, ok)
}
