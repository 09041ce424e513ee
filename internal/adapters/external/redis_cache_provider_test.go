package external

import (
	"context"
	"testing"
	"time"

	"floodmap.app/internal/ports"
	"floodmap.app/pkg/errors"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMockRedis creates a mock Redis server for testing
func setupMockRedis(t *testing.T) (*miniredis.Miniredis, ports.RedisConfig) {
	t.Helper()

	mockRedis := miniredis.RunT(t)

	return mockRedis, ports.RedisConfig{
		Addr:         mockRedis.Addr(),
		DialTimeout:  5,
		ReadTimeout:  3,
		WriteTimeout: 3,
	}
}

func newTestRedisAdapter(t *testing.T) (*miniredis.Miniredis, *RedisCacheProviderAdapter) {
	t.Helper()

	mockRedis, redisConfig := setupMockRedis(t)
	adapter, err := NewRedisCacheProviderAdapter(redisConfig)
	require.NoError(t, err)
	t.Cleanup(func() { _ = adapter.Close() })
	return mockRedis, adapter
}

func TestRedisCacheProviderAdapter_NewRedisCacheProviderAdapter(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		_, cfg := setupMockRedis(t)

		adapter, err := NewRedisCacheProviderAdapter(cfg)

		require.NoError(t, err)
		assert.NoError(t, adapter.Close())
	})

	t.Run("Unreachable", func(t *testing.T) {
		adapter, err := NewRedisCacheProviderAdapter(ports.RedisConfig{
			Addr:        "invalid:address:port",
			DialTimeout: 1,
		})

		assert.Nil(t, adapter)
		assert.True(t, errors.IsConfigurationError(err))
	})
}

func TestRedisCacheProviderAdapter_Operations(t *testing.T) {
	mockRedis, adapter := newTestRedisAdapter(t)
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, adapter.Set(ctx, "test-key", []byte("test-value"), time.Minute))

		retrieved, err := adapter.Get(ctx, "test-key")

		require.NoError(t, err)
		assert.Equal(t, []byte("test-value"), retrieved)
		assert.True(t, mockRedis.Exists(redisKeyPrefix+"test-key"))
	})

	t.Run("GetNonExistentKey", func(t *testing.T) {
		retrieved, err := adapter.Get(ctx, "non-existent-key")

		assert.Nil(t, retrieved)
		assert.True(t, errors.IsNotFoundError(err))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, adapter.Set(ctx, "delete-key", []byte("delete-value"), time.Minute))
		require.NoError(t, adapter.Delete(ctx, "delete-key"))

		_, err := adapter.Get(ctx, "delete-key")
		assert.True(t, errors.IsNotFoundError(err))
	})

	t.Run("Exists", func(t *testing.T) {
		exists, err := adapter.Exists(ctx, "exists-key")
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, adapter.Set(ctx, "exists-key", []byte("exists-value"), time.Minute))

		exists, err = adapter.Exists(ctx, "exists-key")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("TTLExpiration", func(t *testing.T) {
		require.NoError(t, adapter.Set(ctx, "ttl-key", []byte("ttl-value"), 100*time.Millisecond))

		mockRedis.FastForward(150 * time.Millisecond)

		_, err := adapter.Get(ctx, "ttl-key")
		assert.True(t, errors.IsNotFoundError(err))
	})
}

func TestRedisCacheProviderAdapter_ClearKeepsForeignKeys(t *testing.T) {
	mockRedis, adapter := newTestRedisAdapter(t)
	ctx := context.Background()

	require.NoError(t, mockRedis.Set("other-app:key", "value"))
	require.NoError(t, adapter.Set(ctx, "areas:listing", []byte("[]"), time.Minute))
	require.NoError(t, adapter.Set(ctx, "another", []byte("x"), time.Minute))

	require.NoError(t, adapter.Clear(ctx))

	assert.True(t, mockRedis.Exists("other-app:key"))
	assert.False(t, mockRedis.Exists(redisKeyPrefix+"areas:listing"))
	assert.False(t, mockRedis.Exists(redisKeyPrefix+"another"))
}

func TestRedisCacheProviderAdapter_ValidationErrors(t *testing.T) {
	_, adapter := newTestRedisAdapter(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		operation func() error
	}{
		{"GetEmptyKey", func() error { _, err := adapter.Get(ctx, ""); return err }},
		{"SetEmptyKey", func() error { return adapter.Set(ctx, "", []byte("value"), time.Minute) }},
		{"SetNilValue", func() error { return adapter.Set(ctx, "key", nil, time.Minute) }},
		{"SetZeroTTL", func() error { return adapter.Set(ctx, "key", []byte("value"), 0) }},
		{"SetNegativeTTL", func() error { return adapter.Set(ctx, "key", []byte("value"), -time.Minute) }},
		{"DeleteEmptyKey", func() error { return adapter.Delete(ctx, "") }},
		{"ExistsEmptyKey", func() error { _, err := adapter.Exists(ctx, ""); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.IsValidationError(tt.operation()))
		})
	}
}

func TestRedisCacheProviderAdapter_Metrics(t *testing.T) {
	_, adapter := newTestRedisAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "metrics-key", []byte("metrics-value"), time.Minute))
	_, err := adapter.Get(ctx, "metrics-key")
	require.NoError(t, err)
	_, err = adapter.Get(ctx, "non-existent")
	assert.Error(t, err)
	_, err = adapter.Get(ctx, "metrics-key")
	require.NoError(t, err)

	stats := adapter.GetStats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(3), stats.TotalOps)
	assert.InDelta(t, 2.0/3.0, stats.HitRatio, 1e-9)
}

func TestRedisCacheProviderAdapter_ServerFailure(t *testing.T) {
	mockRedis, adapter := newTestRedisAdapter(t)
	mockRedis.Close()

	_, err := adapter.Get(context.Background(), "key")
	assert.True(t, errors.IsStorageError(err))

	assert.Error(t, adapter.Ping(context.Background()))
}

func TestRedisCacheProviderAdapter_InterfaceCompliance(t *testing.T) {
	var _ ports.CacheProvider = (*RedisCacheProviderAdapter)(nil)
	var _ ports.CacheMetrics = (*RedisCacheProviderAdapter)(nil)
}
