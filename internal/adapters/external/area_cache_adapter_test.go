package external

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"floodmap.app/internal/ports"
	"floodmap.app/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.AreaCache = (*AreaCacheAdapter)(nil)

func TestAreaCacheAdapter_Integration(t *testing.T) {
	providers := map[string]func(t *testing.T) ports.CacheProvider{
		"MemoryCache": func(t *testing.T) ports.CacheProvider {
			return NewMemoryCacheProvider()
		},
		"RedisCache": func(t *testing.T) ports.CacheProvider {
			_, adapter := newTestRedisAdapter(t)
			return adapter
		},
	}

	for name, newProvider := range providers {
		t.Run(name, func(t *testing.T) {
			cache := NewAreaCacheAdapter(newProvider(t))
			ctx := context.Background()

			_, err := cache.Get(ctx)
			assert.True(t, errors.IsNotFoundError(err))

			listing := []ports.AOIData{
				{ID: "aoi-1", Name: "Valencia", Geometry: json.RawMessage(`{"type":"Polygon","coordinates":[]}`)},
				{ID: "aoi-2", Name: "Catania"},
			}
			require.NoError(t, cache.Set(ctx, listing, time.Minute))

			cached, err := cache.Get(ctx)
			require.NoError(t, err)
			require.Len(t, cached, 2)
			assert.Equal(t, "aoi-1", cached[0].ID)
			assert.Equal(t, "Valencia", cached[0].Name)
			assert.JSONEq(t, string(listing[0].Geometry), string(cached[0].Geometry))
			assert.Equal(t, "Catania", cached[1].Name)

			require.NoError(t, cache.Invalidate(ctx))
			_, err = cache.Get(ctx)
			assert.True(t, errors.IsNotFoundError(err))
		})
	}
}

func TestAreaCacheAdapter_CorruptEntryIsAMiss(t *testing.T) {
	provider := NewMemoryCacheProvider()
	cache := NewAreaCacheAdapter(provider)
	ctx := context.Background()

	require.NoError(t, provider.Set(ctx, areaListingKey, []byte("not json"), time.Minute))

	_, err := cache.Get(ctx)

	assert.True(t, errors.IsNotFoundError(err))
	exists, err := provider.Exists(ctx, areaListingKey)
	require.NoError(t, err)
	assert.False(t, exists)
}
