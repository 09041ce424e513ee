package external

import (
	"context"
	"encoding/json"
	"time"

	"floodmap.app/internal/ports"
	"floodmap.app/pkg/errors"
)

const areaListingKey = "areas:listing"

type cachedAOI struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Geometry json.RawMessage `json:"geometry,omitempty"`
}

// AreaCacheAdapter bridges the generic CacheProvider to the AOI listing cache
type AreaCacheAdapter struct {
	cacheProvider ports.CacheProvider
}

// NewAreaCacheAdapter creates an area cache on top of a generic cache provider
func NewAreaCacheAdapter(cacheProvider ports.CacheProvider) ports.AreaCache {
	return &AreaCacheAdapter{
		cacheProvider: cacheProvider,
	}
}

// Get returns the cached listing or a NotFoundError on a miss
func (a *AreaCacheAdapter) Get(ctx context.Context) ([]ports.AOIData, error) {
	data, err := a.cacheProvider.Get(ctx, areaListingKey)
	if err != nil {
		return nil, err
	}

	var cached []cachedAOI
	if err := json.Unmarshal(data, &cached); err != nil {
		// A corrupt entry behaves like a miss
		_ = a.cacheProvider.Delete(ctx, areaListingKey)
		return nil, errors.NewNotFoundError("cached area listing is unreadable")
	}

	aois := make([]ports.AOIData, len(cached))
	for i, c := range cached {
		aois[i] = ports.AOIData{ID: c.ID, Name: c.Name, Geometry: c.Geometry}
	}
	return aois, nil
}

// Set stores the listing
func (a *AreaCacheAdapter) Set(ctx context.Context, aois []ports.AOIData, ttl time.Duration) error {
	cached := make([]cachedAOI, len(aois))
	for i, aoi := range aois {
		cached[i] = cachedAOI{ID: aoi.ID, Name: aoi.Name, Geometry: aoi.Geometry}
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return errors.NewStorageError("failed to serialize area listing", err)
	}
	return a.cacheProvider.Set(ctx, areaListingKey, data, ttl)
}

// Invalidate evicts the listing
func (a *AreaCacheAdapter) Invalidate(ctx context.Context) error {
	return a.cacheProvider.Delete(ctx, areaListingKey)
}
