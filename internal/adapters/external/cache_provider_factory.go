package external

import (
	"fmt"

	"floodmap.app/internal/ports"
	"floodmap.app/pkg/errors"
)

type CacheProviderFactory struct{}

func NewCacheProviderFactory() *CacheProviderFactory {
	return &CacheProviderFactory{}
}

func (f *CacheProviderFactory) CreateCacheProvider(cfg ports.CacheConfig) (ports.CacheProvider, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryCacheProvider(), nil
	case "redis":
		return NewRedisCacheProviderAdapter(cfg.Redis)
	default:
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("unsupported cache type: %s", cfg.Type), nil)
	}
}
