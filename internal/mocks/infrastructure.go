package mocks

import (
	"context"
	"time"

	"floodmap.app/internal/ports"
	"github.com/stretchr/testify/mock"
)

// ConfigProvider is a fixed-value ports.ConfigProvider
type ConfigProvider struct {
	Server   ports.ServerConfig
	GFM      ports.GFMConfig
	Storage  ports.StorageConfig
	Database ports.DatabaseConfig
	Cache    ports.CacheConfig
	Area     ports.AreaConfig
	Sync     ports.SyncConfig
}

// NewConfigProvider returns a provider with the production defaults
func NewConfigProvider() *ConfigProvider {
	return &ConfigProvider{
		Server: ports.ServerConfig{Port: 8080},
		GFM: ports.GFMConfig{
			BaseURL:         "https://api.gfm.eodc.eu/v2",
			Username:        "analyst@example.com",
			Password:        "secret",
			Timeout:         60 * time.Second,
			MaxArchiveBytes: 512 << 20,
		},
		Storage: ports.StorageConfig{Backend: "filesystem", Path: "./output", IndexFile: "index.csv"},
		Cache:   ports.CacheConfig{Type: "memory"},
		Area:    ports.AreaConfig{CacheTTL: 10 * time.Minute},
		Sync:    ports.SyncConfig{GroupGap: 60 * time.Second, DownloadWorkers: 1},
	}
}

func (c *ConfigProvider) GetServerConfig() ports.ServerConfig     { return c.Server }
func (c *ConfigProvider) GetGFMConfig() ports.GFMConfig           { return c.GFM }
func (c *ConfigProvider) GetStorageConfig() ports.StorageConfig   { return c.Storage }
func (c *ConfigProvider) GetDatabaseConfig() ports.DatabaseConfig { return c.Database }
func (c *ConfigProvider) GetCacheConfig() ports.CacheConfig       { return c.Cache }
func (c *ConfigProvider) GetAreaConfig() ports.AreaConfig         { return c.Area }
func (c *ConfigProvider) GetSyncConfig() ports.SyncConfig         { return c.Sync }

var _ ports.ConfigProvider = (*ConfigProvider)(nil)

// Logger discards everything
type Logger struct{}

func (Logger) Debug(msg string, fields ...ports.Field) {}
func (Logger) Info(msg string, fields ...ports.Field)  {}
func (Logger) Warn(msg string, fields ...ports.Field)  {}
func (Logger) Error(msg string, fields ...ports.Field) {}

var _ ports.Logger = Logger{}

// MetricsCollector is a mock of ports.MetricsCollector. Calls without a
// matching expectation are ignored.
type MetricsCollector struct {
	mock.Mock
	strict bool
}

// NewStrictMetricsCollector returns a collector that records calls through testify
func NewStrictMetricsCollector() *MetricsCollector {
	return &MetricsCollector{strict: true}
}

func (m *MetricsCollector) RecordCacheHit(ctx context.Context) {
	if m.strict {
		m.Called(ctx)
	}
}

func (m *MetricsCollector) RecordCacheMiss(ctx context.Context) {
	if m.strict {
		m.Called(ctx)
	}
}

func (m *MetricsCollector) RecordRemoteCall(ctx context.Context, operation string, success bool, duration time.Duration) {
	if m.strict {
		m.Called(ctx, operation, success, duration)
	}
}

func (m *MetricsCollector) RecordMaterialization(ctx context.Context, outcome string) {
	if m.strict {
		m.Called(ctx, outcome)
	}
}

var _ ports.MetricsCollector = (*MetricsCollector)(nil)

// CacheProvider is a mock of ports.CacheProvider
type CacheProvider struct {
	mock.Mock
}

func (m *CacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *CacheProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *CacheProvider) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *CacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *CacheProvider) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var _ ports.CacheProvider = (*CacheProvider)(nil)

// AreaCache is a mock of ports.AreaCache
type AreaCache struct {
	mock.Mock
}

func (m *AreaCache) Get(ctx context.Context) ([]ports.AOIData, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.AOIData), args.Error(1)
}

func (m *AreaCache) Set(ctx context.Context, aois []ports.AOIData, ttl time.Duration) error {
	return m.Called(ctx, aois, ttl).Error(0)
}

func (m *AreaCache) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var _ ports.AreaCache = (*AreaCache)(nil)
