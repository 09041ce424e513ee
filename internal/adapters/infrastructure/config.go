package infrastructure

import (
	"time"

	"floodmap.app/internal/config"
	"floodmap.app/internal/ports"
)

// ConfigProviderAdapter implements the ConfigProvider port
type ConfigProviderAdapter struct {
	config *config.Config
}

// NewConfigProviderAdapter creates a new config provider adapter
func NewConfigProviderAdapter(cfg *config.Config) *ConfigProviderAdapter {
	return &ConfigProviderAdapter{
		config: cfg,
	}
}

// GetServerConfig returns server configuration
func (c *ConfigProviderAdapter) GetServerConfig() ports.ServerConfig {
	return ports.ServerConfig{
		Port: c.config.Server.Port,
	}
}

// GetGFMConfig returns the remote API configuration
func (c *ConfigProviderAdapter) GetGFMConfig() ports.GFMConfig {
	return ports.GFMConfig{
		BaseURL:         c.config.GFM.BaseURL,
		Username:        c.config.GFM.Username,
		Password:        c.config.GFM.Password,
		Timeout:         time.Duration(c.config.GFM.TimeoutSeconds) * time.Second,
		MaxArchiveBytes: int64(c.config.GFM.MaxArchiveMB) << 20,
	}
}

// GetStorageConfig returns artifact storage configuration
func (c *ConfigProviderAdapter) GetStorageConfig() ports.StorageConfig {
	return ports.StorageConfig{
		Backend:   c.config.Storage.Backend.String(),
		Path:      c.config.Storage.Path,
		IndexFile: c.config.Storage.IndexFile,
	}
}

// GetDatabaseConfig returns database configuration
func (c *ConfigProviderAdapter) GetDatabaseConfig() ports.DatabaseConfig {
	return ports.DatabaseConfig{
		Driver:     c.config.Database.Driver,
		Host:       c.config.Database.Host,
		Port:       c.config.Database.Port,
		User:       c.config.Database.User,
		Password:   c.config.Database.Password,
		Name:       c.config.Database.Name,
		SSLMode:    c.config.Database.SSLMode,
		SQLitePath: c.config.Database.SQLitePath,
		DSN:        c.config.Database.GetDSN(),
	}
}

// GetCacheConfig returns cache configuration
func (c *ConfigProviderAdapter) GetCacheConfig() ports.CacheConfig {
	return ports.CacheConfig{
		Type: c.config.Cache.Type.String(),
		Redis: ports.RedisConfig{
			Addr:         c.config.Cache.Redis.Addr,
			Password:     c.config.Cache.Redis.Password,
			DB:           c.config.Cache.Redis.DB,
			DialTimeout:  c.config.Cache.Redis.DialTimeout,
			ReadTimeout:  c.config.Cache.Redis.ReadTimeout,
			WriteTimeout: c.config.Cache.Redis.WriteTimeout,
		},
	}
}

// GetAreaConfig returns area listing configuration
func (c *ConfigProviderAdapter) GetAreaConfig() ports.AreaConfig {
	return ports.AreaConfig{
		CacheTTL: time.Duration(c.config.Cache.AreaTTLMinutes) * time.Minute,
	}
}

// GetSyncConfig returns product synchronization configuration
func (c *ConfigProviderAdapter) GetSyncConfig() ports.SyncConfig {
	return ports.SyncConfig{
		GroupGap:        time.Duration(c.config.Sync.GroupGapSeconds) * time.Second,
		DownloadWorkers: c.config.Sync.DownloadWorkers,
	}
}
