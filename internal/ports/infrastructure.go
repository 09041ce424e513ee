package ports

import (
	"context"
	"time"
)

// ServerConfig represents server configuration
type ServerConfig struct {
	Port int
}

// GFMConfig represents the remote API configuration. Username and Password
// are secrets.
type GFMConfig struct {
	BaseURL         string
	Username        string
	Password        string
	Timeout         time.Duration
	MaxArchiveBytes int64
}

// StorageConfig represents artifact storage configuration
type StorageConfig struct {
	Backend   string
	Path      string
	IndexFile string
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
	DSN        string
}

// CacheConfig represents cache configuration
type CacheConfig struct {
	Type  string
	Redis RedisConfig
}

// RedisConfig represents Redis configuration
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  int
	ReadTimeout  int
	WriteTimeout int
}

// AreaConfig represents area listing configuration
type AreaConfig struct {
	CacheTTL time.Duration
}

// SyncConfig represents product synchronization configuration
type SyncConfig struct {
	GroupGap        time.Duration
	DownloadWorkers int
}

// ConfigProvider defines the contract for configuration management
type ConfigProvider interface {
	GetServerConfig() ServerConfig
	GetGFMConfig() GFMConfig
	GetStorageConfig() StorageConfig
	GetDatabaseConfig() DatabaseConfig
	GetCacheConfig() CacheConfig
	GetAreaConfig() AreaConfig
	GetSyncConfig() SyncConfig
}

// Logger defines the contract for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a log field
type Field struct {
	Key   string
	Value interface{}
}

// F creates a log field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// MetricsCollector defines the contract for metrics collection
type MetricsCollector interface {
	RecordCacheHit(ctx context.Context)
	RecordCacheMiss(ctx context.Context)
	RecordRemoteCall(ctx context.Context, operation string, success bool, duration time.Duration)
	RecordMaterialization(ctx context.Context, outcome string)
}
