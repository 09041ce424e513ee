package config

import (
	"fmt"
	"log/slog"
	"strings"

	"floodmap.app/pkg/errors"
	"github.com/kelseyhightower/envconfig"
)

const (
	maxRedisDB           = 15
	maxCacheTTLMinutes   = 1440
	maxPortNumber        = 65535
	maxDownloadWorkers   = 16
	maxGroupGapSeconds   = 3600
	maxArchiveMegabytes  = 4096
	maxGFMTimeoutSeconds = 600
)

// Config represents the application configuration structure
type Config struct {
	Server   ServerConfig   `split_words:"true"`
	GFM      GFMConfig      `split_words:"true"`
	Storage  StorageConfig  `split_words:"true"`
	Database DatabaseConfig `split_words:"true"`
	Cache    CacheConfig    `split_words:"true"`
	Sync     SyncConfig     `split_words:"true"`
	Logging  LoggingConfig  `split_words:"true"`
}

type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

// GFMConfig holds the Global Flood Monitoring API settings. Username and
// Password are secrets and must never be logged.
type GFMConfig struct {
	Username       string `envconfig:"GFM_USERNAME"`
	Password       string `envconfig:"GFM_PASSWORD"`
	BaseURL        string `envconfig:"GFM_BASE_URL" default:"https://api.gfm.eodc.eu/v2"`
	TimeoutSeconds int    `envconfig:"GFM_TIMEOUT_SECONDS" default:"60"`
	MaxArchiveMB   int    `envconfig:"GFM_MAX_ARCHIVE_MB" default:"512"`
}

// StorageBackend selects where materialized artifacts and the index live
type StorageBackend int

const (
	StorageBackendUnknown StorageBackend = iota
	StorageBackendFilesystem
	StorageBackendDatabase
)

// String returns the string representation of the storage backend
func (s StorageBackend) String() string {
	switch s {
	case StorageBackendFilesystem:
		return "filesystem"
	case StorageBackendDatabase:
		return "database"
	default:
		return "unknown"
	}
}

// IsValid checks if the storage backend is valid
func (s StorageBackend) IsValid() bool {
	return s == StorageBackendFilesystem || s == StorageBackendDatabase
}

// StorageBackendFromString converts string to StorageBackend enum
func StorageBackendFromString(s string) StorageBackend {
	switch s {
	case "filesystem":
		return StorageBackendFilesystem
	case "database":
		return StorageBackendDatabase
	default:
		return StorageBackendUnknown
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for envconfig
func (s *StorageBackend) UnmarshalText(text []byte) error {
	*s = StorageBackendFromString(string(text))
	return nil
}

// MarshalText implements encoding.TextMarshaler for envconfig
func (s StorageBackend) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type StorageConfig struct {
	Backend   StorageBackend `envconfig:"STORAGE_BACKEND" default:"filesystem"`
	Path      string         `envconfig:"STORAGE_PATH" default:"./output"`
	IndexFile string         `envconfig:"STORAGE_INDEX_FILE" default:"index.csv"`
}

type DatabaseConfig struct {
	Driver     string `envconfig:"DB_DRIVER" default:"sqlite"`
	Host       string `envconfig:"DB_HOST" default:"localhost"`
	Port       int    `envconfig:"DB_PORT" default:"5432"`
	User       string `envconfig:"DB_USER" default:"postgres"`
	Password   string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name       string `envconfig:"DB_NAME" default:"floodmap"`
	SSLMode    string `envconfig:"DB_SSL_MODE" default:"disable"`
	SQLitePath string `envconfig:"DB_SQLITE_PATH" default:"./output/floodmap.db"`
}

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// CacheType represents the type of cache to use
type CacheType int

const (
	CacheTypeUnknown CacheType = iota
	CacheTypeMemory
	CacheTypeRedis
)

// String returns the string representation of cache type
func (c CacheType) String() string {
	switch c {
	case CacheTypeMemory:
		return "memory"
	case CacheTypeRedis:
		return "redis"
	default:
		return "unknown"
	}
}

// IsValid checks if the cache type is valid
func (c CacheType) IsValid() bool {
	return c == CacheTypeMemory || c == CacheTypeRedis
}

// CacheTypeFromString converts string to CacheType enum
func CacheTypeFromString(s string) CacheType {
	switch s {
	case "memory":
		return CacheTypeMemory
	case "redis":
		return CacheTypeRedis
	default:
		return CacheTypeUnknown
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for envconfig
func (c *CacheType) UnmarshalText(text []byte) error {
	*c = CacheTypeFromString(string(text))
	return nil
}

// MarshalText implements encoding.TextMarshaler for envconfig
func (c CacheType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type CacheConfig struct {
	Type           CacheType   `envconfig:"CACHE_TYPE" default:"memory"`
	AreaTTLMinutes int         `envconfig:"AREA_CACHE_TTL_MINUTES" default:"10"`
	Redis          RedisConfig `split_words:"true"`
}

type RedisConfig struct {
	Addr         string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password     string `envconfig:"REDIS_PASSWORD" default:""`
	DB           int    `envconfig:"REDIS_DB" default:"0"`
	DialTimeout  int    `envconfig:"REDIS_DIAL_TIMEOUT" default:"5"`
	ReadTimeout  int    `envconfig:"REDIS_READ_TIMEOUT" default:"3"`
	WriteTimeout int    `envconfig:"REDIS_WRITE_TIMEOUT" default:"3"`
}

type SyncConfig struct {
	GroupGapSeconds int `envconfig:"SYNC_GROUP_GAP_SECONDS" default:"60"`
	DownloadWorkers int `envconfig:"SYNC_DOWNLOAD_WORKERS" default:"1"`
}

type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// SlogLevel maps the configured level name to a slog.Level
func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.GFM.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if c.Storage.Backend == StorageBackendDatabase {
		if err := c.Database.Validate(); err != nil {
			return err
		}
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Sync.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > maxPortNumber {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	return nil
}

func (g *GFMConfig) Validate() error {
	if g.Username == "" || g.Password == "" {
		return errors.NewConfigurationError("GFM_USERNAME and GFM_PASSWORD must be set", nil)
	}
	if !strings.HasPrefix(g.BaseURL, "http://") && !strings.HasPrefix(g.BaseURL, "https://") {
		return errors.NewConfigurationError("GFM_BASE_URL must start with http:// or https://", nil)
	}
	if g.TimeoutSeconds < 1 || g.TimeoutSeconds > maxGFMTimeoutSeconds {
		return errors.NewConfigurationError("GFM_TIMEOUT_SECONDS must be between 1 and 600", nil)
	}
	if g.MaxArchiveMB < 1 || g.MaxArchiveMB > maxArchiveMegabytes {
		return errors.NewConfigurationError("GFM_MAX_ARCHIVE_MB must be between 1 and 4096", nil)
	}
	return nil
}

func (s *StorageConfig) Validate() error {
	if !s.Backend.IsValid() {
		return errors.NewConfigurationError("STORAGE_BACKEND must be one of: filesystem, database", nil)
	}
	if s.Backend == StorageBackendFilesystem {
		if strings.TrimSpace(s.Path) == "" {
			return errors.NewConfigurationError("STORAGE_PATH cannot be empty", nil)
		}
		if strings.TrimSpace(s.IndexFile) == "" {
			return errors.NewConfigurationError("STORAGE_INDEX_FILE cannot be empty", nil)
		}
	}
	return nil
}

func (d *DatabaseConfig) Validate() error {
	switch d.Driver {
	case "sqlite":
		if d.SQLitePath == "" {
			return errors.NewConfigurationError("DB_SQLITE_PATH cannot be empty", nil)
		}
		return nil
	case "postgres":
	default:
		return errors.NewConfigurationError("DB_DRIVER must be one of: postgres, sqlite", nil)
	}

	if d.Host == "" {
		return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
	}
	if d.Port < 1 || d.Port > maxPortNumber {
		return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
	}
	if d.User == "" {
		return errors.NewConfigurationError("DB_USER cannot be empty", nil)
	}
	if d.Name == "" {
		return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
	}
	return d.ValidateSSLMode()
}

func (d *DatabaseConfig) ValidateSSLMode() error {
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	for _, mode := range validSSLModes {
		if d.SSLMode == mode {
			return nil
		}
	}
	return errors.NewConfigurationError(
		fmt.Sprintf("DB_SSL_MODE must be one of: %s", strings.Join(validSSLModes, ", ")), nil)
}

func (c *CacheConfig) Validate() error {
	if !c.Type.IsValid() {
		return errors.NewConfigurationError("CACHE_TYPE must be one of: memory, redis", nil)
	}
	if c.AreaTTLMinutes < 1 || c.AreaTTLMinutes > maxCacheTTLMinutes {
		return errors.NewConfigurationError("AREA_CACHE_TTL_MINUTES must be between 1 and 1440 minutes", nil)
	}

	if c.Type == CacheTypeRedis {
		return c.Redis.Validate()
	}

	return nil
}

func (r *RedisConfig) Validate() error {
	if r.Addr == "" {
		return errors.NewConfigurationError("REDIS_ADDR cannot be empty when using Redis cache", nil)
	}
	if r.DB < 0 || r.DB > maxRedisDB {
		return errors.NewConfigurationError("REDIS_DB must be between 0 and 15", nil)
	}
	if r.DialTimeout < 1 || r.ReadTimeout < 1 || r.WriteTimeout < 1 {
		return errors.NewConfigurationError("Redis timeouts must be at least 1 second", nil)
	}
	return nil
}

func (s *SyncConfig) Validate() error {
	if s.GroupGapSeconds < 1 || s.GroupGapSeconds > maxGroupGapSeconds {
		return errors.NewConfigurationError("SYNC_GROUP_GAP_SECONDS must be between 1 and 3600", nil)
	}
	if s.DownloadWorkers < 1 || s.DownloadWorkers > maxDownloadWorkers {
		return errors.NewConfigurationError("SYNC_DOWNLOAD_WORKERS must be between 1 and 16", nil)
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return errors.NewConfigurationError("LOG_LEVEL must be one of: debug, info, warn, error", nil)
	}
}
