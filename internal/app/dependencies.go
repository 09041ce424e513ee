package app

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"floodmap.app/internal/adapters/external"
	"floodmap.app/internal/adapters/infrastructure"
	"floodmap.app/internal/adapters/storage"
	"floodmap.app/internal/config"
	"floodmap.app/internal/ports"
)

type DependencyContainer struct {
	config      *config.Config
	ports       *ports.ApplicationPorts
	backend     *storage.Backend
	metrics     *infrastructure.PrometheusMetricsCollector
	credentials *external.GFMCredentialStore
	health      *infrastructure.SystemHealthChecker
}

// NewDependencyContainer builds every port from configuration. httpClient is
// used for all GFM traffic; nil selects a client with the configured timeout.
func NewDependencyContainer(cfg *config.Config, logger *slog.Logger, httpClient external.HTTPClient) (*DependencyContainer, error) {
	container := &DependencyContainer{config: cfg}

	if err := container.initializePorts(logger, httpClient); err != nil {
		_ = container.Cleanup()
		return nil, fmt.Errorf("initialize ports: %w", err)
	}

	return container, nil
}

func (c *DependencyContainer) initializePorts(slogger *slog.Logger, httpClient external.HTTPClient) error {
	slog.Info("Initializing ports...")

	configProvider := infrastructure.NewConfigProviderAdapter(c.config)
	logger := infrastructure.NewSlogLoggerAdapter(slogger)
	c.metrics = infrastructure.NewPrometheusMetricsCollector()

	cacheConfig := configProvider.GetCacheConfig()
	cacheProvider, err := external.NewCacheProviderFactory().CreateCacheProvider(cacheConfig)
	if err != nil {
		return fmt.Errorf("create cache provider: %w", err)
	}
	slog.Info("Cache provider initialized", "type", cacheConfig.Type)

	gfmConfig := configProvider.GetGFMConfig()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: gfmConfig.Timeout}
	}
	c.credentials = external.NewGFMCredentialStore(external.GFMCredentialStoreParams{
		BaseURL:  gfmConfig.BaseURL,
		Username: gfmConfig.Username,
		Password: gfmConfig.Password,
		Client:   httpClient,
		Logger:   logger,
	})
	gfmClient, err := external.NewGFMClient(external.GFMClientParams{
		BaseURL:         gfmConfig.BaseURL,
		Credentials:     c.credentials,
		Client:          httpClient,
		MaxArchiveBytes: gfmConfig.MaxArchiveBytes,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("create GFM client: %w", err)
	}
	remote := external.NewRemoteClientLoggingDecorator(gfmClient, logger, c.metrics)

	backend, err := storage.NewBackend(configProvider.GetStorageConfig(), configProvider.GetDatabaseConfig(), logger)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}
	c.backend = backend
	slog.Info("Artifact store initialized", "backend", backend.Name)

	c.health = infrastructure.NewSystemHealthChecker(infrastructure.SystemHealthCheckerConfig{
		StorageChecker: infrastructure.NewStorageHealthChecker(backend.Name, backend),
		CacheChecker:   infrastructure.NewCacheHealthChecker(cacheConfig.Type, cacheProvider),
		GFMChecker:     infrastructure.NewGFMHealthChecker(gfmConfig.BaseURL, c.credentials),
		ConfigProvider: configProvider,
	})

	c.ports = &ports.ApplicationPorts{
		Credentials:    c.credentials,
		RemoteClient:   remote,
		ArtifactStore:  backend.Store,
		CacheProvider:  cacheProvider,
		AreaCache:      external.NewAreaCacheAdapter(cacheProvider),
		ConfigProvider: configProvider,
		Logger:         logger,
		Metrics:        c.metrics,
	}

	slog.Info("Ports initialized successfully")
	return nil
}

func (c *DependencyContainer) ApplicationPorts() *ports.ApplicationPorts {
	return c.ports
}

// MetricsHandler serves the Prometheus registry of this container
func (c *DependencyContainer) MetricsHandler() http.Handler {
	return c.metrics.Handler()
}

func (c *DependencyContainer) HealthChecker() ports.SystemHealthChecker {
	return c.health
}

// Cleanup releases the storage backend and the cache connection
func (c *DependencyContainer) Cleanup() error {
	var firstErr error
	if c.backend != nil {
		if err := c.backend.Close(); err != nil {
			firstErr = fmt.Errorf("close artifact store: %w", err)
		}
	}
	if c.ports != nil {
		if closer, ok := c.ports.CacheProvider.(io.Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("close cache: %w", err)
			}
		}
	}
	return firstErr
}
