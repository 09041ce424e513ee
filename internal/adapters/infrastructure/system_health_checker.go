package infrastructure

import (
	"context"

	"floodmap.app/internal/ports"
)

// SystemHealthChecker aggregates all health checks
type SystemHealthChecker struct {
	checkers       map[string]ports.HealthChecker
	configProvider ports.ConfigProvider
}

// SystemHealthCheckerConfig holds the configuration for creating a system health checker
type SystemHealthCheckerConfig struct {
	StorageChecker ports.HealthChecker
	CacheChecker   ports.HealthChecker
	GFMChecker     ports.HealthChecker
	ConfigProvider ports.ConfigProvider
}

// NewSystemHealthChecker creates a new system health checker
func NewSystemHealthChecker(config SystemHealthCheckerConfig) *SystemHealthChecker {
	checkers := make(map[string]ports.HealthChecker)
	if config.StorageChecker != nil {
		checkers["storage"] = config.StorageChecker
	}
	if config.CacheChecker != nil {
		checkers["cache"] = config.CacheChecker
	}
	if config.GFMChecker != nil {
		checkers["gfm"] = config.GFMChecker
	}

	return &SystemHealthChecker{
		checkers:       checkers,
		configProvider: config.ConfigProvider,
	}
}

// CheckAll performs health checks on all components
func (s *SystemHealthChecker) CheckAll(ctx context.Context) map[string]ports.HealthStatus {
	results := make(map[string]ports.HealthStatus, len(s.checkers)+1)

	for name, checker := range s.checkers {
		results[name] = checker.Check(ctx)
	}

	if s.configProvider != nil {
		syncConfig := s.configProvider.GetSyncConfig()
		results["config"] = ports.HealthStatus{
			Component: "config",
			Status:    statusHealthy,
			Details: map[string]interface{}{
				"storageBackend":  s.configProvider.GetStorageConfig().Backend,
				"groupGapSeconds": int(syncConfig.GroupGap.Seconds()),
				"downloadWorkers": syncConfig.DownloadWorkers,
			},
		}
	}

	return results
}
