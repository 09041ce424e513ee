package infrastructure

import (
	"context"

	"floodmap.app/internal/ports"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// Pinger is implemented by components that can verify their own connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// StorageHealthChecker checks the artifact store backend
type StorageHealthChecker struct {
	backend string
	pinger  Pinger
}

// NewStorageHealthChecker creates a health checker for the named backend
func NewStorageHealthChecker(backend string, pinger Pinger) *StorageHealthChecker {
	return &StorageHealthChecker{backend: backend, pinger: pinger}
}

// Check verifies the backend is reachable
func (s *StorageHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	return pingStatus(ctx, "storage", s.pinger, map[string]interface{}{"backend": s.backend})
}

// CacheHealthChecker checks the area listing cache. Caches that cannot be
// pinged, such as the in-memory one, are always healthy.
type CacheHealthChecker struct {
	cacheType string
	cache     interface{}
}

// NewCacheHealthChecker creates a new cache health checker
func NewCacheHealthChecker(cacheType string, cache interface{}) *CacheHealthChecker {
	return &CacheHealthChecker{cacheType: cacheType, cache: cache}
}

// Check pings the cache when it supports it
func (c *CacheHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	details := map[string]interface{}{"type": c.cacheType}
	pinger, ok := c.cache.(Pinger)
	if !ok {
		return ports.HealthStatus{Component: "cache", Status: statusHealthy, Details: details}
	}
	return pingStatus(ctx, "cache", pinger, details)
}

// CredentialChecker reports whether remote API credentials are configured
type CredentialChecker interface {
	HasCredentials() bool
}

// GFMHealthChecker reports whether the remote API can be used. It never
// contacts the API, so a health probe does not spend a login.
type GFMHealthChecker struct {
	baseURL     string
	credentials CredentialChecker
}

// NewGFMHealthChecker creates a new GFM health checker
func NewGFMHealthChecker(baseURL string, credentials CredentialChecker) *GFMHealthChecker {
	return &GFMHealthChecker{baseURL: baseURL, credentials: credentials}
}

// Check verifies the credentials are present
func (g *GFMHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "gfm",
		Status:    statusHealthy,
		Details: map[string]interface{}{
			"baseURL": g.baseURL,
		},
	}

	if g.credentials == nil || !g.credentials.HasCredentials() {
		status.Status = statusUnhealthy
		status.Error = "GFM credentials are not configured"
	}
	return status
}

func pingStatus(ctx context.Context, component string, pinger Pinger, details map[string]interface{}) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: component,
		Status:    statusHealthy,
		Details:   details,
	}

	if pinger == nil {
		status.Status = statusUnhealthy
		status.Error = component + " is not configured"
		return status
	}
	if err := pinger.Ping(ctx); err != nil {
		status.Status = statusUnhealthy
		status.Error = err.Error()
		return status
	}
	status.Details["connected"] = true
	return status
}
