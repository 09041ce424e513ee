// Package ports defines the interfaces for external dependencies in our hexagonal architecture.
// These interfaces are implemented by adapters and replaced by test doubles in use case tests.
package ports

// ApplicationPorts aggregates all ports for dependency injection
type ApplicationPorts struct {
	// Remote GFM API
	Credentials  CredentialStore
	RemoteClient RemoteAoiClient

	// Artifacts
	ArtifactStore ArtifactStore

	// Cache
	CacheProvider CacheProvider
	AreaCache     AreaCache

	// Infrastructure
	ConfigProvider ConfigProvider
	Logger         Logger
	Metrics        MetricsCollector
}
