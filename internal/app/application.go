package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"floodmap.app/internal/adapters/api"
	"floodmap.app/internal/adapters/external"
	"floodmap.app/internal/config"
	"floodmap.app/internal/core/area"
	"floodmap.app/internal/core/product"
	"floodmap.app/internal/ports"
	"github.com/gin-gonic/gin"
)

type Application struct {
	config *config.Config

	// Use Cases
	areaUseCase    *area.UseCase
	productUseCase *product.UseCase

	// Adapters
	httpServer *http.Server
	router     *gin.Engine

	// Infrastructure
	deps  *DependencyContainer
	ports *ports.ApplicationPorts
}

func NewApplication() (*Application, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return NewApplicationWithConfig(cfg, nil)
}

// NewApplicationWithConfig wires the application from an already loaded
// configuration. httpClient overrides the client used for GFM traffic.
func NewApplicationWithConfig(cfg *config.Config, httpClient external.HTTPClient) (*Application, error) {
	app := &Application{config: cfg}

	if err := app.initializePorts(httpClient); err != nil {
		return nil, fmt.Errorf("initialize ports: %w", err)
	}

	if err := app.initializeUseCases(); err != nil {
		_ = app.deps.Cleanup()
		return nil, fmt.Errorf("initialize use cases: %w", err)
	}

	if err := app.initializeAdapters(); err != nil {
		_ = app.deps.Cleanup()
		return nil, fmt.Errorf("initialize adapters: %w", err)
	}

	return app, nil
}

func (a *Application) initializePorts(httpClient external.HTTPClient) error {
	slog.Info("Initializing application ports...")

	deps, err := NewDependencyContainer(a.config, slog.Default(), httpClient)
	if err != nil {
		return fmt.Errorf("create dependency container: %w", err)
	}

	a.deps = deps
	a.ports = deps.ApplicationPorts()
	slog.Info("Application ports initialized successfully")
	return nil
}

func (a *Application) initializeUseCases() error {
	slog.Info("Initializing use cases...")

	areaUseCase, err := area.NewUseCase(area.UseCaseDependencies{
		Remote:  a.ports.RemoteClient,
		Cache:   a.ports.AreaCache,
		Config:  a.ports.ConfigProvider,
		Logger:  a.ports.Logger,
		Metrics: a.ports.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create area use case: %w", err)
	}
	a.areaUseCase = areaUseCase

	productUseCase, err := product.NewUseCase(product.UseCaseDependencies{
		Remote:  a.ports.RemoteClient,
		Store:   a.ports.ArtifactStore,
		Areas:   a.areaUseCase,
		Config:  a.ports.ConfigProvider,
		Logger:  a.ports.Logger,
		Metrics: a.ports.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create product use case: %w", err)
	}
	a.productUseCase = productUseCase

	slog.Info("Use cases initialized successfully")
	return nil
}

func (a *Application) initializeAdapters() error {
	slog.Info("Initializing adapters...")

	httpAdapter, err := api.NewHTTPServerAdapter(api.ServerOptions{
		Config: api.ServerConfig{
			Port: a.config.Server.Port,
		},
		AreaUseCase:    a.areaUseCase,
		ProductUseCase: a.productUseCase,
		HealthChecker:  a.deps.HealthChecker(),
		MetricsHandler: a.deps.MetricsHandler(),
		Logger:         a.ports.Logger,
	})
	if err != nil {
		return fmt.Errorf("create HTTP adapter: %w", err)
	}

	a.router = httpAdapter.GetRouter()

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("Adapters initialized successfully")
	return nil
}

func (a *Application) Start(ctx context.Context) error {
	slog.Info("Starting HTTP server", "port", a.config.Server.Port)
	if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

func (a *Application) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down application...")

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Error shutting down HTTP server", "error", err)
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}

	if err := a.deps.Cleanup(); err != nil {
		slog.Warn("Error releasing resources", "error", err)
	}

	slog.Info("Application shutdown complete")
	return nil
}

// Config returns the application configuration
func (a *Application) Config() *config.Config {
	return a.config
}

// GetRouter returns the Gin router for testing
func (a *Application) GetRouter() *gin.Engine {
	return a.router
}

func (a *Application) GetAreaUseCase() *area.UseCase {
	return a.areaUseCase
}

func (a *Application) GetProductUseCase() *product.UseCase {
	return a.productUseCase
}
