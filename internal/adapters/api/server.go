// Package api provides HTTP adapters for the hexagonal architecture
// These adapters handle incoming HTTP requests and translate them to use cases
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"floodmap.app/internal/core/area"
	"floodmap.app/internal/core/product"
	"floodmap.app/internal/ports"
	"floodmap.app/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb/geojson"
)

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port int
}

// HTTPServerAdapter implements HTTP server using Gin framework
type HTTPServerAdapter struct {
	router         *gin.Engine
	config         ServerConfig
	areaUseCase    AreaUseCase
	productUseCase ProductUseCase
	healthChecker  ports.SystemHealthChecker
	metricsHandler http.Handler
	logger         ports.Logger
}

// Use case interfaces that the HTTP adapter depends on
type AreaUseCase interface {
	SortedAreas(ctx context.Context) ([]area.AOI, error)
	GetArea(ctx context.Context, id string) (*area.AOI, error)
	CreateArea(ctx context.Context, request area.CreateAreaRequest) (*area.AOI, error)
	DeleteArea(ctx context.Context, id, confirmation string) error
}

type ProductUseCase interface {
	AvailableProducts(ctx context.Context, aoiID string, dates product.DateRange) ([]product.GroupSummary, error)
	DownloadGroupByKey(ctx context.Context, aoiID string, dates product.DateRange, key time.Time) (*product.DownloadResult, error)
	GetGeometry(ctx context.Context, productID string, kind ports.GeometryKind) (*geojson.FeatureCollection, error)
	CatalogCoverage(ctx context.Context) (*product.CoverageReport, error)
}

// ServerOptions represents options for creating the HTTP server
type ServerOptions struct {
	Config         ServerConfig
	AreaUseCase    AreaUseCase
	ProductUseCase ProductUseCase
	HealthChecker  ports.SystemHealthChecker
	MetricsHandler http.Handler
	Logger         ports.Logger
}

// NewHTTPServerAdapter creates a new HTTP server adapter
func NewHTTPServerAdapter(opts ServerOptions) (*HTTPServerAdapter, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server options: %w", err)
	}
	if err := RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestIDMiddleware(), requestLogger(opts.Logger))

	server := &HTTPServerAdapter{
		router:         router,
		config:         opts.Config,
		areaUseCase:    opts.AreaUseCase,
		productUseCase: opts.ProductUseCase,
		healthChecker:  opts.HealthChecker,
		metricsHandler: opts.MetricsHandler,
		logger:         opts.Logger,
	}

	server.setupRoutes()
	return server, nil
}

// Validate checks if all required dependencies are provided
func (opts *ServerOptions) Validate() error {
	if opts.AreaUseCase == nil {
		return errors.NewValidationError("area use case is required")
	}
	if opts.ProductUseCase == nil {
		return errors.NewValidationError("product use case is required")
	}
	if opts.HealthChecker == nil {
		return errors.NewValidationError("health checker is required")
	}
	if opts.MetricsHandler == nil {
		return errors.NewValidationError("metrics handler is required")
	}
	if opts.Logger == nil {
		return errors.NewValidationError("logger is required")
	}
	return nil
}

// setupRoutes configures all HTTP routes
func (s *HTTPServerAdapter) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/areas", s.listAreas)
		api.POST("/areas", s.createArea)
		api.DELETE("/areas/:id", s.deleteArea)
		api.GET("/areas/:id/products", s.listProducts)
		api.POST("/areas/:id/downloads", s.downloadGroup)
		api.GET("/products/:id/geometry/:kind", s.getGeometry)
		api.GET("/catalog", s.getCatalog)
	}

	s.router.GET("/health", s.getHealth)
	s.router.GET("/metrics", gin.WrapH(s.metricsHandler))
}

// GetRouter returns the router for testing purposes
func (s *HTTPServerAdapter) GetRouter() *gin.Engine {
	return s.router
}
