// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"custody/internal/infrastructure/http/v1/handlers"
	"custody/internal/infrastructure/http/v1/middleware"
	"custody/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Health serves the /health probes
	Health *handlers.HealthHandler

	// Invoices drives the invoice lifecycle
	Invoices handlers.InvoiceService

	// RequestTimeout bounds each API request (zero disables)
	RequestTimeout time.Duration

	// Development switches gin to debug mode
	Development bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters: Recovery sits inside ErrorHandler so panics are rendered)
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	if cfg.Health != nil {
		health := router.Group("/health")
		health.GET("/live", cfg.Health.Live)
		health.GET("/ready", cfg.Health.Ready)
		health.GET("/info", cfg.Health.Info)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.Timeout(cfg.RequestTimeout))

	baseHandler := handlers.NewBaseHandler()
	RegisterDocumentRoutes(api.Group("/invoices"), handlers.NewInvoiceHandler(baseHandler, cfg.Invoices))

	return router
}
