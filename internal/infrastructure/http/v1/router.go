// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/domain/auth"
	"stockledger/internal/domain/catalogs/product"
	"stockledger/internal/domain/documents/order"
	"stockledger/internal/domain/movement"
	"stockledger/internal/infrastructure/http/v1/handlers"
	"stockledger/internal/infrastructure/http/v1/middleware"
	"stockledger/internal/infrastructure/storage/postgres"
	"stockledger/pkg/logger"
)

// RouterConfig contains router dependencies.
type RouterConfig struct {
	Logger           *logger.Logger
	Pool             *postgres.Pool
	IdempotencyStore *postgres.IdempotencyStore

	AuthService     *auth.Service
	ProductService  *product.Service
	OrderService    *order.Service
	MovementService *movement.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	base := handlers.NewBaseHandler()

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	apiV1 := router.Group("/api/v1")

	// Public auth endpoints
	authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
	authHandler.RegisterRoutes(apiV1.Group("/auth"))

	// Protected endpoints
	protected := apiV1.Group("")
	protected.Use(middleware.Auth(cfg.AuthService.Validator()))
	protected.Use(middleware.Idempotency(cfg.IdempotencyStore))

	productHandler := handlers.NewProductHandler(base, cfg.ProductService)
	productHandler.RegisterRoutes(protected.Group("/catalog/products"))

	orderHandler := handlers.NewOrderHandler(base, cfg.OrderService)
	orderHandler.RegisterRoutes(protected.Group("/document/orders"))

	movementHandler := handlers.NewMovementHandler(base, cfg.MovementService)
	movementHandler.RegisterRoutes(protected.Group("/movements"))

	return router
}
