package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pantrybook/backend/config"
	"github.com/pantrybook/backend/internal/api"
	"github.com/pantrybook/backend/internal/database"
	"github.com/pantrybook/backend/internal/middleware"
)

// Options carries everything the route table needs.
type Options struct {
	Config        *config.Config
	Logger        *zap.Logger
	DB            *gorm.DB
	AuthHandler   *api.AuthHandler
	RecipeHandler *api.RecipeHandler
	Validator     middleware.TokenValidator

	// CreateLimit/ModifyLimit are nil when redis is not configured.
	CreateLimit gin.HandlerFunc
	ModifyLimit gin.HandlerFunc

	// UploadDir, when non-empty, is served statically under /uploads.
	UploadDir string
}

// Setup configures the application routes
func Setup(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(middleware.CORS(opts.Config.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context(), opts.DB); err != nil {
			opts.Logger.Error("health check failed", zap.Error(err))
			c.JSON(503, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(200, gin.H{"status": "healthy"})
	})

	if opts.UploadDir != "" {
		router.Static("/uploads", opts.UploadDir)
	}

	apiGroup := router.Group("/api")

	// Public auth routes
	opts.AuthHandler.RegisterRoutes(apiGroup)

	// Protected routes
	protected := apiGroup.Group("")
	protected.Use(middleware.AuthMiddleware(opts.Validator))
	{
		opts.AuthHandler.RegisterProtectedRoutes(protected)
		opts.RecipeHandler.RegisterRoutes(protected, opts.CreateLimit, opts.ModifyLimit)
	}

	return router
}
