package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pantrybook/backend/config"
	"github.com/pantrybook/backend/internal/api"
	"github.com/pantrybook/backend/internal/database"
	"github.com/pantrybook/backend/internal/middleware"
	"github.com/pantrybook/backend/internal/router"
	"github.com/pantrybook/backend/internal/server"
	"github.com/pantrybook/backend/internal/service"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	userService := service.NewUserService(db)
	authService := service.NewAuthService(userService, cfg.JWTSecret)
	recipeService := service.NewRecipeService(db)

	images, uploadDir, err := newImageStore(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize image storage", zap.Error(err))
	}

	var createLimit, modifyLimit gin.HandlerFunc
	if cfg.RedisEnabled() {
		redisClient, err := database.NewRedisClient(cfg, logger)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		createLimit = middleware.NewRecipeCreationRateLimiter(redisClient).Middleware()
		modifyLimit = middleware.NewRecipeModificationRateLimiter(redisClient).Middleware()
	}

	engine := router.Setup(router.Options{
		Config:        cfg,
		Logger:        logger,
		DB:            db,
		AuthHandler:   api.NewAuthHandler(authService, userService, logger),
		RecipeHandler: api.NewRecipeHandler(recipeService, images, logger),
		Validator:     authService,
		CreateLimit:   createLimit,
		ModifyLimit:   modifyLimit,
		UploadDir:     uploadDir,
	})

	srv := server.New(cfg, engine, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}

// newImageStore builds the configured image backend. The returned directory
// is empty unless local uploads should be served statically.
func newImageStore(cfg *config.Config, logger *zap.Logger) (service.ImageStore, string, error) {
	if cfg.ImageStorage == "s3" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.S3Region))
		if err != nil {
			return nil, "", err
		}
		return service.NewS3ImageStore(s3.NewFromConfig(awsCfg), cfg.S3Bucket, logger), "", nil
	}

	local, err := service.NewLocalImageStore(cfg.UploadDir, logger)
	if err != nil {
		return nil, "", err
	}
	return local, local.Dir(), nil
}
