package main

import (
	"go.uber.org/zap"

	"github.com/pantrybook/backend/config"
	"github.com/pantrybook/backend/internal/database"
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
		logger.Fatal("migration failed", zap.Error(err))
	}

	logger.Info("migrations applied")
}
