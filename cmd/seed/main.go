package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/pantrybook/backend/config"
	"github.com/pantrybook/backend/internal/database"
	"github.com/pantrybook/backend/internal/model"
	"github.com/pantrybook/backend/internal/service"
)

// Seeds a demo account with a handful of recipes for local development.
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

	ctx := context.Background()
	users := service.NewUserService(db)
	auth := service.NewAuthService(users, cfg.JWTSecret)
	recipes := service.NewRecipeService(db)

	if _, err := auth.Register(ctx, "Demo", "Cook", "demo@pantrybook.dev", "demo-password-1"); err != nil {
		logger.Warn("demo user not created (may already exist)", zap.Error(err))
	}

	var demo model.User
	if err := db.Where("email = ?", "demo@pantrybook.dev").First(&demo).Error; err != nil {
		logger.Fatal("demo user missing", zap.Error(err))
	}

	seedRecipes := []model.Recipe{
		{
			Title:        "Chocolate Chip Pancakes",
			Description:  "Fluffy pancakes studded with dark chocolate.",
			Category:     "breakfast",
			CookTime:     "25 minutes",
			Servings:     "4",
			Ingredients:  model.JSONStringArray{"2 cups flour", "2 eggs", "1 cup milk", "1/2 cup chocolate chips"},
			Instructions: model.JSONStringArray{"Whisk dry ingredients", "Fold in wet ingredients", "Cook on a hot griddle"},
			Tags:         model.JSONStringArray{"sweet", "weekend"},
		},
		{
			Title:        "Weeknight Lentil Soup",
			Description:  "One-pot soup with pantry staples.",
			Category:     "dinner",
			CookTime:     "40 minutes",
			Servings:     "6",
			Ingredients:  model.JSONStringArray{"1 cup red lentils", "1 onion", "2 carrots", "4 cups stock"},
			Instructions: model.JSONStringArray{"Sweat the aromatics", "Add lentils and stock", "Simmer until tender"},
			Tags:         model.JSONStringArray{"vegan", "one-pot"},
		},
		{
			Title:        "Lemon Bars",
			Description:  "Tart lemon curd on shortbread.",
			Category:     "dessert",
			CookTime:     "1 hour",
			Servings:     "12",
			Ingredients:  model.JSONStringArray{"1 cup butter", "2 cups sugar", "4 lemons", "3 eggs"},
			Instructions: model.JSONStringArray{"Bake the shortbread base", "Pour over the curd", "Bake again and chill"},
			Tags:         model.JSONStringArray{"baking"},
		},
	}

	for i := range seedRecipes {
		if _, err := recipes.Create(ctx, demo.ID, &seedRecipes[i]); err != nil {
			logger.Fatal("failed to seed recipe", zap.String("title", seedRecipes[i].Title), zap.Error(err))
		}
	}

	logger.Info("seeded demo recipes", zap.Int("count", len(seedRecipes)))
}
