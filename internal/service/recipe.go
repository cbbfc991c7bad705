package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pantrybook/backend/internal/model"
)

// ErrNotFound is the absent signal: no row matched the id (and, for Update,
// the owner). Callers cannot tell "no such recipe" from "not yours".
var ErrNotFound = errors.New("recipe not found")

// RecipeService owns recipe persistence. Every operation except GetByID is
// scoped by the owning user id in the query predicate itself, so rows of
// other users are structurally unreachable.
type RecipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// GetByUser returns all recipes owned by userID, newest-created first.
func (s *RecipeService) GetByUser(ctx context.Context, userID string) ([]model.Recipe, error) {
	var recipes []model.Recipe
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// GetByID looks up a recipe by id alone. Ownership is deliberately NOT
// checked here; the endpoint layer compares the owner after the fetch.
func (s *RecipeService) GetByID(ctx context.Context, id uint) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// Create inserts a new recipe owned by userID. Any owner present on the
// payload is overwritten with the authenticated caller's id.
func (s *RecipeService) Create(ctx context.Context, userID string, recipe *model.Recipe) (*model.Recipe, error) {
	recipe.ID = 0
	recipe.UserID = userID
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, err
	}
	return recipe, nil
}

// Update applies a partial update to the recipe matching both id and userID.
// Only the supplied fields change; updated_at is always refreshed. Zero rows
// matched returns ErrNotFound.
func (s *RecipeService) Update(ctx context.Context, id uint, userID string, changes map[string]interface{}) (*model.Recipe, error) {
	changes["updated_at"] = time.Now()

	result := s.db.WithContext(ctx).
		Model(&model.Recipe{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(changes)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Delete removes the recipe matching both id and userID and reports whether
// a row was actually removed. Hard delete, no tombstone.
func (s *RecipeService) Delete(ctx context.Context, id uint, userID string) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Recipe{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Search returns userID's recipes, optionally narrowed by a case-insensitive
// substring match on title or description and an exact category match.
// Filters compose with AND; with neither set it is equivalent to GetByUser.
func (s *RecipeService) Search(ctx context.Context, userID, query, category string) ([]model.Recipe, error) {
	dbQuery := s.db.WithContext(ctx).Where("user_id = ?", userID)

	if query != "" {
		like := "%" + strings.ToLower(query) + "%"
		dbQuery = dbQuery.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	if category != "" {
		dbQuery = dbQuery.Where("category = ?", category)
	}

	var recipes []model.Recipe
	if err := dbQuery.Order("created_at DESC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}
