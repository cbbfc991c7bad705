package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pantrybook/backend/internal/middleware"
	"github.com/pantrybook/backend/internal/model"
	"github.com/pantrybook/backend/internal/service"
)

// RecipeHandler translates HTTP requests into Recipe Store calls and maps
// store outcomes to status codes.
type RecipeHandler struct {
	recipes *service.RecipeService
	images  service.ImageStore
	logger  *zap.Logger
}

func NewRecipeHandler(recipes *service.RecipeService, images service.ImageStore, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipes: recipes,
		images:  images,
		logger:  logger,
	}
}

// RegisterRoutes mounts the recipe routes on an authenticated group.
// Mutating routes additionally pass through the given limiters when present.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, createLimit, modifyLimit gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		if createLimit != nil {
			recipes.POST("", createLimit, h.CreateRecipe)
		} else {
			recipes.POST("", h.CreateRecipe)
		}
		if modifyLimit != nil {
			recipes.PUT("/:id", modifyLimit, h.UpdateRecipe)
			recipes.DELETE("/:id", modifyLimit, h.DeleteRecipe)
		} else {
			recipes.PUT("/:id", h.UpdateRecipe)
			recipes.DELETE("/:id", h.DeleteRecipe)
		}
	}
}

// ListRecipes returns the caller's recipes, optionally filtered by the
// search and category query parameters.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	recipes, err := h.recipes.Search(c.Request.Context(), userID, c.Query("search"), c.Query("category"))
	if err != nil {
		h.logger.Error("failed to fetch recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, recipes)
}

// GetRecipe looks the recipe up by id alone and then compares owners. This
// is the one route where ownership is checked after the fetch, so absence
// and foreign ownership get distinct responses.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := parseRecipeID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipes.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		h.logger.Error("failed to fetch recipe", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipe"})
		return
	}

	if recipe.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// CreateRecipe assembles the multipart payload, validates it, stores the
// optional image and delegates to the store.
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ingredients, err := parseStringArray(c.PostForm("ingredients"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe data", "errors": gin.H{"ingredients": "malformed JSON array"}})
		return
	}
	instructions, err := parseStringArray(c.PostForm("instructions"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe data", "errors": gin.H{"instructions": "malformed JSON array"}})
		return
	}
	tags, err := parseStringArray(c.PostForm("tags"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe data", "errors": gin.H{"tags": "malformed JSON array"}})
		return
	}

	recipe := &model.Recipe{
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Category:     c.PostForm("category"),
		CookTime:     c.PostForm("cook_time"),
		Servings:     c.PostForm("servings"),
		Ingredients:  ingredients,
		Instructions: instructions,
		Tags:         tags,
	}

	payload := createRecipePayload{
		Title:        recipe.Title,
		Ingredients:  recipe.Ingredients,
		Instructions: recipe.Instructions,
	}
	if err := validate.Struct(payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe data", "errors": validationErrors(err)})
		return
	}

	// Image constraints are checked before any byte is written, so a
	// rejected upload leaves no orphaned file.
	if fh, err := c.FormFile("image"); err == nil {
		imageURL, err := h.images.Save(c.Request.Context(), fh)
		if err != nil {
			if errors.Is(err, service.ErrInvalidImage) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe data", "errors": gin.H{"image": err.Error()}})
				return
			}
			h.logger.Error("failed to store image", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recipe"})
			return
		}
		recipe.ImageURL = imageURL
	}

	created, err := h.recipes.Create(c.Request.Context(), userID, recipe)
	if err != nil {
		h.logger.Error("failed to create recipe", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recipe"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateRecipe applies a partial update: only fields present in the form
// are changed. Absent and not-owned rows are indistinguishable.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := parseRecipeID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	changes := map[string]interface{}{}
	for form, column := range map[string]string{
		"title":       "title",
		"description": "description",
		"category":    "category",
		"cook_time":   "cook_time",
		"servings":    "servings",
	} {
		if v, present := c.GetPostForm(form); present {
			changes[column] = v
		}
	}
	for form, column := range map[string]string{
		"ingredients":  "ingredients",
		"instructions": "instructions",
		"tags":         "tags",
	} {
		raw, present := c.GetPostForm(form)
		if !present {
			continue
		}
		arr, err := parseStringArray(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe data", "errors": gin.H{form: "malformed JSON array"}})
			return
		}
		changes[column] = model.JSONStringArray(arr)
	}

	// Remember the previous image so a replaced local file can be cleaned
	// up once the update has gone through.
	var previousImageURL string
	if fh, err := c.FormFile("image"); err == nil {
		if prior, err := h.recipes.GetByID(c.Request.Context(), id); err == nil && prior.UserID == userID {
			previousImageURL = prior.ImageURL
		}

		imageURL, err := h.images.Save(c.Request.Context(), fh)
		if err != nil {
			if errors.Is(err, service.ErrInvalidImage) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe data", "errors": gin.H{"image": err.Error()}})
				return
			}
			h.logger.Error("failed to store image", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update recipe"})
			return
		}
		changes["image_url"] = imageURL
	}

	updated, err := h.recipes.Update(c.Request.Context(), id, userID, changes)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found or access denied"})
			return
		}
		h.logger.Error("failed to update recipe", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update recipe"})
		return
	}

	if previousImageURL != "" && previousImageURL != updated.ImageURL {
		if err := h.images.Remove(c.Request.Context(), previousImageURL); err != nil {
			h.logger.Warn("failed to remove replaced image", zap.String("url", previousImageURL), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteRecipe removes the caller's recipe. A miss on either id or owner
// yields the same 404.
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := parseRecipeID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var imageURL string
	if prior, err := h.recipes.GetByID(c.Request.Context(), id); err == nil && prior.UserID == userID {
		imageURL = prior.ImageURL
	}

	deleted, err := h.recipes.Delete(c.Request.Context(), id, userID)
	if err != nil {
		h.logger.Error("failed to delete recipe", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete recipe"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found or access denied"})
		return
	}

	if imageURL != "" {
		if err := h.images.Remove(c.Request.Context(), imageURL); err != nil {
			h.logger.Warn("failed to remove recipe image", zap.String("url", imageURL), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted successfully"})
}

func parseRecipeID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
