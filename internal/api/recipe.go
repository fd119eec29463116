package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kochbuch/backend/internal/ingredient"
	"github.com/kochbuch/backend/internal/middleware"
	"github.com/kochbuch/backend/internal/model"
	"github.com/kochbuch/backend/internal/service"
)

type RecipeHandler struct {
	recipes     *service.RecipeService
	rateLimiter *middleware.RateLimiter
}

// NewRecipeHandler creates a new recipe handler. rateLimiter may be nil when
// Redis is not available.
func NewRecipeHandler(recipes *service.RecipeService, rateLimiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{
		recipes:     recipes,
		rateLimiter: rateLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("/:id/scale", h.ScaleRecipe)
	}

	writes := router.Group("/recipes")
	if h.rateLimiter != nil {
		writes.Use(h.rateLimiter.RateLimitMiddleware())
	}
	{
		writes.POST("", h.CreateRecipe)
		writes.PUT("/:id", h.UpdateRecipe)
		writes.DELETE("/:id", h.DeleteRecipe)
	}

	router.POST("/shopping-list", h.ShoppingList)
	router.GET("/search/recipes", h.SearchRecipes)
}

// recipePayload is the create/update request body.
type recipePayload struct {
	Title        string `json:"title" binding:"required"`
	Category     string `json:"category"`
	Portions     string `json:"portions"`
	Ingredients  string `json:"ingredients" binding:"required"`
	Instructions string `json:"instructions"`
	Notes        string `json:"notes"`
}

func (p *recipePayload) toModel() *model.Recipe {
	return &model.Recipe{
		Title:        p.Title,
		Category:     p.Category,
		Portions:     p.Portions,
		Ingredients:  p.Ingredients,
		Instructions: p.Instructions,
		Notes:        p.Notes,
	}
}

// scaleRequest uses a pointer so an explicit 0 passes validation while a
// missing field still fails it. Zero target portions is legal and zeroes
// every quantity.
type scaleRequest struct {
	TargetPortions *int `json:"target_portions" binding:"required"`
}

type shoppingListRequest struct {
	RecipeIDs        []uint       `json:"recipe_ids" binding:"required"`
	PortionsOverride map[uint]int `json:"portions_override"`
}

// scaledRecipeResponse flattens the recipe fields next to the scaling
// result, with Portions rewritten to the requested target.
type scaledRecipeResponse struct {
	model.Recipe
	ScaledIngredients string  `json:"scaled_ingredients"`
	ScalingFactor     float64 `json:"scaling_factor"`
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	params := service.ListParams{
		Search:   c.Query("search"),
		Category: c.Query("category"),
	}
	params.Offset, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))
	params.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "1000"))

	recipes, err := h.recipes.List(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRecipeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipe"})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var payload recipePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), payload.toModel())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recipe"})
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	var payload recipePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), id, payload.toModel())
	if err != nil {
		if errors.Is(err, service.ErrRecipeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update recipe"})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrRecipeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete recipe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted successfully"})
}

// ScaleRecipe rewrites one recipe's ingredient quantities for a target
// portion count.
func (h *RecipeHandler) ScaleRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	var req scaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scaled, err := h.recipes.Scale(c.Request.Context(), id, *req.TargetPortions)
	if err != nil {
		if errors.Is(err, service.ErrRecipeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scale recipe"})
		return
	}

	resp := scaledRecipeResponse{
		Recipe:            scaled.Recipe,
		ScaledIngredients: scaled.ScaledIngredients,
		ScalingFactor:     scaled.ScalingFactor,
	}
	resp.Recipe.Portions = fmt.Sprintf("%d Portionen", *req.TargetPortions)

	c.JSON(http.StatusOK, resp)
}

// ShoppingList aggregates the ingredients of the selected recipes into one
// consolidated list.
func (h *RecipeHandler) ShoppingList(c *gin.Context) {
	var req shoppingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.recipes.ShoppingList(c.Request.Context(), req.RecipeIDs, req.PortionsOverride)
	if err != nil {
		if errors.Is(err, ingredient.ErrNoRecipes) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No recipes found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build shopping list"})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *RecipeHandler) SearchRecipes(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing search term"})
		return
	}

	recipes, err := h.recipes.Search(c.Request.Context(), term)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// recipeID parses the :id path parameter, writing the 400 response itself on
// bad input.
func recipeID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return 0, false
	}
	return uint(id), true
}
