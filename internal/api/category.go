package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kochbuch/backend/internal/service"
)

type CategoryHandler struct {
	categories *service.CategoryService
	recipes    *service.RecipeService
}

func NewCategoryHandler(categories *service.CategoryService, recipes *service.RecipeService) *CategoryHandler {
	return &CategoryHandler{
		categories: categories,
		recipes:    recipes,
	}
}

func (h *CategoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	categories := router.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.GET("/:name/recipes", h.ListRecipesInCategory)
		categories.POST("", h.CreateCategory)
		categories.PUT("/:name", h.RenameCategory)
		categories.DELETE("/:name", h.DeleteCategory)
	}
}

type categoryPayload struct {
	Name string `json:"name" binding:"required"`
}

// ListCategories returns categories with recipe counts; with format=simple
// it returns a plain sorted list of names instead.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	if c.Query("format") == "simple" {
		names, err := h.categories.Names(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		c.JSON(http.StatusOK, names)
		return
	}

	summaries, err := h.categories.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}

	c.JSON(http.StatusOK, summaries)
}

func (h *CategoryHandler) ListRecipesInCategory(c *gin.Context) {
	recipes, err := h.recipes.List(c.Request.Context(), service.ListParams{
		Category: c.Param("name"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var payload categoryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.categories.Create(c.Request.Context(), payload.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	if !created {
		c.JSON(http.StatusOK, gin.H{"message": "Category already exists", "category": payload.Name})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  fmt.Sprintf("Category '%s' created successfully", payload.Name),
		"category": payload.Name,
	})
}

func (h *CategoryHandler) RenameCategory(c *gin.Context) {
	oldName := c.Param("name")

	var payload categoryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.categories.Rename(c.Request.Context(), oldName, payload.Name)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rename category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         fmt.Sprintf("Renamed category '%s' to '%s'", oldName, payload.Name),
		"updated_recipes": updated,
	})
}

// DeleteCategory clears a category from its recipes, or with
// action=delete_recipes removes the recipes themselves.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	name := c.Param("name")
	deleteRecipes := c.DefaultQuery("action", "clear") == "delete_recipes"

	result, err := h.categories.Delete(c.Request.Context(), name, deleteRecipes)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	switch {
	case result.DeletedRecipes > 0:
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Deleted category '%s' and %d recipes", name, result.DeletedRecipes),
		})
	case result.ClearedRecipes > 0:
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Cleared category '%s' from %d recipes", name, result.ClearedRecipes),
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Deleted empty category '%s'", name),
		})
	}
}
