package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kochbuch/backend/internal/service"
)

// ImageHandler handles recipe image attachment. The actual storage sits in
// the recipe service; this layer only deals with the multipart form.
type ImageHandler struct {
	recipes *service.RecipeService
}

func NewImageHandler(recipes *service.RecipeService) *ImageHandler {
	return &ImageHandler{recipes: recipes}
}

func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/recipes/:id/image", h.UploadImage)
	router.DELETE("/recipes/:id/image", h.DeleteImage)
}

func (h *ImageHandler) UploadImage(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image file"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not read image"})
		return
	}

	filename, err := h.recipes.AttachImage(c.Request.Context(), id, data, header.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecipeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		case errors.Is(err, service.ErrUnsupportedImageType):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrImageStorageUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save image"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Image uploaded successfully", "filename": filename})
}

func (h *ImageHandler) DeleteImage(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	if err := h.recipes.RemoveImage(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrRecipeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		case errors.Is(err, service.ErrNoImage):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrImageStorageUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete image"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully"})
}
