package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/kochbuch/backend/config"
	"github.com/kochbuch/backend/internal/middleware"
	"github.com/kochbuch/backend/internal/service"
)

// SetupAPI wires services and handlers onto the router. redisClient and
// s3Config may be nil: the API then runs without write rate limiting and
// without image storage.
func SetupAPI(router *gin.Engine, db *gorm.DB, redisClient *redis.Client, s3Config *config.S3Config) {
	v1 := router.Group("/api/v1")
	{
		// Initialize services
		var images *service.ImageService
		if s3Config != nil {
			images = service.NewImageService(s3Config)
		}
		recipeService := service.NewRecipeService(db, images)
		categoryService := service.NewCategoryService(db, images)

		var limiter *middleware.RateLimiter
		if redisClient != nil {
			limiter = middleware.NewWriteRateLimiter(redisClient)
		}

		// Initialize handlers and register routes
		NewRecipeHandler(recipeService, limiter).RegisterRoutes(v1)
		NewCategoryHandler(categoryService, recipeService).RegisterRoutes(v1)
		NewImageHandler(recipeService).RegisterRoutes(v1)
	}
}
