package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/kochbuch/backend/internal/ingredient"
	"github.com/kochbuch/backend/internal/model"
)

// ErrRecipeNotFound is returned when a recipe id does not resolve.
var ErrRecipeNotFound = errors.New("recipe not found")

// Fields searched by the full-text query, concatenated the same way the
// index expression in database.Migrate is built.
const searchVector = `to_tsvector('german',
	coalesce(title,'') || ' ' ||
	coalesce(ingredients,'') || ' ' ||
	coalesce(instructions,'') || ' ' ||
	coalesce(notes,'') || ' ' ||
	coalesce(category,'')
)`

// ListParams narrows and pages the recipe listing.
type ListParams struct {
	Search   string
	Category string
	Offset   int
	Limit    int
}

// ScaledRecipe is the result of scaling one recipe to a target portion count.
type ScaledRecipe struct {
	Recipe            model.Recipe
	ScaledIngredients string
	ScalingFactor     float64
}

// RecipeService handles recipe operations. Search ranking is delegated to
// Postgres' native German full-text search; on sqlite a keyword LIKE
// fallback keeps development and tests working.
type RecipeService struct {
	db     *gorm.DB
	images *ImageService
}

// NewRecipeService creates a new RecipeService instance. images may be nil
// when no object storage is configured.
func NewRecipeService(db *gorm.DB, images *ImageService) *RecipeService {
	return &RecipeService{db: db, images: images}
}

// List returns recipes, optionally filtered by search term and category.
func (s *RecipeService) List(ctx context.Context, params ListParams) ([]model.Recipe, error) {
	if params.Limit <= 0 {
		params.Limit = 1000
	}

	if params.Search != "" {
		return s.searchRanked(ctx, params.Search, params.Offset, params.Limit)
	}

	var recipes []model.Recipe
	query := s.db.WithContext(ctx)
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if err := query.Offset(params.Offset).Limit(params.Limit).Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// Search is the dedicated ranked search used by /search/recipes: top 50
// matches, best rank first, ties broken by title.
func (s *RecipeService) Search(ctx context.Context, term string) ([]model.Recipe, error) {
	var recipes []model.Recipe

	if s.db.Dialector.Name() != "postgres" {
		like := "%" + strings.ToLower(term) + "%"
		err := s.db.WithContext(ctx).
			Where("LOWER(title) LIKE ? OR LOWER(ingredients) LIKE ? OR LOWER(instructions) LIKE ? OR LOWER(notes) LIKE ? OR LOWER(category) LIKE ?",
				like, like, like, like, like).
			Order("title ASC").
			Limit(50).
			Find(&recipes).Error
		if err != nil {
			return nil, fmt.Errorf("failed to search recipes: %w", err)
		}
		return recipes, nil
	}

	err := s.db.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT * FROM recipes
		WHERE deleted_at IS NULL
		  AND %s @@ plainto_tsquery('german', ?)
		ORDER BY ts_rank(%s, plainto_tsquery('german', ?)) DESC, title ASC
		LIMIT 50
	`, searchVector, searchVector), term, term).Scan(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}
	return recipes, nil
}

// searchRanked backs the list endpoint's search parameter with paging.
func (s *RecipeService) searchRanked(ctx context.Context, term string, offset, limit int) ([]model.Recipe, error) {
	var recipes []model.Recipe

	if s.db.Dialector.Name() != "postgres" {
		like := "%" + strings.ToLower(term) + "%"
		err := s.db.WithContext(ctx).
			Where("LOWER(title) LIKE ? OR LOWER(ingredients) LIKE ? OR LOWER(instructions) LIKE ? OR LOWER(notes) LIKE ? OR LOWER(category) LIKE ?",
				like, like, like, like, like).
			Offset(offset).Limit(limit).
			Find(&recipes).Error
		if err != nil {
			return nil, fmt.Errorf("failed to search recipes: %w", err)
		}
		return recipes, nil
	}

	err := s.db.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT * FROM recipes
		WHERE deleted_at IS NULL
		  AND %s @@ plainto_tsquery('german', ?)
		ORDER BY ts_rank(%s, plainto_tsquery('german', ?)) DESC
		OFFSET ? LIMIT ?
	`, searchVector, searchVector), term, term, offset, limit).Scan(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}
	return recipes, nil
}

// Get retrieves a recipe by id.
func (s *RecipeService) Get(ctx context.Context, id uint) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to load recipe %d: %w", id, err)
	}
	return &recipe, nil
}

// Create stores a new recipe.
func (s *RecipeService) Create(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error) {
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}
	return recipe, nil
}

// Update overwrites the editable fields of an existing recipe.
func (s *RecipeService) Update(ctx context.Context, id uint, updated *model.Recipe) (*model.Recipe, error) {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	recipe.Title = updated.Title
	recipe.Category = updated.Category
	recipe.Portions = updated.Portions
	recipe.Ingredients = updated.Ingredients
	recipe.Instructions = updated.Instructions
	recipe.Notes = updated.Notes
	if updated.ImageFilename != "" {
		recipe.ImageFilename = updated.ImageFilename
	}

	if err := s.db.WithContext(ctx).Save(recipe).Error; err != nil {
		return nil, fmt.Errorf("failed to update recipe %d: %w", id, err)
	}
	return recipe, nil
}

// Delete removes a recipe and its stored image, if any.
func (s *RecipeService) Delete(ctx context.Context, id uint) error {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if recipe.ImageFilename != "" && s.images != nil {
		if err := s.images.Delete(ctx, recipe.ImageFilename); err != nil {
			// The recipe row still goes away; an orphaned object is preferable
			// to a recipe that cannot be deleted.
			log.Printf("[RecipeService] failed to delete image %s: %v", recipe.ImageFilename, err)
		}
	}

	if err := s.db.WithContext(ctx).Delete(&model.Recipe{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete recipe %d: %w", id, err)
	}
	return nil
}

// AttachImage validates and stores an uploaded image and points the recipe
// at it, replacing any previous image.
func (s *RecipeService) AttachImage(ctx context.Context, id uint, data []byte, contentType string) (string, error) {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if s.images == nil {
		return "", ErrImageStorageUnavailable
	}

	filename, err := s.images.Upload(ctx, data, contentType)
	if err != nil {
		return "", err
	}

	if recipe.ImageFilename != "" {
		if err := s.images.Delete(ctx, recipe.ImageFilename); err != nil {
			log.Printf("[RecipeService] failed to delete replaced image %s: %v", recipe.ImageFilename, err)
		}
	}

	if err := s.db.WithContext(ctx).Model(&model.Recipe{}).
		Where("id = ?", id).
		Update("image_filename", filename).Error; err != nil {
		return "", fmt.Errorf("failed to attach image to recipe %d: %w", id, err)
	}
	return filename, nil
}

// RemoveImage deletes a recipe's stored image and clears the reference.
func (s *RecipeService) RemoveImage(ctx context.Context, id uint) error {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if recipe.ImageFilename == "" {
		return ErrNoImage
	}
	if s.images == nil {
		return ErrImageStorageUnavailable
	}

	if err := s.images.Delete(ctx, recipe.ImageFilename); err != nil {
		log.Printf("[RecipeService] failed to delete image %s: %v", recipe.ImageFilename, err)
	}

	if err := s.db.WithContext(ctx).Model(&model.Recipe{}).
		Where("id = ?", id).
		Update("image_filename", "").Error; err != nil {
		return fmt.Errorf("failed to clear image on recipe %d: %w", id, err)
	}
	return nil
}

// Scale looks up one recipe and rewrites its ingredient quantities for the
// target portion count.
func (s *RecipeService) Scale(ctx context.Context, id uint, targetPortions int) (*ScaledRecipe, error) {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	scaled, factor := ingredient.ScaleText(recipe.Ingredients, recipe.Portions, targetPortions)
	return &ScaledRecipe{
		Recipe:            *recipe,
		ScaledIngredients: scaled,
		ScalingFactor:     factor,
	}, nil
}

// ShoppingList loads the requested recipes and aggregates their ingredients
// into one consolidated list. Ids that resolve to nothing are skipped; when
// none resolve the aggregator's not-found error surfaces so the handler can
// distinguish it from an empty result.
func (s *RecipeService) ShoppingList(ctx context.Context, ids []uint, portionsOverride map[uint]int) (*ingredient.ShoppingList, error) {
	var recipes []model.Recipe
	if len(ids) > 0 {
		if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&recipes).Error; err != nil {
			return nil, fmt.Errorf("failed to load recipes: %w", err)
		}
	}

	sources := make([]ingredient.RecipeSource, len(recipes))
	for i, r := range recipes {
		sources[i] = ingredient.RecipeSource{
			ID:          r.ID,
			Title:       r.Title,
			Ingredients: r.Ingredients,
			Portions:    r.Portions,
		}
	}

	return ingredient.BuildShoppingList(sources, portionsOverride)
}
