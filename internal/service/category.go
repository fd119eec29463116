package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"gorm.io/gorm"

	"github.com/kochbuch/backend/internal/model"
)

// ErrCategoryNotFound is returned when a category exists neither as a
// standalone row nor on any recipe.
var ErrCategoryNotFound = errors.New("category not found")

// CategorySummary is one entry of the category listing. Ids are 1-based
// positions in the name-sorted list, not row ids: categories that only exist
// on recipes have no row of their own.
type CategorySummary struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	RecipeCount int64  `json:"recipe_count"`
}

// CategoryDeleteResult reports what deleting a category actually did.
type CategoryDeleteResult struct {
	DeletedRecipes int64
	ClearedRecipes int64
}

// CategoryService merges two views of categories: standalone Category rows
// and the distinct values of recipes.category.
type CategoryService struct {
	db     *gorm.DB
	images *ImageService
}

// NewCategoryService creates a new CategoryService instance.
func NewCategoryService(db *gorm.DB, images *ImageService) *CategoryService {
	return &CategoryService{db: db, images: images}
}

// List returns all categories with their recipe counts, sorted by name.
// Standalone categories without recipes appear with a count of zero.
func (s *CategoryService) List(ctx context.Context) ([]CategorySummary, error) {
	type categoryCount struct {
		Name  string
		Count int64
	}

	var counted []categoryCount
	err := s.db.WithContext(ctx).Model(&model.Recipe{}).
		Select("category AS name, COUNT(id) AS count").
		Where("category <> ''").
		Group("category").
		Scan(&counted).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count recipe categories: %w", err)
	}

	var standalone []model.Category
	if err := s.db.WithContext(ctx).Find(&standalone).Error; err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	counts := make(map[string]int64, len(counted))
	for _, c := range counted {
		counts[c.Name] = c.Count
	}
	for _, c := range standalone {
		if _, ok := counts[c.Name]; !ok {
			counts[c.Name] = 0
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	summaries := make([]CategorySummary, len(names))
	for i, name := range names {
		summaries[i] = CategorySummary{ID: i + 1, Name: name, RecipeCount: counts[name]}
	}
	return summaries, nil
}

// Names returns the sorted, deduplicated set of category names from both
// views.
func (s *CategoryService) Names(ctx context.Context) ([]string, error) {
	var fromRecipes []string
	err := s.db.WithContext(ctx).Model(&model.Recipe{}).
		Distinct("category").
		Where("category <> ''").
		Pluck("category", &fromRecipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe categories: %w", err)
	}

	var fromTable []string
	if err := s.db.WithContext(ctx).Model(&model.Category{}).Pluck("name", &fromTable).Error; err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	seen := make(map[string]struct{}, len(fromRecipes)+len(fromTable))
	names := make([]string, 0, len(seen))
	for _, n := range append(fromRecipes, fromTable...) {
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Create adds a standalone category. Returns false without error when the
// name already exists in either view.
func (s *CategoryService) Create(ctx context.Context, name string) (bool, error) {
	var existing int64
	if err := s.db.WithContext(ctx).Model(&model.Category{}).Where("name = ?", name).Count(&existing).Error; err != nil {
		return false, fmt.Errorf("failed to check category: %w", err)
	}
	if existing == 0 {
		if err := s.db.WithContext(ctx).Model(&model.Recipe{}).Where("category = ?", name).Count(&existing).Error; err != nil {
			return false, fmt.Errorf("failed to check recipe categories: %w", err)
		}
	}
	if existing > 0 {
		return false, nil
	}

	if err := s.db.WithContext(ctx).Create(&model.Category{Name: name}).Error; err != nil {
		return false, fmt.Errorf("failed to create category: %w", err)
	}
	return true, nil
}

// Rename changes a category name everywhere it appears and returns how many
// recipes were touched.
func (s *CategoryService) Rename(ctx context.Context, oldName, newName string) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.Recipe{}).
		Where("category = ?", oldName).
		Update("category", newName)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to rename recipe categories: %w", result.Error)
	}

	var standalone model.Category
	err := s.db.WithContext(ctx).First(&standalone, "name = ?", oldName).Error
	switch {
	case err == nil:
		if err := s.db.WithContext(ctx).Model(&standalone).Update("name", newName).Error; err != nil {
			return 0, fmt.Errorf("failed to rename category: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if result.RowsAffected == 0 {
			return 0, ErrCategoryNotFound
		}
	default:
		return 0, fmt.Errorf("failed to load category: %w", err)
	}

	return result.RowsAffected, nil
}

// Delete removes a category. With deleteRecipes the recipes in it are
// deleted as well (including their stored images); otherwise the category is
// cleared from the recipes and only the standalone row goes away.
func (s *CategoryService) Delete(ctx context.Context, name string, deleteRecipes bool) (*CategoryDeleteResult, error) {
	var recipes []model.Recipe
	if err := s.db.WithContext(ctx).Where("category = ?", name).Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to load recipes for category: %w", err)
	}

	var standalone model.Category
	hasStandalone := true
	if err := s.db.WithContext(ctx).First(&standalone, "name = ?", name).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load category: %w", err)
		}
		hasStandalone = false
	}

	if len(recipes) == 0 && !hasStandalone {
		return nil, ErrCategoryNotFound
	}

	result := &CategoryDeleteResult{}

	if deleteRecipes && len(recipes) > 0 {
		for _, r := range recipes {
			if r.ImageFilename != "" && s.images != nil {
				if err := s.images.Delete(ctx, r.ImageFilename); err != nil {
					log.Printf("[CategoryService] failed to delete image %s: %v", r.ImageFilename, err)
				}
			}
			if err := s.db.WithContext(ctx).Delete(&model.Recipe{}, "id = ?", r.ID).Error; err != nil {
				return nil, fmt.Errorf("failed to delete recipe %d: %w", r.ID, err)
			}
		}
		result.DeletedRecipes = int64(len(recipes))
	} else if len(recipes) > 0 {
		cleared := s.db.WithContext(ctx).Model(&model.Recipe{}).
			Where("category = ?", name).
			Update("category", "")
		if cleared.Error != nil {
			return nil, fmt.Errorf("failed to clear category: %w", cleared.Error)
		}
		result.ClearedRecipes = cleared.RowsAffected
	}

	if hasStandalone {
		if err := s.db.WithContext(ctx).Delete(&standalone).Error; err != nil {
			return nil, fmt.Errorf("failed to delete category: %w", err)
		}
	}

	return result, nil
}
