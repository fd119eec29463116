package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochbuch/backend/internal/ingredient"
	"github.com/kochbuch/backend/internal/model"
)

func TestCreateRecipe(t *testing.T) {
	router, _ := SetupTestRouter(t)

	w := PerformRequest(router, http.MethodPost, "/api/v1/recipes", gin.H{
		"title":        "Apfelkuchen",
		"category":     "Kuchen",
		"portions":     "4 Portionen",
		"ingredients":  "500g Mehl\n3 Eier",
		"instructions": "Alles verrühren und backen.",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Apfelkuchen", created.Title)
	assert.Equal(t, "Kuchen", created.Category)
}

func TestCreateRecipeRequiresTitleAndIngredients(t *testing.T) {
	router, _ := SetupTestRouter(t)

	w := PerformRequest(router, http.MethodPost, "/api/v1/recipes", gin.H{
		"title": "Ohne Zutaten",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = PerformRequest(router, http.MethodPost, "/api/v1/recipes", gin.H{
		"ingredients": "500g Mehl",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRecipe(t *testing.T) {
	router, db := SetupTestRouter(t)
	recipe := CreateTestRecipe(t, db, model.Recipe{
		Title:       "Linsensuppe",
		Ingredients: "200 g Linsen",
	})

	w := PerformRequest(router, http.MethodGet, "/api/v1/recipes/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got model.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, recipe.ID, got.ID)
	assert.Equal(t, "Linsensuppe", got.Title)
}

func TestGetRecipeNotFound(t *testing.T) {
	router, _ := SetupTestRouter(t)

	w := PerformRequest(router, http.MethodGet, "/api/v1/recipes/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = PerformRequest(router, http.MethodGet, "/api/v1/recipes/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListRecipesByCategory(t *testing.T) {
	router, db := SetupTestRouter(t)
	CreateTestRecipe(t, db, model.Recipe{Title: "Apfelkuchen", Category: "Kuchen", Ingredients: "500g Mehl"})
	CreateTestRecipe(t, db, model.Recipe{Title: "Linsensuppe", Category: "Suppen", Ingredients: "200 g Linsen"})

	w := PerformRequest(router, http.MethodGet, "/api/v1/recipes?category=Suppen", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Recipes []model.Recipe `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Recipes, 1)
	assert.Equal(t, "Linsensuppe", resp.Recipes[0].Title)
}

func TestListRecipesWithSearch(t *testing.T) {
	router, db := SetupTestRouter(t)
	CreateTestRecipe(t, db, model.Recipe{Title: "Apfelkuchen", Ingredients: "500g Mehl"})
	CreateTestRecipe(t, db, model.Recipe{Title: "Linsensuppe", Ingredients: "200 g Linsen", Notes: "Mit Apfelessig abschmecken"})
	CreateTestRecipe(t, db, model.Recipe{Title: "Gulasch", Ingredients: "500 g Rindfleisch"})

	w := PerformRequest(router, http.MethodGet, "/api/v1/recipes?search=apfel", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Recipes []model.Recipe `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Recipes, 2)

	// The limit parameter pages the search results as well.
	w = PerformRequest(router, http.MethodGet, "/api/v1/recipes?search=apfel&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp.Recipes = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Recipes, 1)
}

func TestUpdateRecipe(t *testing.T) {
	router, db := SetupTestRouter(t)
	recipe := CreateTestRecipe(t, db, model.Recipe{
		Title:       "Linsensuppe",
		Category:    "Suppen",
		Ingredients: "200 g Linsen",
	})

	w := PerformRequest(router, http.MethodPut, "/api/v1/recipes/1", gin.H{
		"title":       "Linsensuppe mit Speck",
		"category":    "Eintöpfe",
		"ingredients": "200 g Linsen\n100 g Speck",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var got model.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, recipe.ID, got.ID)
	assert.Equal(t, "Linsensuppe mit Speck", got.Title)
	assert.Equal(t, "Eintöpfe", got.Category)
	assert.Equal(t, "200 g Linsen\n100 g Speck", got.Ingredients)
}

func TestUpdateRecipeNotFound(t *testing.T) {
	router, _ := SetupTestRouter(t)

	w := PerformRequest(router, http.MethodPut, "/api/v1/recipes/999", gin.H{
		"title":       "Gibt es nicht",
		"ingredients": "1 Prise Salz",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteRecipe(t *testing.T) {
	router, db := SetupTestRouter(t)
	CreateTestRecipe(t, db, model.Recipe{Title: "Linsensuppe", Ingredients: "200 g Linsen"})

	w := PerformRequest(router, http.MethodDelete, "/api/v1/recipes/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = PerformRequest(router, http.MethodGet, "/api/v1/recipes/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScaleRecipe(t *testing.T) {
	router, db := SetupTestRouter(t)
	CreateTestRecipe(t, db, model.Recipe{
		Title:       "Pfannkuchen",
		Portions:    "4 Portionen",
		Ingredients: "500g Mehl\n1 Prise Salz\n2 Eier",
	})

	w := PerformRequest(router, http.MethodPost, "/api/v1/recipes/1/scale", gin.H{
		"target_portions": 8,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Portions          string  `json:"portions"`
		ScaledIngredients string  `json:"scaled_ingredients"`
		ScalingFactor     float64 `json:"scaling_factor"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "8 Portionen", resp.Portions)
	assert.Equal(t, 2.0, resp.ScalingFactor)
	assert.Equal(t, "1000 g Mehl\n2 Prise Salz\n4 Eier", resp.ScaledIngredients)
}

func TestScaleRecipeSamePortions(t *testing.T) {
	router, db := SetupTestRouter(t)
	CreateTestRecipe(t, db, model.Recipe{
		Title:       "Salatdressing",
		Portions:    "2 Portionen",
		Ingredients: "2,5 EL Öl\netwas Pfeffer",
	})

	w := PerformRequest(router, http.MethodPost, "/api/v1/recipes/1/scale", gin.H{
		"target_portions": 2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ScaledIngredients string  `json:"scaled_ingredients"`
		ScalingFactor     float64 `json:"scaling_factor"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1.0, resp.ScalingFactor)
	assert.Equal(t, "2,5 EL Öl\netwas Pfeffer", resp.ScaledIngredients)
}

func TestScaleRecipeToZeroPortions(t *testing.T) {
	router, db := SetupTestRouter(t)
	CreateTestRecipe(t, db, model.Recipe{
		Title:       "Pfannkuchen",
		Portions:    "4 Portionen",
		Ingredients: "500g Mehl\n2 Eier",
	})

	// Zero is a legal target: every quantity scales to zero.
	w := PerformRequest(router, http.MethodPost, "/api/v1/recipes/1/scale", gin.H{
		"target_portions": 0,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Portions          string  `json:"portions"`
		ScaledIngredients string  `json:"scaled_ingredients"`
		ScalingFactor     float64 `json:"scaling_factor"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "0 Portionen", resp.Portions)
	assert.Equal(t, 0.0, resp.ScalingFactor)
	assert.Equal(t, "0 g Mehl\n0 Eier", resp.ScaledIngredients)
}

func TestScaleRecipeMissingTargetPortions(t *testing.T) {
	router, db := SetupTestRouter(t)
	CreateTestRecipe(t, db, model.Recipe{
		Title:       "Pfannkuchen",
		Portions:    "4 Portionen",
		Ingredients: "500g Mehl",
	})

	w := PerformRequest(router, http.MethodPost, "/api/v1/recipes/1/scale", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScaleRecipeNotFound(t *testing.T) {
	router, _ := SetupTestRouter(t)

	w := PerformRequest(router, http.MethodPost, "/api/v1/recipes/999/scale", gin.H{
		"target_portions": 4,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShoppingList(t *testing.T) {
	router, db := SetupTestRouter(t)
	kuchen := CreateTestRecipe(t, db, model.Recipe{
		Title:       "Kuchen",
		Portions:    "4 Portionen",
		Ingredients: "500g Mehl\n2,5 EL Öl",
	})
	salat := CreateTestRecipe(t, db, model.Recipe{
		Title:       "Salat",
		Portions:    "2 Portionen",
		Ingredients: "100 g Mehl\n1 Prise Salz",
	})

	w := PerformRequest(router, http.MethodPost, "/api/v1/shopping-list", gin.H{
		"recipe_ids":        []uint{kuchen.ID, salat.ID},
		"portions_override": map[uint]int{kuchen.ID: 8, salat.ID: 1},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var list ingredient.ShoppingList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 2, list.RecipeCount)
	require.Len(t, list.Ingredients, 3)

	// German collation puts Öl between Mehl and Salz.
	mehl, oel, salz := list.Ingredients[0], list.Ingredients[1], list.Ingredients[2]

	assert.Equal(t, "Mehl", mehl.Name)
	require.NotNil(t, mehl.Amount)
	assert.InDelta(t, 1050.0, *mehl.Amount, 1e-9)
	assert.Equal(t, "g", mehl.Unit)
	assert.Equal(t, []string{"Kuchen", "Salat"}, mehl.Recipes)

	assert.Equal(t, "Öl", oel.Name)
	require.NotNil(t, oel.Amount)
	assert.InDelta(t, 5.0, *oel.Amount, 1e-9)
	assert.Equal(t, "EL", oel.Unit)

	assert.Equal(t, "Salz", salz.Name)
	require.NotNil(t, salz.Amount)
	assert.InDelta(t, 0.5, *salz.Amount, 1e-9)
	assert.Equal(t, "Prise", salz.Unit)
}

func TestShoppingListNoRecipes(t *testing.T) {
	router, _ := SetupTestRouter(t)

	w := PerformRequest(router, http.MethodPost, "/api/v1/shopping-list", gin.H{
		"recipe_ids": []uint{41, 42},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchRecipes(t *testing.T) {
	router, db := SetupTestRouter(t)
	CreateTestRecipe(t, db, model.Recipe{Title: "Apfelkuchen", Ingredients: "500g Mehl"})
	CreateTestRecipe(t, db, model.Recipe{Title: "Linsensuppe", Ingredients: "200 g Linsen", Notes: "Mit Apfelessig abschmecken"})
	CreateTestRecipe(t, db, model.Recipe{Title: "Gulasch", Ingredients: "500 g Rindfleisch"})

	w := PerformRequest(router, http.MethodGet, "/api/v1/search/recipes?q=apfel", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Recipes []model.Recipe `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Recipes, 2)
}

func TestSearchRecipesMissingTerm(t *testing.T) {
	router, _ := SetupTestRouter(t)

	w := PerformRequest(router, http.MethodGet, "/api/v1/search/recipes", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
