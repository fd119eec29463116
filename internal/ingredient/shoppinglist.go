package ingredient

import (
	"errors"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrNoRecipes is returned when the aggregator receives nothing to work on,
// so callers can distinguish "no matching recipes" from a legitimately empty
// list.
var ErrNoRecipes = errors.New("no recipes found")

// RecipeSource is the slice of a stored recipe the aggregator needs.
type RecipeSource struct {
	ID          uint
	Title       string
	Ingredients string
	Portions    string
}

// ShoppingList is the consolidated result across all requested recipes.
type ShoppingList struct {
	Ingredients []Ingredient `json:"ingredients"`
	RecipeCount int          `json:"recipe_count"`
}

// BuildShoppingList scales every recipe by its portion override (target
// portions default to 1 when absent), parses every non-blank ingredient line,
// and merges the results by normalized name. The final list is ordered by
// name, case-insensitively under German collation.
func BuildShoppingList(recipes []RecipeSource, portionsOverride map[uint]int) (*ShoppingList, error) {
	if len(recipes) == 0 {
		return nil, ErrNoRecipes
	}

	var all []*Ingredient
	for _, r := range recipes {
		target, ok := portionsOverride[r.ID]
		if !ok {
			target = 1
		}
		factor := ScaleFactor(target, PortionCount(r.Portions))

		for _, line := range strings.Split(r.Ingredients, "\n") {
			if ing := Parse(line, r.Title, factor); ing != nil {
				all = append(all, ing)
			}
		}
	}

	merged := mergeIngredients(all)
	sortByName(merged)

	return &ShoppingList{Ingredients: merged, RecipeCount: len(recipes)}, nil
}

// mergeIngredients folds the flat parse results into one entry per merge key
// (lower-cased, trimmed name). The first occurrence becomes the
// representative; later occurrences are combined into it in input order.
func mergeIngredients(items []*Ingredient) []Ingredient {
	byKey := make(map[string]*Ingredient, len(items))
	var order []string

	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.Name))
		if existing, ok := byKey[key]; ok {
			combine(existing, item)
			continue
		}
		byKey[key] = item
		order = append(order, key)
	}

	out := make([]Ingredient, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	return out
}

// combine merges incoming into the representative for the same key. The
// amount policy has three branches:
//
//  1. both sides carry an amount and the same non-empty unit: amounts sum;
//  2. the representative has no amount yet but incoming does: the incoming
//     amount and unit are adopted as-is;
//  3. anything else: the representative keeps its quantity and the incoming
//     one is dropped from the numeric total.
//
// Branch 3 makes the merge lossy for incompatible units ("100g Zucker" +
// "2 EL Zucker" stays at 100 g). That is accepted behavior: no unit
// conversion is attempted, but the contributing recipe is still recorded.
func combine(existing, incoming *Ingredient) {
	existing.Recipes = unionTitles(existing.Recipes, incoming.Recipes)

	switch {
	case existing.Amount != nil && incoming.Amount != nil &&
		existing.Unit != "" && incoming.Unit != "" &&
		strings.EqualFold(existing.Unit, incoming.Unit):
		sum := *existing.Amount + *incoming.Amount
		existing.Amount = &sum
	case existing.Amount == nil && incoming.Amount != nil:
		existing.Amount = incoming.Amount
		existing.Unit = incoming.Unit
	}
}

// unionTitles appends b to a, dropping duplicates while keeping first-seen
// order.
func unionTitles(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, t := range a {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	for _, t := range b {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// sortByName orders the merged list for display. A fresh collator per call:
// collate.Collator is not safe for concurrent use and this package promises
// to hold no shared state.
func sortByName(items []Ingredient) {
	c := collate.New(language.German, collate.IgnoreCase)
	sort.SliceStable(items, func(i, j int) bool {
		return c.CompareString(items[i].Name, items[j].Name) < 0
	})
}
