package service

import (
	"context"
	"log"
	"strings"

	"go-pos-backoffice/internal/costing"
	"go-pos-backoffice/internal/models"

	"github.com/shopspring/decimal"
)

type IngredientRepo interface {
	FindByIDs(ctx context.Context, ids []uint) ([]models.Ingredient, error)
	RecipeIDsUsing(ctx context.Context, ingredientID uint) ([]uint, error)
}

type RecipeRepo interface {
	Get(ctx context.Context, id uint) (*models.Recipe, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Recipe, error)
	Save(ctx context.Context, r *models.Recipe) error
}

// RecipeDraft is a recipe as the user submits it. A zero SellingPrice asks
// for the default markup.
type RecipeDraft struct {
	ID            uint                     `json:"id,omitempty"`
	Name          string                   `json:"name"`
	Category      string                   `json:"category"`
	ServiceCharge decimal.Decimal          `json:"service_charge"`
	SellingPrice  decimal.Decimal          `json:"selling_price"`
	Ingredients   []costing.IngredientLine `json:"ingredients"`
}

type RecipeService struct {
	ingredients IngredientRepo
	recipes     RecipeRepo
}

func NewRecipeService(ingredients IngredientRepo, recipes RecipeRepo) *RecipeService {
	return &RecipeService{ingredients: ingredients, recipes: recipes}
}

// Price computes the cost breakdown for a draft without saving anything.
func (s *RecipeService) Price(ctx context.Context, draft RecipeDraft) (*costing.RecipeCosts, error) {
	lookup, err := s.lookupFor(ctx, draft.Ingredients)
	if err != nil {
		return nil, err
	}
	return costing.ComputeRecipeCosts(draft.Ingredients, lookup, draft.ServiceCharge, draft.SellingPrice)
}

// Save prices the draft and stores it. Nothing is written if pricing fails.
func (s *RecipeService) Save(ctx context.Context, draft RecipeDraft) (*models.Recipe, *costing.RecipeCosts, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	if draft.Name == "" {
		return nil, nil, &costing.InvalidInputError{Field: "name", Reason: "required"}
	}

	costs, err := s.Price(ctx, draft)
	if err != nil {
		return nil, nil, err
	}

	recipe := &models.Recipe{
		ID:            draft.ID,
		Name:          draft.Name,
		Category:      draft.Category,
		ServiceCharge: draft.ServiceCharge,
	}
	for _, line := range draft.Ingredients {
		id, _ := models.ParseID(line.IngredientID) // resolved by Price already
		recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{
			IngredientID: id,
			Quantity:     strings.TrimSpace(line.Quantity),
		})
	}
	recipe.ApplyCosts(costs)

	if err := s.recipes.Save(ctx, recipe); err != nil {
		return nil, nil, err
	}
	return recipe, costs, nil
}

// Quote prices a stored recipe against current ingredient prices without
// saving. A stored selling price is passed through as the override and keeps
// its SellingPriceDerived flag.
func (s *RecipeService) Quote(ctx context.Context, id uint) (*models.Recipe, *costing.RecipeCosts, error) {
	recipe, err := s.recipes.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	lines := recipe.Lines()
	lookup, err := s.lookupFor(ctx, lines)
	if err != nil {
		return nil, nil, err
	}
	costs, err := costing.ComputeRecipeCosts(lines, lookup, recipe.ServiceCharge, recipe.SellingPrice)
	if err != nil {
		return nil, nil, err
	}
	if recipe.SellingPrice.IsPositive() {
		// the stored price went in as the override; keep where it came from
		costs.SellingPriceDerived = recipe.SellingPriceDerived
	}
	return recipe, costs, nil
}

// Recalculate is Quote followed by storing the new costs.
func (s *RecipeService) Recalculate(ctx context.Context, id uint) (*models.Recipe, *costing.RecipeCosts, error) {
	recipe, costs, err := s.Quote(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	recipe.ApplyCosts(costs)
	if err := s.recipes.Save(ctx, recipe); err != nil {
		return nil, nil, err
	}
	return recipe, costs, nil
}

// Repricing lists the recipes RecalculateUsing touched. Skipped recipes no
// longer price cleanly (an ingredient changed to an incompatible unit, say)
// and keep their old costs until they are edited.
type Repricing struct {
	Updated []uint `json:"updated"`
	Skipped []uint `json:"skipped"`
}

// RecalculateUsing reprices every recipe that uses the ingredient. A recipe
// that fails to price is logged and reported as skipped.
func (s *RecipeService) RecalculateUsing(ctx context.Context, ingredientID uint) (*Repricing, error) {
	ids, err := s.ingredients.RecipeIDsUsing(ctx, ingredientID)
	if err != nil {
		return nil, err
	}

	out := &Repricing{Updated: []uint{}, Skipped: []uint{}}
	for _, id := range ids {
		if _, _, err := s.Recalculate(ctx, id); err != nil {
			log.Printf("⚠️ Recipe %d not repriced after ingredient %d changed: %v", id, ingredientID, err)
			out.Skipped = append(out.Skipped, id)
			continue
		}
		out.Updated = append(out.Updated, id)
	}
	return out, nil
}

// lookupFor fetches the master records for every line in one query.
// Ids that do not parse are left out and surface as IngredientNotFound.
func (s *RecipeService) lookupFor(ctx context.Context, lines []costing.IngredientLine) (costing.PriceLookup, error) {
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		if id, err := models.ParseID(line.IngredientID); err == nil {
			ids = append(ids, id)
		}
	}

	found, err := s.ingredients.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	masters := make([]costing.MasterIngredient, 0, len(found))
	for _, ing := range found {
		masters = append(masters, ing.ToMaster())
	}
	return costing.LookupFrom(masters), nil
}
