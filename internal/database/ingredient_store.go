package database

import (
	"context"

	"go-pos-backoffice/internal/models"

	"gorm.io/gorm"
)

type IngredientStore struct {
	db *gorm.DB
}

func NewIngredientStore(db *gorm.DB) *IngredientStore {
	return &IngredientStore{db: db}
}

func (s *IngredientStore) List(ctx context.Context) ([]models.Ingredient, error) {
	var out []models.Ingredient
	err := s.db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

func (s *IngredientStore) Get(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := s.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		return nil, translate(err)
	}
	return &ing, nil
}

// FindByIDs returns the ingredients that exist among ids. Missing ids are
// simply absent from the result.
func (s *IngredientStore) FindByIDs(ctx context.Context, ids []uint) ([]models.Ingredient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []models.Ingredient
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (s *IngredientStore) Create(ctx context.Context, ing *models.Ingredient) error {
	return translate(s.db.WithContext(ctx).Create(ing).Error)
}

// Update saves name, unit and price. Recipes using the ingredient keep their
// stored costs until they are recalculated.
func (s *IngredientStore) Update(ctx context.Context, ing *models.Ingredient) error {
	var existing models.Ingredient
	if err := s.db.WithContext(ctx).First(&existing, ing.ID).Error; err != nil {
		return translate(err)
	}
	existing.Name = ing.Name
	existing.Unit = ing.Unit
	existing.PurchasePrice = ing.PurchasePrice

	err := s.db.WithContext(ctx).Model(&existing).
		Select("name", "unit", "purchase_price", "updated_at").
		Updates(&existing).Error
	if err != nil {
		return translate(err)
	}
	*ing = existing
	return nil
}

// RecipeIDsUsing lists recipes with at least one line on the ingredient.
func (s *IngredientStore) RecipeIDsUsing(ctx context.Context, ingredientID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.RecipeIngredient{}).
		Where("ingredient_id = ?", ingredientID).
		Distinct().
		Pluck("recipe_id", &ids).Error
	return ids, err
}
