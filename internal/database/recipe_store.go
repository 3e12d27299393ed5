package database

import (
	"context"

	"go-pos-backoffice/internal/models"

	"gorm.io/gorm"
)

type RecipeStore struct {
	db *gorm.DB
}

func NewRecipeStore(db *gorm.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

func (s *RecipeStore) List(ctx context.Context) ([]models.Recipe, error) {
	var out []models.Recipe
	err := s.db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

// Get loads the recipe with its lines and their ingredients.
func (s *RecipeStore) Get(ctx context.Context, id uint) (*models.Recipe, error) {
	var r models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Ingredients.Ingredient").
		First(&r, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

// FindByIDs loads recipes without their lines.
func (s *RecipeStore) FindByIDs(ctx context.Context, ids []uint) ([]models.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []models.Recipe
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

// Save inserts or replaces a recipe and all of its lines in one transaction.
func (s *RecipeStore) Save(ctx context.Context, r *models.Recipe) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines := r.Ingredients
		r.Ingredients = nil

		if r.ID == 0 {
			if err := tx.Omit("Ingredients").Create(r).Error; err != nil {
				return err
			}
		} else {
			var existing models.Recipe
			if err := tx.Select("id").First(&existing, r.ID).Error; err != nil {
				return err
			}
			err := tx.Model(&existing).Updates(map[string]any{
				"name":                      r.Name,
				"category":                  r.Category,
				"service_charge":            r.ServiceCharge,
				"total_cost_of_ingredients": r.TotalCostOfIngredients,
				"manufacturing_price":       r.ManufacturingPrice,
				"selling_price":             r.SellingPrice,
				"selling_price_derived":     r.SellingPriceDerived,
			}).Error
			if err != nil {
				return err
			}
			if err := tx.Where("recipe_id = ?", r.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
				return err
			}
		}

		for i := range lines {
			lines[i].ID = 0
			lines[i].RecipeID = r.ID
		}
		if len(lines) > 0 {
			if err := tx.Omit("Ingredient").Create(&lines).Error; err != nil {
				return err
			}
		}
		r.Ingredients = lines
		return nil
	}))
}
