package handlers

import (
	"net/http"
	"strings"

	"go-pos-backoffice/internal/costing"
	"go-pos-backoffice/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type IngredientRequest struct {
	Name          string          `json:"name" binding:"required"`
	Unit          string          `json:"unit" binding:"required"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

// toModel checks the request and normalises the unit. It writes the 422 itself.
func (r IngredientRequest) toModel(c *gin.Context) (models.Ingredient, bool) {
	unit := costing.ParseUnit(r.Unit)
	if !unit.Known() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Unit must be Kg, Gram, Liter or Piece", "field": "unit"})
		return models.Ingredient{}, false
	}
	if r.PurchasePrice.IsNegative() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Purchase price must not be negative", "field": "purchase_price"})
		return models.Ingredient{}, false
	}
	return models.Ingredient{
		Name:          strings.TrimSpace(r.Name),
		Unit:          string(unit),
		PurchasePrice: r.PurchasePrice,
	}, true
}

// --- GET: List all ingredients ---
func (h *Handler) GetIngredients(c *gin.Context) {
	list, err := h.Ingredients.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ingredients"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// --- POST: Add a new ingredient ---
func (h *Handler) AddIngredient(c *gin.Context) {
	var req IngredientRequest

	// 1. Parse JSON Input
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	ing, ok := req.toModel(c)
	if !ok {
		return
	}

	// 2. Save to DB
	if err := h.Ingredients.Create(c.Request.Context(), &ing); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ing)
}

// --- PUT: Update name, unit or price ---
// Every recipe using the ingredient is repriced afterwards. Recipes that
// can no longer be priced are listed under recipes_skipped.
func (h *Handler) UpdateIngredient(c *gin.Context) {
	// 1. Get ID from URL (e.g., /ingredients/5)
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	ing, ok := req.toModel(c)
	if !ok {
		return
	}
	ing.ID = id

	// 2. Save updates
	ctx := c.Request.Context()
	if err := h.Ingredients.Update(ctx, &ing); err != nil {
		respondError(c, err)
		return
	}

	// 3. Reprice dependent recipes
	repriced, err := h.Recipes.RecalculateUsing(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "Ingredient updated successfully",
		"ingredient":       ing,
		"recipes_repriced": len(repriced.Updated),
		"recipes_skipped":  repriced.Skipped,
	})
}
