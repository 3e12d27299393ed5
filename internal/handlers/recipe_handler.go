package handlers

import (
	"fmt"
	"net/http"

	"go-pos-backoffice/internal/export"
	"go-pos-backoffice/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) GetRecipes(c *gin.Context) {
	list, err := h.RecipeStore.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetRecipe(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	recipe, err := h.RecipeStore.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// --- POST: /recipes/price ---
// Cost preview for the recipe editor. Nothing is stored.
func (h *Handler) PriceRecipe(c *gin.Context) {
	var draft service.RecipeDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	costs, err := h.Recipes.Price(c.Request.Context(), draft)
	h.countPricing(err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, costs)
}

// --- POST: /recipes ---
// Creates a recipe, or replaces it when the body carries an id.
func (h *Handler) SaveRecipe(c *gin.Context) {
	var draft service.RecipeDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	recipe, costs, err := h.Recipes.Save(c.Request.Context(), draft)
	h.countPricing(err)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if draft.ID != 0 {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"recipe": recipe, "costs": costs})
}

func (h *Handler) RecalculateRecipe(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	recipe, costs, err := h.Recipes.Recalculate(c.Request.Context(), id)
	h.countPricing(err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe, "costs": costs})
}

// --- GET: /recipes/:id/costsheet ---
// Downloads the current cost breakdown as an Excel file.
func (h *Handler) ExportCostSheet(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	recipe, costs, err := h.Recipes.Quote(c.Request.Context(), id)
	h.countPricing(err)
	if err != nil {
		respondError(c, err)
		return
	}

	f, err := export.CostSheet(recipe, costs)
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="recipe-%d-costsheet.xlsx"`, recipe.ID))
	c.Header("Content-Type", xlsxContentType)
	if err := f.Write(c.Writer); err != nil {
		c.Error(err)
	}
}
