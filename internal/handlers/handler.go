package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"go-pos-backoffice/internal/auth"
	"go-pos-backoffice/internal/costing"
	"go-pos-backoffice/internal/database"
	"go-pos-backoffice/internal/metrics"
	"go-pos-backoffice/internal/models"
	"go-pos-backoffice/internal/offers"
	"go-pos-backoffice/internal/service"

	"github.com/gin-gonic/gin"
)

type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Count(ctx context.Context) (int64, error)
}

type IngredientStore interface {
	List(ctx context.Context) ([]models.Ingredient, error)
	Get(ctx context.Context, id uint) (*models.Ingredient, error)
	Create(ctx context.Context, ing *models.Ingredient) error
	Update(ctx context.Context, ing *models.Ingredient) error
}

type RecipeReader interface {
	List(ctx context.Context) ([]models.Recipe, error)
	Get(ctx context.Context, id uint) (*models.Recipe, error)
}

type ReportSource interface {
	SalesReport(ctx context.Context, start, end time.Time) (*database.SalesReportResult, error)
	OfferSavingsReport(ctx context.Context) ([]database.OfferSavings, error)
	MarginReport(ctx context.Context) ([]database.RecipeMargin, error)
}

// Asker answers a free-text question about the shop.
type Asker interface {
	Ask(ctx context.Context, message string) (string, error)
}

// Handler carries everything the HTTP routes need.
type Handler struct {
	Users       UserStore
	Ingredients IngredientStore
	RecipeStore RecipeReader
	Recipes     *service.RecipeService
	Offers      *service.OfferService
	Checkout    *service.CheckoutService
	Reports     ReportSource
	Tokens      *auth.Tokens
	Metrics     *metrics.ServerMetrics
	Assistant   Asker // nil when no GEMINI_API_KEY is configured
}

// respondError maps domain and store errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var (
		invalid    *costing.InvalidInputError
		notFound   *costing.IngredientNotFoundError
		units      *costing.IncompatibleUnitsError
		definition *offers.DefinitionError
		rejected   *service.RejectedError
	)

	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "A record with that name or code already exists"})
	case errors.As(err, &notFound):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "ingredient_id": notFound.IngredientID})
	case errors.As(err, &units):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":         err.Error(),
			"ingredient_id": units.IngredientID,
			"line_unit":     units.LineUnit,
			"master_unit":   units.MasterUnit,
		})
	case errors.As(err, &invalid):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "field": invalid.Field})
	case errors.As(err, &definition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid offer", "problems": definition.Problems})
	case errors.Is(err, offers.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &rejected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "offer": rejected.Result})
	case errors.Is(err, service.ErrEmptyCart), errors.Is(err, service.ErrBadQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// idParam reads the :id path segment. It writes the 400 itself.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}

// countPricing records a recipe calculation outcome.
func (h *Handler) countPricing(err error) {
	if h.Metrics == nil {
		return
	}
	result := "ok"
	switch {
	case errors.Is(err, costing.ErrIngredientNotFound):
		result = "ingredient_not_found"
	case errors.Is(err, costing.ErrIncompatibleUnits):
		result = "incompatible_units"
	case errors.Is(err, costing.ErrInvalidInput):
		result = "invalid_input"
	case err != nil:
		result = "error"
	}
	h.Metrics.RecipePricings.WithLabelValues(result).Inc()
}

// countOffer records a validation decision.
func (h *Handler) countOffer(mode string, res offers.Result) {
	if h.Metrics == nil {
		return
	}
	outcome := metrics.OutcomeAccepted
	if !res.Accepted {
		outcome = string(res.Reason)
	}
	h.Metrics.OfferDecisions.WithLabelValues(mode, outcome).Inc()
	if res.Accepted && mode == metrics.ModeRedeem {
		h.Metrics.OfferSavings.Add(res.DiscountAmount.InexactFloat64())
	}
}
