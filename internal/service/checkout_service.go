package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go-pos-backoffice/internal/database"
	"go-pos-backoffice/internal/models"
	"go-pos-backoffice/internal/offers"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart   = errors.New("cart is empty")
	ErrBadQuantity = errors.New("quantity must be positive")
)

// RejectedError is returned when checkout named an offer that does not apply.
type RejectedError struct {
	Result offers.Result
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("offer rejected: %s", e.Result.Reason)
}

type SaleRepo interface {
	Record(ctx context.Context, sale *models.Sale, claim *database.OfferClaim) (*database.Redemption, error)
}

type CheckoutItem struct {
	RecipeID uint `json:"recipe_id"`
	Quantity int  `json:"quantity"`
}

type CheckoutRequest struct {
	UserID     uint
	CustomerID string
	Items      []CheckoutItem
	OfferCode  string
}

type Receipt struct {
	Sale  *models.Sale   `json:"sale"`
	Offer *offers.Result `json:"offer,omitempty"`
}

type CheckoutService struct {
	recipes RecipeRepo
	sales   SaleRepo
	offers  *OfferService
	clock   Clock
}

func NewCheckoutService(recipes RecipeRepo, sales SaleRepo, offerService *OfferService, clock Clock) *CheckoutService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &CheckoutService{recipes: recipes, sales: sales, offers: offerService, clock: clock}
}

// Checkout prices the cart at current selling prices, applies the offer if
// one was given, and records the sale. The offer use and the sale commit
// together or not at all.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*Receipt, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	// 1. Load every recipe in the cart
	ids := make([]uint, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("recipe %d: %w", item.RecipeID, ErrBadQuantity)
		}
		ids = append(ids, item.RecipeID)
	}
	found, err := s.recipes.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Recipe, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}

	// 2. Price the cart
	subtotal := decimal.Zero
	saleItems := make([]models.SaleItem, 0, len(req.Items))
	orderItems := make([]offers.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		recipe, ok := byID[item.RecipeID]
		if !ok {
			return nil, fmt.Errorf("recipe %d: %w", item.RecipeID, database.ErrNotFound)
		}
		subtotal = subtotal.Add(recipe.SellingPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		saleItems = append(saleItems, models.SaleItem{
			RecipeID:    recipe.ID,
			Quantity:    item.Quantity,
			PriceAtSale: recipe.SellingPrice,
		})
		orderItems = append(orderItems, offers.OrderItem{
			ID:        models.FormatID(recipe.ID),
			Quantity:  item.Quantity,
			UnitPrice: recipe.SellingPrice,
		})
	}
	subtotal = subtotal.Round(2)

	sale := &models.Sale{
		UserID:         req.UserID,
		CustomerID:     req.CustomerID,
		Subtotal:       subtotal,
		DiscountAmount: decimal.Zero,
		TotalAmount:    subtotal,
		Status:         "completed",
		SaleTime:       s.clock.Now(),
		Items:          saleItems,
	}

	// 3. Record, claiming the offer under lock if there is one
	var claim *database.OfferClaim
	if req.OfferCode != "" {
		c := s.offers.Claim(OrderInput{
			Code:       req.OfferCode,
			CustomerID: req.CustomerID,
			OrderValue: subtotal,
			Items:      orderItems,
		})
		claim = &c
	}

	redemption, err := s.sales.Record(ctx, sale, claim)
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{Sale: sale}
	if redemption != nil {
		res := redemption.Result
		if !res.Accepted {
			return nil, &RejectedError{Result: res}
		}
		receipt.Offer = &res
	}

	log.Printf("🧾 Sale %d recorded: subtotal=%s discount=%s total=%s",
		sale.ID, sale.Subtotal, sale.DiscountAmount, sale.TotalAmount)
	return receipt, nil
}
