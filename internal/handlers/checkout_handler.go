package handlers

import (
	"errors"
	"net/http"

	"go-pos-backoffice/internal/metrics"
	"go-pos-backoffice/internal/service"

	"github.com/gin-gonic/gin"
)

type CheckoutRequest struct {
	Items      []service.CheckoutItem `json:"items" binding:"required"`
	CustomerID string                 `json:"customer_id"`
	OfferCode  string                 `json:"offer_code"`
}

// --- POST: /checkout ---
// ProcessSale records a sale. When an offer code is given it is claimed in the same
// transaction; if it no longer applies nothing is written.
func (h *Handler) ProcessSale(c *gin.Context) {
	var req CheckoutRequest

	// 1. Parse JSON Input
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	// 2. Get the cashier from the token
	userID := c.MustGet("userID").(uint)

	// 3. Price, claim and record
	receipt, err := h.Checkout.Checkout(c.Request.Context(), service.CheckoutRequest{
		UserID:     userID,
		CustomerID: req.CustomerID,
		Items:      req.Items,
		OfferCode:  req.OfferCode,
	})
	if req.OfferCode != "" {
		h.countCheckoutOffer(receipt, err)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

func (h *Handler) countCheckoutOffer(receipt *service.Receipt, err error) {
	var rejected *service.RejectedError
	switch {
	case err == nil && receipt.Offer != nil:
		h.countOffer(metrics.ModeRedeem, *receipt.Offer)
	case errors.As(err, &rejected):
		h.countOffer(metrics.ModeRedeem, rejected.Result)
	}
}
