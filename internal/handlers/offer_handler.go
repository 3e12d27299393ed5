package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-pos-backoffice/internal/metrics"
	"go-pos-backoffice/internal/offers"
	"go-pos-backoffice/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const dateOnly = "2006-01-02"

type HoursRequest struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

// OfferRequest is the admin form for a new offer. Dates are RFC3339 or
// YYYY-MM-DD; a date-only end_date runs to the end of that day.
type OfferRequest struct {
	Code              string              `json:"code"`
	Name              string              `json:"name" binding:"required"`
	Description       string              `json:"description"`
	Type              offers.Type         `json:"type" binding:"required"`
	DiscountType      offers.DiscountType `json:"discount_type"`
	DiscountValue     decimal.Decimal     `json:"discount_value"`
	MinOrderValue     decimal.Decimal     `json:"min_order_value"`
	MaxDiscountAmount *decimal.Decimal    `json:"max_discount_amount"`
	UsageLimit        *int                `json:"usage_limit"`
	UsagePerCustomer  int                 `json:"usage_per_customer"`
	StartDate         string              `json:"start_date" binding:"required"`
	EndDate           string              `json:"end_date" binding:"required"`
	ValidDays         []string            `json:"valid_days"`
	ValidHours        *HoursRequest       `json:"valid_hours"`
	Status            offers.Status       `json:"status"`
}

func (r OfferRequest) toOffer() (offers.Offer, error) {
	start, err := parseDate(r.StartDate, false)
	if err != nil {
		return offers.Offer{}, fmt.Errorf("start_date: %w", err)
	}
	end, err := parseDate(r.EndDate, true)
	if err != nil {
		return offers.Offer{}, fmt.Errorf("end_date: %w", err)
	}

	o := offers.Offer{
		Code:          r.Code,
		Name:          r.Name,
		Description:   r.Description,
		Type:          r.Type,
		DiscountType:  r.DiscountType,
		DiscountValue: r.DiscountValue,
		Conditions: offers.Conditions{
			MinOrderValue:     r.MinOrderValue,
			MaxDiscountAmount: r.MaxDiscountAmount,
			UsageLimit:        r.UsageLimit,
			UsagePerCustomer:  r.UsagePerCustomer,
		},
		Validity: offers.Validity{StartDate: start, EndDate: end},
		Status:   r.Status,
	}

	for _, name := range r.ValidDays {
		day, err := offers.ParseWeekday(name)
		if err != nil {
			return offers.Offer{}, fmt.Errorf("valid_days: %w", err)
		}
		o.Validity.ValidDays = append(o.Validity.ValidDays, day)
	}

	if r.ValidHours != nil {
		from, err := offers.ParseClockTime(r.ValidHours.Start)
		if err != nil {
			return offers.Offer{}, fmt.Errorf("valid_hours: %w", err)
		}
		to, err := offers.ParseClockTime(r.ValidHours.End)
		if err != nil {
			return offers.Offer{}, fmt.Errorf("valid_hours: %w", err)
		}
		o.Validity.ValidHours = &offers.HourWindow{Start: from, End: to}
	}
	return o, nil
}

func parseDate(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(dateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, errors.New("want RFC3339 or YYYY-MM-DD")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// OrderRequest is what the till sends to check an offer code.
type OrderRequest struct {
	Code       string             `json:"code" binding:"required"`
	CustomerID string             `json:"customer_id"`
	OrderValue decimal.Decimal    `json:"order_value"`
	Items      []offers.OrderItem `json:"items"`
}

type StatusRequest struct {
	Status offers.Status `json:"status" binding:"required"`
}

// --- POST: /offers ---
func (h *Handler) CreateOffer(c *gin.Context) {
	var req OfferRequest

	// 1. Parse JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	// 2. Convert dates, days and hours
	o, err := req.toOffer()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 3. Validate and store
	view, err := h.Offers.Create(c.Request.Context(), o)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// --- GET: /offers?status=active ---
func (h *Handler) GetOffers(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !offers.Status(status).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
		return
	}

	list, err := h.Offers.List(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetOffer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	view, err := h.Offers.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// --- PATCH: /offers/:id/status ---
func (h *Handler) UpdateOfferStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be draft, active, paused, expired or cancelled"})
		return
	}

	view, err := h.Offers.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// --- POST: /offers/validate ---
// Tells the till whether a code applies and what it would take off.
// Nothing is claimed; a rejection is still a 200.
func (h *Handler) ValidateOffer(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if req.OrderValue.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order value must not be negative"})
		return
	}

	res, view, err := h.Offers.Preview(c.Request.Context(), service.OrderInput{
		Code:       req.Code,
		CustomerID: req.CustomerID,
		OrderValue: req.OrderValue,
		Items:      req.Items,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.countOffer(metrics.ModePreview, res)

	c.JSON(http.StatusOK, gin.H{"result": res, "offer": view})
}
