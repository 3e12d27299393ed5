package handlers

import (
	"net/http"
	"time"

	"go-pos-backoffice/internal/export"

	"github.com/gin-gonic/gin"
)

// --- GET: /api/reports?start=2025-01-01&end=2025-01-31 ---
// Revenue and discounts given for completed sales in the range. Both dates
// are inclusive; a missing range means the current month.
func (h *Handler) GetSalesReport(c *gin.Context) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	// 1. Read the date range
	if s := c.Query("start"); s != "" {
		t, err := parseDate(s, false)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start: " + err.Error()})
			return
		}
		start = t
	}
	if s := c.Query("end"); s != "" {
		t, err := parseDate(s, true)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end: " + err.Error()})
			return
		}
		end = t
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must not be before start"})
		return
	}

	// 2. Aggregate
	report, err := h.Reports.SalesReport(c.Request.Context(), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate revenue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"start":           start,
		"end":             end,
		"total_revenue":   report.TotalRevenue,
		"total_discounts": report.TotalDiscounts,
		"total_orders":    report.TotalCount,
	})
}

// --- GET: /api/reports/margins ---
func (h *Handler) GetMarginReport(c *gin.Context) {
	rows, err := h.Reports.MarginReport(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch margins"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// --- GET: /api/reports/margins/export ---
func (h *Handler) ExportMarginReport(c *gin.Context) {
	rows, err := h.Reports.MarginReport(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch margins"})
		return
	}

	f, err := export.MarginReport(rows)
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", `attachment; filename="recipe-margins.xlsx"`)
	c.Header("Content-Type", xlsxContentType)
	if err := f.Write(c.Writer); err != nil {
		c.Error(err)
	}
}

// --- GET: /api/reports/offers ---
// Offers that have been used at least once, biggest savings first.
func (h *Handler) GetOfferReport(c *gin.Context) {
	rows, err := h.Reports.OfferSavingsReport(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch offer savings"})
		return
	}
	c.JSON(http.StatusOK, rows)
}
