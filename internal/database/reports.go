package database

import (
	"context"
	"time"

	"go-pos-backoffice/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesReportResult holds the data the AI needs
type SalesReportResult struct {
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalDiscounts decimal.Decimal `json:"total_discounts"`
	TotalCount     int64           `json:"total_count"`
}

// OfferSavings is one row of the offer performance report.
type OfferSavings struct {
	ID           uint            `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Status       string          `json:"status"`
	TotalUsed    int             `json:"total_used"`
	TotalSavings decimal.Decimal `json:"total_savings"`
}

// RecipeMargin is one row of the margin report.
type RecipeMargin struct {
	ID                 uint            `json:"id"`
	Name               string          `json:"name"`
	Category           string          `json:"category"`
	ManufacturingPrice decimal.Decimal `json:"manufacturing_price"`
	SellingPrice       decimal.Decimal `json:"selling_price"`
	Margin             decimal.Decimal `json:"margin"`
	MarginPercent      decimal.Decimal `json:"margin_percent"` // of selling price
}

type Reports struct {
	db *gorm.DB
}

func NewReports(db *gorm.DB) *Reports {
	return &Reports{db: db}
}

// SalesReport sums completed sales within a date range.
func (r *Reports) SalesReport(ctx context.Context, start, end time.Time) (*SalesReportResult, error) {
	var row struct {
		TotalRevenue   decimal.Decimal
		TotalDiscounts decimal.Decimal
		TotalCount     int64
	}

	// COALESCE ensures we get 0 instead of NULL if no sales exist
	err := r.db.WithContext(ctx).Model(&models.Sale{}).
		Where("sale_time BETWEEN ? AND ? AND status = ?", start, end, "completed").
		Select("COALESCE(SUM(total_amount), 0) AS total_revenue, " +
			"COALESCE(SUM(discount_amount), 0) AS total_discounts, " +
			"COUNT(*) AS total_count").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &SalesReportResult{
		TotalRevenue:   row.TotalRevenue.Round(2),
		TotalDiscounts: row.TotalDiscounts.Round(2),
		TotalCount:     row.TotalCount,
	}, nil
}

// OfferSavingsReport lists offers that were used at least once, best first.
func (r *Reports) OfferSavingsReport(ctx context.Context) ([]OfferSavings, error) {
	var out []OfferSavings
	err := r.db.WithContext(ctx).Model(&models.Offer{}).
		Select("id, code, name, status, total_used, total_savings").
		Where("total_used > 0").
		Order("total_savings DESC").
		Scan(&out).Error
	return out, err
}

// MarginReport lists every recipe with its margin over manufacturing price.
func (r *Reports) MarginReport(ctx context.Context) ([]RecipeMargin, error) {
	var recipes []models.Recipe
	if err := r.db.WithContext(ctx).Order("category, name").Find(&recipes).Error; err != nil {
		return nil, err
	}

	out := make([]RecipeMargin, 0, len(recipes))
	for _, rc := range recipes {
		m := RecipeMargin{
			ID:                 rc.ID,
			Name:               rc.Name,
			Category:           rc.Category,
			ManufacturingPrice: rc.ManufacturingPrice,
			SellingPrice:       rc.SellingPrice,
			Margin:             rc.SellingPrice.Sub(rc.ManufacturingPrice).Round(2),
		}
		if rc.SellingPrice.IsPositive() {
			m.MarginPercent = m.Margin.Div(rc.SellingPrice).Mul(decimal.NewFromInt(100)).Round(2)
		}
		out = append(out, m)
	}
	return out, nil
}
