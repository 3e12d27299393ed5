package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"go-pos-backoffice/internal/costing"
	"go-pos-backoffice/internal/offers"
)

// FormatID renders a primary key the way the costing and offers packages expect.
func FormatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseID is the inverse of FormatID.
func ParseID(s string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 0)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(n), nil
}

func (i Ingredient) ToMaster() costing.MasterIngredient {
	return costing.MasterIngredient{
		ID:            FormatID(i.ID),
		Name:          i.Name,
		Unit:          costing.ParseUnit(i.Unit),
		PurchasePrice: i.PurchasePrice,
	}
}

// Lines returns the recipe's ingredient rows as calculator input.
func (r Recipe) Lines() []costing.IngredientLine {
	lines := make([]costing.IngredientLine, 0, len(r.Ingredients))
	for _, ri := range r.Ingredients {
		lines = append(lines, costing.IngredientLine{
			IngredientID: FormatID(ri.IngredientID),
			Quantity:     ri.Quantity,
			Unit:         costing.Unit(ri.Unit),
		})
	}
	return lines
}

// ApplyCosts copies derived amounts from a calculation onto the recipe and
// its lines. Lines must be in the order they were priced.
func (r *Recipe) ApplyCosts(costs *costing.RecipeCosts) {
	r.TotalCostOfIngredients = costs.TotalCostOfIngredients
	r.ManufacturingPrice = costs.ManufacturingPrice
	r.SellingPrice = costs.SellingPrice
	r.SellingPriceDerived = costs.SellingPriceDerived
	for i := range r.Ingredients {
		if i < len(costs.Lines) {
			r.Ingredients[i].LineCost = costs.Lines[i].Cost
			r.Ingredients[i].Unit = string(costs.Lines[i].Unit)
		}
	}
}

// ToDomain converts the stored row into the validator's Offer.
func (o Offer) ToDomain() (offers.Offer, error) {
	out := offers.Offer{
		ID:            FormatID(o.ID),
		Code:          o.Code,
		Name:          o.Name,
		Description:   o.Description,
		Type:          offers.Type(o.Type),
		DiscountType:  offers.DiscountType(o.DiscountType),
		DiscountValue: o.DiscountValue,
		Conditions: offers.Conditions{
			MinOrderValue:    o.MinOrderValue,
			UsageLimit:       o.UsageLimit,
			UsagePerCustomer: o.UsagePerCustomer,
		},
		Validity: offers.Validity{
			StartDate: o.StartDate,
			EndDate:   o.EndDate,
		},
		Usage: offers.Usage{
			TotalUsed:    o.TotalUsed,
			TotalSavings: o.TotalSavings,
		},
		Status: offers.Status(o.Status),
	}
	if o.MaxDiscountAmount.Valid {
		limit := o.MaxDiscountAmount.Decimal
		out.Conditions.MaxDiscountAmount = &limit
	}

	if o.ValidDays != "" {
		for _, part := range strings.Split(o.ValidDays, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || n < 0 || n > 6 {
				return offers.Offer{}, fmt.Errorf("offer %d: bad valid_days %q", o.ID, o.ValidDays)
			}
			out.Validity.ValidDays = append(out.Validity.ValidDays, time.Weekday(n))
		}
	}

	if o.ValidHoursStart != "" || o.ValidHoursEnd != "" {
		start, err := offers.ParseClockTime(o.ValidHoursStart)
		if err != nil {
			return offers.Offer{}, fmt.Errorf("offer %d: %w", o.ID, err)
		}
		end, err := offers.ParseClockTime(o.ValidHoursEnd)
		if err != nil {
			return offers.Offer{}, fmt.Errorf("offer %d: %w", o.ID, err)
		}
		out.Validity.ValidHours = &offers.HourWindow{Start: start, End: end}
	}
	return out, nil
}

// OfferFromDomain builds the row for a validated domain offer. The ID is not
// copied; gorm assigns it on insert.
func OfferFromDomain(o offers.Offer) Offer {
	row := Offer{
		Code:             o.Code,
		Name:             o.Name,
		Description:      o.Description,
		Type:             string(o.Type),
		DiscountType:     string(o.DiscountType),
		DiscountValue:    o.DiscountValue,
		MinOrderValue:    o.Conditions.MinOrderValue,
		UsageLimit:       o.Conditions.UsageLimit,
		UsagePerCustomer: o.Conditions.UsagePerCustomer,
		StartDate:        o.Validity.StartDate,
		EndDate:          o.Validity.EndDate,
		TotalUsed:        o.Usage.TotalUsed,
		TotalSavings:     o.Usage.TotalSavings,
		Status:           string(o.Status),
	}
	if o.Conditions.MaxDiscountAmount != nil {
		row.MaxDiscountAmount = decimal.NewNullDecimal(*o.Conditions.MaxDiscountAmount)
	}

	if len(o.Validity.ValidDays) > 0 {
		days := make([]int, 0, len(o.Validity.ValidDays))
		for _, d := range o.Validity.ValidDays {
			days = append(days, int(d))
		}
		sort.Ints(days)
		parts := make([]string, len(days))
		for i, d := range days {
			parts[i] = strconv.Itoa(d)
		}
		row.ValidDays = strings.Join(parts, ",")
	}

	if w := o.Validity.ValidHours; w != nil {
		row.ValidHoursStart = w.Start.String()
		row.ValidHoursEnd = w.End.String()
	}
	return row
}
