// Package costing derives ingredient cost, manufacturing price and a default
// selling price for a recipe. Everything here is a pure function of its
// arguments: master ingredient records are fetched by the caller and handed
// in through a PriceLookup.
package costing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places every derived amount is rounded to.
const MoneyPlaces = 2

// DefaultMarkup is applied to the manufacturing price when no selling price is set.
var DefaultMarkup = decimal.RequireFromString("1.20")

// IngredientLine is one row of a recipe as entered by the user.
type IngredientLine struct {
	IngredientID string `json:"ingredient_id"`
	Quantity     string `json:"quantity"`
	Unit         Unit   `json:"unit"`
}

// MasterIngredient is the purchasable item a line refers to.
// PurchasePrice is the price of one Unit.
type MasterIngredient struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Unit          Unit            `json:"unit"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

// PriceLookup resolves an ingredient id to its master record.
type PriceLookup func(id string) (MasterIngredient, bool)

// LookupFrom indexes already-fetched master records by id.
func LookupFrom(records []MasterIngredient) PriceLookup {
	byID := make(map[string]MasterIngredient, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	return func(id string) (MasterIngredient, bool) {
		r, ok := byID[id]
		return r, ok
	}
}

// LineCost is one priced line: the entered quantity converted to the master
// unit and multiplied by the purchase price.
type LineCost struct {
	IngredientID      string          `json:"ingredient_id"`
	Name              string          `json:"name"`
	Quantity          decimal.Decimal `json:"quantity"`
	Unit              Unit            `json:"unit"`
	ConvertedQuantity decimal.Decimal `json:"converted_quantity"`
	MasterUnit        Unit            `json:"master_unit"`
	PurchasePrice     decimal.Decimal `json:"purchase_price"`
	Cost              decimal.Decimal `json:"cost"`
}

// RecipeCosts is the full cost breakdown of one recipe.
type RecipeCosts struct {
	Lines                  []LineCost      `json:"line_costs"`
	TotalCostOfIngredients decimal.Decimal `json:"total_cost_of_ingredients"`
	ManufacturingPrice     decimal.Decimal `json:"manufacturing_price"`
	SellingPrice           decimal.Decimal `json:"selling_price"`
	// SellingPriceDerived is false when the caller's override was kept.
	SellingPriceDerived bool `json:"selling_price_derived"`
}

// ComputeRecipeCosts prices every line and rolls the totals up.
//
// Any unresolved ingredient, unit mismatch or bad number aborts the whole
// computation; no partial result is returned. A positive existingSellingPrice
// is passed through untouched, otherwise the selling price is the
// manufacturing price marked up by DefaultMarkup.
func ComputeRecipeCosts(lines []IngredientLine, lookup PriceLookup, serviceCharge, existingSellingPrice decimal.Decimal) (*RecipeCosts, error) {
	if serviceCharge.IsNegative() {
		return nil, &InvalidInputError{Field: "service_charge", Reason: "must not be negative"}
	}
	if lookup == nil {
		return nil, &InvalidInputError{Field: "price_lookup", Reason: "missing"}
	}

	costs := &RecipeCosts{Lines: make([]LineCost, 0, len(lines))}
	total := decimal.Zero

	for i, line := range lines {
		lc, err := priceLine(i, line, lookup)
		if err != nil {
			return nil, err
		}
		costs.Lines = append(costs.Lines, lc)
		total = total.Add(lc.Cost)
	}

	costs.TotalCostOfIngredients = total.Round(MoneyPlaces)
	costs.ManufacturingPrice = costs.TotalCostOfIngredients.Add(serviceCharge).Round(MoneyPlaces)

	if existingSellingPrice.IsPositive() {
		costs.SellingPrice = existingSellingPrice
	} else {
		costs.SellingPrice = costs.ManufacturingPrice.Mul(DefaultMarkup).Round(MoneyPlaces)
		costs.SellingPriceDerived = true
	}
	return costs, nil
}

func priceLine(i int, line IngredientLine, lookup PriceLookup) (LineCost, error) {
	qty, err := ParseQuantity(line.Quantity)
	if err != nil {
		return LineCost{}, &InvalidInputError{
			Field:  fmt.Sprintf("ingredients[%d].quantity", i),
			Reason: err.Error(),
		}
	}

	master, ok := lookup(line.IngredientID)
	if !ok {
		return LineCost{}, &IngredientNotFoundError{IngredientID: line.IngredientID}
	}

	lineUnit := ParseUnit(string(line.Unit))
	masterUnit := ParseUnit(string(master.Unit))
	converted, ok := ConvertQuantity(qty, lineUnit, masterUnit)
	if !ok {
		return LineCost{}, &IncompatibleUnitsError{
			IngredientID: line.IngredientID,
			LineUnit:     lineUnit,
			MasterUnit:   masterUnit,
		}
	}

	return LineCost{
		IngredientID:      line.IngredientID,
		Name:              master.Name,
		Quantity:          qty,
		Unit:              lineUnit,
		ConvertedQuantity: converted,
		MasterUnit:        masterUnit,
		PurchasePrice:     master.PurchasePrice,
		Cost:              converted.Mul(master.PurchasePrice).Round(MoneyPlaces),
	}, nil
}

// ParseQuantity reads a non-negative decimal quantity such as "500" or "0.25".
func ParseQuantity(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty quantity")
	}
	qty, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", s)
	}
	if qty.IsNegative() {
		return decimal.Zero, fmt.Errorf("must not be negative")
	}
	return qty, nil
}
