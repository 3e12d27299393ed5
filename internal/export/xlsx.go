// Package export renders back-office reports as Excel workbooks.
package export

import (
	"fmt"

	"go-pos-backoffice/internal/costing"
	"go-pos-backoffice/internal/database"
	"go-pos-backoffice/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	costSheet   = "Cost Sheet"
	marginSheet = "Margins"
)

// CostSheet lays out one recipe's line costs and totals.
func CostSheet(recipe *models.Recipe, costs *costing.RecipeCosts) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", costSheet); err != nil {
		return nil, err
	}

	w := &sheetWriter{f: f, sheet: costSheet}
	w.row("Recipe", recipe.Name)
	w.row("Category", recipe.Category)
	w.row()
	header := w.row("Ingredient", "Quantity", "Unit", "Converted", "Master unit", "Unit price", "Cost")

	for _, lc := range costs.Lines {
		w.row(lc.Name, money(lc.Quantity), string(lc.Unit), money(lc.ConvertedQuantity),
			string(lc.MasterUnit), money(lc.PurchasePrice), money(lc.Cost))
	}

	w.row()
	totals := w.row("Total cost of ingredients", "", "", "", "", "", money(costs.TotalCostOfIngredients))
	w.row("Service charge", "", "", "", "", "", money(recipe.ServiceCharge))
	w.row("Manufacturing price", "", "", "", "", "", money(costs.ManufacturingPrice))
	label := "Selling price"
	if costs.SellingPriceDerived {
		label = "Selling price (default markup)"
	}
	last := w.row(label, "", "", "", "", "", money(costs.SellingPrice))

	if err := w.bold(header, header, 7); err != nil {
		return nil, err
	}
	if err := w.bold(totals, last, 1); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(costSheet, "A", "A", 32); err != nil {
		return nil, err
	}
	return f, w.err
}

// MarginReport lists every recipe with its margin.
func MarginReport(rows []database.RecipeMargin) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", marginSheet); err != nil {
		return nil, err
	}

	w := &sheetWriter{f: f, sheet: marginSheet}
	header := w.row("Recipe", "Category", "Manufacturing price", "Selling price", "Margin", "Margin %")
	for _, r := range rows {
		w.row(r.Name, r.Category, money(r.ManufacturingPrice), money(r.SellingPrice), money(r.Margin), money(r.MarginPercent))
	}

	if err := w.bold(header, header, 6); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(marginSheet, "A", "B", 24); err != nil {
		return nil, err
	}
	if err := f.AutoFilter(marginSheet, fmt.Sprintf("A1:F%d", w.next-1), nil); err != nil {
		return nil, err
	}
	return f, w.err
}

func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// sheetWriter appends rows and keeps the first error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	next  int
	err   error
}

// row writes values into the next row and returns its number.
func (w *sheetWriter) row(values ...any) int {
	if w.next == 0 {
		w.next = 1
	}
	n := w.next
	w.next++
	if w.err != nil || len(values) == 0 {
		return n
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return n
	}
	w.err = w.f.SetSheetRow(w.sheet, cell, &values)
	return n
}

func (w *sheetWriter) bold(fromRow, toRow, cols int) error {
	style, err := w.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	from, err := excelize.CoordinatesToCellName(1, fromRow)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(cols, toRow)
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(w.sheet, from, to, style)
}
