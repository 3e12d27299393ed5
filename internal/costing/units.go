package costing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Unit is the measure an ingredient quantity or purchase price is quoted in.
// The set is open: anything not listed below is kept as typed.
type Unit string

const (
	UnitKg    Unit = "Kg"
	UnitGram  Unit = "Gram"
	UnitLiter Unit = "Liter"
	UnitPiece Unit = "Piece"
)

var knownUnits = []Unit{UnitKg, UnitGram, UnitLiter, UnitPiece}

var thousand = decimal.NewFromInt(1000)

// ParseUnit normalises user input ("kg", " gram ") to the canonical spelling.
func ParseUnit(s string) Unit {
	s = strings.TrimSpace(s)
	for _, u := range knownUnits {
		if strings.EqualFold(s, string(u)) {
			return u
		}
	}
	return Unit(s)
}

// Known reports whether u is one of the canonical units.
func (u Unit) Known() bool {
	for _, k := range knownUnits {
		if u == k {
			return true
		}
	}
	return false
}

// ConvertQuantity expresses qty (measured in from) in the unit to.
// Only the Gram/Kg family is convertible; ok is false for any other mismatch.
func ConvertQuantity(qty decimal.Decimal, from, to Unit) (decimal.Decimal, bool) {
	from, to = ParseUnit(string(from)), ParseUnit(string(to))
	switch {
	case from == to:
		return qty, true
	case from == UnitGram && to == UnitKg:
		return qty.Div(thousand), true
	case from == UnitKg && to == UnitGram:
		return qty.Mul(thousand), true
	}
	return decimal.Zero, false
}
