package costing

import (
	"errors"
	"fmt"
)

var (
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrIncompatibleUnits  = errors.New("incompatible units")
	ErrInvalidInput       = errors.New("invalid input")
)

// IngredientNotFoundError names the recipe line that could not be resolved.
type IngredientNotFoundError struct {
	IngredientID string
}

func (e *IngredientNotFoundError) Error() string {
	return fmt.Sprintf("ingredient %q not found", e.IngredientID)
}

func (e *IngredientNotFoundError) Unwrap() error { return ErrIngredientNotFound }

// IncompatibleUnitsError is returned when a line's unit has no conversion
// to the unit its master record is priced in.
type IncompatibleUnitsError struct {
	IngredientID string
	LineUnit     Unit
	MasterUnit   Unit
}

func (e *IncompatibleUnitsError) Error() string {
	return fmt.Sprintf("ingredient %q: cannot convert %s to %s", e.IngredientID, e.LineUnit, e.MasterUnit)
}

func (e *IncompatibleUnitsError) Unwrap() error { return ErrIncompatibleUnits }

type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }
