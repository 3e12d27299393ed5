package offers

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidOffer = errors.New("invalid offer")

// DefinitionError collects every problem found in an offer definition.
type DefinitionError struct {
	Problems []string
}

func (e *DefinitionError) Error() string {
	return "invalid offer: " + strings.Join(e.Problems, "; ")
}

func (e *DefinitionError) Unwrap() error { return ErrInvalidOffer }

// ValidateDefinition checks the invariants an offer must satisfy when it is
// created or edited. Call ApplyDefaults first.
func ValidateDefinition(o Offer) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(o.Name) == "" {
		add("name is required")
	}
	if !o.Type.Valid() {
		add("type %q is not one of discount, buy-get, cashback, free-item", o.Type)
	}
	if !o.Status.Valid() {
		add("status %q is unknown", o.Status)
	}

	if o.Type.computesDiscount() {
		switch o.DiscountType {
		case DiscountPercentage:
			if o.DiscountValue.GreaterThan(hundred) {
				add("percentage discount_value must be between 0 and 100")
			}
		case DiscountFixed:
		case "":
			add("discount_type is required for %s offers", o.Type)
		default:
			add("discount_type %q is not percentage or fixed", o.DiscountType)
		}
	}
	if o.DiscountValue.IsNegative() {
		add("discount_value must not be negative")
	}

	c := o.Conditions
	if c.MinOrderValue.IsNegative() {
		add("min_order_value must not be negative")
	}
	if c.MaxDiscountAmount != nil && c.MaxDiscountAmount.IsNegative() {
		add("max_discount_amount must not be negative")
	}
	if c.UsageLimit != nil && *c.UsageLimit <= 0 {
		add("usage_limit must be a positive integer")
	}
	if c.UsagePerCustomer <= 0 {
		add("usage_per_customer must be a positive integer")
	}

	v := o.Validity
	if v.StartDate.IsZero() || v.EndDate.IsZero() {
		add("start_date and end_date are required")
	} else if !v.EndDate.After(v.StartDate) {
		add("end_date must be after start_date")
	}
	if v.ValidHours != nil {
		if v.ValidHours.Start < 0 || v.ValidHours.End >= 24*60 || v.ValidHours.End < 0 || v.ValidHours.Start >= 24*60 {
			add("valid_hours out of range")
		}
	}

	if o.Usage.TotalUsed < 0 || o.Usage.TotalSavings.IsNegative() {
		add("usage counters must not be negative")
	}

	if len(problems) > 0 {
		return &DefinitionError{Problems: problems}
	}
	return nil
}
