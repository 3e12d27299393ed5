package offers

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Reason names why an offer was not applied. Rejections are ordinary results,
// not errors, so checkout can show them to the customer.
type Reason string

const (
	ReasonNone                     Reason = ""
	ReasonOfferNotActive           Reason = "OfferNotActive"
	ReasonOfferOutOfDateRange      Reason = "OfferOutOfDateRange"
	ReasonOfferNotValidToday       Reason = "OfferNotValidToday"
	ReasonOfferNotValidThisHour    Reason = "OfferNotValidThisHour"
	ReasonBelowMinimumOrderValue   Reason = "BelowMinimumOrderValue"
	ReasonUsageLimitExceeded       Reason = "UsageLimitExceeded"
	ReasonPerCustomerLimitExceeded Reason = "PerCustomerLimitExceeded"
)

// Reasons lists every rejection reason in the order the checks run.
var Reasons = []Reason{
	ReasonOfferNotActive,
	ReasonOfferOutOfDateRange,
	ReasonOfferNotValidToday,
	ReasonOfferNotValidThisHour,
	ReasonBelowMinimumOrderValue,
	ReasonUsageLimitExceeded,
	ReasonPerCustomerLimitExceeded,
}

type OrderItem struct {
	ID        string          `json:"id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderContext struct {
	OrderValue decimal.Decimal
	Items      []OrderItem
	Now        time.Time
	// CustomerUsageCount is how many times this customer already redeemed the offer.
	CustomerUsageCount int
}

// UsageDelta is what the caller adds to Offer.Usage once the order commits.
// Savings is the amount actually taken off, so it never exceeds the order value.
type UsageDelta struct {
	Uses    int             `json:"uses"`
	Savings decimal.Decimal `json:"savings"`
}

type Result struct {
	Accepted       bool            `json:"accepted"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	Reason         Reason          `json:"reason,omitempty"`
	UsageDelta     *UsageDelta     `json:"usage_delta,omitempty"`
}

// Rejected is the result for an order the offer was not applied to.
func Rejected(orderValue decimal.Decimal, reason Reason) Result {
	return Result{
		Accepted:       false,
		DiscountAmount: decimal.Zero,
		FinalAmount:    orderValue,
		Reason:         reason,
	}
}

// ValidateOffer runs the admission checks in order and stops at the first
// failure. It never mutates offer and never fails; a rejected order comes
// back with Accepted false, the reason, and the order value untouched.
func ValidateOffer(offer Offer, order OrderContext) Result {
	if reason := admit(offer, order); reason != ReasonNone {
		return Rejected(order.OrderValue, reason)
	}

	discount := decimal.Zero
	if offer.Type.computesDiscount() {
		discount = discountFor(offer, order.OrderValue)
	}

	final := order.OrderValue.Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}

	return Result{
		Accepted:       true,
		DiscountAmount: discount,
		FinalAmount:    final,
		UsageDelta:     &UsageDelta{Uses: 1, Savings: order.OrderValue.Sub(final)},
	}
}

func admit(offer Offer, order OrderContext) Reason {
	now := order.Now
	v := offer.Validity
	c := offer.Conditions

	if offer.Status != StatusActive {
		return ReasonOfferNotActive
	}
	if now.Before(v.StartDate) || now.After(v.EndDate) {
		return ReasonOfferOutOfDateRange
	}
	if len(v.ValidDays) > 0 && !v.allowsDay(now.Weekday()) {
		return ReasonOfferNotValidToday
	}
	if v.ValidHours != nil && !v.ValidHours.Contains(ClockOf(now)) {
		return ReasonOfferNotValidThisHour
	}
	if order.OrderValue.LessThan(c.MinOrderValue) {
		return ReasonBelowMinimumOrderValue
	}
	if c.UsageLimit != nil && offer.Usage.TotalUsed >= *c.UsageLimit {
		return ReasonUsageLimitExceeded
	}
	if c.UsagePerCustomer > 0 && order.CustomerUsageCount >= c.UsagePerCustomer {
		return ReasonPerCustomerLimitExceeded
	}
	return ReasonNone
}

func discountFor(offer Offer, orderValue decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch offer.DiscountType {
	case DiscountPercentage:
		amount = orderValue.Mul(offer.DiscountValue).Div(hundred)
	case DiscountFixed:
		amount = offer.DiscountValue
	default:
		return decimal.Zero
	}

	if limit := offer.Conditions.MaxDiscountAmount; limit != nil && amount.GreaterThan(*limit) {
		amount = *limit
	}
	return amount.Round(2)
}

// TemporalState is the state an offer is effectively in at now, combining the
// administrator-set status with the validity window.
type TemporalState string

const (
	StateUpcoming  TemporalState = "upcoming"
	StateExpired   TemporalState = "expired"
	StateRunning   TemporalState = "running"
	StateDraft     TemporalState = "draft"
	StatePaused    TemporalState = "paused"
	StateCancelled TemporalState = "cancelled"
)

func StateAt(offer Offer, now time.Time) TemporalState {
	switch {
	case now.Before(offer.Validity.StartDate):
		return StateUpcoming
	case now.After(offer.Validity.EndDate):
		return StateExpired
	case offer.Status == StatusActive:
		return StateRunning
	}
	return TemporalState(offer.Status)
}
