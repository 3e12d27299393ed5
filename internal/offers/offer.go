// Package offers decides whether a promotional offer applies to an order and
// how much it takes off. The validator is read-only: it reports the usage
// delta an accepted order would add, and the storage layer applies it.
package offers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Type is the kind of promotion. Discount and cashback offers take money off.
type Type string

const (
	TypeDiscount Type = "discount"
	TypeBuyGet   Type = "buy-get"
	TypeCashback Type = "cashback"
	TypeFreeItem Type = "free-item"
)

func (t Type) Valid() bool {
	switch t {
	case TypeDiscount, TypeBuyGet, TypeCashback, TypeFreeItem:
		return true
	}
	return false
}

// computesDiscount reports whether the offer carries a monetary discount.
// buy-get and free-item only gate eligibility; line-item pricing is elsewhere.
func (t Type) computesDiscount() bool {
	return t == TypeDiscount || t == TypeCashback
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Status is the administrator-set state of an offer.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusPaused, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

type Conditions struct {
	MinOrderValue     decimal.Decimal  `json:"min_order_value"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount,omitempty"`
	// UsageLimit is the total number of redemptions across all customers.
	UsageLimit       *int `json:"usage_limit,omitempty"`
	UsagePerCustomer int  `json:"usage_per_customer"`
}

// ClockTime is a time of day in minutes after midnight.
type ClockTime int

// ParseClockTime reads "HH:MM" in 24-hour notation.
func ParseClockTime(s string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("clock time %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("clock time %q: bad hour", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || len(mm) != 2 {
		return 0, fmt.Errorf("clock time %q: bad minute", s)
	}
	return ClockTime(h*60 + m), nil
}

func ClockOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// HourWindow is an inclusive time-of-day range. A window whose End is before
// its Start wraps past midnight (22:00-02:00).
type HourWindow struct {
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

func (w HourWindow) Contains(c ClockTime) bool {
	if w.Start <= w.End {
		return c >= w.Start && c <= w.End
	}
	return c >= w.Start || c <= w.End
}

// Validity bounds when an offer may be used. Empty ValidDays and a nil
// ValidHours mean no restriction.
type Validity struct {
	StartDate  time.Time      `json:"start_date"`
	EndDate    time.Time      `json:"end_date"`
	ValidDays  []time.Weekday `json:"valid_days,omitempty"`
	ValidHours *HourWindow    `json:"valid_hours,omitempty"`
}

func (v Validity) allowsDay(day time.Weekday) bool {
	for _, d := range v.ValidDays {
		if d == day {
			return true
		}
	}
	return false
}

// Usage is the running redemption total kept by the store.
type Usage struct {
	TotalUsed    int             `json:"total_used"`
	TotalSavings decimal.Decimal `json:"total_savings"`
}

// Offer is a promotion as the validator sees it.
type Offer struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Type          Type            `json:"type"`
	DiscountType  DiscountType    `json:"discount_type,omitempty"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	Conditions    Conditions      `json:"conditions"`
	Validity      Validity        `json:"validity"`
	Usage         Usage           `json:"usage"`
	Status        Status          `json:"status"`
}

// ApplyDefaults fills the fields that have a documented default.
func (o *Offer) ApplyDefaults() {
	if o.Status == "" {
		o.Status = StatusDraft
	}
	if o.Conditions.UsagePerCustomer == 0 {
		o.Conditions.UsagePerCustomer = 1
	}
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

// ParseWeekday accepts full English day names in any case, or a three-letter prefix.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if day, ok := weekdayNames[s]; ok {
		return day, nil
	}
	if len(s) == 3 {
		for name, day := range weekdayNames {
			if strings.HasPrefix(name, s) {
				return day, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
