package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User - Staff member who signs in to the back office
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"`    // Never return this in JSON
	Role         string    `json:"role"` // 'admin', 'manager', 'cashier'
	CreatedAt    time.Time `json:"created_at"`
}

// Ingredient - A purchasable master item. PurchasePrice is per one Unit.
type Ingredient struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"uniqueIndex;size:100" json:"name"`
	Unit          string          `gorm:"size:20" json:"unit"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"purchase_price"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Recipe - A sellable dish. The three cost columns are always derived.
type Recipe struct {
	ID                     uint               `gorm:"primaryKey" json:"id"`
	Name                   string             `gorm:"uniqueIndex;size:100" json:"name"`
	Category               string             `json:"category"`
	ServiceCharge          decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"service_charge"`
	TotalCostOfIngredients decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"total_cost_of_ingredients"`
	ManufacturingPrice     decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"manufacturing_price"`
	SellingPrice           decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"selling_price"`
	SellingPriceDerived    bool               `json:"selling_price_derived"`
	Ingredients            []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
}

// RecipeIngredient - One line of a recipe, with the cost it was priced at
type RecipeIngredient struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	RecipeID     uint            `gorm:"index" json:"recipe_id"`
	IngredientID uint            `gorm:"index" json:"ingredient_id"`
	Ingredient   Ingredient      `json:"ingredient"`
	Quantity     string          `gorm:"size:32" json:"quantity"` // as entered, e.g. "250"
	Unit         string          `gorm:"size:20" json:"unit"`
	LineCost     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_cost"`
}

// Offer - A promotion. Conditions, validity and usage are flattened into columns.
type Offer struct {
	ID                uint                `gorm:"primaryKey" json:"id"`
	Code              string              `gorm:"uniqueIndex;size:40" json:"code"`
	Name              string              `gorm:"size:100" json:"name"`
	Description       string              `json:"description"`
	Type              string              `gorm:"size:20" json:"type"`
	DiscountType      string              `gorm:"size:20" json:"discount_type"`
	DiscountValue     decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"discount_value"`
	MinOrderValue     decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"min_order_value"`
	MaxDiscountAmount decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"max_discount_amount"`
	UsageLimit        *int                `json:"usage_limit"`
	UsagePerCustomer  int                 `json:"usage_per_customer"`
	StartDate         time.Time           `json:"start_date"`
	EndDate           time.Time           `json:"end_date"`
	ValidDays         string              `gorm:"size:20" json:"valid_days"` // weekday numbers, "0,6"
	ValidHoursStart   string              `gorm:"size:5" json:"valid_hours_start"`
	ValidHoursEnd     string              `gorm:"size:5" json:"valid_hours_end"`
	TotalUsed         int                 `gorm:"not null;default:0" json:"total_used"`
	TotalSavings      decimal.Decimal     `gorm:"type:decimal(14,2);not null" json:"total_savings"`
	Status            string              `gorm:"size:20;index" json:"status"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// OfferUsage - How often one customer redeemed one offer
type OfferUsage struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	OfferID    uint       `gorm:"uniqueIndex:idx_offer_customer" json:"offer_id"`
	CustomerID string     `gorm:"uniqueIndex:idx_offer_customer;size:64" json:"customer_id"`
	UsageCount int        `gorm:"not null;default:0" json:"usage_count"`
	LastUsedAt *time.Time `json:"last_used_at"` // nil until the first accepted redemption
}

// Sale - The Transaction Header
type Sale struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `json:"user_id"` // Who processed it
	CustomerID     string          `gorm:"size:64" json:"customer_id,omitempty"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	OfferID        *uint           `json:"offer_id,omitempty"`
	OfferCode      string          `gorm:"size:40" json:"offer_code,omitempty"`
	Status         string          `json:"status"` // 'completed', 'held', 'cancelled'
	SaleTime       time.Time       `json:"sale_time"`
	Items          []SaleItem      `gorm:"foreignKey:SaleID" json:"items"`
}

// SaleItem - The specific recipes in a cart
type SaleItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	SaleID      uint            `json:"sale_id"`
	RecipeID    uint            `json:"recipe_id"`
	Quantity    int             `json:"quantity"`
	PriceAtSale decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price_at_sale"` // Snapshot of price at time of sale
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Ingredient{},
		&Recipe{},
		&RecipeIngredient{},
		&Offer{},
		&OfferUsage{},
		&Sale{},
		&SaleItem{},
	}
}
