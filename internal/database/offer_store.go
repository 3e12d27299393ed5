package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-pos-backoffice/internal/models"
	"go-pos-backoffice/internal/offers"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OfferStore struct {
	db *gorm.DB
}

func NewOfferStore(db *gorm.DB) *OfferStore {
	return &OfferStore{db: db}
}

func (s *OfferStore) Create(ctx context.Context, o *models.Offer) error {
	return translate(s.db.WithContext(ctx).Create(o).Error)
}

func (s *OfferStore) Get(ctx context.Context, id uint) (*models.Offer, error) {
	var o models.Offer
	if err := s.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (s *OfferStore) GetByCode(ctx context.Context, code string) (*models.Offer, error) {
	var o models.Offer
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&o).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

// List returns offers newest first, optionally filtered by status.
func (s *OfferStore) List(ctx context.Context, status string) ([]models.Offer, error) {
	q := s.db.WithContext(ctx).Order("id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Offer
	err := q.Find(&out).Error
	return out, err
}

// UpdateStatus moves an offer from one status to another. The row is only
// touched if it is still in the expected status.
func (s *OfferStore) UpdateStatus(ctx context.Context, id uint, from, to string) error {
	res := s.db.WithContext(ctx).Model(&models.Offer{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("offer %d: status changed concurrently: %w", id, offers.ErrInvalidTransition)
	}
	return nil
}

// CustomerUses reports how often customerID redeemed the offer.
func (s *OfferStore) CustomerUses(ctx context.Context, offerID uint, customerID string) (int, error) {
	if customerID == "" {
		return 0, nil
	}
	var usage models.OfferUsage
	err := s.db.WithContext(ctx).
		Where("offer_id = ? AND customer_id = ?", offerID, customerID).
		First(&usage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return usage.UsageCount, err
}

// RedeemCheck decides, while the offer and usage rows are locked, whether
// the redemption goes ahead.
type RedeemCheck func(locked offers.Offer, customerUses int) offers.Result

// OfferClaim asks for one use of the offer with Code on an order worth
// OrderValue. CustomerID may be empty for anonymous orders.
type OfferClaim struct {
	Code       string
	CustomerID string
	OrderValue decimal.Decimal
	Check      RedeemCheck
}

// Redemption is the outcome of a Redeem call.
type Redemption struct {
	OfferID uint
	Offer   offers.Offer // usage counters already include this redemption when accepted
	Result  offers.Result
}

// Redeem claims one use of the offer identified by code inside its own transaction.
func (s *OfferStore) Redeem(ctx context.Context, claim OfferClaim) (*Redemption, error) {
	var out *Redemption
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = redeemTx(tx, claim)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// redeemTx locks the offer row and the customer's usage row, re-runs the check
// against the locked state and, if accepted, bumps both counters. The
// total_used increment is conditional on the limit so that a stale read can
// never push usage past it.
func redeemTx(tx *gorm.DB, claim OfferClaim) (*Redemption, error) {
	customerID := claim.CustomerID

	// 1. Lock the offer row
	var row models.Offer
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", claim.Code).
		First(&row).Error; err != nil {
		return nil, err
	}

	// 2. Make sure the per-customer usage row exists, then lock it. Seeding it
	// first means two first-time redemptions queue on the same row instead of
	// racing to insert it.
	var usage models.OfferUsage
	if customerID != "" {
		seed := models.OfferUsage{OfferID: row.ID, CustomerID: customerID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return nil, err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("offer_id = ? AND customer_id = ?", row.ID, customerID).
			First(&usage).Error; err != nil {
			return nil, err
		}
	}

	offer, err := row.ToDomain()
	if err != nil {
		return nil, err
	}

	// 3. Re-validate against what we hold
	res := claim.Check(offer, usage.UsageCount)
	out := &Redemption{OfferID: row.ID, Offer: offer, Result: res}
	if !res.Accepted || res.UsageDelta == nil {
		return out, nil
	}

	// 4. Conditional increment
	upd := tx.Model(&models.Offer{}).
		Where("id = ? AND (usage_limit IS NULL OR total_used < usage_limit)", row.ID).
		Updates(map[string]any{
			"total_used":    gorm.Expr("total_used + ?", res.UsageDelta.Uses),
			"total_savings": gorm.Expr("total_savings + ?", res.UsageDelta.Savings),
		})
	if upd.Error != nil {
		return nil, upd.Error
	}
	if upd.RowsAffected == 0 {
		out.Result = offers.Rejected(claim.OrderValue, offers.ReasonUsageLimitExceeded)
		return out, nil
	}

	// 5. Per-customer counter
	if customerID != "" {
		err = tx.Model(&usage).Updates(map[string]any{
			"usage_count":  gorm.Expr("usage_count + ?", res.UsageDelta.Uses),
			"last_used_at": time.Now(),
		}).Error
		if err != nil {
			return nil, err
		}
	}

	out.Offer.Usage.TotalUsed += res.UsageDelta.Uses
	out.Offer.Usage.TotalSavings = out.Offer.Usage.TotalSavings.Add(res.UsageDelta.Savings)
	return out, nil
}
