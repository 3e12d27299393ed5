package database

import (
	"context"
	"errors"

	"go-pos-backoffice/internal/models"

	"gorm.io/gorm"
)

// errClaimRejected rolls the checkout transaction back when the offer is refused.
var errClaimRejected = errors.New("offer claim rejected")

type SaleStore struct {
	db *gorm.DB
}

func NewSaleStore(db *gorm.DB) *SaleStore {
	return &SaleStore{db: db}
}

// Record writes the sale and its items. When claim is set the offer is
// redeemed in the same transaction and the sale's discount and total are
// taken from the locked re-validation. A refused claim records nothing and
// returns the redemption so the caller can report why.
func (s *SaleStore) Record(ctx context.Context, sale *models.Sale, claim *OfferClaim) (*Redemption, error) {
	var redemption *Redemption

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Claim the offer first so a refusal writes nothing
		if claim != nil {
			r, err := redeemTx(tx, *claim)
			if err != nil {
				return err
			}
			redemption = r
			if !r.Result.Accepted {
				return errClaimRejected
			}
			offerID := r.OfferID
			sale.OfferID = &offerID
			sale.OfferCode = r.Offer.Code
			sale.TotalAmount = r.Result.FinalAmount
			sale.DiscountAmount = sale.Subtotal.Sub(sale.TotalAmount)
		}

		// 2. Create the Sale Header (GORM inserts the items too)
		return tx.Create(sale).Error
	})

	if errors.Is(err, errClaimRejected) {
		return redemption, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return redemption, nil
}

func (s *SaleStore) Get(ctx context.Context, id uint) (*models.Sale, error) {
	var sale models.Sale
	if err := s.db.WithContext(ctx).Preload("Items").First(&sale, id).Error; err != nil {
		return nil, translate(err)
	}
	return &sale, nil
}
