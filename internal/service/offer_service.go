package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"go-pos-backoffice/internal/database"
	"go-pos-backoffice/internal/models"
	"go-pos-backoffice/internal/offers"

	"github.com/shopspring/decimal"
)

// generatedCodeAttempts bounds retries when a generated code collides.
const generatedCodeAttempts = 3

type OfferRepo interface {
	Create(ctx context.Context, o *models.Offer) error
	Get(ctx context.Context, id uint) (*models.Offer, error)
	GetByCode(ctx context.Context, code string) (*models.Offer, error)
	List(ctx context.Context, status string) ([]models.Offer, error)
	UpdateStatus(ctx context.Context, id uint, from, to string) error
	CustomerUses(ctx context.Context, offerID uint, customerID string) (int, error)
	Redeem(ctx context.Context, claim database.OfferClaim) (*database.Redemption, error)
}

// OfferView is an offer plus its state at the time it was read.
type OfferView struct {
	offers.Offer
	State offers.TemporalState `json:"state"`
}

// OrderInput is what the till knows about an order when it asks about an offer.
type OrderInput struct {
	Code       string
	CustomerID string
	OrderValue decimal.Decimal
	Items      []offers.OrderItem
}

type OfferService struct {
	repo  OfferRepo
	codes offers.CodeGenerator
	clock Clock
}

func NewOfferService(repo OfferRepo, codes offers.CodeGenerator, clock Clock) *OfferService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &OfferService{repo: repo, codes: codes, clock: clock}
}

// NormalizeCode is how codes are stored and looked up.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create validates and stores a new offer. New offers start as draft or
// active with zero usage; a missing code is generated.
func (s *OfferService) Create(ctx context.Context, o offers.Offer) (*OfferView, error) {
	o.ApplyDefaults()
	o.Usage = offers.Usage{TotalSavings: decimal.Zero}
	o.Code = NormalizeCode(o.Code)

	if err := offers.ValidateDefinition(o); err != nil {
		return nil, err
	}
	if o.Status != offers.StatusDraft && o.Status != offers.StatusActive {
		return nil, &offers.DefinitionError{Problems: []string{"status: new offers must be draft or active"}}
	}

	generated := o.Code == ""
	attempts := 1
	if generated {
		attempts = generatedCodeAttempts
	}

	var row models.Offer
	var err error
	for i := 0; i < attempts; i++ {
		if generated {
			o.Code = s.codes.NewCode()
		}
		row = models.OfferFromDomain(o)
		if err = s.repo.Create(ctx, &row); !errors.Is(err, database.ErrDuplicate) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	log.Printf("🏷️ Offer %s created (%s)", row.Code, row.Status)
	return s.view(row)
}

func (s *OfferService) Get(ctx context.Context, id uint) (*OfferView, error) {
	row, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(*row)
}

func (s *OfferService) GetByCode(ctx context.Context, code string) (*OfferView, error) {
	row, err := s.repo.GetByCode(ctx, NormalizeCode(code))
	if err != nil {
		return nil, err
	}
	return s.view(*row)
}

func (s *OfferService) List(ctx context.Context, status string) ([]OfferView, error) {
	rows, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	out := make([]OfferView, 0, len(rows))
	for _, row := range rows {
		v, err := s.view(row)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

// SetStatus applies an administrator status change.
func (s *OfferService) SetStatus(ctx context.Context, id uint, to offers.Status) (*OfferView, error) {
	row, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := offers.Status(row.Status)
	if err := offers.Transition(from, to); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, string(from), string(to)); err != nil {
		return nil, err
	}
	log.Printf("🏷️ Offer %s: %s -> %s", row.Code, from, to)
	row.Status = string(to)
	return s.view(*row)
}

// Preview validates the offer for an order without claiming a use.
func (s *OfferService) Preview(ctx context.Context, in OrderInput) (offers.Result, *OfferView, error) {
	row, err := s.repo.GetByCode(ctx, NormalizeCode(in.Code))
	if err != nil {
		return offers.Result{}, nil, err
	}
	uses, err := s.repo.CustomerUses(ctx, row.ID, in.CustomerID)
	if err != nil {
		return offers.Result{}, nil, err
	}
	view, err := s.view(*row)
	if err != nil {
		return offers.Result{}, nil, err
	}

	res := offers.ValidateOffer(view.Offer, offers.OrderContext{
		OrderValue:         in.OrderValue,
		Items:              in.Items,
		Now:                s.clock.Now(),
		CustomerUsageCount: uses,
	})
	return res, view, nil
}

// Claim builds the locked re-validation used by Redeem and by checkout.
func (s *OfferService) Claim(in OrderInput) database.OfferClaim {
	now := s.clock.Now()
	return database.OfferClaim{
		Code:       NormalizeCode(in.Code),
		CustomerID: in.CustomerID,
		OrderValue: in.OrderValue,
		Check: func(locked offers.Offer, uses int) offers.Result {
			return offers.ValidateOffer(locked, offers.OrderContext{
				OrderValue:         in.OrderValue,
				Items:              in.Items,
				Now:                now,
				CustomerUsageCount: uses,
			})
		},
	}
}

// Redeem claims one use of the offer for the order.
func (s *OfferService) Redeem(ctx context.Context, in OrderInput) (*database.Redemption, error) {
	return s.repo.Redeem(ctx, s.Claim(in))
}

func (s *OfferService) view(row models.Offer) (*OfferView, error) {
	o, err := row.ToDomain()
	if err != nil {
		return nil, err
	}
	return &OfferView{Offer: o, State: offers.StateAt(o, s.clock.Now())}, nil
}
