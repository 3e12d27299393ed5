package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go-pos-backoffice/internal/costing"
	"go-pos-backoffice/internal/database"
	"go-pos-backoffice/internal/models"
	"go-pos-backoffice/internal/offers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// --- in-memory repositories ---

type memIngredients struct {
	byID  map[uint]models.Ingredient
	usage map[uint][]uint
}

func (m *memIngredients) FindByIDs(_ context.Context, ids []uint) ([]models.Ingredient, error) {
	var out []models.Ingredient
	for _, id := range ids {
		if ing, ok := m.byID[id]; ok {
			out = append(out, ing)
		}
	}
	return out, nil
}

func (m *memIngredients) RecipeIDsUsing(_ context.Context, id uint) ([]uint, error) {
	return m.usage[id], nil
}

type memRecipes struct {
	byID   map[uint]*models.Recipe
	nextID uint
	saves  int
}

func newMemRecipes() *memRecipes {
	return &memRecipes{byID: map[uint]*models.Recipe{}, nextID: 1}
}

func (m *memRecipes) Get(_ context.Context, id uint) (*models.Recipe, error) {
	r, ok := m.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *r
	cp.Ingredients = append([]models.RecipeIngredient(nil), r.Ingredients...)
	return &cp, nil
}

func (m *memRecipes) FindByIDs(_ context.Context, ids []uint) ([]models.Recipe, error) {
	var out []models.Recipe
	for _, id := range ids {
		if r, ok := m.byID[id]; ok {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memRecipes) Save(_ context.Context, r *models.Recipe) error {
	m.saves++
	if r.ID == 0 {
		r.ID = m.nextID
		m.nextID++
	}
	cp := *r
	m.byID[r.ID] = &cp
	return nil
}

func kitchen() *memIngredients {
	return &memIngredients{
		byID: map[uint]models.Ingredient{
			1: {ID: 1, Name: "Beef", Unit: "Kg", PurchasePrice: dec("50")},
			2: {ID: 2, Name: "Cheese", Unit: "Kg", PurchasePrice: dec("80")},
			3: {ID: 3, Name: "Milk", Unit: "Liter", PurchasePrice: dec("30")},
		},
		usage: map[uint][]uint{},
	}
}

func burger() RecipeDraft {
	return RecipeDraft{
		Name:          "Burger",
		Category:      "Mains",
		ServiceCharge: dec("10"),
		Ingredients: []costing.IngredientLine{
			{IngredientID: "1", Quantity: "2", Unit: costing.UnitKg},
			{IngredientID: "2", Quantity: "250", Unit: costing.UnitGram},
		},
	}
}

func TestRecipeService_PriceDoesNotPersist(t *testing.T) {
	recipes := newMemRecipes()
	svc := NewRecipeService(kitchen(), recipes)

	costs, err := svc.Price(context.Background(), burger())
	require.NoError(t, err)
	assert.True(t, dec("120").Equal(costs.TotalCostOfIngredients))
	assert.True(t, dec("130").Equal(costs.ManufacturingPrice))
	assert.True(t, dec("156").Equal(costs.SellingPrice))
	assert.Zero(t, recipes.saves)
}

func TestRecipeService_SaveStoresDerivedCosts(t *testing.T) {
	recipes := newMemRecipes()
	svc := NewRecipeService(kitchen(), recipes)

	recipe, _, err := svc.Save(context.Background(), burger())
	require.NoError(t, err)
	require.Len(t, recipe.Ingredients, 2)
	assert.True(t, dec("20").Equal(recipe.Ingredients[1].LineCost))
	assert.True(t, recipe.SellingPriceDerived)
	assert.Equal(t, 1, recipes.saves)
}

func TestRecipeService_SaveAbortsOnCalculatorError(t *testing.T) {
	recipes := newMemRecipes()
	svc := NewRecipeService(kitchen(), recipes)

	draft := burger()
	draft.Ingredients = append(draft.Ingredients, costing.IngredientLine{IngredientID: "3", Quantity: "1", Unit: costing.UnitKg})
	_, _, err := svc.Save(context.Background(), draft)
	assert.ErrorIs(t, err, costing.ErrIncompatibleUnits)

	draft = burger()
	draft.Ingredients[0].IngredientID = "42"
	_, _, err = svc.Save(context.Background(), draft)
	var nf *costing.IngredientNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "42", nf.IngredientID)

	draft = burger()
	draft.Name = "  "
	_, _, err = svc.Save(context.Background(), draft)
	assert.ErrorIs(t, err, costing.ErrInvalidInput)

	assert.Zero(t, recipes.saves)
}

func TestRecipeService_RecalculateKeepsOverride(t *testing.T) {
	ingredients := kitchen()
	recipes := newMemRecipes()
	svc := NewRecipeService(ingredients, recipes)
	ctx := context.Background()

	draft := burger()
	draft.SellingPrice = dec("199.99")
	saved, _, err := svc.Save(ctx, draft)
	require.NoError(t, err)

	beef := ingredients.byID[1]
	beef.PurchasePrice = dec("60")
	ingredients.byID[1] = beef
	ingredients.usage[1] = []uint{saved.ID}

	repriced, err := svc.RecalculateUsing(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{saved.ID}, repriced.Updated)
	assert.Empty(t, repriced.Skipped)

	got, err := recipes.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, dec("140").Equal(got.TotalCostOfIngredients))
	assert.True(t, dec("150").Equal(got.ManufacturingPrice))
	assert.True(t, dec("199.99").Equal(got.SellingPrice))
	assert.False(t, got.SellingPriceDerived)

	_, _, err = svc.Recalculate(ctx, 999)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRecipeService_RecalculateKeepsDerivedFlag(t *testing.T) {
	ingredients := kitchen()
	recipes := newMemRecipes()
	svc := NewRecipeService(ingredients, recipes)
	ctx := context.Background()

	saved, _, err := svc.Save(ctx, burger())
	require.NoError(t, err)
	require.True(t, saved.SellingPriceDerived)
	require.True(t, dec("156").Equal(saved.SellingPrice))

	beef := ingredients.byID[1]
	beef.PurchasePrice = dec("100")
	ingredients.byID[1] = beef
	ingredients.usage[1] = []uint{saved.ID}

	_, err = svc.RecalculateUsing(ctx, 1)
	require.NoError(t, err)

	got, err := recipes.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, dec("230").Equal(got.ManufacturingPrice))
	assert.True(t, dec("156").Equal(got.SellingPrice))
	assert.True(t, got.SellingPriceDerived)

	_, costs, err := svc.Quote(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, costs.SellingPriceDerived)
}

func TestRecipeService_RecalculateUsingReportsSkippedRecipes(t *testing.T) {
	ingredients := kitchen()
	recipes := newMemRecipes()
	svc := NewRecipeService(ingredients, recipes)
	ctx := context.Background()

	saved, _, err := svc.Save(ctx, burger())
	require.NoError(t, err)

	beef := ingredients.byID[1]
	beef.Unit = "Liter"
	ingredients.byID[1] = beef
	ingredients.usage[1] = []uint{saved.ID}

	repriced, err := svc.RecalculateUsing(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, repriced.Updated)
	assert.Equal(t, []uint{saved.ID}, repriced.Skipped)

	got, err := recipes.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, dec("120").Equal(got.TotalCostOfIngredients))
	assert.Equal(t, 1, recipes.saves)
}

// --- offers ---

type memOffers struct {
	rows   map[uint]*models.Offer
	uses   map[string]int
	nextID uint
}

func newMemOffers() *memOffers {
	return &memOffers{rows: map[uint]*models.Offer{}, uses: map[string]int{}, nextID: 1}
}

func (m *memOffers) Create(_ context.Context, o *models.Offer) error {
	for _, r := range m.rows {
		if r.Code == o.Code {
			return database.ErrDuplicate
		}
	}
	o.ID = m.nextID
	m.nextID++
	cp := *o
	m.rows[o.ID] = &cp
	return nil
}

func (m *memOffers) Get(_ context.Context, id uint) (*models.Offer, error) {
	r, ok := m.rows[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memOffers) GetByCode(_ context.Context, code string) (*models.Offer, error) {
	for _, r := range m.rows {
		if r.Code == code {
			cp := *r
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memOffers) List(_ context.Context, status string) ([]models.Offer, error) {
	var out []models.Offer
	for _, r := range m.rows {
		if status == "" || r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memOffers) UpdateStatus(_ context.Context, id uint, from, to string) error {
	r, ok := m.rows[id]
	if !ok || r.Status != from {
		return offers.ErrInvalidTransition
	}
	r.Status = to
	return nil
}

func (m *memOffers) CustomerUses(_ context.Context, offerID uint, customerID string) (int, error) {
	return m.uses[models.FormatID(offerID)+"/"+customerID], nil
}

func (m *memOffers) Redeem(ctx context.Context, claim database.OfferClaim) (*database.Redemption, error) {
	row, err := m.GetByCode(ctx, claim.Code)
	if err != nil {
		return nil, err
	}
	o, err := row.ToDomain()
	if err != nil {
		return nil, err
	}
	key := models.FormatID(row.ID) + "/" + claim.CustomerID
	res := claim.Check(o, m.uses[key])
	if res.Accepted {
		m.uses[key]++
		m.rows[row.ID].TotalUsed++
		m.rows[row.ID].TotalSavings = m.rows[row.ID].TotalSavings.Add(res.UsageDelta.Savings)
	}
	return &database.Redemption{OfferID: row.ID, Offer: o, Result: res}, nil
}

// collidingCodes returns the same code until it has been handed out n times.
type collidingCodes struct {
	codes []string
	i     int
}

func (c *collidingCodes) NewCode() string {
	code := c.codes[c.i]
	if c.i < len(c.codes)-1 {
		c.i++
	}
	return code
}

var jan15 = FixedClock(time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC))

func lunchDeal() offers.Offer {
	return offers.Offer{
		Name:          "Lunch",
		Type:          offers.TypeDiscount,
		DiscountType:  offers.DiscountPercentage,
		DiscountValue: dec("10"),
		Validity: offers.Validity{
			StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC),
		},
	}
}

func TestOfferService_CreateDefaultsAndGeneratesCode(t *testing.T) {
	repo := newMemOffers()
	svc := NewOfferService(repo, &collidingCodes{codes: []string{"OFF-A"}}, jan15)

	v, err := svc.Create(context.Background(), lunchDeal())
	require.NoError(t, err)
	assert.Equal(t, "OFF-A", v.Code)
	assert.Equal(t, offers.StatusDraft, v.Status)
	assert.Equal(t, offers.StateDraft, v.State)
	assert.Equal(t, 1, v.Conditions.UsagePerCustomer)
}

func TestOfferService_CreateRetriesGeneratedCollision(t *testing.T) {
	repo := newMemOffers()
	codes := &collidingCodes{codes: []string{"OFF-A", "OFF-A", "OFF-B"}}
	svc := NewOfferService(repo, codes, jan15)
	ctx := context.Background()

	_, err := svc.Create(ctx, lunchDeal())
	require.NoError(t, err)
	v, err := svc.Create(ctx, lunchDeal())
	require.NoError(t, err)
	assert.Equal(t, "OFF-B", v.Code)
}

func TestOfferService_CreateRejectsBadDefinition(t *testing.T) {
	svc := NewOfferService(newMemOffers(), offers.UUIDCodes{Prefix: "OFF"}, jan15)
	ctx := context.Background()

	bad := lunchDeal()
	bad.DiscountValue = dec("120")
	_, err := svc.Create(ctx, bad)
	assert.ErrorIs(t, err, offers.ErrInvalidOffer)

	expired := lunchDeal()
	expired.Status = offers.StatusExpired
	_, err = svc.Create(ctx, expired)
	assert.ErrorIs(t, err, offers.ErrInvalidOffer)

	mine := lunchDeal()
	mine.Code = " summer "
	_, err = svc.Create(ctx, mine)
	require.NoError(t, err)
	_, err = svc.Create(ctx, mine)
	assert.ErrorIs(t, err, database.ErrDuplicate)
}

func TestOfferService_SetStatusFollowsLifecycle(t *testing.T) {
	svc := NewOfferService(newMemOffers(), offers.UUIDCodes{Prefix: "OFF"}, jan15)
	ctx := context.Background()

	v, err := svc.Create(ctx, lunchDeal())
	require.NoError(t, err)
	id, err := models.ParseID(v.ID)
	require.NoError(t, err)

	v, err = svc.SetStatus(ctx, id, offers.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, offers.StateRunning, v.State)

	_, err = svc.SetStatus(ctx, id, offers.StatusDraft)
	assert.ErrorIs(t, err, offers.ErrInvalidTransition)
}

func TestOfferService_PreviewAndRedeem(t *testing.T) {
	repo := newMemOffers()
	svc := NewOfferService(repo, offers.UUIDCodes{Prefix: "OFF"}, jan15)
	ctx := context.Background()

	deal := lunchDeal()
	deal.Code = "LUNCH"
	deal.Status = offers.StatusActive
	_, err := svc.Create(ctx, deal)
	require.NoError(t, err)

	in := OrderInput{Code: "lunch", CustomerID: "c1", OrderValue: dec("250")}

	res, _, err := svc.Preview(ctx, in)
	require.NoError(t, err)
	require.True(t, res.Accepted)
	assert.True(t, dec("25").Equal(res.DiscountAmount))
	assert.True(t, dec("225").Equal(res.FinalAmount))

	// preview twice, still unused
	_, _, err = svc.Preview(ctx, in)
	require.NoError(t, err)
	v, err := svc.GetByCode(ctx, "LUNCH")
	require.NoError(t, err)
	assert.Zero(t, v.Usage.TotalUsed)

	r, err := svc.Redeem(ctx, in)
	require.NoError(t, err)
	assert.True(t, r.Result.Accepted)

	res, _, err = svc.Preview(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, offers.ReasonPerCustomerLimitExceeded, res.Reason)

	_, _, err = svc.Preview(ctx, OrderInput{Code: "NOPE", OrderValue: dec("1")})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

// --- checkout against the real stores ---

func newSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "pos.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestCheckoutService_AppliesOfferAtomically(t *testing.T) {
	db := newSQLite(t)
	ctx := context.Background()

	recipes := database.NewRecipeStore(db)
	soup := &models.Recipe{Name: "Soup", SellingPrice: dec("80")}
	pie := &models.Recipe{Name: "Pie", SellingPrice: dec("45.50")}
	require.NoError(t, recipes.Save(ctx, soup))
	require.NoError(t, recipes.Save(ctx, pie))

	offerSvc := NewOfferService(database.NewOfferStore(db), offers.UUIDCodes{Prefix: "OFF"}, jan15)
	limit := 1
	deal := lunchDeal()
	deal.Code = "ONCE"
	deal.Status = offers.StatusActive
	deal.Conditions.UsageLimit = &limit
	_, err := offerSvc.Create(ctx, deal)
	require.NoError(t, err)

	checkout := NewCheckoutService(recipes, database.NewSaleStore(db), offerSvc, jan15)
	req := CheckoutRequest{
		UserID:     7,
		CustomerID: "c1",
		OfferCode:  "once",
		Items: []CheckoutItem{
			{RecipeID: soup.ID, Quantity: 2},
			{RecipeID: pie.ID, Quantity: 1},
		},
	}

	receipt, err := checkout.Checkout(ctx, req)
	require.NoError(t, err)
	assert.True(t, dec("205.5").Equal(receipt.Sale.Subtotal))
	assert.True(t, dec("20.55").Equal(receipt.Sale.DiscountAmount))
	assert.True(t, dec("184.95").Equal(receipt.Sale.TotalAmount))
	require.NotNil(t, receipt.Offer)
	assert.True(t, receipt.Offer.Accepted)

	// usage limit reached: refused, no second sale
	req.CustomerID = "c2"
	_, err = checkout.Checkout(ctx, req)
	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, offers.ReasonUsageLimitExceeded, rejected.Result.Reason)

	var sales int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&sales).Error)
	assert.Equal(t, int64(1), sales)

	// no offer: full price
	req.OfferCode = ""
	receipt, err = checkout.Checkout(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, receipt.Offer)
	assert.True(t, dec("205.5").Equal(receipt.Sale.TotalAmount))
}

func TestCheckoutService_DiscountLargerThanOrderRecordsAmountTakenOff(t *testing.T) {
	db := newSQLite(t)
	ctx := context.Background()

	recipes := database.NewRecipeStore(db)
	platter := &models.Recipe{Name: "Platter", SellingPrice: dec("125")}
	require.NoError(t, recipes.Save(ctx, platter))

	offerStore := database.NewOfferStore(db)
	offerSvc := NewOfferService(offerStore, offers.UUIDCodes{Prefix: "OFF"}, jan15)
	deal := lunchDeal()
	deal.Code = "BIG300"
	deal.Status = offers.StatusActive
	deal.DiscountType = offers.DiscountFixed
	deal.DiscountValue = dec("300")
	_, err := offerSvc.Create(ctx, deal)
	require.NoError(t, err)

	checkout := NewCheckoutService(recipes, database.NewSaleStore(db), offerSvc, jan15)
	receipt, err := checkout.Checkout(ctx, CheckoutRequest{
		UserID:     7,
		CustomerID: "c1",
		OfferCode:  "BIG300",
		Items:      []CheckoutItem{{RecipeID: platter.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	require.NotNil(t, receipt.Offer)
	assert.True(t, dec("300").Equal(receipt.Offer.DiscountAmount))

	var sale models.Sale
	require.NoError(t, db.First(&sale, receipt.Sale.ID).Error)
	assert.True(t, dec("250").Equal(sale.Subtotal), sale.Subtotal.String())
	assert.True(t, dec("250").Equal(sale.DiscountAmount), sale.DiscountAmount.String())
	assert.True(t, sale.TotalAmount.IsZero(), sale.TotalAmount.String())
	assert.True(t, sale.Subtotal.Sub(sale.DiscountAmount).Equal(sale.TotalAmount))

	stored, err := offerStore.GetByCode(ctx, "BIG300")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TotalUsed)
	assert.True(t, dec("250").Equal(stored.TotalSavings), stored.TotalSavings.String())
}

func TestCheckoutService_RejectsBadCarts(t *testing.T) {
	checkout := NewCheckoutService(newMemRecipes(), nil, nil, jan15)
	ctx := context.Background()

	_, err := checkout.Checkout(ctx, CheckoutRequest{})
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = checkout.Checkout(ctx, CheckoutRequest{Items: []CheckoutItem{{RecipeID: 1, Quantity: 0}}})
	assert.ErrorIs(t, err, ErrBadQuantity)

	_, err = checkout.Checkout(ctx, CheckoutRequest{Items: []CheckoutItem{{RecipeID: 1, Quantity: 1}}})
	assert.ErrorIs(t, err, database.ErrNotFound)
}
