package offers

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var o Offer
	o.ApplyDefaults()
	assert.Equal(t, StatusDraft, o.Status)
	assert.Equal(t, 1, o.Conditions.UsagePerCustomer)
}

func TestValidateDefinition_Valid(t *testing.T) {
	require.NoError(t, ValidateDefinition(january()))

	o := january()
	o.Type = TypeBuyGet
	o.DiscountType = ""
	require.NoError(t, ValidateDefinition(o))
}

func TestValidateDefinition_Problems(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *Offer)
		problem string
	}{
		{"end equals start", func(o *Offer) { o.Validity.EndDate = o.Validity.StartDate }, "end_date must be after start_date"},
		{"end before start", func(o *Offer) { o.Validity.EndDate = o.Validity.StartDate.Add(-time.Hour) }, "end_date must be after start_date"},
		{"missing discount type", func(o *Offer) { o.DiscountType = "" }, "discount_type is required"},
		{"unknown discount type", func(o *Offer) { o.DiscountType = "bogus" }, "not percentage or fixed"},
		{"percentage over 100", func(o *Offer) { o.DiscountValue = d("150") }, "between 0 and 100"},
		{"negative value", func(o *Offer) { o.DiscountType = DiscountFixed; o.DiscountValue = d("-1") }, "discount_value must not be negative"},
		{"unknown type", func(o *Offer) { o.Type = "bundle" }, "type \"bundle\""},
		{"negative min order", func(o *Offer) { o.Conditions.MinOrderValue = d("-5") }, "min_order_value"},
		{"negative cap", func(o *Offer) { o.Conditions.MaxDiscountAmount = decPtr("-5") }, "max_discount_amount"},
		{"zero usage limit", func(o *Offer) { o.Conditions.UsageLimit = intPtr(0) }, "usage_limit"},
		{"zero per customer", func(o *Offer) { o.Conditions.UsagePerCustomer = 0 }, "usage_per_customer"},
		{"missing name", func(o *Offer) { o.Name = " " }, "name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := january()
			tt.mutate(&o)

			err := ValidateDefinition(o)
			require.ErrorIs(t, err, ErrInvalidOffer)

			var de *DefinitionError
			require.True(t, errors.As(err, &de))
			assert.True(t, strings.Contains(de.Error(), tt.problem), de.Error())
		})
	}
}

func TestTransition(t *testing.T) {
	allowed := [][2]Status{
		{StatusDraft, StatusActive},
		{StatusDraft, StatusCancelled},
		{StatusActive, StatusPaused},
		{StatusPaused, StatusActive},
		{StatusActive, StatusExpired},
		{StatusPaused, StatusCancelled},
	}
	for _, tr := range allowed {
		assert.NoError(t, Transition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	denied := [][2]Status{
		{StatusDraft, StatusPaused},
		{StatusExpired, StatusActive},
		{StatusCancelled, StatusActive},
		{StatusActive, StatusDraft},
		{StatusActive, "archived"},
	}
	for _, tr := range denied {
		assert.ErrorIs(t, Transition(tr[0], tr[1]), ErrInvalidTransition, "%s -> %s", tr[0], tr[1])
	}
}

func TestParseClockTime(t *testing.T) {
	c, err := ParseClockTime("09:30")
	require.NoError(t, err)
	assert.Equal(t, ClockTime(570), c)
	assert.Equal(t, "09:30", c.String())

	for _, bad := range []string{"9", "24:00", "12:60", "ab:cd", "12:5"} {
		_, err := ParseClockTime(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseWeekday(t *testing.T) {
	day, err := ParseWeekday("Friday")
	require.NoError(t, err)
	assert.Equal(t, time.Friday, day)

	day, err = ParseWeekday("sun")
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, day)

	_, err = ParseWeekday("someday")
	assert.Error(t, err)
}

type fixedCodes []string

func (f *fixedCodes) NewCode() string {
	code := (*f)[0]
	*f = (*f)[1:]
	return code
}

func TestCodeGenerators(t *testing.T) {
	code := UUIDCodes{Prefix: "OFF"}.NewCode()
	assert.True(t, strings.HasPrefix(code, "OFF-"))
	assert.Len(t, code, len("OFF-")+12)
	assert.NotEqual(t, code, UUIDCodes{Prefix: "OFF"}.NewCode())

	sf, err := NewSnowflakeCodes("", 7)
	require.NoError(t, err)
	a, b := sf.NewCode(), sf.NewCode()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)

	_, err = NewSnowflakeCodes("OFF", 5000)
	assert.Error(t, err)

	var gen CodeGenerator = &fixedCodes{"A1", "B2"}
	assert.Equal(t, "A1", gen.NewCode())
	assert.Equal(t, "B2", gen.NewCode())
}
