package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/RbroH99/les-sha-accesories/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestResolveNoDiscount(t *testing.T) {
	final := Resolve(dec("45.00"), nil)
	assert.True(t, dec("45.00").Equal(final), "got %s", final)
}

func TestResolvePercentage(t *testing.T) {
	discount := &models.Discount{Type: models.DiscountTypePercentage, Value: dec("10")}

	final := Resolve(dec("20.00"), discount)
	assert.True(t, dec("18.00").Equal(final), "got %s", final)
}

func TestResolvePercentageRounds(t *testing.T) {
	discount := &models.Discount{Type: models.DiscountTypePercentage, Value: dec("33")}

	// 19.99 * 0.67 = 13.3933
	final := Resolve(dec("19.99"), discount)
	assert.True(t, dec("13.39").Equal(final), "got %s", final)
}

func TestResolveFixed(t *testing.T) {
	discount := &models.Discount{Type: models.DiscountTypeFixed, Value: dec("5.50")}

	final := Resolve(dec("20.00"), discount)
	assert.True(t, dec("14.50").Equal(final), "got %s", final)
}

func TestResolveFixedClampsToZero(t *testing.T) {
	discount := &models.Discount{Type: models.DiscountTypeFixed, Value: dec("25.00")}

	final := Resolve(dec("20.00"), discount)
	assert.True(t, final.IsZero(), "got %s", final)
}

func TestResolvePercentageOverHundredClampsToZero(t *testing.T) {
	discount := &models.Discount{Type: models.DiscountTypePercentage, Value: dec("150")}

	final := Resolve(dec("20.00"), discount)
	assert.True(t, final.IsZero(), "got %s", final)
}

func TestResolveNegativeValueNeverRaisesPrice(t *testing.T) {
	discount := &models.Discount{Type: models.DiscountTypeFixed, Value: dec("-5")}

	final := Resolve(dec("20.00"), discount)
	assert.True(t, dec("20.00").Equal(final), "got %s", final)
}

func TestResolveUnknownTypeKeepsPrice(t *testing.T) {
	discount := &models.Discount{Type: "buy_one_get_one", Value: dec("1")}

	final := Resolve(dec("20.00"), discount)
	assert.True(t, dec("20.00").Equal(final), "got %s", final)
}
