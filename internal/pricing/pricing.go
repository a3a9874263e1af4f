// Package pricing computes final unit prices at order-creation time.
// The result is snapshotted onto order line items; later discount or
// price changes never touch existing orders.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/RbroH99/les-sha-accesories/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Resolve applies a discount to a base price and returns the final unit
// price, rounded to two decimal places. The result is clamped to
// [0, price]: a discount never raises a price and never drops it below
// zero. A nil discount returns the price unchanged.
func Resolve(price decimal.Decimal, discount *models.Discount) decimal.Decimal {
	if discount == nil {
		return price.Round(2)
	}

	var final decimal.Decimal

	switch discount.Type {
	case models.DiscountTypePercentage:
		final = price.Mul(hundred.Sub(discount.Value)).Div(hundred)
	case models.DiscountTypeFixed:
		final = price.Sub(discount.Value)
	default:
		final = price
	}

	if final.IsNegative() {
		final = decimal.Zero
	}

	if final.GreaterThan(price) {
		final = price
	}

	return final.Round(2)
}
