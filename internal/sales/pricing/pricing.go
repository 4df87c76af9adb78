// Package pricing computes quantity-tiered discounts for sale line items.
package pricing

import "github.com/shopspring/decimal"

var (
	tenPercent    = decimal.NewFromFloat(0.10)
	twentyPercent = decimal.NewFromFloat(0.20)
)

// Quote computes the discount and total for a line item from its unit price and
// quantity. Tiers: 1-3 no discount, 4-9 ten percent, 10-20 twenty percent.
// Quantities outside [1,20] are rejected upstream; Quote prices whatever it is
// given and stays deterministic and side-effect free.
func Quote(unitPrice decimal.Decimal, quantity int32) (discount, total decimal.Decimal) {
	gross := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))

	switch {
	case quantity >= 4 && quantity < 10:
		discount = gross.Mul(tenPercent)
	case quantity >= 10 && quantity <= 20:
		discount = gross.Mul(twentyPercent)
	default:
		discount = decimal.Zero
	}

	return discount, gross.Sub(discount)
}
