package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func Test_Quote(t *testing.T) {
	testCases := []struct {
		name             string
		unitPrice        string
		quantity         int32
		expectedDiscount string
		expectedTotal    string
	}{
		{
			name:             "single item - no discount",
			unitPrice:        "10.00",
			quantity:         1,
			expectedDiscount: "0",
			expectedTotal:    "10.00",
		},
		{
			name:             "three items - upper bound of no-discount tier",
			unitPrice:        "10.00",
			quantity:         3,
			expectedDiscount: "0",
			expectedTotal:    "30.00",
		},
		{
			name:             "four items - lower bound of 10 percent tier",
			unitPrice:        "10.00",
			quantity:         4,
			expectedDiscount: "4.00",
			expectedTotal:    "36.00",
		},
		{
			name:             "five items at ten",
			unitPrice:        "10.00",
			quantity:         5,
			expectedDiscount: "5.00",
			expectedTotal:    "45.00",
		},
		{
			name:             "nine items - upper bound of 10 percent tier",
			unitPrice:        "10.00",
			quantity:         9,
			expectedDiscount: "9.00",
			expectedTotal:    "81.00",
		},
		{
			name:             "ten items - lower bound of 20 percent tier",
			unitPrice:        "10.00",
			quantity:         10,
			expectedDiscount: "20.00",
			expectedTotal:    "80.00",
		},
		{
			name:             "fifteen items at one hundred",
			unitPrice:        "100.00",
			quantity:         15,
			expectedDiscount: "300.00",
			expectedTotal:    "1200.00",
		},
		{
			name:             "twenty items - upper bound of 20 percent tier",
			unitPrice:        "10.00",
			quantity:         20,
			expectedDiscount: "40.00",
			expectedTotal:    "160.00",
		},
		{
			name:             "fractional unit price keeps exact arithmetic",
			unitPrice:        "19.99",
			quantity:         4,
			expectedDiscount: "7.996",
			expectedTotal:    "71.964",
		},
		{
			name:             "zero unit price",
			unitPrice:        "0",
			quantity:         10,
			expectedDiscount: "0",
			expectedTotal:    "0",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			unitPrice := decimal.RequireFromString(tc.unitPrice)
			// when
			discount, total := Quote(unitPrice, tc.quantity)
			// then
			assert.True(t, decimal.RequireFromString(tc.expectedDiscount).Equal(discount),
				"discount: expected %s, got %s", tc.expectedDiscount, discount)
			assert.True(t, decimal.RequireFromString(tc.expectedTotal).Equal(total),
				"total: expected %s, got %s", tc.expectedTotal, total)
		})
	}
}

func Test_Quote_TotalIsGrossMinusDiscount(t *testing.T) {
	// given
	unitPrice := decimal.RequireFromString("42.50")
	for quantity := int32(1); quantity <= 20; quantity++ {
		// when
		discount, total := Quote(unitPrice, quantity)
		// then
		gross := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
		assert.True(t, gross.Sub(discount).Equal(total), "quantity %d: %s - %s != %s", quantity, gross, discount, total)
	}
}
