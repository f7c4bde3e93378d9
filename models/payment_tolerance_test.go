package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

// One cent over the pending balance is absorbed, two cents is rejected. The
// same comparison guards both the sale payment batch and receivable payments.
func TestPaymentToleranceBoundary(t *testing.T) {
	pending := decimal.NewFromFloat(9.00)

	cases := []struct {
		name    string
		sum     decimal.Decimal
		exceeds bool
	}{
		{"under pending", decimal.NewFromFloat(5.00), false},
		{"exact pending", decimal.NewFromFloat(9.00), false},
		{"one cent over", decimal.NewFromFloat(9.01), false},
		{"two cents over", decimal.NewFromFloat(9.02), true},
		{"well over", decimal.NewFromFloat(10.00), true},
	}
	for _, tc := range cases {
		if got := exceedsTolerance(tc.sum, pending); got != tc.exceeds {
			t.Errorf("%s: exceedsTolerance(%s, %s) = %v, want %v",
				tc.name, tc.sum, pending, got, tc.exceeds)
		}
	}
}
