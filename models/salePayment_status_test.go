package models_test

import (
	"testing"

	"github.com/fgsantosti/estoque-agua/models"
	"github.com/shopspring/decimal"
)

func intPtr(n int) *int { return &n }

func TestReconcileSaleStatusThresholds(t *testing.T) {
	total := decimal.NewFromFloat(9.00)

	cases := []struct {
		name       string
		customerId *int
		paid       decimal.Decimal
		status     models.SaleStatus
		want       models.SaleStatus
	}{
		{"counter sale unpaid", nil, decimal.Zero, models.SaleStatusFinalized, models.SaleStatusFinalized},
		{"customer sale unpaid", intPtr(7), decimal.Zero, models.SaleStatusOpen, models.SaleStatusOpen},
		{"customer sale reverts to open", intPtr(7), decimal.Zero, models.SaleStatusPartialPaid, models.SaleStatusOpen},
		{"partial", intPtr(7), decimal.NewFromFloat(5.00), models.SaleStatusOpen, models.SaleStatusPartialPaid},
		{"exact", intPtr(7), decimal.NewFromFloat(9.00), models.SaleStatusPartialPaid, models.SaleStatusPaid},
		{"over", nil, decimal.NewFromFloat(9.01), models.SaleStatusFinalized, models.SaleStatusPaid},
		{"cancelled sticky", intPtr(7), decimal.NewFromFloat(9.00), models.SaleStatusCancelled, models.SaleStatusCancelled},
	}

	for _, tc := range cases {
		sale := &models.Sale{
			CustomerId: tc.customerId,
			Status:     tc.status,
			Total:      total,
			PaidTotal:  tc.paid,
		}
		got := models.ReconcileSaleStatus(sale)
		if got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestReconcileSaleStatusIdempotent(t *testing.T) {
	sale := &models.Sale{
		CustomerId: intPtr(3),
		Status:     models.SaleStatusOpen,
		Total:      decimal.NewFromFloat(100),
		PaidTotal:  decimal.NewFromFloat(40),
	}

	first := models.ReconcileSaleStatus(sale)
	sale.Status = first
	second := models.ReconcileSaleStatus(sale)
	if first != second {
		t.Fatalf("reconciliation not idempotent: %s then %s", first, second)
	}
	if first != models.SaleStatusPartialPaid {
		t.Fatalf("got %s, want %s", first, models.SaleStatusPartialPaid)
	}
}

func TestSalePendingNeverNegative(t *testing.T) {
	sale := models.Sale{
		Total:     decimal.NewFromFloat(9.00),
		PaidTotal: decimal.NewFromFloat(9.01),
	}
	if !sale.Pending().IsZero() {
		t.Fatalf("overpaid sale pending = %s, want 0", sale.Pending())
	}

	sale.PaidTotal = decimal.NewFromFloat(4.50)
	if want := decimal.NewFromFloat(4.50); !sale.Pending().Equal(want) {
		t.Fatalf("pending = %s, want %s", sale.Pending(), want)
	}
}
