package models_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fgsantosti/estoque-agua/models"
	"github.com/shopspring/decimal"
)

func TestSaleItemCountAndQuantity(t *testing.T) {
	sale := models.Sale{}
	if sale.ItemCount() != 0 || sale.TotalQuantity() != 0 {
		t.Fatal("empty sale should count zero items and zero quantity")
	}

	sale.Items = []models.SaleItem{
		{Quantity: 3},
		{Quantity: 1},
		{Quantity: 10},
	}
	if got := sale.ItemCount(); got != 3 {
		t.Fatalf("item count = %d, want 3", got)
	}
	if got := sale.TotalQuantity(); got != 14 {
		t.Fatalf("total quantity = %d, want 14", got)
	}
}

func TestSalePercentPaid(t *testing.T) {
	sale := models.Sale{Total: decimal.NewFromFloat(9.00)}
	if !sale.PercentPaid().IsZero() {
		t.Fatalf("unpaid sale percent = %s, want 0", sale.PercentPaid())
	}

	sale.PaidTotal = decimal.NewFromFloat(4.50)
	if want := decimal.NewFromInt(50); !sale.PercentPaid().Equal(want) {
		t.Fatalf("half-paid percent = %s, want %s", sale.PercentPaid(), want)
	}

	sale.PaidTotal = decimal.NewFromFloat(3.00)
	if want := decimal.NewFromFloat(33.33); !sale.PercentPaid().Equal(want) {
		t.Fatalf("third-paid percent = %s, want %s", sale.PercentPaid(), want)
	}

	sale.PaidTotal = decimal.NewFromFloat(9.00)
	if want := decimal.NewFromInt(100); !sale.PercentPaid().Equal(want) {
		t.Fatalf("fully-paid percent = %s, want %s", sale.PercentPaid(), want)
	}

	// A zero-total sale never divides by zero.
	empty := models.Sale{}
	if !empty.PercentPaid().IsZero() {
		t.Fatalf("zero-total percent = %s, want 0", empty.PercentPaid())
	}
}

func TestReceivablePercentPaid(t *testing.T) {
	receivable := models.Receivable{
		Amount:     decimal.NewFromFloat(20.00),
		PaidAmount: decimal.NewFromFloat(8.00),
	}
	if want := decimal.NewFromInt(40); !receivable.PercentPaid().Equal(want) {
		t.Fatalf("percent paid = %s, want %s", receivable.PercentPaid(), want)
	}
}

func TestSaleDueDate(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	cashSale := models.Sale{CreatedAt: created}
	if got := cashSale.DueDate(); !got.Equal(created) {
		t.Fatalf("sale without mode due %s, want %s", got, created)
	}

	termSale := models.Sale{
		CreatedAt:   created,
		PaymentMode: &models.PaymentMode{ReceiptTermDays: 30},
	}
	want := time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC)
	if got := termSale.DueDate(); !got.Equal(want) {
		t.Fatalf("30-day-term sale due %s, want %s", got, want)
	}
}

func TestPaymentAmountValidationBeforeAnyWork(t *testing.T) {
	ctx := context.Background()

	if _, err := models.RegisterSalePayments(ctx, 1, nil); !errors.Is(err, models.ErrInvalidAmount) {
		t.Fatalf("empty batch error = %v, want ErrInvalidAmount", err)
	}

	zero := models.NewReceivablePayment{PaymentModeId: 1, Amount: decimal.Zero}
	if _, err := models.PayReceivable(ctx, 1, &zero); !errors.Is(err, models.ErrInvalidAmount) {
		t.Fatalf("zero amount error = %v, want ErrInvalidAmount", err)
	}

	negative := models.NewReceivablePayment{PaymentModeId: 1, Amount: decimal.NewFromFloat(-5)}
	if _, err := models.PayReceivable(ctx, 1, &negative); !errors.Is(err, models.ErrInvalidAmount) {
		t.Fatalf("negative amount error = %v, want ErrInvalidAmount", err)
	}
}
