package models_test

import (
	"testing"
	"time"

	"github.com/fgsantosti/estoque-agua/models"
	"github.com/shopspring/decimal"
)

func TestProductLowStock(t *testing.T) {
	product := models.Product{StockQty: 5, MinStock: 10}
	if !product.LowStock() {
		t.Fatal("5 of minimum 10 should be low stock")
	}

	product.StockQty = 10
	if !product.LowStock() {
		t.Fatal("at the minimum counts as low stock")
	}

	product.StockQty = 11
	if product.LowStock() {
		t.Fatal("above the minimum should not be low stock")
	}
}

func TestProductStockValue(t *testing.T) {
	product := models.Product{
		StockQty:  12,
		CostPrice: decimal.NewFromFloat(3.25),
	}
	if want := decimal.NewFromFloat(39.00); !product.StockValue().Equal(want) {
		t.Fatalf("stock value = %s, want %s", product.StockValue(), want)
	}
}

func TestMovementValue(t *testing.T) {
	price := decimal.NewFromFloat(2.50)
	movement := models.StockMovement{Quantity: 4, UnitPrice: &price}
	if want := decimal.NewFromFloat(10.00); !movement.Value().Equal(want) {
		t.Fatalf("value = %s, want %s", movement.Value(), want)
	}

	movement.UnitPrice = nil
	if !movement.Value().IsZero() {
		t.Fatalf("unpriced movement value = %s, want 0", movement.Value())
	}
}

func TestPaymentModeDueDate(t *testing.T) {
	day := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	cash := models.PaymentMode{ReceiptTermDays: 0}
	if got := cash.DueDateFrom(day); !got.Equal(day) {
		t.Fatalf("immediate mode due %s, want %s", got, day)
	}

	term := models.PaymentMode{ReceiptTermDays: 30}
	want := time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC)
	if got := term.DueDateFrom(day); !got.Equal(want) {
		t.Fatalf("30-day mode due %s, want %s", got, want)
	}
}

func TestReceivableOverdue(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	r := models.Receivable{
		Status:  models.ReceivableStatusOpen,
		DueDate: now.AddDate(0, 0, -1),
	}
	if !r.Overdue(now) {
		t.Fatal("open receivable past due date should be overdue")
	}

	r.Status = models.ReceivableStatusSettled
	if r.Overdue(now) {
		t.Fatal("settled receivable is never overdue")
	}

	r.Status = models.ReceivableStatusPartial
	r.DueDate = now.AddDate(0, 0, 1)
	if r.Overdue(now) {
		t.Fatal("receivable due tomorrow is not overdue")
	}
}
