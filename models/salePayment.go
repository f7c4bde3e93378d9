package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fgsantosti/estoque-agua/config"
	"github.com/fgsantosti/estoque-agua/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SalePayment struct {
	ID            int             `gorm:"primary_key" json:"id"`
	SaleId        int             `gorm:"index;not null" json:"sale_id"`
	PaymentModeId int             `gorm:"index;not null" json:"payment_mode_id"`
	PaymentMode   *PaymentMode    `json:"payment_mode,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Note          string          `gorm:"size:500" json:"note"`
	OperatorId    int             `gorm:"not null" json:"operator_id"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewSalePayment struct {
	PaymentModeId int             `json:"payment_mode_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Note          string          `json:"note"`
}

// ReconcileSaleStatus derives the status a sale should carry from its paid
// total. It is pure and idempotent. Cancelled is sticky. With nothing paid
// the sale falls back to its lifecycle state: open when a customer is
// attached, finalized for counter sales.
func ReconcileSaleStatus(sale *Sale) SaleStatus {
	if sale.Status == SaleStatusCancelled {
		return SaleStatusCancelled
	}
	if !sale.PaidTotal.IsPositive() {
		if sale.CustomerId != nil {
			return SaleStatusOpen
		}
		return SaleStatusFinalized
	}
	if sale.PaidTotal.GreaterThanOrEqual(sale.Total) {
		return SaleStatusPaid
	}
	return SaleStatusPartialPaid
}

// RegisterSalePayments persists one payment row per (mode, amount) pair in a
// single transaction, then reconciles the sale status and the linked
// receivable. The batch is all-or-nothing: any invalid amount or an
// aggregate exceeding the pending balance by more than one cent rejects the
// whole batch with zero rows written.
func RegisterSalePayments(ctx context.Context, saleId int, inputs []NewSalePayment) (*Sale, error) {

	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no payments given", ErrInvalidAmount)
	}

	operatorId, err := operatorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sale, err := utils.FetchModel[Sale](ctx, saleId)
	if err != nil {
		return nil, err
	}
	if sale.Status == SaleStatusCancelled {
		return nil, errors.New("sale is cancelled")
	}

	pending := sale.Pending()
	if !pending.IsPositive() {
		return nil, fmt.Errorf("%w: sale has no pending balance", ErrOverpayment)
	}

	sum := decimal.Zero
	for _, input := range inputs {
		if !input.Amount.IsPositive() {
			return nil, ErrInvalidAmount
		}
		if err := utils.ValidateResourceId[PaymentMode](ctx, input.PaymentModeId); err != nil {
			return nil, errors.New("payment mode not found")
		}
		sum = sum.Add(input.Amount)
	}
	if exceedsTolerance(sum, pending) {
		return nil, fmt.Errorf("%w: %s exceeds pending %s", ErrOverpayment, sum, pending)
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, input := range inputs {
		payment := SalePayment{
			SaleId:        saleId,
			PaymentModeId: input.PaymentModeId,
			Amount:        input.Amount,
			Note:          input.Note,
			OperatorId:    operatorId,
		}
		if err := tx.Create(&payment).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	sale.PaidTotal = sale.PaidTotal.Add(sum)
	status := ReconcileSaleStatus(sale)
	err = tx.Model(&Sale{}).Where("id = ?", saleId).Updates(map[string]interface{}{
		"PaidTotal": sale.PaidTotal,
		"Status":    status,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := syncSaleReceivable(tx, sale, operatorId); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return GetSale(ctx, saleId)
}

// syncSaleReceivable brings the receivable linked to the sale in line with
// the sale's paid total, creating it lazily for customer sales that predate
// their first payment.
func syncSaleReceivable(tx *gorm.DB, sale *Sale, operatorId int) error {
	if sale.CustomerId == nil {
		return nil
	}

	var receivable Receivable
	err := tx.Where("sale_id = ?", sale.ID).First(&receivable).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		receivable = Receivable{
			CustomerId: *sale.CustomerId,
			SaleId:     &sale.ID,
			Amount:     sale.Total,
			PaidAmount: sale.PaidTotal,
			DueDate:    dueDateForPaymentMode(tx, sale.PaymentModeId, sale.CreatedAt),
			Status:     reconcileReceivableStatus(sale.Total, sale.PaidTotal),
			Note:       "sale " + sale.Number,
			OperatorId: operatorId,
		}
		return tx.Create(&receivable).Error
	}
	if err != nil {
		return err
	}

	return tx.Model(&Receivable{}).Where("id = ?", receivable.ID).Updates(map[string]interface{}{
		"PaidAmount": sale.PaidTotal,
		"Status":     reconcileReceivableStatus(receivable.Amount, sale.PaidTotal),
	}).Error
}
