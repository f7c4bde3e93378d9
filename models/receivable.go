package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fgsantosti/estoque-agua/config"
	"github.com/fgsantosti/estoque-agua/utils"
	"github.com/shopspring/decimal"
)

// Receivable is money a customer owes, either born from a customer sale or
// entered on its own. Overdue is not a stored status; it is derived from the
// due date on read.
type Receivable struct {
	ID         int                  `gorm:"primary_key" json:"id"`
	CustomerId int                  `gorm:"index;not null" json:"customer_id"`
	Customer   *Customer            `json:"customer,omitempty"`
	SaleId     *int                 `gorm:"index" json:"sale_id"`
	Sale       *Sale                `json:"sale,omitempty"`
	Amount     decimal.Decimal      `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaidAmount decimal.Decimal      `gorm:"type:decimal(10,2);not null;default:0" json:"paid_amount"`
	DueDate    time.Time            `gorm:"not null" json:"due_date"`
	Status     ReceivableStatus     `gorm:"size:20;not null" json:"status"`
	Note       string               `gorm:"size:500" json:"note"`
	OperatorId int                  `gorm:"not null" json:"operator_id"`
	Payments   []ReceivablePayment  `json:"payments,omitempty"`
	CreatedAt  time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r Receivable) Pending() decimal.Decimal {
	pending := r.Amount.Sub(r.PaidAmount)
	if pending.IsNegative() {
		return decimal.Zero
	}
	return pending
}

// Overdue reports whether an unsettled receivable is past its due date.
func (r Receivable) Overdue(now time.Time) bool {
	return r.Status != ReceivableStatusSettled && r.DueDate.Before(now)
}

// PercentPaid is the settled share of the amount, 0 to 100, two decimals.
func (r Receivable) PercentPaid() decimal.Decimal {
	return percentPaid(r.PaidAmount, r.Amount)
}

func reconcileReceivableStatus(amount, paid decimal.Decimal) ReceivableStatus {
	if paid.GreaterThanOrEqual(amount) {
		return ReceivableStatusSettled
	}
	if paid.IsPositive() {
		return ReceivableStatusPartial
	}
	return ReceivableStatusOpen
}

type ReceivablePayment struct {
	ID            int             `gorm:"primary_key" json:"id"`
	ReceivableId  int             `gorm:"index;not null" json:"receivable_id"`
	PaymentModeId int             `gorm:"index;not null" json:"payment_mode_id"`
	PaymentMode   *PaymentMode    `json:"payment_mode,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Note          string          `gorm:"size:500" json:"note"`
	OperatorId    int             `gorm:"not null" json:"operator_id"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewReceivable struct {
	CustomerId int             `json:"customer_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	DueDate    time.Time       `json:"due_date" binding:"required"`
	Note       string          `json:"note"`
}

// CreateReceivable records a standalone debt, one not born from a sale.
// Sale-linked receivables only come out of sale creation and payment
// reconciliation.
func CreateReceivable(ctx context.Context, input *NewReceivable) (*Receivable, error) {

	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if err := utils.ValidateResourceId[Customer](ctx, input.CustomerId); err != nil {
		return nil, errors.New("customer not found")
	}

	operatorId, err := operatorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	receivable := Receivable{
		CustomerId: input.CustomerId,
		Amount:     input.Amount,
		PaidAmount: decimal.Zero,
		DueDate:    input.DueDate,
		Status:     ReceivableStatusOpen,
		Note:       input.Note,
		OperatorId: operatorId,
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Create(&receivable).Error
	if err != nil {
		return nil, err
	}
	return &receivable, nil
}

func GetReceivable(ctx context.Context, id int) (*Receivable, error) {
	return utils.FetchModel[Receivable](ctx, id,
		"Customer", "Sale", "Payments", "Payments.PaymentMode")
}

type ReceivableFilter struct {
	CustomerId  *int
	Status      *ReceivableStatus
	OverdueOnly bool
}

func GetReceivables(ctx context.Context, filter ReceivableFilter, page, limit int) ([]*Receivable, int64, error) {

	db := config.GetDB()
	var results []*Receivable

	dbCtx := db.WithContext(ctx).Model(&Receivable{})
	if filter.CustomerId != nil && *filter.CustomerId > 0 {
		dbCtx = dbCtx.Where("customer_id = ?", *filter.CustomerId)
	}
	if filter.Status != nil {
		dbCtx = dbCtx.Where("status = ?", *filter.Status)
	}
	if filter.OverdueOnly {
		dbCtx = dbCtx.Where("status <> ? AND due_date < ?", ReceivableStatusSettled, time.Now())
	}

	var total int64
	if err := dbCtx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = config.SearchLimit
	}
	if page < 1 {
		page = 1
	}
	err := dbCtx.Preload("Customer").
		Order("due_date, id").
		Offset((page - 1) * limit).Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

type NewReceivablePayment struct {
	PaymentModeId int             `json:"payment_mode_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Note          string          `json:"note"`
}

// PayReceivable settles part or all of a receivable. Sale-linked receivables
// route through the sale payment path so the sale and the receivable cannot
// drift apart; standalone ones are mutated directly.
func PayReceivable(ctx context.Context, id int, input *NewReceivablePayment) (*Receivable, error) {

	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	receivable, err := utils.FetchModel[Receivable](ctx, id)
	if err != nil {
		return nil, err
	}

	pending := receivable.Pending()
	if !pending.IsPositive() {
		return nil, fmt.Errorf("%w: receivable is settled", ErrOverpayment)
	}
	if exceedsTolerance(input.Amount, pending) {
		return nil, fmt.Errorf("%w: %s exceeds pending %s", ErrOverpayment, input.Amount, pending)
	}

	if receivable.SaleId != nil {
		_, err := RegisterSalePayments(ctx, *receivable.SaleId, []NewSalePayment{
			{PaymentModeId: input.PaymentModeId, Amount: input.Amount, Note: input.Note},
		})
		if err != nil {
			return nil, err
		}
		return GetReceivable(ctx, id)
	}

	if err := utils.ValidateResourceId[PaymentMode](ctx, input.PaymentModeId); err != nil {
		return nil, errors.New("payment mode not found")
	}

	operatorId, err := operatorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	payment := ReceivablePayment{
		ReceivableId:  id,
		PaymentModeId: input.PaymentModeId,
		Amount:        input.Amount,
		Note:          input.Note,
		OperatorId:    operatorId,
	}
	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	paid := receivable.PaidAmount.Add(input.Amount)
	err = tx.Model(&Receivable{}).Where("id = ?", id).Updates(map[string]interface{}{
		"PaidAmount": paid,
		"Status":     reconcileReceivableStatus(receivable.Amount, paid),
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return GetReceivable(ctx, id)
}
