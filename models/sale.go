package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fgsantosti/estoque-agua/config"
	"github.com/fgsantosti/estoque-agua/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	saleNumberPrefix = "VD"
	saleNumberWidth  = 6
	// Attempts before a number collision stops being treated as transient.
	saleNumberMaxRetries = 10
)

type Sale struct {
	ID            int             `gorm:"primary_key" json:"id"`
	Number        string          `gorm:"size:20;uniqueIndex;not null" json:"number"`
	CustomerId    *int            `gorm:"index" json:"customer_id"`
	Customer      *Customer       `json:"customer,omitempty"`
	PaymentModeId *int            `gorm:"index" json:"payment_mode_id"`
	PaymentMode   *PaymentMode    `json:"payment_mode,omitempty"`
	Status        SaleStatus      `gorm:"size:20;not null" json:"status"`
	Note          string          `gorm:"size:500" json:"note"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total"`
	PaidTotal     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"paid_total"`
	OperatorId    int             `gorm:"not null" json:"operator_id"`
	Items         []SaleItem      `json:"items,omitempty"`
	Payments      []SalePayment   `json:"payments,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Pending is what remains to be paid. Never negative: an overpaid sale
// (inside tolerance) reports zero.
func (s Sale) Pending() decimal.Decimal {
	pending := s.Total.Sub(s.PaidTotal)
	if pending.IsNegative() {
		return decimal.Zero
	}
	return pending
}

// ItemCount is the number of lines on the sale. Meaningful only when Items
// is loaded.
func (s Sale) ItemCount() int {
	return len(s.Items)
}

// TotalQuantity sums the quantities across all lines.
func (s Sale) TotalQuantity() int {
	total := 0
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

// PercentPaid is the settled share of the total, 0 to 100, two decimals.
func (s Sale) PercentPaid() decimal.Decimal {
	return percentPaid(s.PaidTotal, s.Total)
}

// DueDate is when payment is expected: creation date pushed out by the
// payment mode's receipt term. Immediate when no mode is attached.
func (s Sale) DueDate() time.Time {
	if s.PaymentMode == nil {
		return s.CreatedAt
	}
	return s.PaymentMode.DueDateFrom(s.CreatedAt)
}

func percentPaid(paid, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return paid.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
}

type SaleItem struct {
	ID        int             `gorm:"primary_key" json:"id"`
	SaleId    int             `gorm:"index;not null" json:"sale_id"`
	ProductId int             `gorm:"index;not null" json:"product_id"`
	Product   *Product        `json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"line_total"`
}

type NewSaleItem struct {
	ProductId int              `json:"product_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

type NewSale struct {
	CustomerId    *int          `json:"customer_id"`
	PaymentModeId *int          `json:"payment_mode_id"`
	Note          string        `json:"note"`
	Items         []NewSaleItem `json:"items" binding:"required"`
}

func (input *NewSale) validate(ctx context.Context) error {
	if len(input.Items) == 0 {
		return errors.New("sale requires at least one item")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return errors.New("item quantity must be positive")
		}
		if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
			return errors.New("item unit price cannot be negative")
		}
	}
	if input.CustomerId != nil {
		if err := utils.ValidateResourceId[Customer](ctx, *input.CustomerId); err != nil {
			return errors.New("customer not found")
		}
	}
	if input.PaymentModeId != nil {
		if err := utils.ValidateResourceId[PaymentMode](ctx, *input.PaymentModeId); err != nil {
			return errors.New("payment mode not found")
		}
	}
	return nil
}

// allocateSaleNumber picks the next free sequential number inside tx. A
// concurrent insert can take the candidate first, so existence is rechecked
// and the candidate bumped until free.
func allocateSaleNumber(tx *gorm.DB) (string, error) {

	// The numeric suffix is compared as a number, not a string, so the
	// sequence keeps advancing once it outgrows the zero-padded width.
	var maxSeq int64
	err := tx.Model(&Sale{}).
		Select("COALESCE(MAX(CAST(SUBSTRING(number, ?) AS UNSIGNED)), 0)", len(saleNumberPrefix)+1).
		Where("number LIKE ?", saleNumberPrefix+"%").
		Scan(&maxSeq).Error
	if err != nil {
		return "", err
	}

	next := int(maxSeq) + 1

	for attempt := 0; attempt < saleNumberMaxRetries; attempt++ {
		candidate := fmt.Sprintf("%s%0*d", saleNumberPrefix, saleNumberWidth, next)
		var count int64
		if err := tx.Model(&Sale{}).Where("number = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		next++
	}
	return "", ErrDuplicateSaleNumber
}

func CreateSale(ctx context.Context, input *NewSale) (*Sale, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
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

	// Lock every product up front and validate the whole order before any
	// mutation, so a failing line leaves nothing behind.
	products := map[int]*Product{}
	var short []string
	for _, item := range input.Items {
		if _, ok := products[item.ProductId]; ok {
			continue
		}
		var product Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, item.ProductId).Error
		if err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("product %d not found", item.ProductId)
			}
			return nil, err
		}
		products[item.ProductId] = &product
	}
	shortSeen := map[int]bool{}
	for _, item := range input.Items {
		product := products[item.ProductId]
		if product.StockQty < item.Quantity && !shortSeen[item.ProductId] {
			shortSeen[item.ProductId] = true
			short = append(short, product.Name)
		}
		product.StockQty -= item.Quantity
	}
	if len(short) > 0 {
		tx.Rollback()
		return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, strings.Join(short, ", "))
	}

	number, err := allocateSaleNumber(tx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	status := SaleStatusFinalized
	if input.CustomerId != nil {
		status = SaleStatusOpen
	}

	sale := Sale{
		Number:        number,
		CustomerId:    input.CustomerId,
		PaymentModeId: input.PaymentModeId,
		Status:        status,
		Note:          input.Note,
		OperatorId:    operatorId,
	}
	if err := tx.Create(&sale).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	total := decimal.Zero
	for _, item := range input.Items {
		product := products[item.ProductId]

		unitPrice := product.SalePrice
		if item.UnitPrice != nil {
			unitPrice = *item.UnitPrice
		}
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(lineTotal)

		saleItem := SaleItem{
			SaleId:    sale.ID,
			ProductId: item.ProductId,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
			LineTotal: lineTotal,
		}
		if err := tx.Create(&saleItem).Error; err != nil {
			tx.Rollback()
			return nil, err
		}

		movement := StockMovement{
			ProductId:     item.ProductId,
			SaleId:        &sale.ID,
			PaymentModeId: input.PaymentModeId,
			Kind:          MovementKindExit,
			Quantity:      item.Quantity,
			UnitPrice:     &unitPrice,
			Note:          "sale " + sale.Number,
			OperatorId:    operatorId,
		}
		if err := tx.Create(&movement).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	for _, product := range products {
		err := tx.Model(&Product{}).Where("id = ?", product.ID).
			Update("StockQty", product.StockQty).Error
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Model(&Sale{}).Where("id = ?", sale.ID).Update("Total", total).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	sale.Total = total

	// Customer sales open a receivable for the full amount.
	if input.CustomerId != nil {
		dueDate := dueDateForPaymentMode(tx, input.PaymentModeId, sale.CreatedAt)
		receivable := Receivable{
			CustomerId: *input.CustomerId,
			SaleId:     &sale.ID,
			Amount:     total,
			PaidAmount: decimal.Zero,
			DueDate:    dueDate,
			Status:     ReceivableStatusOpen,
			Note:       "sale " + sale.Number,
			OperatorId: operatorId,
		}
		if err := tx.Create(&receivable).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return GetSale(ctx, sale.ID)
}

func dueDateForPaymentMode(tx *gorm.DB, paymentModeId *int, from time.Time) time.Time {
	if from.IsZero() {
		from = time.Now()
	}
	if paymentModeId == nil {
		return from
	}
	var mode PaymentMode
	if err := tx.First(&mode, *paymentModeId).Error; err != nil {
		return from
	}
	return mode.DueDateFrom(from)
}

func GetSale(ctx context.Context, id int) (*Sale, error) {
	return utils.FetchModel[Sale](ctx, id,
		"Customer", "PaymentMode", "Items", "Items.Product", "Payments", "Payments.PaymentMode")
}

type SaleFilter struct {
	Status     *SaleStatus
	CustomerId *int
	Number     *string
	From       *time.Time
	To         *time.Time
}

func GetSales(ctx context.Context, filter SaleFilter, page, limit int) ([]*Sale, int64, error) {

	db := config.GetDB()
	var results []*Sale

	dbCtx := db.WithContext(ctx).Model(&Sale{})
	if filter.Status != nil {
		dbCtx = dbCtx.Where("status = ?", *filter.Status)
	}
	if filter.CustomerId != nil && *filter.CustomerId > 0 {
		dbCtx = dbCtx.Where("customer_id = ?", *filter.CustomerId)
	}
	if filter.Number != nil && len(*filter.Number) > 0 {
		dbCtx = dbCtx.Where("number LIKE ?", "%"+*filter.Number+"%")
	}
	if filter.From != nil {
		dbCtx = dbCtx.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		dbCtx = dbCtx.Where("created_at <= ?", *filter.To)
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
	err := dbCtx.Preload("Customer").Preload("PaymentMode").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

type SaleHeaderEdit struct {
	PaymentModeId *int   `json:"payment_mode_id"`
	Note          string `json:"note"`
}

// UpdateSale edits header fields of a sale that has not taken payments yet.
// Line items are immutable after creation; correcting them means cancelling
// and reselling.
func UpdateSale(ctx context.Context, id int, input *SaleHeaderEdit) (*Sale, error) {

	sale, err := utils.FetchModel[Sale](ctx, id)
	if err != nil {
		return nil, err
	}
	if sale.Status == SaleStatusCancelled {
		return nil, errors.New("sale is cancelled")
	}
	if sale.PaidTotal.IsPositive() {
		return nil, errors.New("sale already has payments")
	}
	if input.PaymentModeId != nil {
		if err := utils.ValidateResourceId[PaymentMode](ctx, *input.PaymentModeId); err != nil {
			return nil, errors.New("payment mode not found")
		}
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&sale).Updates(map[string]interface{}{
		"PaymentModeId": input.PaymentModeId,
		"Note":          input.Note,
	}).Error
	if err != nil {
		return nil, err
	}
	return GetSale(ctx, id)
}

// CancelSale reverses sale creation: each exit movement tied to the sale is
// removed and its quantity returned to the product, the unpaid linked
// receivable goes away, and the status turns Cancelled for good.
func CancelSale(ctx context.Context, id int) (*Sale, error) {

	sale, err := utils.FetchModel[Sale](ctx, id)
	if err != nil {
		return nil, err
	}
	if sale.Status == SaleStatusCancelled {
		return nil, errors.New("sale is already cancelled")
	}
	if sale.PaidTotal.IsPositive() {
		return nil, errors.New("sale has payments; refund them before cancelling")
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var movements []StockMovement
	err = tx.Where("sale_id = ? AND kind = ?", id, MovementKindExit).Find(&movements).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, movement := range movements {
		var product Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, movement.ProductId).Error
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		err = tx.Model(&Product{}).Where("id = ?", product.ID).
			Update("StockQty", product.StockQty+movement.Quantity).Error
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Where("sale_id = ?", id).Delete(&StockMovement{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Where("sale_id = ?", id).Delete(&Receivable{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	err = tx.Model(&Sale{}).Where("id = ?", id).Update("Status", SaleStatusCancelled).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return GetSale(ctx, id)
}
