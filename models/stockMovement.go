package models

import (
	"context"
	"errors"
	"time"

	"github.com/fgsantosti/estoque-agua/config"
	"github.com/fgsantosti/estoque-agua/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockMovement is one entry in the stock ledger. Movements tied to a sale
// carry the sale id and cannot be removed on their own.
type StockMovement struct {
	ID            int              `gorm:"primary_key" json:"id"`
	ProductId     int              `gorm:"index;not null" json:"product_id" binding:"required"`
	Product       *Product         `json:"product,omitempty"`
	SupplierId    *int             `gorm:"index" json:"supplier_id"`
	Supplier      *Supplier        `json:"supplier,omitempty"`
	SaleId        *int             `gorm:"index" json:"sale_id"`
	PaymentModeId *int             `gorm:"index" json:"payment_mode_id"`
	Kind          MovementKind     `gorm:"size:20;not null" json:"kind" binding:"required"`
	Quantity      int              `gorm:"not null" json:"quantity"`
	UnitPrice     *decimal.Decimal `gorm:"type:decimal(10,2)" json:"unit_price"`
	Note          string           `gorm:"size:500" json:"note"`
	OperatorId    int              `gorm:"not null" json:"operator_id"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

// Value is the movement quantity priced at its unit price, zero when the
// movement was recorded without one.
func (m StockMovement) Value() decimal.Decimal {
	if m.UnitPrice == nil {
		return decimal.Zero
	}
	return m.UnitPrice.Mul(decimal.NewFromInt(int64(m.Quantity)))
}

type NewStockMovement struct {
	ProductId     int              `json:"product_id" binding:"required"`
	SupplierId    *int             `json:"supplier_id"`
	PaymentModeId *int             `json:"payment_mode_id"`
	Kind          MovementKind     `json:"kind" binding:"required"`
	Quantity      int              `json:"quantity"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	Note          string           `json:"note"`
}

func (input *NewStockMovement) validate(ctx context.Context) error {
	if !input.Kind.IsValid() {
		return errors.New("invalid movement kind")
	}
	// Entries and exits are positive deltas. Adjustments set the absolute
	// quantity, so zero is allowed there.
	switch input.Kind {
	case MovementKindAdjustment:
		if input.Quantity < 0 {
			return errors.New("adjusted quantity cannot be negative")
		}
	default:
		if input.Quantity <= 0 {
			return errors.New("quantity must be positive")
		}
	}
	if err := utils.ValidateResourceId[Product](ctx, input.ProductId); err != nil {
		return errors.New("product not found")
	}
	if input.SupplierId != nil {
		if err := utils.ValidateResourceId[Supplier](ctx, *input.SupplierId); err != nil {
			return errors.New("supplier not found")
		}
	}
	if input.PaymentModeId != nil {
		if err := utils.ValidateResourceId[PaymentMode](ctx, *input.PaymentModeId); err != nil {
			return errors.New("payment mode not found")
		}
	}
	if input.UnitPrice != nil && input.UnitPrice.IsNegative() {
		return errors.New("unit price cannot be negative")
	}
	return nil
}

// applyMovement mutates the product balance inside tx according to the
// movement kind and returns the stored delta.
func applyMovement(tx *gorm.DB, product *Product, kind MovementKind, quantity int) (int, error) {
	switch kind {
	case MovementKindEntry:
		product.StockQty += quantity
	case MovementKindExit:
		if product.StockQty < quantity {
			return 0, ErrInsufficientStock
		}
		product.StockQty -= quantity
	case MovementKindAdjustment:
		// The ledger records the target quantity, not the delta.
		product.StockQty = quantity
	}
	err := tx.Model(&Product{}).Where("id = ?", product.ID).
		Update("StockQty", product.StockQty).Error
	if err != nil {
		return 0, err
	}
	return quantity, nil
}

func RecordMovement(ctx context.Context, input *NewStockMovement) (*StockMovement, error) {

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

	var product Product
	// Lock the row so concurrent movements serialize on the balance.
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, input.ProductId).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	quantity, err := applyMovement(tx, &product, input.Kind, input.Quantity)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	movement := StockMovement{
		ProductId:     input.ProductId,
		SupplierId:    input.SupplierId,
		PaymentModeId: input.PaymentModeId,
		Kind:          input.Kind,
		Quantity:      quantity,
		UnitPrice:     input.UnitPrice,
		Note:          input.Note,
		OperatorId:    operatorId,
	}
	if err := tx.Create(&movement).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

// DeleteMovement removes a manual ledger entry and reverses its effect on the
// product balance. Movements created by a sale are owned by the sale and can
// only go away through cancellation.
func DeleteMovement(ctx context.Context, id int) (*StockMovement, error) {

	movement, err := utils.FetchModel[StockMovement](ctx, id)
	if err != nil {
		return nil, err
	}
	if movement.SaleId != nil {
		return nil, errors.New("movement belongs to a sale; cancel the sale instead")
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var product Product
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, movement.ProductId).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	switch movement.Kind {
	case MovementKindEntry:
		if product.StockQty < movement.Quantity {
			tx.Rollback()
			return nil, ErrInsufficientStock
		}
		product.StockQty -= movement.Quantity
	case MovementKindExit:
		product.StockQty += movement.Quantity
	case MovementKindAdjustment:
		// There is no recorded prior quantity to restore, so the balance
		// stays where the adjustment left it.
	}

	if movement.Kind != MovementKindAdjustment {
		err = tx.Model(&Product{}).Where("id = ?", product.ID).
			Update("StockQty", product.StockQty).Error
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Delete(&movement).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return movement, nil
}

func GetMovement(ctx context.Context, id int) (*StockMovement, error) {
	return utils.FetchModel[StockMovement](ctx, id, "Product", "Supplier")
}

type MovementFilter struct {
	ProductId *int
	Kind      *MovementKind
	From      *time.Time
	To        *time.Time
}

// MovementTotals aggregates quantity and value per kind over a filtered
// ledger slice. Value only counts movements recorded with a unit price.
type MovementTotals struct {
	Entries         int             `json:"entries"`
	EntryValue      decimal.Decimal `json:"entry_value"`
	Exits           int             `json:"exits"`
	ExitValue       decimal.Decimal `json:"exit_value"`
	Adjustments     int             `json:"adjustments"`
	AdjustmentValue decimal.Decimal `json:"adjustment_value"`
}

func GetMovements(ctx context.Context, filter MovementFilter, page, limit int) ([]*StockMovement, int64, error) {

	db := config.GetDB()
	var results []*StockMovement

	dbCtx := db.WithContext(ctx).Model(&StockMovement{})
	if filter.ProductId != nil && *filter.ProductId > 0 {
		dbCtx = dbCtx.Where("product_id = ?", *filter.ProductId)
	}
	if filter.Kind != nil {
		dbCtx = dbCtx.Where("kind = ?", *filter.Kind)
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
	err := dbCtx.Preload("Product").Preload("Supplier").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func GetMovementTotals(ctx context.Context, filter MovementFilter) (*MovementTotals, error) {

	db := config.GetDB()

	type row struct {
		Kind  MovementKind
		Total int
		Value decimal.Decimal
	}
	var rows []row

	dbCtx := db.WithContext(ctx).Model(&StockMovement{}).
		Select("kind, COALESCE(SUM(quantity), 0) AS total, COALESCE(SUM(quantity * unit_price), 0) AS value").
		Group("kind")
	if filter.ProductId != nil && *filter.ProductId > 0 {
		dbCtx = dbCtx.Where("product_id = ?", *filter.ProductId)
	}
	if filter.From != nil {
		dbCtx = dbCtx.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		dbCtx = dbCtx.Where("created_at <= ?", *filter.To)
	}
	if err := dbCtx.Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := MovementTotals{}
	for _, r := range rows {
		switch r.Kind {
		case MovementKindEntry:
			totals.Entries = r.Total
			totals.EntryValue = r.Value
		case MovementKindExit:
			totals.Exits = r.Total
			totals.ExitValue = r.Value
		case MovementKindAdjustment:
			totals.Adjustments = r.Total
			totals.AdjustmentValue = r.Value
		}
	}
	return &totals, nil
}
