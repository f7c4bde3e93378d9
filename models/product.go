package models

import (
	"context"
	"errors"
	"time"

	"github.com/fgsantosti/estoque-agua/config"
	"github.com/fgsantosti/estoque-agua/utils"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID         int             `gorm:"primary_key" json:"id"`
	CategoryId int             `gorm:"index;not null" json:"category_id" binding:"required"`
	Name       string          `gorm:"size:200;not null" json:"name" binding:"required"`
	Code       string          `gorm:"size:50;uniqueIndex;not null" json:"code" binding:"required"`
	SalePrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"sale_price"`
	CostPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"cost_price"`
	MinStock   int             `gorm:"not null;default:10" json:"min_stock"`
	StockQty   int             `gorm:"not null;default:0" json:"stock_qty"`
	Unit       string          `gorm:"size:20;not null;default:'UN'" json:"unit"`
	IsActive   *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// LowStock reports whether the product is at or below its minimum threshold.
func (p Product) LowStock() bool {
	return p.StockQty <= p.MinStock
}

// StockValue is the on-hand quantity valued at cost price.
func (p Product) StockValue() decimal.Decimal {
	return p.CostPrice.Mul(decimal.NewFromInt(int64(p.StockQty)))
}

type NewProduct struct {
	CategoryId int             `json:"category_id" binding:"required"`
	Name       string          `json:"name" binding:"required"`
	Code       string          `json:"code" binding:"required"`
	SalePrice  decimal.Decimal `json:"sale_price"`
	CostPrice  decimal.Decimal `json:"cost_price"`
	MinStock   *int            `json:"min_stock"`
	StockQty   *int            `json:"stock_qty"`
	Unit       string          `json:"unit"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewProduct) validate(ctx context.Context, id int) error {
	// code
	if err := utils.ValidateUnique[Product](ctx, "code", input.Code, id); err != nil {
		return err
	}
	// category
	if err := utils.ValidateResourceId[Category](ctx, input.CategoryId); err != nil {
		return errors.New("category not found")
	}
	if input.SalePrice.IsNegative() || input.CostPrice.IsNegative() {
		return errors.New("prices cannot be negative")
	}
	if input.StockQty != nil && *input.StockQty < 0 {
		return errors.New("stock quantity cannot be negative")
	}
	if input.MinStock != nil && *input.MinStock < 0 {
		return errors.New("minimum stock cannot be negative")
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	unit := input.Unit
	if unit == "" {
		unit = "UN"
	}
	product := Product{
		CategoryId: input.CategoryId,
		Name:       input.Name,
		Code:       input.Code,
		SalePrice:  input.SalePrice,
		CostPrice:  input.CostPrice,
		MinStock:   utils.DereferencePtr(input.MinStock, 10),
		StockQty:   utils.DereferencePtr(input.StockQty),
		Unit:       unit,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&product).Error
	if err != nil {
		return nil, err
	}

	return &product, nil
}

// UpdateProduct edits master data. The stock quantity is deliberately not
// editable here: it only moves through the stock ledger and sales.
func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}

	unit := input.Unit
	if unit == "" {
		unit = product.Unit
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&product).Updates(map[string]interface{}{
		"CategoryId": input.CategoryId,
		"Name":       input.Name,
		"Code":       input.Code,
		"SalePrice":  input.SalePrice,
		"CostPrice":  input.CostPrice,
		"MinStock":   utils.DereferencePtr(input.MinStock, product.MinStock),
		"Unit":       unit,
	}).Error
	if err != nil {
		return nil, err
	}
	return product, nil
}

func DeleteProduct(ctx context.Context, id int) (*Product, error) {

	result, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}

	// Products with ledger history or sale items are deactivated, not deleted.
	movements, err := utils.ResourceCountWhere[StockMovement](ctx, "product_id = ?", id)
	if err != nil {
		return nil, err
	}
	items, err := utils.ResourceCountWhere[SaleItem](ctx, "product_id = ?", id)
	if err != nil {
		return nil, err
	}
	if movements > 0 || items > 0 {
		return nil, errors.New("product has movement history; deactivate it instead")
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	return utils.FetchModel[Product](ctx, id)
}

func GetProducts(ctx context.Context, search *string, categoryId *int, activeOnly bool, page, limit int) ([]*Product, int64, error) {

	db := config.GetDB()
	var results []*Product

	dbCtx := db.WithContext(ctx).Model(&Product{})
	if activeOnly {
		dbCtx = dbCtx.Where("is_active = ?", true)
	}
	if search != nil && len(*search) > 0 {
		dbCtx = dbCtx.Where("name LIKE ? OR code LIKE ?", "%"+*search+"%", "%"+*search+"%")
	}
	if categoryId != nil && *categoryId > 0 {
		dbCtx = dbCtx.Where("category_id = ?", *categoryId)
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
	err := dbCtx.Order("name").Offset((page - 1) * limit).Limit(limit).Find(&results).Error
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func GetLowStockProducts(ctx context.Context, limit int) ([]*Product, error) {

	db := config.GetDB()
	var results []*Product

	dbCtx := db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("stock_qty <= min_stock").
		Order("stock_qty")
	if limit > 0 {
		dbCtx = dbCtx.Limit(limit)
	}
	if err := dbCtx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func ToggleActiveProduct(ctx context.Context, id int, isActive bool) (*Product, error) {

	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&product).Update("IsActive", isActive).Error
	if err != nil {
		return nil, err
	}
	return product, nil
}

// ProductPriceStock is the POS lookup payload: current price and availability
// of a product by id.
type ProductPriceStock struct {
	ProductId int             `json:"product_id"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	SalePrice decimal.Decimal `json:"sale_price"`
	StockQty  int             `json:"stock_qty"`
	Unit      string          `json:"unit"`
}

func GetProductPriceStock(ctx context.Context, id int) (*ProductPriceStock, error) {
	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProductPriceStock{
		ProductId: product.ID,
		Name:      product.Name,
		Code:      product.Code,
		SalePrice: product.SalePrice,
		StockQty:  product.StockQty,
		Unit:      product.Unit,
	}, nil
}
