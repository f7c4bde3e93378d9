package models

import (
	"context"
	"errors"
	"time"

	"github.com/fgsantosti/estoque-agua/config"
	"github.com/fgsantosti/estoque-agua/utils"
)

const activePaymentModesCacheKey = "payment-modes:active"

// PaymentMode is how a sale gets settled. ReceiptTermDays is how many days
// after the sale the money is expected; zero means immediate.
type PaymentMode struct {
	ID              int       `gorm:"primary_key" json:"id"`
	Name            string    `gorm:"size:100;uniqueIndex;not null" json:"name" binding:"required"`
	Description     string    `gorm:"size:500" json:"description"`
	ReceiptTermDays int       `gorm:"not null;default:0" json:"receipt_term_days"`
	IsActive        *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DueDateFrom is when a payment taken at t is expected to be received.
func (m PaymentMode) DueDateFrom(t time.Time) time.Time {
	return t.AddDate(0, 0, m.ReceiptTermDays)
}

type NewPaymentMode struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	ReceiptTermDays int    `json:"receipt_term_days"`
}

func (input *NewPaymentMode) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[PaymentMode](ctx, "name", input.Name, id); err != nil {
		return err
	}
	if input.ReceiptTermDays < 0 {
		return errors.New("receipt term cannot be negative")
	}
	return nil
}

func CreatePaymentMode(ctx context.Context, input *NewPaymentMode) (*PaymentMode, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	mode := PaymentMode{
		Name:            input.Name,
		Description:     input.Description,
		ReceiptTermDays: input.ReceiptTermDays,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&mode).Error
	if err != nil {
		return nil, err
	}

	_ = config.RemoveRedisKey(activePaymentModesCacheKey)
	return &mode, nil
}

func UpdatePaymentMode(ctx context.Context, id int, input *NewPaymentMode) (*PaymentMode, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	mode, err := utils.FetchModel[PaymentMode](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&mode).Updates(map[string]interface{}{
		"Name":            input.Name,
		"Description":     input.Description,
		"ReceiptTermDays": input.ReceiptTermDays,
	}).Error
	if err != nil {
		return nil, err
	}

	_ = config.RemoveRedisKey(activePaymentModesCacheKey)
	return mode, nil
}

func DeletePaymentMode(ctx context.Context, id int) (*PaymentMode, error) {

	result, err := utils.FetchModel[PaymentMode](ctx, id)
	if err != nil {
		return nil, err
	}

	payments, err := utils.ResourceCountWhere[SalePayment](ctx, "payment_mode_id = ?", id)
	if err != nil {
		return nil, err
	}
	movements, err := utils.ResourceCountWhere[StockMovement](ctx, "payment_mode_id = ?", id)
	if err != nil {
		return nil, err
	}
	if payments > 0 || movements > 0 {
		return nil, errors.New("payment mode is in use; deactivate it instead")
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}

	_ = config.RemoveRedisKey(activePaymentModesCacheKey)
	return result, nil
}

func GetPaymentMode(ctx context.Context, id int) (*PaymentMode, error) {
	return utils.FetchModel[PaymentMode](ctx, id)
}

func GetPaymentModes(ctx context.Context, search *string, page, limit int) ([]*PaymentMode, int64, error) {

	db := config.GetDB()
	var results []*PaymentMode

	dbCtx := db.WithContext(ctx).Model(&PaymentMode{})
	if search != nil && len(*search) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*search+"%")
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

// GetActivePaymentModes serves the POS form dropdown and is cached until the
// next payment-mode write.
func GetActivePaymentModes(ctx context.Context) ([]*PaymentMode, error) {

	var results []*PaymentMode
	if ok, _ := config.GetRedisObject(activePaymentModesCacheKey, &results); ok {
		return results, nil
	}

	db := config.GetDB()
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	if err := config.SetRedisObject(activePaymentModesCacheKey, results, 0); err != nil {
		logger := config.GetLogger()
		config.LogError(logger, "models", "GetActivePaymentModes", "cache write", nil, err)
	}
	return results, nil
}

func ToggleActivePaymentMode(ctx context.Context, id int, isActive bool) (*PaymentMode, error) {

	mode, err := utils.FetchModel[PaymentMode](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&mode).Update("IsActive", isActive).Error
	if err != nil {
		return nil, err
	}

	_ = config.RemoveRedisKey(activePaymentModesCacheKey)
	return mode, nil
}
