package models

import (
	"context"
	"errors"
	"time"

	"github.com/fgsantosti/estoque-agua/config"
	"github.com/fgsantosti/estoque-agua/utils"
)

type Supplier struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:200;not null" json:"name" binding:"required"`
	TaxId     string    `gorm:"size:30" json:"tax_id"`
	Phone     string    `gorm:"size:30" json:"phone"`
	Email     string    `gorm:"size:200" json:"email"`
	Address   string    `gorm:"size:500" json:"address"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSupplier struct {
	Name    string `json:"name" binding:"required"`
	TaxId   string `json:"tax_id"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

func (input *NewSupplier) validate(ctx context.Context, id int) error {
	if input.TaxId != "" {
		if err := utils.ValidateUnique[Supplier](ctx, "tax_id", input.TaxId, id); err != nil {
			return err
		}
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, "BR"); err != nil {
			return err
		}
	}
	return nil
}

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	supplier := Supplier{
		Name:    input.Name,
		TaxId:   input.TaxId,
		Phone:   input.Phone,
		Email:   input.Email,
		Address: input.Address,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&supplier).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func UpdateSupplier(ctx context.Context, id int, input *NewSupplier) (*Supplier, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	supplier, err := utils.FetchModel[Supplier](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&supplier).Updates(map[string]interface{}{
		"Name":    input.Name,
		"TaxId":   input.TaxId,
		"Phone":   input.Phone,
		"Email":   input.Email,
		"Address": input.Address,
	}).Error
	if err != nil {
		return nil, err
	}
	return supplier, nil
}

func DeleteSupplier(ctx context.Context, id int) (*Supplier, error) {

	result, err := utils.FetchModel[Supplier](ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[StockMovement](ctx, "supplier_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("supplier has stock movements; deactivate it instead")
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	return utils.FetchModel[Supplier](ctx, id)
}

func GetSuppliers(ctx context.Context, search *string, activeOnly bool, page, limit int) ([]*Supplier, int64, error) {

	db := config.GetDB()
	var results []*Supplier

	dbCtx := db.WithContext(ctx).Model(&Supplier{})
	if activeOnly {
		dbCtx = dbCtx.Where("is_active = ?", true)
	}
	if search != nil && len(*search) > 0 {
		dbCtx = dbCtx.Where("name LIKE ? OR tax_id LIKE ?", "%"+*search+"%", "%"+*search+"%")
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

func ToggleActiveSupplier(ctx context.Context, id int, isActive bool) (*Supplier, error) {

	supplier, err := utils.FetchModel[Supplier](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&supplier).Update("IsActive", isActive).Error
	if err != nil {
		return nil, err
	}
	return supplier, nil
}
