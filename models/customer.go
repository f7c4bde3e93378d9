package models

import (
	"context"
	"errors"
	"time"

	"github.com/fgsantosti/estoque-agua/config"
	"github.com/fgsantosti/estoque-agua/utils"
	"github.com/shopspring/decimal"
)

type Customer struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:200;not null" json:"name" binding:"required"`
	TaxId     string    `gorm:"size:30" json:"tax_id"`
	Phone     string    `gorm:"size:30" json:"phone"`
	Email     string    `gorm:"size:200" json:"email"`
	Address   string    `gorm:"size:500" json:"address"`
	Note      string    `gorm:"size:500" json:"note"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name    string `json:"name" binding:"required"`
	TaxId   string `json:"tax_id"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Note    string `json:"note"`
}

func (input *NewCustomer) validate(ctx context.Context, id int) error {
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

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	customer := Customer{
		Name:    input.Name,
		TaxId:   input.TaxId,
		Phone:   input.Phone,
		Email:   input.Email,
		Address: input.Address,
		Note:    input.Note,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func UpdateCustomer(ctx context.Context, id int, input *NewCustomer) (*Customer, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	customer, err := utils.FetchModel[Customer](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&customer).Updates(map[string]interface{}{
		"Name":    input.Name,
		"TaxId":   input.TaxId,
		"Phone":   input.Phone,
		"Email":   input.Email,
		"Address": input.Address,
		"Note":    input.Note,
	}).Error
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func DeleteCustomer(ctx context.Context, id int) (*Customer, error) {

	result, err := utils.FetchModel[Customer](ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Sale](ctx, "customer_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("customer has sales; deactivate it instead")
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	return utils.FetchModel[Customer](ctx, id)
}

func GetCustomers(ctx context.Context, search *string, activeOnly bool, page, limit int) ([]*Customer, int64, error) {

	db := config.GetDB()
	var results []*Customer

	dbCtx := db.WithContext(ctx).Model(&Customer{})
	if activeOnly {
		dbCtx = dbCtx.Where("is_active = ?", true)
	}
	if search != nil && len(*search) > 0 {
		dbCtx = dbCtx.Where("name LIKE ? OR phone LIKE ? OR tax_id LIKE ?",
			"%"+*search+"%", "%"+*search+"%", "%"+*search+"%")
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

func ToggleActiveCustomer(ctx context.Context, id int, isActive bool) (*Customer, error) {

	customer, err := utils.FetchModel[Customer](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&customer).Update("IsActive", isActive).Error
	if err != nil {
		return nil, err
	}
	return customer, nil
}

// CustomerOpenBalance sums what the customer still owes across unsettled
// sales and standalone receivables.
func CustomerOpenBalance(ctx context.Context, id int) (decimal.Decimal, error) {

	db := config.GetDB()

	var saleBalance decimal.NullDecimal
	err := db.WithContext(ctx).Model(&Sale{}).
		Select("COALESCE(SUM(total - paid_total), 0)").
		Where("customer_id = ? AND status IN ?", id,
			[]SaleStatus{SaleStatusOpen, SaleStatusFinalized, SaleStatusPartialPaid}).
		Scan(&saleBalance).Error
	if err != nil {
		return decimal.Zero, err
	}

	var receivableBalance decimal.NullDecimal
	err = db.WithContext(ctx).Model(&Receivable{}).
		Select("COALESCE(SUM(amount - paid_amount), 0)").
		Where("customer_id = ? AND sale_id IS NULL AND status <> ?", id, ReceivableStatusSettled).
		Scan(&receivableBalance).Error
	if err != nil {
		return decimal.Zero, err
	}

	return saleBalance.Decimal.Add(receivableBalance.Decimal), nil
}
