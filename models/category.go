package models

import (
	"context"
	"errors"
	"time"

	"github.com/fgsantosti/estoque-agua/config"
	"github.com/fgsantosti/estoque-agua/utils"
)

type Category struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCategory struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewCategory) validate(ctx context.Context, id int) error {
	// name
	if err := utils.ValidateUnique[Category](ctx, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func CreateCategory(ctx context.Context, input *NewCategory) (*Category, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	category := Category{
		Name:        input.Name,
		Description: input.Description,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&category).Error
	if err != nil {
		return nil, err
	}

	return &category, nil
}

func UpdateCategory(ctx context.Context, id int, input *NewCategory) (*Category, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	category, err := utils.FetchModel[Category](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// db action
	err = db.WithContext(ctx).Model(&category).Updates(map[string]interface{}{
		"Name":        input.Name,
		"Description": input.Description,
	}).Error
	if err != nil {
		return nil, err
	}
	return category, nil
}

func DeleteCategory(ctx context.Context, id int) (*Category, error) {

	result, err := utils.FetchModel[Category](ctx, id)
	if err != nil {
		return nil, err
	}

	// Do not delete while products reference this category
	count, err := utils.ResourceCountWhere[Product](ctx, "category_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("category is used by products")
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func GetCategory(ctx context.Context, id int) (*Category, error) {
	return utils.FetchModel[Category](ctx, id)
}

func GetCategories(ctx context.Context, name *string) ([]*Category, error) {

	db := config.GetDB()
	var results []*Category

	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	err := dbCtx.Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
