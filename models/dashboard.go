package models

import (
	"context"
	"time"

	"github.com/fgsantosti/estoque-agua/config"
	"github.com/shopspring/decimal"
)

const (
	dashboardCacheKey = "dashboard:summary"
	dashboardCacheTTL = 60 * time.Second
)

type DashboardProductMoves struct {
	ProductId int    `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

type Dashboard struct {
	ActiveProducts   int64                   `json:"active_products"`
	LowStockCount    int64                   `json:"low_stock_count"`
	LowStockProducts []*Product              `json:"low_stock_products"`
	StockValue       decimal.Decimal         `json:"stock_value"`
	WeekMovements    MovementTotals          `json:"week_movements"`
	TopProducts      []DashboardProductMoves `json:"top_products"`
	ReceivableOpen   decimal.Decimal         `json:"receivable_open"`
	ReceivableLate   decimal.Decimal         `json:"receivable_late"`
	GeneratedAt      time.Time               `json:"generated_at"`
}

// GetDashboard builds the landing-page summary. The result is cached for a
// minute; stale-by-up-to-a-minute numbers are acceptable here.
func GetDashboard(ctx context.Context) (*Dashboard, error) {

	var cached Dashboard
	if ok, _ := config.GetRedisObject(dashboardCacheKey, &cached); ok {
		return &cached, nil
	}

	db := config.GetDB()
	dashboard := Dashboard{GeneratedAt: time.Now()}

	err := db.WithContext(ctx).Model(&Product{}).
		Where("is_active = ?", true).
		Count(&dashboard.ActiveProducts).Error
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Model(&Product{}).
		Where("is_active = ? AND stock_qty <= min_stock", true).
		Count(&dashboard.LowStockCount).Error
	if err != nil {
		return nil, err
	}

	dashboard.LowStockProducts, err = GetLowStockProducts(ctx, 5)
	if err != nil {
		return nil, err
	}

	var stockValue decimal.NullDecimal
	err = db.WithContext(ctx).Model(&Product{}).
		Select("COALESCE(SUM(stock_qty * cost_price), 0)").
		Where("is_active = ?", true).
		Scan(&stockValue).Error
	if err != nil {
		return nil, err
	}
	dashboard.StockValue = stockValue.Decimal

	weekAgo := dashboard.GeneratedAt.AddDate(0, 0, -7)
	totals, err := GetMovementTotals(ctx, MovementFilter{From: &weekAgo})
	if err != nil {
		return nil, err
	}
	dashboard.WeekMovements = *totals

	err = db.WithContext(ctx).Model(&StockMovement{}).
		Select("stock_movements.product_id, products.name, SUM(stock_movements.quantity) AS quantity").
		Joins("JOIN products ON products.id = stock_movements.product_id").
		Where("stock_movements.kind = ? AND stock_movements.created_at >= ?", MovementKindExit, weekAgo).
		Group("stock_movements.product_id, products.name").
		Order("quantity DESC").
		Limit(5).
		Scan(&dashboard.TopProducts).Error
	if err != nil {
		return nil, err
	}

	var open decimal.NullDecimal
	err = db.WithContext(ctx).Model(&Receivable{}).
		Select("COALESCE(SUM(amount - paid_amount), 0)").
		Where("status <> ?", ReceivableStatusSettled).
		Scan(&open).Error
	if err != nil {
		return nil, err
	}
	dashboard.ReceivableOpen = open.Decimal

	var late decimal.NullDecimal
	err = db.WithContext(ctx).Model(&Receivable{}).
		Select("COALESCE(SUM(amount - paid_amount), 0)").
		Where("status <> ? AND due_date < ?", ReceivableStatusSettled, dashboard.GeneratedAt).
		Scan(&late).Error
	if err != nil {
		return nil, err
	}
	dashboard.ReceivableLate = late.Decimal

	if err := config.SetRedisObject(dashboardCacheKey, dashboard, dashboardCacheTTL); err != nil {
		config.LogError(config.GetLogger(), "models", "GetDashboard", "cache write", nil, err)
	}
	return &dashboard, nil
}
