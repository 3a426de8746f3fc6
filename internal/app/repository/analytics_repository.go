package repository

import (
	"fmt"

	"github.com/ikkim/retail-etl/internal/app/model"
	apperrors "github.com/ikkim/retail-etl/internal/errors"
	"github.com/ikkim/retail-etl/pkg/logger"
	"gorm.io/gorm"
)

type AnalyticsRepository interface {
	ReplaceAll(a *model.Analytics) error
	FindRevenueByProduct() ([]model.ProductRevenue, error)
	FindCustomerSummary() ([]model.CustomerSummary, error)
	FindDailySales() ([]model.DailySales, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// ReplaceAll swaps the three analytics tables for the latest run's
// results in one transaction, so readers never see a half-written run.
func (r *analyticsRepository) ReplaceAll(a *model.Analytics) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.ProductRevenue{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&model.CustomerSummary{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&model.DailySales{}).Error; err != nil {
			return err
		}
		if len(a.RevenueByProduct) > 0 {
			if err := tx.Create(a.RevenueByProduct).Error; err != nil {
				return err
			}
		}
		if len(a.CustomerSummary) > 0 {
			if err := tx.Create(a.CustomerSummary).Error; err != nil {
				return err
			}
		}
		if len(a.DailySales) > 0 {
			if err := tx.Create(a.DailySales).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to replace analytics tables", err)
		return fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}

	logger.Info("Replaced analytics tables", map[string]interface{}{
		"revenue_by_product": len(a.RevenueByProduct),
		"customer_summary":   len(a.CustomerSummary),
		"daily_sales":        len(a.DailySales),
	})
	return nil
}

func (r *analyticsRepository) FindRevenueByProduct() ([]model.ProductRevenue, error) {
	var rows []model.ProductRevenue
	if err := r.db.Order("total_revenue DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}
	return rows, nil
}

func (r *analyticsRepository) FindCustomerSummary() ([]model.CustomerSummary, error) {
	var rows []model.CustomerSummary
	if err := r.db.Order("total_spent DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}
	return rows, nil
}

func (r *analyticsRepository) FindDailySales() ([]model.DailySales, error) {
	var rows []model.DailySales
	if err := r.db.Order("order_date ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}
	return rows, nil
}
