package db

import (
	"github.com/ikkim/retail-etl/internal/app/model"
	"github.com/ikkim/retail-etl/pkg/logger"
)

// Migrate creates the sink and analytics tables if they are absent.
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.NormalizedRow{},
		&model.ProductRevenue{},
		&model.CustomerSummary{},
		&model.DailySales{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
