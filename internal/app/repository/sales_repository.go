package repository

import (
	"fmt"

	"github.com/ikkim/retail-etl/internal/app/model"
	apperrors "github.com/ikkim/retail-etl/internal/errors"
	"github.com/ikkim/retail-etl/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SalesRepository interface {
	UpsertRows(rows []model.NormalizedRow) error
	CountRows() (int64, error)
}

type salesRepository struct {
	db *gorm.DB
}

func NewSalesRepository(db *gorm.DB) SalesRepository {
	return &salesRepository{db: db}
}

// UpsertRows loads normalized rows into transformed_data. Conflicts on
// the (cart_id, product_id) key update in place, so re-running the load
// stage on the same artifact is a no-op rather than a duplication.
func (r *salesRepository) UpsertRows(rows []model.NormalizedRow) error {
	if len(rows) == 0 {
		logger.Info("No normalized rows to load")
		return nil
	}

	logger.Debug("Loading normalized rows into database", map[string]interface{}{
		"rows": len(rows),
	})

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "product_title", "product_price", "product_quantity",
			"product_total", "total_amount", "customer_name", "email", "city",
			"order_date",
		}),
	}).CreateInBatches(rows, 500).Error
	if err != nil {
		logger.Error("Failed to load normalized rows into database", err, map[string]interface{}{
			"rows": len(rows),
		})
		return fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}

	logger.Info("Loaded normalized rows into database", map[string]interface{}{
		"rows": len(rows),
	})
	return nil
}

func (r *salesRepository) CountRows() (int64, error) {
	var count int64
	if err := r.db.Model(&model.NormalizedRow{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}
	return count, nil
}
