package service

import (
	"strings"

	"github.com/ikkim/retail-etl/internal/app/model"
	"github.com/ikkim/retail-etl/pkg/logger"
)

// noData is the sentinel substituted for missing customer fields.
const noData = "No Data"

type NormalizeService interface {
	Normalize(rows []model.FlatRow) ([]model.NormalizedRow, error)
}

type normalizeService struct{}

func NewNormalizeService() NormalizeService {
	return &normalizeService{}
}

// Normalize coerces each flat row to its typed form, imputes missing
// customer fields, and computes the derived total. Rows without a
// product id cannot be joined to revenue and are dropped, not failed.
// Rows are processed independently and never reordered.
func (s *normalizeService) Normalize(rows []model.FlatRow) ([]model.NormalizedRow, error) {
	out := make([]model.NormalizedRow, 0, len(rows))
	dropped := 0

	for _, row := range rows {
		productID, err := coerceInt64("product_id", row.ProductID)
		if err != nil {
			return nil, err
		}
		if productID == nil {
			dropped++
			logger.Warn("Dropping row without product id", map[string]interface{}{
				"cart_id": row.CartID,
			})
			continue
		}

		cartID, err := coerceInt64("cart_id", row.CartID)
		if err != nil {
			return nil, err
		}
		if cartID == nil {
			dropped++
			logger.Warn("Dropping row without cart id", map[string]interface{}{
				"product_id": *productID,
			})
			continue
		}

		userID, err := coerceInt64("user_id", row.UserID)
		if err != nil {
			return nil, err
		}
		price, err := coerceFloat64("product_price", row.ProductPrice)
		if err != nil {
			return nil, err
		}
		quantity, err := coerceInt64("product_quantity", row.ProductQuantity)
		if err != nil {
			return nil, err
		}
		total, err := coerceFloat64("product_total", row.ProductTotal)
		if err != nil {
			return nil, err
		}

		normalized := model.NormalizedRow{
			CartID:          *cartID,
			UserID:          userID,
			ProductID:       *productID,
			ProductTitle:    normalizeTitle(row.ProductTitle),
			ProductPrice:    price,
			ProductQuantity: quantity,
			ProductTotal:    total,
			TotalAmount:     totalAmount(total, price, quantity),
			CustomerName:    imputeName(row.CustomerName),
			Email:           impute(row.Email),
			City:            impute(row.City),
			OrderDate:       row.OrderDate,
			FirstName:       impute(row.FirstName),
			LastName:        impute(row.LastName),
			Age:             imputeAge(row.Age),
			Gender:          impute(row.Gender),
		}
		out = append(out, normalized)
	}

	logger.Info("Normalized flat rows", map[string]interface{}{
		"in":      len(rows),
		"out":     len(out),
		"dropped": dropped,
	})
	return out, nil
}

// totalAmount computes the derived row total: the product line total
// when present and non-zero, otherwise price times quantity. Missing
// price or quantity contribute zero so the result is never null.
func totalAmount(total, price *float64, quantity *int64) float64 {
	if total != nil && *total != 0 {
		return *total
	}
	p := 0.0
	if price != nil {
		p = *price
	}
	q := int64(0)
	if quantity != nil {
		q = *quantity
	}
	return p * float64(q)
}

// normalizeTitle re-applies the flattener's lower/trim pass so the
// normalizer is idempotent on its own output.
func normalizeTitle(title *string) string {
	if title == nil {
		return ""
	}
	return strings.TrimSpace(strings.ToLower(*title))
}

// imputeName trims the joined customer name and substitutes the
// sentinel when missing or empty.
func imputeName(name *string) string {
	if name == nil {
		return noData
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return noData
	}
	return trimmed
}

func impute(v *string) string {
	if v == nil {
		return noData
	}
	return *v
}

// imputeAge renders the age as text; it is never used numerically
// downstream.
func imputeAge(age interface{}) string {
	text := scalarText(age)
	if text == "" {
		return noData
	}
	return text
}
