package service

import (
	"sort"
	"time"

	"github.com/ikkim/retail-etl/internal/app/model"
	apperrors "github.com/ikkim/retail-etl/internal/errors"
	"github.com/ikkim/retail-etl/pkg/logger"
)

const orderDateLayout = "2006-01-02"

type AggregateService interface {
	Aggregate(rows []model.NormalizedRow) (*model.Analytics, error)
}

type aggregateService struct{}

func NewAggregateService() AggregateService {
	return &aggregateService{}
}

// ParseOrderDate parses an ISO 8601 order date.
func ParseOrderDate(s string) (time.Time, error) {
	t, err := time.Parse(orderDateLayout, s)
	if err != nil {
		return time.Time{}, apperrors.DateParse(s, err)
	}
	return t, nil
}

// Aggregate computes the three summary tables from normalized rows.
// Rows with a malformed order date are excluded from the date-keyed
// daily_sales table only; they still count toward product revenue and
// customer totals. Equal totals keep their first-seen input order, so
// output is deterministic for a fixed input ordering.
func (s *aggregateService) Aggregate(rows []model.NormalizedRow) (*model.Analytics, error) {
	analytics := &model.Analytics{
		RevenueByProduct: revenueByProduct(rows),
		CustomerSummary:  customerSummary(rows),
		DailySales:       dailySales(rows),
	}

	logger.Info("Computed analytics tables", map[string]interface{}{
		"rows":               len(rows),
		"revenue_by_product": len(analytics.RevenueByProduct),
		"customer_summary":   len(analytics.CustomerSummary),
		"daily_sales":        len(analytics.DailySales),
	})
	return analytics, nil
}

func revenueByProduct(rows []model.NormalizedRow) []model.ProductRevenue {
	index := make(map[string]int, len(rows))
	out := make([]model.ProductRevenue, 0, len(rows))

	for _, row := range rows {
		i, ok := index[row.ProductTitle]
		if !ok {
			i = len(out)
			index[row.ProductTitle] = i
			out = append(out, model.ProductRevenue{ProductTitle: row.ProductTitle})
		}
		out[i].TotalRevenue += row.TotalAmount
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalRevenue > out[j].TotalRevenue
	})
	return out
}

type customerKey struct {
	hasUser bool
	userID  int64
	name    string
}

func customerSummary(rows []model.NormalizedRow) []model.CustomerSummary {
	index := make(map[customerKey]int, len(rows))
	carts := make(map[customerKey]map[int64]struct{}, len(rows))
	out := make([]model.CustomerSummary, 0, len(rows))

	for _, row := range rows {
		name := row.CustomerName
		if name == "" {
			name = noData
		}
		key := customerKey{name: name}
		if row.UserID != nil {
			key.hasUser = true
			key.userID = *row.UserID
		}

		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			carts[key] = make(map[int64]struct{})
			out = append(out, model.CustomerSummary{
				CustomerID:   row.UserID,
				CustomerName: name,
			})
		}

		carts[key][row.CartID] = struct{}{}
		out[i].TotalOrders = int64(len(carts[key]))
		out[i].TotalSpent += row.TotalAmount
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalSpent > out[j].TotalSpent
	})
	return out
}

func dailySales(rows []model.NormalizedRow) []model.DailySales {
	totals := make(map[time.Time]float64, len(rows))
	excluded := 0

	for _, row := range rows {
		day, err := ParseOrderDate(row.OrderDate)
		if err != nil {
			excluded++
			continue
		}
		totals[day] += row.TotalAmount
	}

	if excluded > 0 {
		logger.Warn("Excluded rows with malformed order dates from daily sales", map[string]interface{}{
			"excluded": excluded,
		})
	}

	out := make([]model.DailySales, 0, len(totals))
	for day, total := range totals {
		out = append(out, model.DailySales{OrderDate: day, Sales: total})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OrderDate.Before(out[j].OrderDate)
	})
	return out
}
