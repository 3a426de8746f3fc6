package service

import (
	"testing"
	"time"

	"github.com/ikkim/retail-etl/internal/app/model"
	apperrors "github.com/ikkim/retail-etl/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func normalizedRow(cartID, userID, productID int64, title string, amount float64, date string) model.NormalizedRow {
	return model.NormalizedRow{
		CartID:       cartID,
		UserID:       int64Ptr(userID),
		ProductID:    productID,
		ProductTitle: title,
		TotalAmount:  amount,
		CustomerName: "Jo Doe",
		OrderDate:    date,
	}
}

func TestAggregate_RevenueByProduct(t *testing.T) {
	svc := NewAggregateService()

	rows := []model.NormalizedRow{
		normalizedRow(1, 10, 100, "shirt", 40, "2024-03-15"),
		normalizedRow(2, 10, 101, "hat", 100, "2024-03-15"),
		normalizedRow(3, 11, 100, "shirt", 30, "2024-03-14"),
	}

	a, err := svc.Aggregate(rows)
	require.NoError(t, err)
	require.Len(t, a.RevenueByProduct, 2)

	assert.Equal(t, "hat", a.RevenueByProduct[0].ProductTitle)
	assert.Equal(t, 100.0, a.RevenueByProduct[0].TotalRevenue)
	assert.Equal(t, "shirt", a.RevenueByProduct[1].ProductTitle)
	assert.Equal(t, 70.0, a.RevenueByProduct[1].TotalRevenue)
}

func TestAggregate_RevenueTiesKeepInputOrder(t *testing.T) {
	svc := NewAggregateService()

	rows := []model.NormalizedRow{
		normalizedRow(1, 10, 100, "shirt", 50, "2024-03-15"),
		normalizedRow(2, 10, 101, "hat", 50, "2024-03-15"),
	}

	a, err := svc.Aggregate(rows)
	require.NoError(t, err)
	require.Len(t, a.RevenueByProduct, 2)
	assert.Equal(t, "shirt", a.RevenueByProduct[0].ProductTitle)
	assert.Equal(t, "hat", a.RevenueByProduct[1].ProductTitle)

	// Deterministic for the same input ordering.
	again, err := svc.Aggregate(rows)
	require.NoError(t, err)
	assert.Equal(t, a.RevenueByProduct, again.RevenueByProduct)
}

func TestAggregate_CustomerOrdersCountDistinctCarts(t *testing.T) {
	svc := NewAggregateService()

	// One cart with three products is one order, not three.
	rows := []model.NormalizedRow{
		normalizedRow(1, 10, 100, "shirt", 40, "2024-03-15"),
		normalizedRow(1, 10, 101, "hat", 25, "2024-03-15"),
		normalizedRow(1, 10, 102, "socks", 5, "2024-03-15"),
		normalizedRow(2, 10, 100, "shirt", 40, "2024-03-14"),
	}

	a, err := svc.Aggregate(rows)
	require.NoError(t, err)
	require.Len(t, a.CustomerSummary, 1)

	summary := a.CustomerSummary[0]
	require.NotNil(t, summary.CustomerID)
	assert.Equal(t, int64(10), *summary.CustomerID)
	assert.Equal(t, int64(2), summary.TotalOrders)
	assert.Equal(t, 110.0, summary.TotalSpent)
}

func TestAggregate_CustomerSummaryOrderedBySpendDesc(t *testing.T) {
	svc := NewAggregateService()

	big := normalizedRow(1, 10, 100, "shirt", 500, "2024-03-15")
	small := normalizedRow(2, 11, 101, "hat", 20, "2024-03-15")
	small.CustomerName = "An Byun"

	a, err := svc.Aggregate([]model.NormalizedRow{small, big})
	require.NoError(t, err)
	require.Len(t, a.CustomerSummary, 2)
	assert.Equal(t, "Jo Doe", a.CustomerSummary[0].CustomerName)
	assert.Equal(t, "An Byun", a.CustomerSummary[1].CustomerName)
}

func TestAggregate_MissingCustomerGroupsUnderSentinel(t *testing.T) {
	svc := NewAggregateService()

	row := normalizedRow(1, 10, 100, "shirt", 40, "2024-03-15")
	row.UserID = nil
	row.CustomerName = ""

	a, err := svc.Aggregate([]model.NormalizedRow{row})
	require.NoError(t, err)
	require.Len(t, a.CustomerSummary, 1)
	assert.Nil(t, a.CustomerSummary[0].CustomerID)
	assert.Equal(t, "No Data", a.CustomerSummary[0].CustomerName)
}

func TestAggregate_DailySalesOrderedAscending(t *testing.T) {
	svc := NewAggregateService()

	rows := []model.NormalizedRow{
		normalizedRow(1, 10, 100, "shirt", 40, "2024-03-15"),
		normalizedRow(2, 10, 101, "hat", 25, "2024-03-13"),
		normalizedRow(3, 11, 102, "socks", 5, "2024-03-15"),
	}

	a, err := svc.Aggregate(rows)
	require.NoError(t, err)
	require.Len(t, a.DailySales, 2)

	assert.Equal(t, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), a.DailySales[0].OrderDate)
	assert.Equal(t, 25.0, a.DailySales[0].Sales)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), a.DailySales[1].OrderDate)
	assert.Equal(t, 45.0, a.DailySales[1].Sales)
}

func TestAggregate_MalformedDateExcludedFromDailyOnly(t *testing.T) {
	svc := NewAggregateService()

	good := normalizedRow(1, 10, 100, "shirt", 40, "2024-03-15")
	bad := normalizedRow(2, 10, 101, "hat", 25, "not-a-date")

	a, err := svc.Aggregate([]model.NormalizedRow{good, bad})
	require.NoError(t, err)

	// Excluded from the date-keyed table...
	require.Len(t, a.DailySales, 1)
	assert.Equal(t, 40.0, a.DailySales[0].Sales)

	// ...but still counted everywhere else.
	require.Len(t, a.RevenueByProduct, 2)
	require.Len(t, a.CustomerSummary, 1)
	assert.Equal(t, 65.0, a.CustomerSummary[0].TotalSpent)
}

func TestParseOrderDate(t *testing.T) {
	day, err := ParseOrderDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), day)

	_, err = ParseOrderDate("15/03/2024")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDateParse)
}
