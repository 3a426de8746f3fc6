package model

import "time"

// ProductRevenue is one row of the revenue_by_product summary.
type ProductRevenue struct {
	ProductTitle string  `gorm:"column:product_title;primaryKey;type:text" json:"product_title"`
	TotalRevenue float64 `gorm:"column:total_revenue" json:"total_revenue"`
}

func (ProductRevenue) TableName() string {
	return "revenue_by_product"
}

// CustomerSummary is one row of the customer_summary table. CustomerID
// is nullable: rows whose cart carried no resolvable user id still
// contribute a "No Data" customer group.
type CustomerSummary struct {
	CustomerID   *int64  `gorm:"column:customer_id" json:"customer_id"`
	CustomerName string  `gorm:"column:customer_name;type:text" json:"customer_name"`
	TotalOrders  int64   `gorm:"column:total_orders" json:"total_orders"`
	TotalSpent   float64 `gorm:"column:total_spent" json:"total_spent"`
}

func (CustomerSummary) TableName() string {
	return "customer_summary"
}

// DailySales is one row of the daily_sales table.
type DailySales struct {
	OrderDate time.Time `gorm:"column:order_date;type:date" json:"order_date"`
	Sales     float64   `gorm:"column:daily_sales" json:"daily_sales"`
}

func (DailySales) TableName() string {
	return "daily_sales"
}

// Analytics bundles the three summary tables produced by one run.
type Analytics struct {
	RevenueByProduct []ProductRevenue
	CustomerSummary  []CustomerSummary
	DailySales       []DailySales
}
