package artifact

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ikkim/retail-etl/internal/app/model"
	"github.com/ikkim/retail-etl/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const (
	revenueCSV   = "revenue_by_product.csv"
	customerCSV  = "customer_summary.csv"
	dailyCSV     = "daily_sales.csv"
	workbookXLSX = "analytics.xlsx"

	dateLayout = "2006-01-02"
)

// ExportAnalytics writes the three summary tables as CSV files plus a
// combined XLSX workbook for reporting tools. Row order of each table
// is preserved as computed by the aggregator.
func (s *Store) ExportAnalytics(a *model.Analytics) error {
	if err := s.writeCSV(revenueCSV, revenueRecords(a.RevenueByProduct)); err != nil {
		return err
	}
	if err := s.writeCSV(customerCSV, customerRecords(a.CustomerSummary)); err != nil {
		return err
	}
	if err := s.writeCSV(dailyCSV, dailyRecords(a.DailySales)); err != nil {
		return err
	}
	return s.writeWorkbook(a)
}

// AnalyticsFiles lists the exported analytics file paths, for upload.
func (s *Store) AnalyticsFiles() []string {
	return []string{
		s.path(revenueCSV),
		s.path(customerCSV),
		s.path(dailyCSV),
		s.path(workbookXLSX),
	}
}

func (s *Store) writeCSV(name string, records [][]string) error {
	path := s.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	logger.Debug("Wrote analytics CSV", map[string]interface{}{
		"path": path,
		"rows": len(records) - 1,
	})
	return nil
}

func (s *Store) writeWorkbook(a *model.Analytics) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name    string
		records [][]string
	}{
		{"revenue_by_product", revenueRecords(a.RevenueByProduct)},
		{"customer_summary", customerRecords(a.CustomerSummary)},
		{"daily_sales", dailyRecords(a.DailySales)},
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet.name); err != nil {
				return fmt.Errorf("failed to add sheet %s: %w", sheet.name, err)
			}
		}
		for r, record := range sheet.records {
			row := make([]interface{}, len(record))
			for c, v := range record {
				row[c] = v
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return fmt.Errorf("failed to compute cell name: %w", err)
			}
			if err := f.SetSheetRow(sheet.name, cell, &row); err != nil {
				return fmt.Errorf("failed to write sheet row: %w", err)
			}
		}
	}

	path := s.path(workbookXLSX)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	logger.Debug("Wrote analytics workbook", map[string]interface{}{
		"path": path,
	})
	return nil
}

func revenueRecords(rows []model.ProductRevenue) [][]string {
	records := [][]string{{"product_title", "total_revenue"}}
	for _, r := range rows {
		records = append(records, []string{r.ProductTitle, formatFloat(r.TotalRevenue)})
	}
	return records
}

func customerRecords(rows []model.CustomerSummary) [][]string {
	records := [][]string{{"customer_id", "customer_name", "total_orders", "total_spent"}}
	for _, r := range rows {
		id := ""
		if r.CustomerID != nil {
			id = strconv.FormatInt(*r.CustomerID, 10)
		}
		records = append(records, []string{
			id,
			r.CustomerName,
			strconv.FormatInt(r.TotalOrders, 10),
			formatFloat(r.TotalSpent),
		})
	}
	return records
}

func dailyRecords(rows []model.DailySales) [][]string {
	records := [][]string{{"order_date", "daily_sales"}}
	for _, r := range rows {
		records = append(records, []string{r.OrderDate.Format(dateLayout), formatFloat(r.Sales)})
	}
	return records
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
