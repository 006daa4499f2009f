package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// Column headers for the four report sheets. The order is fixed: it is
// the export contract consumed by the management spreadsheets.
var (
	customerReportHeaders = []string{"ID", "Name", "Email", "Phone", "Address", "Orders", "Total Spend", "Status"}
	orderReportHeaders    = []string{"Order ID", "Customer", "Email", "Date", "Status", "Total", "Items", "Payment Method", "Delivery Address"}
	productReportHeaders  = []string{"ID", "Name", "Category", "Price", "Stock", "Units Sold", "Revenue", "Status"}
	salesReportHeaders    = []string{"Date", "Orders", "Total Revenue", "Average per Order", "Distinct Customers", "Best Seller", "Units"}
)

// CustomerReportExcel renders the customer report as an xlsx workbook.
func (s *reportService) CustomerReportExcel(ctx context.Context) ([]byte, error) {
	rows, err := s.CustomerReport(ctx)
	if err != nil {
		return nil, err
	}

	records := make([][]any, len(rows))
	for i, row := range rows {
		records[i] = []any{
			row.CustomerID.String(),
			row.Name,
			row.Email,
			row.Phone,
			row.Address,
			row.OrderCount,
			row.TotalSpend.InexactFloat64(),
			row.Status,
		}
	}

	return renderSheet("Customer Report", customerReportHeaders, records)
}

// OrderReportExcel renders the order report as an xlsx workbook.
func (s *reportService) OrderReportExcel(ctx context.Context, from, to *time.Time) ([]byte, error) {
	rows, err := s.OrderReport(ctx, from, to)
	if err != nil {
		return nil, err
	}

	records := make([][]any, len(rows))
	for i, row := range rows {
		records[i] = []any{
			row.OrderID.String(),
			row.CustomerName,
			row.CustomerEmail,
			row.OrderDate.Format("2006-01-02"),
			string(row.Status),
			row.Total.InexactFloat64(),
			row.ItemCount,
			row.PaymentMethod,
			row.DeliveryAddress,
		}
	}

	return renderSheet("Order Report", orderReportHeaders, records)
}

// ProductReportExcel renders the product report as an xlsx workbook.
func (s *reportService) ProductReportExcel(ctx context.Context) ([]byte, error) {
	rows, err := s.ProductReport(ctx)
	if err != nil {
		return nil, err
	}

	records := make([][]any, len(rows))
	for i, row := range rows {
		records[i] = []any{
			row.ProductID.String(),
			row.Name,
			row.Category,
			row.Price.InexactFloat64(),
			row.Stock,
			row.UnitsSold,
			row.Revenue.InexactFloat64(),
			row.Status,
		}
	}

	return renderSheet("Product Report", productReportHeaders, records)
}

// SalesReportExcel renders the sales report as an xlsx workbook.
func (s *reportService) SalesReportExcel(ctx context.Context, from, to *time.Time) ([]byte, error) {
	rows, err := s.SalesReport(ctx, from, to)
	if err != nil {
		return nil, err
	}

	records := make([][]any, len(rows))
	for i, row := range rows {
		records[i] = []any{
			row.Date.Format("2006-01-02"),
			row.OrderCount,
			row.TotalRevenue.InexactFloat64(),
			row.AverageRevenue.InexactFloat64(),
			row.DistinctCustomers,
			row.BestSellerName,
			row.BestSellerUnits,
		}
	}

	return renderSheet("Sales Report", salesReportHeaders, records)
}

// renderSheet writes one header row and one data row per record into a
// single-sheet workbook and returns the encoded bytes.
func renderSheet(sheetName string, headers []string, records [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDDDDD"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header cell: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to style header cell: %w", err)
		}
	}

	for r, record := range records {
		for c, value := range record {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("failed to address data cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write data cell: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}

	return buf.Bytes(), nil
}
