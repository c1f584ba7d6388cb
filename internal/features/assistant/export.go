package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-crm-assistant/internal/common/daterange"
	"go-crm-assistant/internal/features/snapshot"

	"github.com/xuri/excelize/v2"
)

var ErrUnknownPeriod = errors.New("unknown period")

var salesColumns = []string{"Date", "Customer", "Total"}

// ExportSales renders the receipts of a period as an xlsx workbook with a
// summary sheet.
func (s *AssistantServiceImpl) ExportSales(ctx context.Context, period string) ([]byte, string, error) {
	if period == "" {
		period = daterange.Today
	}
	r, ok := daterange.Resolve(period, s.executor.clock())
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownPeriod, period)
	}

	receipts, err := s.executor.SalesInRange(ctx, r)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sales"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range salesColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, rec := range receipts {
		values := []any{rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.CustomerName, rec.Total}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	for i := range salesColumns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 20)
	}

	revenue := snapshot.TotalRevenue(receipts)
	summary := "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		return nil, "", err
	}
	rows := [][]any{
		{"Period", period},
		{"From", r.Start.Format("2006-01-02 15:04:05")},
		{"To", r.End.Format("2006-01-02 15:04:05")},
		{"Orders", len(receipts)},
		{"Revenue", revenue},
	}
	for i, row := range rows {
		f.SetCellValue(summary, fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue(summary, fmt.Sprintf("B%d", i+1), row[1])
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := "sales-" + strings.ReplaceAll(period, " ", "-") + ".xlsx"
	return buffer.Bytes(), filename, nil
}
