package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/schooldesk/fees-api/internal/models"
	"github.com/xuri/excelize/v2"
)

// ExportService renders collection reports as CSV or XLSX
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// ExportCSV renders payments as a CSV collection report
func (s *ExportService) ExportCSV(ctx context.Context, payments []models.FeePayment, summary *CollectionSummary) ([]byte, string, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	writer.Write([]string{"Receipt No", "Student", "Fee", "Amount", "Method", "Status", "Payment Date", "Due Date"})
	for i := range payments {
		p := &payments[i]
		receipt := ""
		if p.ReceiptNumber != nil {
			receipt = *p.ReceiptNumber
		}
		student := fmt.Sprintf("#%d", p.StudentID)
		if p.Student != nil {
			student = p.Student.FullName()
		}
		fee := fmt.Sprintf("#%d", p.FeeStructureID)
		if p.FeeStructure != nil {
			fee = p.FeeStructure.FeeName
		}
		writer.Write([]string{
			receipt,
			student,
			fee,
			fmt.Sprintf("%.2f", p.Amount),
			p.PaymentMethod,
			p.Status,
			p.PaymentDate.Format("2006-01-02"),
			p.DueDate.Format("2006-01-02"),
		})
	}

	if summary != nil {
		writer.Write(nil)
		writer.Write([]string{"Total Collected", fmt.Sprintf("%.2f", summary.TotalCollected)})
		for status, count := range summary.CountsByStatus {
			writer.Write([]string{status, fmt.Sprintf("%d", count)})
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("collection_report_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportXLSX renders payments as an XLSX collection report
func (s *ExportService) ExportXLSX(ctx context.Context, payments []models.FeePayment, summary *CollectionSummary) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Collections"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	headers := []string{"Receipt No", "Student", "Fee", "Amount", "Method", "Status", "Payment Date", "Due Date"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i := range payments {
		p := &payments[i]
		row := i + 2
		receipt := ""
		if p.ReceiptNumber != nil {
			receipt = *p.ReceiptNumber
		}
		student := fmt.Sprintf("#%d", p.StudentID)
		if p.Student != nil {
			student = p.Student.FullName()
		}
		fee := fmt.Sprintf("#%d", p.FeeStructureID)
		if p.FeeStructure != nil {
			fee = p.FeeStructure.FeeName
		}

		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), receipt)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), student)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), fee)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), p.Amount)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), p.PaymentMethod)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), p.Status)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), p.PaymentDate.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), p.DueDate.Format("2006-01-02"))
	}

	if summary != nil {
		row := len(payments) + 3
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Total Collected")
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), summary.TotalCollected)
		for status, count := range summary.CountsByStatus {
			row++
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), status)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), count)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("collection_report_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
