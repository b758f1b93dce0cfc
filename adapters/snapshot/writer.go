package snapshot

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"loanlens/domain/loan"
)

const dateLayout = "2006-01-02"

// WriteFile writes records as a cleaned snapshot. The encoding follows the
// file extension: .xlsx writes a workbook, anything else CSV.
func WriteFile(path string, records []loan.Record) error {
	switch DetectFormat(path, nil) {
	case FormatXLSX:
		return writeExcel(path, records)
	case FormatCSV:
		return writeCSV(path, records)
	default:
		return fmt.Errorf("cannot write snapshot %s: only csv and xlsx are supported", path)
	}
}

func writeCSV(path string, records []loan.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(loan.AllFields); err != nil {
		return err
	}
	for _, r := range records {
		if err := w.Write(csvRow(r)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

func csvRow(r loan.Record) []string {
	return []string{
		r.ID,
		r.IssueDate.Format(dateLayout),
		r.IssueWeekday.String(),
		strconv.FormatFloat(r.LoanAmount, 'f', -1, 64),
		strconv.FormatFloat(r.InterestRate, 'f', -1, 64),
		string(r.Condition),
		r.Grade,
		r.Term,
		r.Purpose,
	}
}

func writeExcel(path string, records []loan.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	header := make([]interface{}, len(loan.AllFields))
	for i, name := range loan.AllFields {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.ID,
			r.IssueDate.Format(dateLayout),
			r.IssueWeekday.String(),
			r.LoanAmount,
			r.InterestRate,
			string(r.Condition),
			r.Grade,
			r.Term,
			r.Purpose,
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush worksheet: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
