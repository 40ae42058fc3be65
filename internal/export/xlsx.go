// Package export writes the filtered view and its aggregates as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/chrissnell/bikedash/internal/analysis"
	"github.com/chrissnell/bikedash/internal/dataset"
)

const (
	DataSheet    = "Filtered Data"
	SummarySheet = "Summary"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// WriteXLSX writes a workbook with the rows of view on one sheet and the
// aggregates of result on a second one.
func WriteXLSX(w io.Writer, view dataset.View, result *analysis.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), DataSheet); err != nil {
		return fmt.Errorf("error naming data sheet: %w", err)
	}
	if err := writeRows(f, DataSheet, view.Records()); err != nil {
		return err
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("error creating summary sheet: %w", err)
	}
	if err := writeRows(f, SummarySheet, summary(result)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// writeRows writes records starting at A1. Numeric cells are stored as numbers.
func writeRows(f *excelize.File, sheet string, records [][]string) error {
	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}

		row := make([]any, len(record))
		for j, v := range record {
			row[j] = cellValue(v, i == 0)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("error writing row %d of %s: %w", i+1, sheet, err)
		}
	}

	if len(records) > 0 && len(records[0]) > 0 {
		last, _ := excelize.ColumnNumberToName(len(records[0]))
		if err := f.SetColWidth(sheet, "A", last, 16); err != nil {
			return err
		}
	}
	return nil
}

func cellValue(v string, header bool) any {
	if header {
		return v
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	return v
}

func summary(result *analysis.Result) [][]string {
	seasons := make([]string, len(result.Selection.Seasons))
	for i, s := range result.Selection.Seasons {
		seasons[i] = string(s)
	}

	rows := [][]string{
		{"Analysis", result.Selection.Mode.Title()},
		{"Seasons", strings.Join(seasons, ", ")},
		{"Rows", strconv.Itoa(result.FilteredRows), "of " + strconv.Itoa(result.TotalRows)},
		{},
	}

	if fa := result.Factors; fa != nil {
		rows = append(rows, []string{"Season", "Average " + analysis.FactorLabel(fa.Factor)})
		for _, sv := range fa.MeanBySeason {
			rows = append(rows, []string{string(sv.Season), formatFloat(sv.Value)})
		}

		rows = append(rows, []string{})
		header := []string{"Correlation"}
		for _, field := range fa.Correlation.Fields {
			header = append(header, analysis.FactorLabel(field))
		}
		rows = append(rows, header)
		for i, field := range fa.Correlation.Fields {
			row := []string{analysis.FactorLabel(field)}
			for j := range fa.Correlation.Fields {
				row = append(row, fa.Correlation.At(i, j).String())
			}
			rows = append(rows, row)
		}
	}

	if ua := result.Users; ua != nil {
		rows = append(rows, []string{"Season", "User Type", "Average"})
		for _, uv := range ua.MeanByUserType {
			rows = append(rows, []string{string(uv.Season), uv.UserType.Label(), formatFloat(uv.Average)})
		}

		rows = append(rows, []string{}, []string{"Season", "Casual", "Registered"})
		for _, t := range ua.TotalsBySeason {
			rows = append(rows, []string{string(t.Season), strconv.FormatInt(t.Casual, 10), strconv.FormatInt(t.Registered, 10)})
		}
	}

	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
