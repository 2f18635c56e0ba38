package exporter

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"retailpulse/internal/analytics"
	"retailpulse/internal/quality"
	"retailpulse/pkg/contracts/domain"
)

// textColumns hold identifiers that must keep their exact spelling, such as
// leading zeros, even when they look numeric.
var textColumns = map[string]bool{
	domain.ColumnCustomerID:    true,
	domain.ColumnTransactionID: true,
}

const (
	maxSheetName = 31
	defaultSheet = "Sheet1"
	qualitySheet = "quality"
)

// WriteWorkbook saves every view table as its own sheet plus a quality
// summary sheet. Views that failed are listed on the quality sheet.
func WriteWorkbook(path string, report *analytics.Report, checks *quality.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	used := make(map[string]bool)
	for _, view := range analytics.Catalog() {
		tables, ok := report.View(view.Name)
		if !ok {
			continue
		}
		for i, t := range tables {
			name := sheetName(view.Name, i, len(tables), used)
			if err := writeSheet(f, name, t.Columns, t.Rows, header); err != nil {
				return err
			}
		}
	}

	if err := writeSheet(f, qualitySheet, []string{"Check", "Subject", "Value"}, qualityRows(report, checks), header); err != nil {
		return err
	}

	if err := f.DeleteSheet(defaultSheet); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, columns []string, rows [][]string, headerStyle int) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	head := make([]interface{}, len(columns))
	for i, c := range columns {
		head[i] = c
	}
	if err := f.SetSheetRow(name, "A1", &head); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", name, err)
	}
	if err := f.SetRowStyle(name, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", name, err)
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for i, v := range row {
			if i < len(columns) && textColumns[columns[i]] {
				values[i] = v
				continue
			}
			values[i] = cellValue(v)
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", r+1, name, err)
		}
	}
	return nil
}

// cellValue stores numeric text as a number so spreadsheet formulas work.
func cellValue(s string) interface{} {
	if s == "" {
		return s
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v
	}
	return s
}

// sheetName derives a unique worksheet name from a view name. Views with
// several tables get a numeric suffix.
func sheetName(view string, index, total int, used map[string]bool) string {
	suffix := ""
	if total > 1 {
		suffix = "_" + strconv.Itoa(index+1)
	}
	base := view
	if len(base)+len(suffix) > maxSheetName {
		base = base[:maxSheetName-len(suffix)]
	}
	name := base + suffix
	for n := 2; used[strings.ToLower(name)]; n++ {
		tag := "~" + strconv.Itoa(n)
		name = base[:min(len(base), maxSheetName-len(suffix)-len(tag))] + suffix + tag
	}
	used[strings.ToLower(name)] = true
	return name
}

func qualityRows(report *analytics.Report, checks *quality.Report) [][]string {
	var rows [][]string
	if checks != nil {
		for _, m := range checks.Missing {
			rows = append(rows, []string{"missing_values", m.Column, strconv.Itoa(m.Missing)})
		}
		for _, o := range []quality.OutlierReport{checks.QuantityOutliers, checks.PriceOutliers} {
			if o.Err != nil {
				rows = append(rows, []string{"outliers", o.Column, "error: " + o.Failure()})
				continue
			}
			rows = append(rows,
				[]string{"outlier_threshold", o.Column, analytics.FormatFloat(o.Threshold)},
				[]string{"outliers", o.Column, strconv.Itoa(len(o.Outliers))})
		}
		rows = append(rows,
			[]string{"chronology", domain.ColumnTransactionDate, strconv.FormatBool(checks.Chronology.AlreadyOrdered)},
			[]string{"undefined_dates", domain.ColumnTransactionDate, strconv.Itoa(checks.Chronology.UndefinedDates)})
	}
	if report != nil {
		failures := report.Failures()
		names := make([]string, 0, len(failures))
		for name := range failures {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			rows = append(rows, []string{"view_failed", name, failures[name]})
		}
	}
	return rows
}
