package exporter

import (
	"strconv"

	"retailpulse/internal/analytics"
	"retailpulse/pkg/contracts/domain"
)

// EnrichedColumns is the header of the enriched and chronological exports:
// the source columns followed by everything the pipeline derived.
var EnrichedColumns = append(append([]string{}, domain.RequiredColumns...),
	domain.ColumnTotalSpent,
	domain.ColumnSpendingSegment,
	domain.ColumnAgeSegment,
	domain.ColumnDemographicsSegment,
	domain.ColumnProfit,
	domain.ColumnYear,
	domain.ColumnMonth,
	domain.ColumnDay,
	domain.ColumnSeason,
	domain.ColumnCrossSell,
	domain.ColumnUpSell,
)

// EnrichedRow renders one transaction in EnrichedColumns order. Undefined
// values are empty cells.
func EnrichedRow(t *domain.Transaction) []string {
	var year, month, day string
	if t.HasDate() {
		year, month, day = strconv.Itoa(t.Year), strconv.Itoa(t.Month), strconv.Itoa(t.Day)
	}
	return []string{
		t.CustomerID,
		t.TransactionID,
		analytics.FormatDate(t.TransactionDate),
		t.ProductCategory,
		t.ProductName,
		analytics.FormatFloat(t.Quantity),
		analytics.FormatFloat(t.UnitPrice),
		analytics.FormatFloat(t.UnitCost),
		t.PaymentMethod,
		t.Region,
		t.Gender,
		analytics.FormatFloat(t.Age),
		analytics.FormatFloat(t.TotalSpent),
		string(t.SpendingSegment),
		string(t.AgeSegment),
		t.DemographicsSegment,
		analytics.FormatFloat(t.Profit),
		year,
		month,
		day,
		string(t.Season),
		t.CrossSell,
		t.UpSell,
	}
}

// TransactionTable renders a dataset as a table in EnrichedColumns order.
func TransactionTable(name, title string, ds *domain.Dataset) *domain.Table {
	t := &domain.Table{
		Name:    name,
		Title:   title,
		Columns: EnrichedColumns,
		Rows:    make([][]string, 0, ds.Len()),
	}
	ds.Each(func(_ int, rec *domain.Transaction) bool {
		t.Rows = append(t.Rows, EnrichedRow(rec))
		return true
	})
	return t
}
