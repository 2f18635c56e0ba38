// Package quality reports potential data issues in a normalized dataset.
// Findings are reports, never errors; the dataset itself is never modified.
package quality

import (
	"fmt"
	"sort"

	"retailpulse/internal/statistics"
	"retailpulse/pkg/contracts/domain"
)

// OutlierQuantile is the percentile above which a value is an outlier.
const OutlierQuantile = 0.99

// MissingCount is the number of undefined values in one column.
type MissingCount struct {
	Column  string `json:"column"`
	Missing int    `json:"missing"`
}

type columnCheck struct {
	name    string
	missing func(*domain.Transaction) bool
}

func emptyString(field func(*domain.Transaction) string) func(*domain.Transaction) bool {
	return func(t *domain.Transaction) bool { return field(t) == "" }
}

func undefinedNumber(field func(*domain.Transaction) float64) func(*domain.Transaction) bool {
	return func(t *domain.Transaction) bool { return domain.IsUndefined(field(t)) }
}

func noDate(t *domain.Transaction) bool { return !t.HasDate() }

var columnChecks = []columnCheck{
	{domain.ColumnCustomerID, emptyString(func(t *domain.Transaction) string { return t.CustomerID })},
	{domain.ColumnTransactionID, emptyString(func(t *domain.Transaction) string { return t.TransactionID })},
	{domain.ColumnTransactionDate, noDate},
	{domain.ColumnProductCategory, emptyString(func(t *domain.Transaction) string { return t.ProductCategory })},
	{domain.ColumnProductName, emptyString(func(t *domain.Transaction) string { return t.ProductName })},
	{domain.ColumnQuantity, undefinedNumber(func(t *domain.Transaction) float64 { return t.Quantity })},
	{domain.ColumnUnitPrice, undefinedNumber(func(t *domain.Transaction) float64 { return t.UnitPrice })},
	{domain.ColumnUnitCost, undefinedNumber(func(t *domain.Transaction) float64 { return t.UnitCost })},
	{domain.ColumnPaymentMethod, emptyString(func(t *domain.Transaction) string { return t.PaymentMethod })},
	{domain.ColumnRegion, emptyString(func(t *domain.Transaction) string { return t.Region })},
	{domain.ColumnGender, emptyString(func(t *domain.Transaction) string { return t.Gender })},
	{domain.ColumnAge, undefinedNumber(func(t *domain.Transaction) float64 { return t.Age })},
	{domain.ColumnTotalSpent, undefinedNumber(func(t *domain.Transaction) float64 { return t.TotalSpent })},
	{domain.ColumnSpendingSegment, emptyString(func(t *domain.Transaction) string { return string(t.SpendingSegment) })},
	{domain.ColumnAgeSegment, emptyString(func(t *domain.Transaction) string { return string(t.AgeSegment) })},
	{domain.ColumnDemographicsSegment, emptyString(func(t *domain.Transaction) string { return t.DemographicsSegment })},
	{domain.ColumnProfit, undefinedNumber(func(t *domain.Transaction) float64 { return t.Profit })},
	{domain.ColumnYear, noDate},
	{domain.ColumnMonth, noDate},
	{domain.ColumnDay, noDate},
	{domain.ColumnSeason, emptyString(func(t *domain.Transaction) string { return string(t.Season) })},
	{domain.ColumnCrossSell, emptyString(func(t *domain.Transaction) string { return t.CrossSell })},
	{domain.ColumnUpSell, emptyString(func(t *domain.Transaction) string { return t.UpSell })},
}

// MissingValues counts undefined values per column, source columns first.
func MissingValues(ds *domain.Dataset) []MissingCount {
	out := make([]MissingCount, len(columnChecks))
	for i, c := range columnChecks {
		out[i].Column = c.name
	}
	ds.Each(func(_ int, t *domain.Transaction) bool {
		for i, c := range columnChecks {
			if c.missing(t) {
				out[i].Missing++
			}
		}
		return true
	})
	return out
}

// Outlier is one flagged row. Row is the 0-based dataset position.
type Outlier struct {
	Row        int     `json:"row"`
	CustomerID string  `json:"customer_id"`
	Value      float64 `json:"value"`
}

// OutlierReport is the result of one outlier check. Err is set when the
// threshold could not be computed; Outliers is then empty.
type OutlierReport struct {
	Column    string    `json:"column"`
	Threshold float64   `json:"threshold"`
	Outliers  []Outlier `json:"outliers"`
	Err       error     `json:"-"`
}

// Failure returns the check failure message, if any.
func (r OutlierReport) Failure() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// QuantityOutliers flags rows whose quantity is negative or above the 99th
// percentile of quantity.
func QuantityOutliers(ds *domain.Dataset) OutlierReport {
	return outliers(ds, domain.ColumnQuantity,
		func(t *domain.Transaction) float64 { return t.Quantity },
		func(v, threshold float64) bool { return v < 0 || v > threshold })
}

// UnitPriceOutliers flags rows whose unit price is above the 99th
// percentile of unit price.
func UnitPriceOutliers(ds *domain.Dataset) OutlierReport {
	return outliers(ds, domain.ColumnUnitPrice,
		func(t *domain.Transaction) float64 { return t.UnitPrice },
		func(v, threshold float64) bool { return v > threshold })
}

// outliers computes the percentile over the defined values of a column and
// applies flag to every defined value.
func outliers(ds *domain.Dataset, column string, field func(*domain.Transaction) float64, flag func(v, threshold float64) bool) OutlierReport {
	report := OutlierReport{Column: column, Outliers: []Outlier{}}

	var defined []float64
	ds.Each(func(_ int, t *domain.Transaction) bool {
		if v := field(t); !domain.IsUndefined(v) {
			defined = append(defined, v)
		}
		return true
	})

	threshold, err := statistics.Quantile(defined, OutlierQuantile)
	if err != nil {
		report.Err = fmt.Errorf("%s outliers: %w", column, err)
		return report
	}
	report.Threshold = threshold

	ds.Each(func(i int, t *domain.Transaction) bool {
		v := field(t)
		if !domain.IsUndefined(v) && flag(v, threshold) {
			report.Outliers = append(report.Outliers, Outlier{Row: i, CustomerID: t.CustomerID, Value: v})
		}
		return true
	})
	return report
}

// Chronology is the result of the date ordering check.
type Chronology struct {
	AlreadyOrdered bool `json:"already_ordered"`
	Resorted       bool `json:"resorted"`
	// UndefinedDates counts records without a date. They sort last and do
	// not by themselves make the dataset out of order.
	UndefinedDates int `json:"undefined_dates"`
	// Ordered is ds itself when already ordered, otherwise a sorted copy
	Ordered *domain.Dataset `json:"-"`
}

// dateBefore orders by transaction date with undefined dates last.
func dateBefore(a, b *domain.Transaction) bool {
	switch {
	case !a.HasDate():
		return false
	case !b.HasDate():
		return true
	default:
		return a.TransactionDate.Before(b.TransactionDate)
	}
}

// CheckChronology verifies that transaction dates never decrease in dataset
// order. If they do, it returns a copy stable-sorted by date. Running it on
// its own output always reports AlreadyOrdered.
func CheckChronology(ds *domain.Dataset) Chronology {
	records := ds.Records()
	ordered := true
	undefined := 0
	for i := range records {
		if !records[i].HasDate() {
			undefined++
		}
		if i > 0 && ordered && dateBefore(&records[i], &records[i-1]) {
			ordered = false
		}
	}
	if ordered {
		return Chronology{AlreadyOrdered: true, UndefinedDates: undefined, Ordered: ds}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return dateBefore(&records[i], &records[j])
	})
	return Chronology{Resorted: true, UndefinedDates: undefined, Ordered: domain.NewDataset(records)}
}
