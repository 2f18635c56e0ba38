package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"retailpulse/internal/errors"
	"retailpulse/pkg/contracts/domain"
)

// missingTokens are cell values read as undefined, in addition to blanks.
var missingTokens = map[string]bool{
	"NA": true, "N/A": true, "n/a": true, "#N/A": true,
	"NaN": true, "nan": true, "-NaN": true, "-nan": true,
	"null": true, "NULL": true, "None": true, "<NA>": true,
}

// Normalizer coerces raw cells into transactions and appends the derived
// fields. It never drops a row.
type Normalizer struct {
	logger   *slog.Logger
	location *time.Location
}

// NewNormalizer creates a normalizer that interprets dates in UTC.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		logger:   logger.With(slog.String("component", "normalizer")),
		location: time.UTC,
	}
}

// Normalize validates the schema and converts every row. Derived fields are
// computed here exactly once.
func (n *Normalizer) Normalize(ctx context.Context, table *RawTable) ([]domain.Transaction, error) {
	index, err := columnIndex(table.Header)
	if err != nil {
		n.logger.ErrorContext(ctx, "input schema rejected", slog.String("error", err.Error()))
		return nil, err
	}

	records := make([]domain.Transaction, 0, len(table.Rows))
	undefinedDates := 0
	for i, row := range table.Rows {
		rowNum := i + 1
		cell := func(column string) string {
			return cleanCell(row[index[column]])
		}

		t := domain.Transaction{
			CustomerID:      CanonicalCustomerID(cell(domain.ColumnCustomerID)),
			TransactionID:   cell(domain.ColumnTransactionID),
			ProductCategory: cell(domain.ColumnProductCategory),
			ProductName:     cell(domain.ColumnProductName),
			PaymentMethod:   cell(domain.ColumnPaymentMethod),
			Region:          cell(domain.ColumnRegion),
			Gender:          cell(domain.ColumnGender),
		}

		numeric := []struct {
			column string
			dst    *float64
		}{
			{domain.ColumnQuantity, &t.Quantity},
			{domain.ColumnUnitPrice, &t.UnitPrice},
			{domain.ColumnUnitCost, &t.UnitCost},
			{domain.ColumnAge, &t.Age},
		}
		for _, f := range numeric {
			v, err := parseNumber(f.column, rowNum, cell(f.column))
			if err != nil {
				return nil, err
			}
			*f.dst = v
		}

		date, err := n.parseDate(rowNum, cell(domain.ColumnTransactionDate))
		if err != nil {
			return nil, err
		}
		t.TransactionDate = date
		if !t.HasDate() {
			undefinedDates++
		}

		derive(&t)
		records = append(records, t)
	}

	n.logger.InfoContext(ctx, "records normalized",
		slog.Int("records", len(records)),
		slog.Int("undefined_dates", undefinedDates))

	return records, nil
}

// derive fills the computed fields. Undefined inputs propagate as NaN.
func derive(t *domain.Transaction) {
	t.TotalSpent = t.UnitPrice * t.Quantity
	t.Profit = t.UnitPrice - t.UnitCost
	if t.HasDate() {
		t.Year = t.TransactionDate.Year()
		t.Month = int(t.TransactionDate.Month())
		t.Day = t.TransactionDate.Day()
		t.Season = domain.SeasonForMonth(t.Month)
	}
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	var missing []string
	for _, col := range domain.RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewSchemaError(missing)
	}
	return index, nil
}

func cleanCell(raw string) string {
	v := strings.TrimSpace(raw)
	if missingTokens[v] {
		return ""
	}
	return v
}

func parseNumber(column string, row int, value string) (float64, error) {
	if value == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.NewTypeCoercionError(column, row, value, err)
	}
	return v, nil
}

func (n *Normalizer) parseDate(row int, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	date, err := dateparse.ParseIn(value, n.location)
	if err != nil {
		return time.Time{}, errors.NewTypeCoercionError(domain.ColumnTransactionDate, row, value, err)
	}
	return date, nil
}

// CanonicalCustomerID trims id and rewrites integral numeric ids in their
// plain integer form, so "1001", " 1001" and "1001.0" compare equal.
func CanonicalCustomerID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	v, err := strconv.ParseFloat(id, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return id
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return id
}
