package dataprocessing

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/errors"
	"retailpulse/internal/shared/testutil"
	"retailpulse/pkg/contracts/domain"
)

func sampleTable(t *testing.T) *RawTable {
	t.Helper()
	fixtures := testutil.NewTransactionFixtures(t.TempDir())
	rows := fixtures.SampleRows()
	return &RawTable{Header: rows[0], Rows: rows[1:], Sources: []string{"fixture"}}
}

func TestNormalizer_DerivedFields(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	records, err := NewNormalizer(logger).Normalize(context.Background(), sampleTable(t))
	require.NoError(t, err)
	require.Len(t, records, 6)

	for _, r := range records {
		assert.Equal(t, r.UnitPrice*r.Quantity, r.TotalSpent)
		assert.Equal(t, r.UnitPrice-r.UnitCost, r.Profit)
	}

	first := records[0]
	assert.Equal(t, "1001", first.CustomerID)
	assert.Equal(t, 80.0, first.TotalSpent)
	assert.Equal(t, 15.0, first.Profit)
	assert.Equal(t, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), first.TransactionDate)
	assert.Equal(t, 2023, first.Year)
	assert.Equal(t, 1, first.Month)
	assert.Equal(t, 15, first.Day)
	assert.Equal(t, domain.SeasonWinter, first.Season)

	assert.Equal(t, domain.SeasonSpring, records[2].Season)
	assert.Equal(t, domain.SeasonSummer, records[3].Season)
	assert.Equal(t, domain.SeasonFall, records[4].Season)
}

func TestNormalizer_SchemaError(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	table := &RawTable{
		Header: []string{"Customer_ID", "Transaction_ID", "Transaction_Date", "Product_Category",
			"Product_Name", "Quantity", "Unit_Price", "Payment_Method", "Gender"},
	}

	_, err := NewNormalizer(logger).Normalize(context.Background(), table)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeSchema))
	assert.Contains(t, err.Error(), "Unit_Cost, Region, Age")
}

func TestNormalizer_TypeCoercionError(t *testing.T) {
	tests := []struct {
		name   string
		column int
		value  string
		want   string
	}{
		{"quantity", 5, "two", `column Quantity row 2: cannot parse "two"`},
		{"unit price", 6, "$40", `column Unit_Price row 2: cannot parse "$40"`},
		{"unit cost", 7, "abc", `column Unit_Cost row 2: cannot parse "abc"`},
		{"age", 11, "old", `column Age row 2: cannot parse "old"`},
		{"date", 2, "not a date", `column Transaction_Date row 2: cannot parse "not a date"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			table := sampleTable(t)
			table.Rows[1][tt.column] = tt.value

			_, err := NewNormalizer(logger).Normalize(context.Background(), table)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrTypeCoercion))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNormalizer_UndefinedCellsAreKept(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	table := sampleTable(t)
	table.Rows[0][5] = ""    // Quantity
	table.Rows[0][11] = "NA" // Age
	table.Rows[0][2] = " "   // Transaction_Date
	table.Rows[0][10] = ""   // Gender

	records, err := NewNormalizer(logger).Normalize(context.Background(), table)
	require.NoError(t, err)
	require.Len(t, records, 6)

	r := records[0]
	assert.True(t, math.IsNaN(r.Quantity))
	assert.True(t, math.IsNaN(r.TotalSpent))
	assert.True(t, math.IsNaN(r.Age))
	assert.False(t, r.HasDate())
	assert.Zero(t, r.Year)
	assert.Empty(t, r.Season)
	assert.Empty(t, r.Gender)
	assert.Equal(t, 15.0, r.Profit)
}

func TestNormalizer_DateFormats(t *testing.T) {
	tests := []struct {
		value string
		want  time.Time
	}{
		{"2023-03-05", time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"03/05/2023", time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2023-03-05 14:30:00", time.Date(2023, 3, 5, 14, 30, 0, 0, time.UTC)},
		{"March 5, 2023", time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			table := sampleTable(t)
			table.Rows[0][2] = tt.value

			records, err := NewNormalizer(logger).Normalize(context.Background(), table)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(records[0].TransactionDate), records[0].TransactionDate.String())
			assert.Equal(t, 3, records[0].Month)
		})
	}
}

func TestCanonicalCustomerID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1001", "1001"},
		{" 1001 ", "1001"},
		{"1001.0", "1001"},
		{"001001", "1001"},
		{"1001.5", "1001.5"},
		{"C-1001", "C-1001"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalCustomerID(tt.in))
		})
	}
}
