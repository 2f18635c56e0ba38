package testutil

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"retailpulse/pkg/contracts/domain"
)

// TransactionFixtures provides input files and records for pipeline tests
type TransactionFixtures struct {
	TestDataDir string
}

// NewTransactionFixtures creates a new fixtures manager
func NewTransactionFixtures(testDataDir string) *TransactionFixtures {
	return &TransactionFixtures{
		TestDataDir: testDataDir,
	}
}

// Header returns the required input columns in source order.
func (f *TransactionFixtures) Header() []string {
	header := make([]string, len(domain.RequiredColumns))
	copy(header, domain.RequiredColumns)
	return header
}

// SampleRows returns a small but complete input table including the header.
func (f *TransactionFixtures) SampleRows() [][]string {
	return [][]string{
		f.Header(),
		{"1001", "T1", "2023-01-15", "Clothing", "Jeans", "2", "40", "25", "Credit Card", "North", "Female", "17"},
		{"1002", "T2", "2023-02-03", "Electronics", "Smartphone", "1", "600", "450", "PayPal", "South", "Male", "18"},
		{"1001", "T3", "2023-04-20", "Clothing", "T-Shirt", "3", "15", "6", "Credit Card", "North", "Female", "17"},
		{"1003", "T4", "2023-07-08", "Home & Kitchen", "Blender", "1", "80", "50", "Cash", "East", "Male", "36"},
		{"1004", "T5", "2023-10-30", "Electronics", "Laptop", "1", "1200", "900", "Credit Card", "West", "Female", "51"},
		{"1002", "T6", "2023-11-11", "Clothing", "Jeans", "1", "45", "25", "PayPal", "South", "Male", "18"},
	}
}

// WriteCSV writes rows to a file under the fixtures directory and returns its path.
func (f *TransactionFixtures) WriteCSV(name string, rows [][]string) (string, error) {
	if err := os.MkdirAll(f.TestDataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create test data directory: %w", err)
	}

	path := filepath.Join(f.TestDataDir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create fixture file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("failed to write fixture file: %w", err)
	}
	return path, nil
}

// Transaction builds a normalized record with derived fields filled in.
func Transaction(customer, product string, quantity, unitPrice float64) domain.Transaction {
	date := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
	return domain.Transaction{
		CustomerID:      customer,
		TransactionID:   fmt.Sprintf("%s-%s-%v", customer, product, quantity),
		TransactionDate: date,
		ProductCategory: "General",
		ProductName:     product,
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		UnitCost:        unitPrice / 2,
		PaymentMethod:   "Cash",
		Region:          "North",
		Gender:          "Female",
		Age:             30,
		TotalSpent:      unitPrice * quantity,
		Profit:          unitPrice - unitPrice/2,
		Year:            date.Year(),
		Month:           int(date.Month()),
		Day:             date.Day(),
		Season:          domain.SeasonForMonth(int(date.Month())),
	}
}

// UndefinedTransaction builds a record whose numeric fields are all undefined.
func UndefinedTransaction(customer string) domain.Transaction {
	nan := math.NaN()
	return domain.Transaction{
		CustomerID: customer,
		Quantity:   nan,
		UnitPrice:  nan,
		UnitCost:   nan,
		Age:        nan,
		TotalSpent: nan,
		Profit:     nan,
	}
}
