package domain

import (
	"math"
	"time"
)

// Required input columns, in the order they appear in the source export.
const (
	ColumnCustomerID      = "Customer_ID"
	ColumnTransactionID   = "Transaction_ID"
	ColumnTransactionDate = "Transaction_Date"
	ColumnProductCategory = "Product_Category"
	ColumnProductName     = "Product_Name"
	ColumnQuantity        = "Quantity"
	ColumnUnitPrice       = "Unit_Price"
	ColumnUnitCost        = "Unit_Cost"
	ColumnPaymentMethod   = "Payment_Method"
	ColumnRegion          = "Region"
	ColumnGender          = "Gender"
	ColumnAge             = "Age"
)

// Derived columns appended by the pipeline.
const (
	ColumnTotalSpent          = "Total_Spent"
	ColumnSpendingSegment     = "Spending_Segment"
	ColumnAgeSegment          = "Age_Segment"
	ColumnDemographicsSegment = "Demographics_Segment"
	ColumnProfit              = "profit"
	ColumnYear                = "Year"
	ColumnMonth               = "Month"
	ColumnDay                 = "Day"
	ColumnSeason              = "Season"
	ColumnCrossSell           = "cross_sell_suggestions"
	ColumnUpSell              = "Up_sell_Suggestions"
)

// RequiredColumns lists every column the loader must find in the input.
var RequiredColumns = []string{
	ColumnCustomerID,
	ColumnTransactionID,
	ColumnTransactionDate,
	ColumnProductCategory,
	ColumnProductName,
	ColumnQuantity,
	ColumnUnitPrice,
	ColumnUnitCost,
	ColumnPaymentMethod,
	ColumnRegion,
	ColumnGender,
	ColumnAge,
}

// Transaction is one purchase line. Undefined numeric values are NaN,
// undefined strings are empty and an undefined date is the zero time.
type Transaction struct {
	CustomerID      string    `json:"customer_id"`
	TransactionID   string    `json:"transaction_id"`
	TransactionDate time.Time `json:"transaction_date"`
	ProductCategory string    `json:"product_category"`
	ProductName     string    `json:"product_name"`
	Quantity        float64   `json:"quantity"`
	UnitPrice       float64   `json:"unit_price"`
	UnitCost        float64   `json:"unit_cost"`
	PaymentMethod   string    `json:"payment_method"`
	Region          string    `json:"region"`
	Gender          string    `json:"gender"`
	Age             float64   `json:"age"`

	// Derived by the normalizer
	TotalSpent float64 `json:"total_spent"`
	Profit     float64 `json:"profit"`
	Year       int     `json:"year,omitempty"`
	Month      int     `json:"month,omitempty"`
	Day        int     `json:"day,omitempty"`
	Season     Season  `json:"season,omitempty"`

	// Assigned by segmentation
	SpendingSegment     SpendingSegment `json:"spending_segment,omitempty"`
	AgeSegment          AgeSegment      `json:"age_segment,omitempty"`
	DemographicsSegment string          `json:"demographics_segment,omitempty"`

	// Assigned by the recommendation engine
	UpSell    string `json:"up_sell,omitempty"`
	CrossSell string `json:"cross_sell,omitempty"`
}

// HasDate reports whether the transaction date is defined.
func (t Transaction) HasDate() bool {
	return !t.TransactionDate.IsZero()
}

// Undefined is the sentinel for a missing numeric value.
func Undefined() float64 {
	return math.NaN()
}

// IsUndefined reports whether a numeric value is missing.
func IsUndefined(v float64) bool {
	return math.IsNaN(v)
}
