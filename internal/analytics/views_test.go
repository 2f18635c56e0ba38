package analytics

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/errors"
	"retailpulse/internal/shared/testutil"
	"retailpulse/pkg/contracts/domain"
)

type option func(*domain.Transaction)

func in(region string) option { return func(t *domain.Transaction) { t.Region = region } }

func category(c string) option { return func(t *domain.Transaction) { t.ProductCategory = c } }

func paidBy(m string) option { return func(t *domain.Transaction) { t.PaymentMethod = m } }

func segment(s domain.SpendingSegment) option {
	return func(t *domain.Transaction) { t.SpendingSegment = s }
}

func demographic(g string, a domain.AgeSegment) option {
	return func(t *domain.Transaction) {
		t.Gender = g
		t.AgeSegment = a
		t.DemographicsSegment = g + " " + string(a)
	}
}

func on(year int, month time.Month, day int) option {
	return func(t *domain.Transaction) {
		t.TransactionDate = time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		t.Year, t.Month, t.Day = year, int(month), day
		t.Season = domain.SeasonForMonth(int(month))
	}
}

func record(customer, product string, qty, price float64, opts ...option) domain.Transaction {
	t := testutil.Transaction(customer, product, qty, price)
	t.SpendingSegment = domain.SpendingMedium
	t.AgeSegment = domain.AgeAdult
	t.DemographicsSegment = t.Gender + " " + string(t.AgeSegment)
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func dataset(records ...domain.Transaction) *domain.Dataset {
	for i := range records {
		records[i].TransactionID = fmt.Sprintf("T%d", i+1)
	}
	return domain.NewDataset(records)
}

func TestCustomerTransactions(t *testing.T) {
	ds := dataset(
		record("1002", "Jeans", 1, 10),
		record("1001", "Jeans", 1, 10),
		record("1003", "Lamp", 1, 10),
		record("1001", "Lamp", 1, 10),
		record("1003", "Vase", 1, 10),
		record("1004", "Vase", 1, 10),
	)

	counts := CustomerTransactions(ds)

	total := 0
	for _, c := range counts {
		total += c.Transactions
	}
	assert.Equal(t, ds.Len(), total, "per-customer counts must sum to the record count")

	assert.Equal(t, []CustomerCount{
		{CustomerID: "1001", Transactions: 2},
		{CustomerID: "1003", Transactions: 2},
		{CustomerID: "1002", Transactions: 1},
		{CustomerID: "1004", Transactions: 1},
	}, counts, "ties keep ascending customer order")
}

func TestCustomerTransactions_UndefinedIDs(t *testing.T) {
	noCustomer := record("", "Jeans", 1, 10)
	noTransaction := record("1001", "Jeans", 1, 10)
	noTransaction.TransactionID = ""

	counts := CustomerTransactions(domain.NewDataset([]domain.Transaction{noCustomer, noTransaction}))
	require.Len(t, counts, 1)
	assert.Equal(t, CustomerCount{CustomerID: "1001", Transactions: 0}, counts[0])
}

func TestHighFrequencyBuyers(t *testing.T) {
	var recs []domain.Transaction
	for i := 0; i < 5; i++ {
		recs = append(recs, record("A", "Jeans", 1, 10))
	}
	for i := 0; i < 3; i++ {
		recs = append(recs, record("B", "Jeans", 1, 20))
		recs = append(recs, record("C", "Jeans", 1, 30))
	}
	recs = append(recs, record("D", "Jeans", 1, 40))

	buyers, mean, err := HighFrequencyBuyers(dataset(recs...))
	require.NoError(t, err)

	assert.Equal(t, 3.0, mean)
	require.Len(t, buyers, 1, "only counts strictly above the mean qualify")
	assert.Equal(t, FrequentBuyer{CustomerID: "A", Transactions: 5, TotalSpent: 50}, buyers[0])
}

func TestHighFrequencyBuyers_EmptyDataset(t *testing.T) {
	_, _, err := HighFrequencyBuyers(domain.NewDataset(nil))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeStatistics))
}

func TestHighValueCustomers(t *testing.T) {
	ds := dataset(
		record("1001", "Laptop", 1, 600, segment(domain.SpendingHigh)),
		record("1002", "Laptop", 1, 300, segment(domain.SpendingHigh)),
		record("1001", "Laptop", 1, 100, segment(domain.SpendingHigh)),
		record("1003", "Pen", 1, 1000, segment(domain.SpendingLow)),
	)

	customers, contribution, err := HighValueCustomers(ds)
	require.NoError(t, err)

	assert.Equal(t, []Revenue{{Key: "1001", TotalSpent: 700}, {Key: "1002", TotalSpent: 300}}, customers)
	assert.InDelta(t, 50.0, contribution, 1e-9)
}

func TestTopSellingProducts(t *testing.T) {
	ds := dataset(
		record("1", "Jeans", 2, 40),
		record("2", "Lamp", 1, 200),
		record("3", "Jeans", 1, 40),
		record("4", "Vase", 4, 30),
		record("5", "Lamp", 1, math.NaN()),
	)

	products := TopSellingProducts(ds)

	assert.Equal(t, []ProductSales{
		{ProductName: "Lamp", Quantity: 2, TotalSpent: 200},
		{ProductName: "Jeans", Quantity: 3, TotalSpent: 120},
		{ProductName: "Vase", Quantity: 4, TotalSpent: 120},
	}, products, "sums skip undefined values and ties keep name order")
}

func TestPopularCategories(t *testing.T) {
	ds := dataset(
		record("1", "Jeans", 1, 10, category("Clothing")),
		record("2", "Lamp", 1, 10, category("Home")),
		record("3", "Dress", 1, 10, category("Clothing")),
		record("4", "Misc", 1, 10, category("")),
	)

	assert.Equal(t, []CategoryCount{
		{Category: "Clothing", LineItems: 2},
		{Category: "Home", LineItems: 1},
	}, PopularCategories(ds))
}

func TestProductProfitability(t *testing.T) {
	ds := dataset(
		record("1", "Jeans", 1, 40), // profit 20
		record("2", "Lamp", 1, 100), // profit 50
		record("3", "Jeans", 1, 60), // profit 30
		record("4", "Vase", 1, 20),  // profit 10
	)

	ranking := ProductProfitability(ds)

	require.Len(t, ranking, 3)
	for i, p := range ranking {
		assert.Equal(t, i+1, p.Rank)
	}
	assert.Equal(t, "Jeans", ranking[0].ProductName)
	assert.Equal(t, 50.0, ranking[0].Profit)
	assert.Equal(t, "Lamp", ranking[1].ProductName)
	assert.Equal(t, "Vase", ranking[2].ProductName)
}

func TestSeasonSales(t *testing.T) {
	tests := []struct {
		name     string
		records  []domain.Transaction
		wantPeak string
		wantLow  string
	}{
		{
			name: "distinct totals",
			records: []domain.Transaction{
				record("1", "Jeans", 1, 100, on(2023, time.January, 5)),
				record("2", "Jeans", 1, 300, on(2023, time.July, 5)),
				record("3", "Jeans", 1, 200, on(2023, time.October, 5)),
			},
			wantPeak: "Summer",
			wantLow:  "Winter",
		},
		{
			name: "ties keep season name order",
			records: []domain.Transaction{
				record("1", "Jeans", 1, 100, on(2023, time.January, 5)),
				record("2", "Jeans", 1, 100, on(2023, time.April, 5)),
				record("3", "Jeans", 1, 100, on(2023, time.October, 5)),
			},
			wantPeak: "Fall",
			wantLow:  "Winter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seasons, ext, err := SeasonSales(dataset(tt.records...))
			require.NoError(t, err)
			assert.Len(t, seasons, len(tt.records))
			assert.Equal(t, tt.wantPeak, ext.Peak.Key)
			assert.Equal(t, tt.wantLow, ext.Low.Key)
			assert.Equal(t, seasons[0], ext.Peak)
			assert.Equal(t, seasons[len(seasons)-1], ext.Low)
		})
	}
}

func TestSeasonSales_NoDates(t *testing.T) {
	rec := record("1", "Jeans", 1, 10)
	rec.TransactionDate = time.Time{}
	rec.Season = ""

	_, _, err := SeasonSales(dataset(rec))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeEmptyGroup))
}

func TestSalesTrends(t *testing.T) {
	ds := dataset(
		record("1", "Jeans", 1, 50, on(2024, time.February, 1)),
		record("2", "Jeans", 1, 70, on(2023, time.December, 1)),
		record("3", "Lamp", 1, 80, on(2024, time.February, 9)),
		record("4", "Lamp", 1, 20, on(2023, time.March, 1)),
	)

	periods, ext, err := SalesTrends(ds)
	require.NoError(t, err)

	assert.Equal(t, []Period{
		{Year: 2023, Month: 3, TotalSpent: 20},
		{Year: 2023, Month: 12, TotalSpent: 70},
		{Year: 2024, Month: 2, TotalSpent: 130},
	}, periods)
	assert.Equal(t, Period{Year: 2024, Month: 2, TotalSpent: 130}, ext.Peak)
	assert.Equal(t, Period{Year: 2023, Month: 3, TotalSpent: 20}, ext.Low)
}

func TestProductSalesTimeline(t *testing.T) {
	ds := dataset(
		record("1", "Lamp", 1, 10, on(2023, time.May, 2)),
		record("2", "Jeans", 1, 20, on(2023, time.May, 2)),
		record("3", "Lamp", 1, 30, on(2023, time.May, 1)),
		record("4", "Lamp", 2, 5, on(2023, time.May, 2)),
	)

	timeline := ProductSalesTimeline(ds)

	require.Len(t, timeline, 3)
	assert.Equal(t, "Jeans", timeline[0].ProductName)
	assert.Equal(t, "Lamp", timeline[1].ProductName)
	assert.Equal(t, 1, timeline[1].Date.Day())
	assert.Equal(t, 20.0, timeline[2].TotalSpent)
}

func TestRegionCategoryPreference(t *testing.T) {
	ds := dataset(
		record("1", "Jeans", 1, 100, in("North"), category("Clothing")),
		record("2", "Lamp", 1, 150, in("North"), category("Home")),
		record("3", "Dress", 1, 80, in("North"), category("Clothing")),
		record("4", "Laptop", 1, 500, in("South"), category("Electronics")),
		record("5", "Vase", 1, 500, in("South"), category("Home")),
		record("6", "Jeans", 1, 10, in("East"), category("Clothing")),
	)

	prefs, err := RegionCategoryPreference(ds)
	require.NoError(t, err)

	require.Len(t, prefs, 3, "one row per distinct region")
	matrix := RegionCategoryMatrix(ds)
	for _, p := range prefs {
		row := indexOf(matrix.Rows)[p.Group]
		for _, v := range matrix.Values[row] {
			assert.GreaterOrEqual(t, p.TotalSpent, v, "region %s", p.Group)
		}
	}

	assert.Equal(t, Preference{Group: "East", Key: "Clothing", TotalSpent: 10}, prefs[0])
	assert.Equal(t, Preference{Group: "North", Key: "Clothing", TotalSpent: 180}, prefs[1])
	assert.Equal(t, Preference{Group: "South", Key: "Electronics", TotalSpent: 500}, prefs[2], "first maximum wins")
}

func TestRegionCategoryMatrix(t *testing.T) {
	ds := dataset(
		record("1", "Jeans", 1, 100, in("North"), category("Clothing")),
		record("2", "Lamp", 1, 150, in("South"), category("Home")),
	)

	m := RegionCategoryMatrix(ds)

	assert.Equal(t, []string{"North", "South"}, m.Rows)
	assert.Equal(t, []string{"Clothing", "Home"}, m.Columns)
	assert.Equal(t, [][]float64{{100, 0}, {0, 150}}, m.Values)
}

func TestPaymentMethodRevenue(t *testing.T) {
	ds := dataset(
		record("1", "Pen", 1, 5, paidBy("Cash")),
		record("2", "Pen", 1, 5, paidBy("Cash")),
		record("3", "Pen", 1, 5, paidBy("Cash")),
		record("4", "Laptop", 1, 900, paidBy("Credit Card")),
	)

	methods, mostCommon := PaymentMethodRevenue(ds)

	assert.Equal(t, "Credit Card", mostCommon, "ranked by revenue, not by count")
	assert.Equal(t, []Revenue{{Key: "Credit Card", TotalSpent: 900}, {Key: "Cash", TotalSpent: 15}}, methods)
}

func TestPaymentSegmentCrosstab(t *testing.T) {
	ds := dataset(
		record("1", "Pen", 1, 5, paidBy("Cash"), segment(domain.SpendingLow)),
		record("2", "Pen", 1, 5, paidBy("Cash"), segment(domain.SpendingLow)),
		record("3", "Lamp", 1, 50, paidBy("PayPal"), segment(domain.SpendingMedium)),
		record("4", "Laptop", 1, 900, paidBy("Credit Card"), segment(domain.SpendingHigh)),
		record("5", "Lamp", 1, 60, paidBy("Cash"), segment(domain.SpendingMedium)),
	)

	c := PaymentSegmentCrosstab(ds)

	assert.Equal(t, ds.Len(), c.Total(), "cells must sum to the record count")
	assert.Equal(t, []string{"Cash", "Credit Card", "PayPal"}, c.Rows)
	assert.Equal(t, domain.SpendingSegments, c.Columns)
	assert.Equal(t, [][]int{
		{0, 2, 1},
		{1, 0, 0},
		{0, 0, 1},
	}, c.Counts)
}

func TestRegionPaymentPreference(t *testing.T) {
	ds := dataset(
		record("1", "Pen", 1, 5, in("North"), paidBy("Cash")),
		record("2", "Lamp", 1, 50, in("North"), paidBy("PayPal")),
		record("3", "Laptop", 1, 900, in("West"), paidBy("Credit Card")),
	)

	prefs, err := RegionPaymentPreference(ds)
	require.NoError(t, err)
	assert.Equal(t, []Preference{
		{Group: "North", Key: "PayPal", TotalSpent: 50},
		{Group: "West", Key: "Credit Card", TotalSpent: 900},
	}, prefs)
}

func TestAgeSegmentSpending(t *testing.T) {
	ds := dataset(
		record("1", "Pen", 1, 5, demographic("Male", domain.AgeSenior)),
		record("2", "Lamp", 1, 50, demographic("Male", domain.AgeYoungAdult)),
		record("3", "Vase", 1, 20, demographic("Female", domain.AgeSenior)),
	)

	assert.Equal(t, []Revenue{
		{Key: "Young Adult", TotalSpent: 50},
		{Key: "Senior", TotalSpent: 25},
	}, AgeSegmentSpending(ds))
}

func TestGenderProducts(t *testing.T) {
	ds := dataset(
		record("1", "Dress", 1, 80, demographic("Female", domain.AgeAdult)),
		record("2", "Perfume", 1, 120, demographic("Female", domain.AgeAdult)),
		record("3", "Jeans", 1, 60, demographic("Male", domain.AgeAdult)),
		record("4", "Laptop", 1, 900, demographic("Male", domain.AgeAdult)),
		record("5", "Dress", 1, 50, demographic("Female", domain.AgeAdult)),
	)

	ranking := GenderProductRevenue(ds)
	require.Len(t, ranking, 4)
	assert.Equal(t, Preference{Group: "Male", Key: "Laptop", TotalSpent: 900}, ranking[0])

	top, err := TopProductByGender(ds)
	require.NoError(t, err)
	assert.Equal(t, []Preference{
		{Group: "Female", Key: "Dress", TotalSpent: 130},
		{Group: "Male", Key: "Laptop", TotalSpent: 900},
	}, top)

	genders, byGender := GenderProductPreferences(ds)
	assert.Equal(t, []string{"Female", "Male"}, genders)
	require.Len(t, byGender["Female"], 2)
	assert.Equal(t, "Dress", byGender["Female"][0].Key)
	assert.Equal(t, "Perfume", byGender["Female"][1].Key)
}

func TestDemographicBehavior(t *testing.T) {
	ds := dataset(
		record("1", "Pen", 1, 10, demographic("Female", domain.AgeAdult)),
		record("2", "Pen", 1, 20, demographic("Female", domain.AgeAdult)),
		record("3", "Pen", 1, 60, demographic("Female", domain.AgeAdult)),
		record("4", "Pen", 1, 100, demographic("Male", domain.AgeSenior)),
		record("5", "Pen", 1, 200, demographic("Male", domain.AgeSenior)),
	)

	rows, err := DemographicBehavior(ds)
	require.NoError(t, err)

	assert.Equal(t, []SegmentBehavior{
		{Segment: "Male Senior", AvgSpent: 150, MedianSpent: 150, TotalSpent: 300, Transactions: 2},
		{Segment: "Female Adult", AvgSpent: 30, MedianSpent: 20, TotalSpent: 90, Transactions: 3},
	}, rows)
}

func TestDemographicBehavior_UndefinedSpend(t *testing.T) {
	ds := dataset(
		record("1", "Pen", 1, 10, demographic("Female", domain.AgeAdult)),
		record("2", "Pen", 1, math.NaN(), demographic("Female", domain.AgeAdult)),
	)

	_, err := DemographicBehavior(ds)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeStatistics))
}

func TestArgmax(t *testing.T) {
	value := func(v float64) float64 { return v }

	best, err := argmax("g", []float64{3, 7, 7, 1}, value)
	require.NoError(t, err)
	assert.Equal(t, 7.0, best)

	_, err = argmax("empty", nil, value)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeEmptyGroup))
}

func TestSpendingSegments(t *testing.T) {
	ds := dataset(
		record("1001", "Jeans", 2, 40, segment(domain.SpendingHigh)),
		record("1002", "Pen", 1, 2, segment(domain.SpendingLow)),
	)

	assert.Equal(t, []SegmentedSpend{
		{CustomerID: "1001", TotalSpent: 80, SpendingSegment: domain.SpendingHigh},
		{CustomerID: "1002", TotalSpent: 2, SpendingSegment: domain.SpendingLow},
	}, SpendingSegments(ds))
}
