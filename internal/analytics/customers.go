package analytics

import (
	"retailpulse/internal/errors"
	"retailpulse/internal/statistics"
	"retailpulse/pkg/contracts/domain"
)

// CustomerCount is the number of transactions recorded for one customer.
type CustomerCount struct {
	CustomerID   string `json:"customer_id"`
	Transactions int    `json:"transactions"`
}

// CustomerTransactions counts defined Transaction_IDs per customer, most
// active customers first.
func CustomerTransactions(ds *domain.Dataset) []CustomerCount {
	groups := groupBy(ds, byString(customerID), lessString)
	out := make([]CustomerCount, len(groups))
	for i, g := range groups {
		out[i] = CustomerCount{
			CustomerID:   g.key,
			Transactions: countDefined(g.members, func(t *domain.Transaction) string { return t.TransactionID }),
		}
	}
	sortDesc(out, func(c CustomerCount) float64 { return float64(c.Transactions) })
	return out
}

// FrequentBuyer is a customer whose transaction count exceeds the mean.
type FrequentBuyer struct {
	CustomerID   string  `json:"customer_id"`
	Transactions int     `json:"transactions"`
	TotalSpent   float64 `json:"total_spent"`
}

// HighFrequencyBuyers returns the customers with more transactions than the
// mean count across all customers, joined with their total spend. The mean
// is returned alongside.
func HighFrequencyBuyers(ds *domain.Dataset) ([]FrequentBuyer, float64, error) {
	counts := CustomerTransactions(ds)
	perCustomer := make([]float64, len(counts))
	for i, c := range counts {
		perCustomer[i] = float64(c.Transactions)
	}
	mean, err := statistics.Mean(perCustomer)
	if err != nil {
		return nil, 0, err
	}

	spent := make(map[string]float64)
	for _, r := range revenueBy(ds, customerID) {
		spent[r.Key] = r.TotalSpent
	}

	var out []FrequentBuyer
	for _, c := range counts {
		if float64(c.Transactions) <= mean {
			continue
		}
		out = append(out, FrequentBuyer{
			CustomerID:   c.CustomerID,
			Transactions: c.Transactions,
			TotalSpent:   spent[c.CustomerID],
		})
	}
	return out, mean, nil
}

// SegmentedSpend is one record's spend and the segment it was assigned.
type SegmentedSpend struct {
	CustomerID      string                 `json:"customer_id"`
	TotalSpent      float64                `json:"total_spent"`
	SpendingSegment domain.SpendingSegment `json:"spending_segment"`
}

// SpendingSegments lists every record's spending segment in dataset order.
func SpendingSegments(ds *domain.Dataset) []SegmentedSpend {
	out := make([]SegmentedSpend, 0, ds.Len())
	ds.Each(func(_ int, t *domain.Transaction) bool {
		out = append(out, SegmentedSpend{
			CustomerID:      t.CustomerID,
			TotalSpent:      t.TotalSpent,
			SpendingSegment: t.SpendingSegment,
		})
		return true
	})
	return out
}

// HighValueCustomers sums Total_Spent per customer over High segment records
// and returns the share of total revenue they account for, in percent.
func HighValueCustomers(ds *domain.Dataset) ([]Revenue, float64, error) {
	var (
		total float64
		high  []domain.Transaction
	)
	ds.Each(func(_ int, t *domain.Transaction) bool {
		if !domain.IsUndefined(t.TotalSpent) {
			total += t.TotalSpent
		}
		if t.SpendingSegment == domain.SpendingHigh {
			high = append(high, *t)
		}
		return true
	})
	if total == 0 {
		return nil, 0, errors.NewStatisticsError("total revenue is zero")
	}

	groups := groupBy(domain.NewDataset(high), byString(customerID), lessString)
	out := make([]Revenue, len(groups))
	var highTotal float64
	for i, g := range groups {
		out[i] = Revenue{Key: g.key, TotalSpent: sumOf(g.members, totalSpent)}
		highTotal += out[i].TotalSpent
	}
	return out, highTotal / total * 100, nil
}
