package analytics

import (
	"time"

	"retailpulse/internal/errors"
	"retailpulse/pkg/contracts/domain"
)

// Extremes are the first and last rows of a descending revenue sort.
type Extremes[T any] struct {
	Peak T `json:"peak"`
	Low  T `json:"low"`
}

// ends takes the first and last row of an already sorted slice. Under ties
// these need not be the rows an independent min/max would pick.
func ends[T any](name string, sorted []T) (Extremes[T], error) {
	if len(sorted) == 0 {
		return Extremes[T]{}, errors.NewEmptyGroupError(name)
	}
	return Extremes[T]{Peak: sorted[0], Low: sorted[len(sorted)-1]}, nil
}

// SeasonSales sums Total_Spent per season, highest first, and reports the
// peak and low season by sort position.
func SeasonSales(ds *domain.Dataset) ([]Revenue, Extremes[Revenue], error) {
	out := revenueBy(ds, season)
	sortDesc(out, revenueValue)
	ext, err := ends("season", out)
	if err != nil {
		return nil, ext, err
	}
	return out, ext, nil
}

// Period is the revenue of one calendar month.
type Period struct {
	Year       int     `json:"year"`
	Month      int     `json:"month"`
	TotalSpent float64 `json:"total_spent"`
}

type yearMonth struct {
	Year, Month int
}

func byYearMonth(t *domain.Transaction) (yearMonth, bool) {
	return yearMonth{Year: t.Year, Month: t.Month}, t.HasDate()
}

func lessYearMonth(a, b yearMonth) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	return a.Month < b.Month
}

// SalesTrends sums Total_Spent per (Year, Month) in calendar order. The peak
// and low period come from a stable descending sort of the same rows.
func SalesTrends(ds *domain.Dataset) ([]Period, Extremes[Period], error) {
	groups := groupBy(ds, byYearMonth, lessYearMonth)
	out := make([]Period, len(groups))
	for i, g := range groups {
		out[i] = Period{Year: g.key.Year, Month: g.key.Month, TotalSpent: sumOf(g.members, totalSpent)}
	}

	ranked := make([]Period, len(out))
	copy(ranked, out)
	sortDesc(ranked, func(p Period) float64 { return p.TotalSpent })
	ext, err := ends("period", ranked)
	if err != nil {
		return nil, ext, err
	}
	return out, ext, nil
}

// DailyProductSales is one product's revenue on one day.
type DailyProductSales struct {
	ProductName string    `json:"product_name"`
	Date        time.Time `json:"date"`
	TotalSpent  float64   `json:"total_spent"`
}

type productDate struct {
	Product string
	Date    time.Time
}

func byProductDate(t *domain.Transaction) (productDate, bool) {
	return productDate{Product: t.ProductName, Date: t.TransactionDate}, t.ProductName != "" && t.HasDate()
}

func lessProductDate(a, b productDate) bool {
	if a.Product != b.Product {
		return a.Product < b.Product
	}
	return a.Date.Before(b.Date)
}

// ProductSalesTimeline sums Total_Spent per (product, transaction date),
// ordered by product and then date.
func ProductSalesTimeline(ds *domain.Dataset) []DailyProductSales {
	groups := groupBy(ds, byProductDate, lessProductDate)
	out := make([]DailyProductSales, len(groups))
	for i, g := range groups {
		out[i] = DailyProductSales{
			ProductName: g.key.Product,
			Date:        g.key.Date,
			TotalSpent:  sumOf(g.members, totalSpent),
		}
	}
	return out
}
