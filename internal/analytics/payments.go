package analytics

import "retailpulse/pkg/contracts/domain"

// PaymentMethodRevenue sums Total_Spent per payment method, highest first.
// The first row is reported as the most common method; the ranking is by
// revenue, not by transaction count.
func PaymentMethodRevenue(ds *domain.Dataset) ([]Revenue, string) {
	out := revenueBy(ds, paymentMethod)
	sortDesc(out, revenueValue)
	if len(out) == 0 {
		return out, ""
	}
	return out, out[0].Key
}

// Crosstab counts records per payment method and spending segment.
type Crosstab struct {
	Rows    []string                 `json:"rows"`
	Columns []domain.SpendingSegment `json:"columns"`
	Counts  [][]int                  `json:"counts"`
}

// Total returns the sum of all cells.
func (c Crosstab) Total() int {
	n := 0
	for _, row := range c.Counts {
		for _, v := range row {
			n += v
		}
	}
	return n
}

// PaymentSegmentCrosstab counts records for every payment method and spending
// segment. Missing combinations are zero.
func PaymentSegmentCrosstab(ds *domain.Dataset) Crosstab {
	groups := groupBy(ds, byPair(paymentMethod, spendingSegment), lessPair)

	rows := keysOf(groupBy(ds, byString(paymentMethod), lessString))
	rowIndex := indexOf(rows)
	colIndex := make(map[string]int, len(domain.SpendingSegments))
	for i, s := range domain.SpendingSegments {
		colIndex[string(s)] = i
	}

	counts := make([][]int, len(rows))
	for i := range counts {
		counts[i] = make([]int, len(domain.SpendingSegments))
	}
	for _, g := range groups {
		col, ok := colIndex[g.key.B]
		if !ok {
			continue
		}
		counts[rowIndex[g.key.A]][col] = len(g.members)
	}

	return Crosstab{Rows: rows, Columns: domain.SpendingSegments, Counts: counts}
}

// RegionPaymentPreference returns, for every region, the payment method with
// the highest Total_Spent in that region.
func RegionPaymentPreference(ds *domain.Dataset) ([]Preference, error) {
	return preferenceBy(ds, region, paymentMethod)
}
