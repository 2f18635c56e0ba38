package analytics

import "retailpulse/pkg/contracts/domain"

// RegionSales sums Total_Spent per region, highest first.
func RegionSales(ds *domain.Dataset) []Revenue {
	out := revenueBy(ds, region)
	sortDesc(out, revenueValue)
	return out
}

// RegionCategoryPreference returns, for every region, the product category
// with the highest Total_Spent in that region.
func RegionCategoryPreference(ds *domain.Dataset) ([]Preference, error) {
	return preferenceBy(ds, region, productCategory)
}

// Matrix is a zero-filled two-way table of sums.
type Matrix struct {
	Rows    []string    `json:"rows"`
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// RegionCategoryMatrix sums Total_Spent for every region and category pair.
// Regions and categories are both in ascending order.
func RegionCategoryMatrix(ds *domain.Dataset) Matrix {
	rows := keysOf(groupBy(ds, byString(region), lessString))
	cols := keysOf(groupBy(ds, byString(productCategory), lessString))

	rowIndex := indexOf(rows)
	colIndex := indexOf(cols)
	values := make([][]float64, len(rows))
	for i := range values {
		values[i] = make([]float64, len(cols))
	}
	for _, g := range groupBy(ds, byPair(region, productCategory), lessPair) {
		values[rowIndex[g.key.A]][colIndex[g.key.B]] = sumOf(g.members, totalSpent)
	}
	return Matrix{Rows: rows, Columns: cols, Values: values}
}

func keysOf(groups []group[string]) []string {
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.key
	}
	return keys
}

func indexOf(keys []string) map[string]int {
	idx := make(map[string]int, len(keys))
	for i, k := range keys {
		idx[k] = i
	}
	return idx
}
