package analytics

import (
	"sort"

	"retailpulse/internal/errors"
	"retailpulse/internal/statistics"
	"retailpulse/pkg/contracts/domain"
)

// group is one partition of a dataset. Members keep dataset order.
type group[K comparable] struct {
	key     K
	members []domain.Transaction
}

// groupBy partitions ds by key and returns the groups in ascending key
// order. Records whose key is undefined are left out.
func groupBy[K comparable](ds *domain.Dataset, key func(*domain.Transaction) (K, bool), less func(a, b K) bool) []group[K] {
	index := make(map[K]int)
	var groups []group[K]

	ds.Each(func(_ int, t *domain.Transaction) bool {
		k, ok := key(t)
		if !ok {
			return true
		}
		i, seen := index[k]
		if !seen {
			i = len(groups)
			index[k] = i
			groups = append(groups, group[K]{key: k})
		}
		groups[i].members = append(groups[i].members, *t)
		return true
	})

	sort.SliceStable(groups, func(i, j int) bool {
		return less(groups[i].key, groups[j].key)
	})
	return groups
}

// pair is a two-column grouping key.
type pair struct {
	A, B string
}

func lessString(a, b string) bool { return a < b }

func lessPair(x, y pair) bool {
	if x.A != y.A {
		return x.A < y.A
	}
	return x.B < y.B
}

// byString keys on a string column; the empty string is undefined.
func byString(field func(*domain.Transaction) string) func(*domain.Transaction) (string, bool) {
	return func(t *domain.Transaction) (string, bool) {
		v := field(t)
		return v, v != ""
	}
}

// byPair keys on two string columns; the key is undefined if either is.
func byPair(a, b func(*domain.Transaction) string) func(*domain.Transaction) (pair, bool) {
	return func(t *domain.Transaction) (pair, bool) {
		k := pair{A: a(t), B: b(t)}
		return k, k.A != "" && k.B != ""
	}
}

// Column accessors.

func customerID(t *domain.Transaction) string      { return t.CustomerID }
func productName(t *domain.Transaction) string     { return t.ProductName }
func productCategory(t *domain.Transaction) string { return t.ProductCategory }
func region(t *domain.Transaction) string          { return t.Region }
func paymentMethod(t *domain.Transaction) string   { return t.PaymentMethod }
func gender(t *domain.Transaction) string          { return t.Gender }
func season(t *domain.Transaction) string          { return string(t.Season) }
func ageSegment(t *domain.Transaction) string      { return string(t.AgeSegment) }
func spendingSegment(t *domain.Transaction) string { return string(t.SpendingSegment) }
func demographics(t *domain.Transaction) string    { return t.DemographicsSegment }

func totalSpent(t *domain.Transaction) float64 { return t.TotalSpent }
func quantity(t *domain.Transaction) float64   { return t.Quantity }
func profit(t *domain.Transaction) float64     { return t.Profit }

func values(members []domain.Transaction, field func(*domain.Transaction) float64) []float64 {
	out := make([]float64, len(members))
	for i := range members {
		out[i] = field(&members[i])
	}
	return out
}

// sumOf adds field over members, skipping undefined values.
func sumOf(members []domain.Transaction, field func(*domain.Transaction) float64) float64 {
	return statistics.Sum(values(members, field))
}

// countDefined counts members where field is non-empty.
func countDefined(members []domain.Transaction, field func(*domain.Transaction) string) int {
	n := 0
	for i := range members {
		if field(&members[i]) != "" {
			n++
		}
	}
	return n
}

// sortDesc orders rows by value, highest first. Equal values keep their
// current relative order.
func sortDesc[T any](rows []T, value func(T) float64) {
	sort.SliceStable(rows, func(i, j int) bool {
		return value(rows[i]) > value(rows[j])
	})
}

// argmax returns the first row holding the maximum value.
func argmax[T any](name string, rows []T, value func(T) float64) (T, error) {
	var zero T
	if len(rows) == 0 {
		return zero, errors.NewEmptyGroupError(name)
	}
	best := 0
	for i := 1; i < len(rows); i++ {
		if value(rows[i]) > value(rows[best]) {
			best = i
		}
	}
	return rows[best], nil
}

// Revenue is a grouping key with its summed Total_Spent.
type Revenue struct {
	Key        string  `json:"key"`
	TotalSpent float64 `json:"total_spent"`
}

func revenueValue(r Revenue) float64 { return r.TotalSpent }

// revenueBy sums Total_Spent per value of field, in ascending key order.
func revenueBy(ds *domain.Dataset, field func(*domain.Transaction) string) []Revenue {
	groups := groupBy(ds, byString(field), lessString)
	out := make([]Revenue, len(groups))
	for i, g := range groups {
		out[i] = Revenue{Key: g.key, TotalSpent: sumOf(g.members, totalSpent)}
	}
	return out
}

// Preference is the winning inner key of an argmax-within-group.
type Preference struct {
	Group      string  `json:"group"`
	Key        string  `json:"key"`
	TotalSpent float64 `json:"total_spent"`
}

// preferenceBy sums Total_Spent per (outer, inner) pair and keeps, for every
// outer value, the inner value with the highest sum. Ties go to the inner
// value that sorts first.
func preferenceBy(ds *domain.Dataset, outer, inner func(*domain.Transaction) string) ([]Preference, error) {
	groups := groupBy(ds, byPair(outer, inner), lessPair)

	var (
		out     []Preference
		current []Preference
	)
	flush := func() error {
		if len(current) == 0 {
			return nil
		}
		best, err := argmax(current[0].Group, current, func(p Preference) float64 { return p.TotalSpent })
		if err != nil {
			return err
		}
		out = append(out, best)
		current = current[:0]
		return nil
	}

	for _, g := range groups {
		if len(current) > 0 && current[0].Group != g.key.A {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		current = append(current, Preference{
			Group:      g.key.A,
			Key:        g.key.B,
			TotalSpent: sumOf(g.members, totalSpent),
		})
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}
