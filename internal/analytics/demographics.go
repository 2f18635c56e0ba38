package analytics

import (
	"fmt"

	"retailpulse/internal/statistics"
	"retailpulse/pkg/contracts/domain"
)

// AgeSegmentSpending sums Total_Spent per age segment, highest first.
func AgeSegmentSpending(ds *domain.Dataset) []Revenue {
	out := revenueBy(ds, ageSegment)
	sortDesc(out, revenueValue)
	return out
}

// GenderProductRevenue sums Total_Spent per (gender, product), highest first.
func GenderProductRevenue(ds *domain.Dataset) []Preference {
	groups := groupBy(ds, byPair(gender, productName), lessPair)
	out := make([]Preference, len(groups))
	for i, g := range groups {
		out[i] = Preference{Group: g.key.A, Key: g.key.B, TotalSpent: sumOf(g.members, totalSpent)}
	}
	sortDesc(out, func(p Preference) float64 { return p.TotalSpent })
	return out
}

// TopProductByGender returns the highest revenue product for every gender,
// in gender order.
func TopProductByGender(ds *domain.Dataset) ([]Preference, error) {
	return preferenceBy(ds, gender, productName)
}

// GenderProductPreferences splits the gender product ranking by gender. The
// returned genders are in ascending order.
func GenderProductPreferences(ds *domain.Dataset) ([]string, map[string][]Preference) {
	ranking := GenderProductRevenue(ds)
	byGender := make(map[string][]Preference)
	for _, p := range ranking {
		byGender[p.Group] = append(byGender[p.Group], p)
	}
	genders := keysOf(groupBy(ds, byString(gender), lessString))
	return genders, byGender
}

// SegmentBehavior summarizes spend within one demographics segment.
type SegmentBehavior struct {
	Segment      string  `json:"segment"`
	AvgSpent     float64 `json:"avg_spent"`
	MedianSpent  float64 `json:"median_spent"`
	TotalSpent   float64 `json:"total_spent"`
	Transactions int     `json:"transactions"`
}

// DemographicBehavior computes mean, median, sum and record count of
// Total_Spent per demographics segment, highest sum first. An undefined
// Total_Spent in any segment fails the view.
func DemographicBehavior(ds *domain.Dataset) ([]SegmentBehavior, error) {
	groups := groupBy(ds, byString(demographics), lessString)
	out := make([]SegmentBehavior, len(groups))
	for i, g := range groups {
		spent := values(g.members, totalSpent)
		mean, err := statistics.Mean(spent)
		if err != nil {
			return nil, fmt.Errorf("segment %s: %w", g.key, err)
		}
		median, err := statistics.Median(spent)
		if err != nil {
			return nil, fmt.Errorf("segment %s: %w", g.key, err)
		}
		out[i] = SegmentBehavior{
			Segment:      g.key,
			AvgSpent:     mean,
			MedianSpent:  median,
			TotalSpent:   statistics.Sum(spent),
			Transactions: len(g.members),
		}
	}
	sortDesc(out, func(s SegmentBehavior) float64 { return s.TotalSpent })
	return out, nil
}
