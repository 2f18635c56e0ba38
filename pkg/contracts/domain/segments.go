package domain

// SpendingSegment classifies a record by its total spend relative to the
// quartiles of the whole record set.
type SpendingSegment string

const (
	SpendingLow    SpendingSegment = "Low"
	SpendingMedium SpendingSegment = "Medium"
	SpendingHigh   SpendingSegment = "High"
)

// SpendingSegments in crosstab column order.
var SpendingSegments = []SpendingSegment{SpendingHigh, SpendingLow, SpendingMedium}

// AgeSegment classifies a record by customer age.
type AgeSegment string

const (
	AgeBelow18    AgeSegment = "Below 18"
	AgeYoungAdult AgeSegment = "Young Adult"
	AgeAdult      AgeSegment = "Adult"
	AgeSenior     AgeSegment = "Senior"
)

// Season is the quarter-of-year bucket a transaction month falls into.
type Season string

const (
	SeasonWinter Season = "Winter"
	SeasonSpring Season = "Spring"
	SeasonSummer Season = "Summer"
	SeasonFall   Season = "Fall"
)

var monthToSeason = map[int]Season{
	1: SeasonWinter, 2: SeasonWinter, 3: SeasonWinter,
	4: SeasonSpring, 5: SeasonSpring, 6: SeasonSpring,
	7: SeasonSummer, 8: SeasonSummer, 9: SeasonSummer,
	10: SeasonFall, 11: SeasonFall, 12: SeasonFall,
}

// SeasonForMonth maps a calendar month to its season. Months outside 1..12
// map to the empty season.
func SeasonForMonth(month int) Season {
	return monthToSeason[month]
}
