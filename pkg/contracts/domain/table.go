package domain

// Section is one of the viewer's selectable analysis areas.
type Section string

const (
	SectionCustomers    Section = "customers-behavior"
	SectionProducts     Section = "products-performance"
	SectionTemporal     Section = "temporal-patterns"
	SectionLocation     Section = "location-insights"
	SectionPayments     Section = "payment-trends"
	SectionDemographics Section = "demographics-analysis"
)

// Sections in selector order.
var Sections = []Section{
	SectionCustomers,
	SectionProducts,
	SectionTemporal,
	SectionLocation,
	SectionPayments,
	SectionDemographics,
}

var sectionTitles = map[Section]string{
	SectionCustomers:    "Customers Behavior",
	SectionProducts:     "Products Performance",
	SectionTemporal:     "Temporal Patterns",
	SectionLocation:     "Location-Based Insights",
	SectionPayments:     "Payment Trends",
	SectionDemographics: "Demographics Analysis",
}

// Title returns the human readable selector label.
func (s Section) Title() string {
	return sectionTitles[s]
}

// Valid reports whether s is a known section.
func (s Section) Valid() bool {
	_, ok := sectionTitles[s]
	return ok
}

// Table is a finished, read-only aggregate view in display form.
type Table struct {
	Name    string     `json:"name"`
	Title   string     `json:"title"`
	Section Section    `json:"section"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	// Notes carries scalar findings such as the peak season.
	Notes map[string]string `json:"notes,omitempty"`
}

// ChartKind is the presentation hint for a chart.
type ChartKind string

const (
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
	ChartPie  ChartKind = "pie"

	// ChartHeatmap series are matrix rows; Labels are the column keys.
	ChartHeatmap ChartKind = "heatmap"
)

// Chart is a presentation-only series derived from a finished table.
type Chart struct {
	Title  string        `json:"title"`
	Kind   ChartKind     `json:"kind"`
	Source string        `json:"source"`
	Series []ChartSeries `json:"series"`
}

// ChartSeries is one labelled line, or the single series of a bar/pie chart.
type ChartSeries struct {
	Name   string    `json:"name,omitempty"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}
