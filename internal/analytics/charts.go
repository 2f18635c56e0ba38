package analytics

import "retailpulse/pkg/contracts/domain"

// chartSpec describes how to draw a chart from a finished view table.
type chartSpec struct {
	source string
	title  string
	kind   domain.ChartKind
	label  int // label column
	value  int // value column
	// split, when >= 0, is the column whose values become separate series
	split int
}

var chartSpecs = []chartSpec{
	{source: "top_selling_products", title: "Product Sales", kind: domain.ChartBar, label: 0, value: 2, split: -1},
	{source: "category_revenue", title: "Sales by Category", kind: domain.ChartBar, label: 0, value: 1, split: -1},
	{source: "product_sales_timeline", title: "Sales Trends Over Time", kind: domain.ChartLine, label: 1, value: 2, split: 0},
	{source: "region_sales", title: "Sales by Region", kind: domain.ChartBar, label: 0, value: 1, split: -1},
	{source: "payment_method_revenue", title: "Payment Methods Distribution", kind: domain.ChartPie, label: 0, value: 1, split: -1},
	{source: "age_segment_spending", title: "Spending by Age Segment", kind: domain.ChartBar, label: 0, value: 1, split: -1},
}

// Charts derives the presentation charts for a section from the report's
// tables. Charts carry no values that the tables do not already hold.
func Charts(r *Report, section domain.Section) []domain.Chart {
	var out []domain.Chart
	for _, v := range ViewsIn(section) {
		tables, ok := r.View(v.Name)
		if !ok || len(tables) == 0 {
			continue
		}
		for _, spec := range chartSpecs {
			if spec.source == v.Name {
				out = append(out, spec.build(tables[0]))
			}
		}
		if v.Name == "region_category_matrix" {
			out = append(out, heatmap(tables[0], "Revenue by Region and Category"))
		}
	}
	return out
}

func (s chartSpec) build(t *domain.Table) domain.Chart {
	chart := domain.Chart{Title: s.title, Kind: s.kind, Source: s.source}
	if s.split < 0 {
		series := domain.ChartSeries{}
		for _, row := range t.Rows {
			series.Labels = append(series.Labels, row[s.label])
			series.Values = append(series.Values, ParseFloat(row[s.value]))
		}
		chart.Series = []domain.ChartSeries{series}
		return chart
	}

	index := make(map[string]int)
	for _, row := range t.Rows {
		name := row[s.split]
		i, ok := index[name]
		if !ok {
			i = len(chart.Series)
			index[name] = i
			chart.Series = append(chart.Series, domain.ChartSeries{Name: name})
		}
		chart.Series[i].Labels = append(chart.Series[i].Labels, row[s.label])
		chart.Series[i].Values = append(chart.Series[i].Values, ParseFloat(row[s.value]))
	}
	return chart
}

// heatmap turns a matrix table into one series per row.
func heatmap(t *domain.Table, title string) domain.Chart {
	chart := domain.Chart{Title: title, Kind: domain.ChartHeatmap, Source: t.Name}
	if len(t.Columns) < 2 {
		return chart
	}
	labels := t.Columns[1:]
	for _, row := range t.Rows {
		series := domain.ChartSeries{Name: row[0], Labels: labels}
		for _, cell := range row[1:] {
			series.Values = append(series.Values, ParseFloat(cell))
		}
		chart.Series = append(chart.Series, series)
	}
	return chart
}
