package analytics

import (
	"strconv"

	"retailpulse/pkg/contracts/domain"
)

// View is one named aggregate computation and the section it is shown in.
type View struct {
	Name    string
	Title   string
	Section domain.Section
	Compute func(*domain.Dataset) ([]*domain.Table, error)
}

var catalog = []View{
	// Customers Behavior
	{Name: "customer_transactions", Title: "Transactions per Customer", Section: domain.SectionCustomers, Compute: customerTransactionsTable},
	{Name: "high_frequency_buyers", Title: "High-Frequency Buyers", Section: domain.SectionCustomers, Compute: highFrequencyBuyersTable},
	{Name: "spending_segments", Title: "Spending Segmentation", Section: domain.SectionCustomers, Compute: spendingSegmentsTable},
	{Name: "high_value_customers", Title: "High-Value Customers", Section: domain.SectionCustomers, Compute: highValueCustomersTable},

	// Products Performance
	{Name: "top_selling_products", Title: "Top Selling Products", Section: domain.SectionProducts, Compute: topSellingProductsTable},
	{Name: "popular_categories", Title: "Product Categories", Section: domain.SectionProducts, Compute: popularCategoriesTable},
	{Name: "category_revenue", Title: "Sales by Category", Section: domain.SectionProducts, Compute: categoryRevenueTable},
	{Name: "product_profitability", Title: "Product Profitability", Section: domain.SectionProducts, Compute: productProfitabilityTable},

	// Temporal Patterns
	{Name: "sales_trends", Title: "Sales Trends by Year and Month", Section: domain.SectionTemporal, Compute: salesTrendsTable},
	{Name: "season_sales", Title: "Sales by Season", Section: domain.SectionTemporal, Compute: seasonSalesTable},
	{Name: "product_sales_timeline", Title: "Sales Trends Over Time", Section: domain.SectionTemporal, Compute: productSalesTimelineTable},

	// Location-Based Insights
	{Name: "region_sales", Title: "Sales by Region", Section: domain.SectionLocation, Compute: regionSalesTable},
	{Name: "region_category_preference", Title: "Product Category Preferences by Region", Section: domain.SectionLocation, Compute: regionCategoryPreferenceTable},
	{Name: "region_category_matrix", Title: "Revenue by Region and Category", Section: domain.SectionLocation, Compute: regionCategoryMatrixTable},

	// Payment Trends
	{Name: "payment_method_revenue", Title: "Payment Methods Distribution", Section: domain.SectionPayments, Compute: paymentMethodRevenueTable},
	{Name: "region_payment_preference", Title: "Payment Method Performance by Region", Section: domain.SectionPayments, Compute: regionPaymentPreferenceTable},
	{Name: "payment_segment_crosstab", Title: "Payment Methods by Spending Segment", Section: domain.SectionPayments, Compute: paymentSegmentCrosstabTable},

	// Demographics Analysis
	{Name: "age_segment_spending", Title: "Spending by Age Segment", Section: domain.SectionDemographics, Compute: ageSegmentSpendingTable},
	{Name: "gender_product_revenue", Title: "Gender Preferences for Products", Section: domain.SectionDemographics, Compute: genderProductRevenueTable},
	{Name: "top_product_by_gender", Title: "Top Product by Gender", Section: domain.SectionDemographics, Compute: topProductByGenderTable},
	{Name: "gender_product_preferences", Title: "Product Preferences by Gender", Section: domain.SectionDemographics, Compute: genderProductPreferencesTables},
	{Name: "demographic_behavior", Title: "Demographic Segment Behavior", Section: domain.SectionDemographics, Compute: demographicBehaviorTable},
}

// Catalog returns every registered view in display order.
func Catalog() []View {
	out := make([]View, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a view by name.
func Lookup(name string) (View, bool) {
	for _, v := range catalog {
		if v.Name == name {
			return v, true
		}
	}
	return View{}, false
}

// ViewsIn returns the views shown in a section, in display order.
func ViewsIn(section domain.Section) []View {
	var out []View
	for _, v := range catalog {
		if v.Section == section {
			out = append(out, v)
		}
	}
	return out
}

func newTable(columns ...string) *domain.Table {
	return &domain.Table{Columns: columns, Rows: [][]string{}}
}

func one(t *domain.Table) ([]*domain.Table, error) {
	return []*domain.Table{t}, nil
}

func revenueTable(keyColumn string, rows []Revenue) *domain.Table {
	t := newTable(keyColumn, domain.ColumnTotalSpent)
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Key, FormatFloat(r.TotalSpent)})
	}
	return t
}

func preferenceTable(groupColumn, keyColumn string, rows []Preference) *domain.Table {
	t := newTable(groupColumn, keyColumn, domain.ColumnTotalSpent)
	for _, p := range rows {
		t.Rows = append(t.Rows, []string{p.Group, p.Key, FormatFloat(p.TotalSpent)})
	}
	return t
}

func customerTransactionsTable(ds *domain.Dataset) ([]*domain.Table, error) {
	t := newTable(domain.ColumnCustomerID, "Number_of_Transaction")
	for _, c := range CustomerTransactions(ds) {
		t.Rows = append(t.Rows, []string{c.CustomerID, strconv.Itoa(c.Transactions)})
	}
	return one(t)
}

func highFrequencyBuyersTable(ds *domain.Dataset) ([]*domain.Table, error) {
	buyers, mean, err := HighFrequencyBuyers(ds)
	if err != nil {
		return nil, err
	}
	t := newTable(domain.ColumnCustomerID, "Number_of_Transaction", domain.ColumnTotalSpent)
	for _, b := range buyers {
		t.Rows = append(t.Rows, []string{b.CustomerID, strconv.Itoa(b.Transactions), FormatFloat(b.TotalSpent)})
	}
	t.Notes = map[string]string{"mean_transactions": FormatFloat(mean)}
	return one(t)
}

func spendingSegmentsTable(ds *domain.Dataset) ([]*domain.Table, error) {
	t := newTable(domain.ColumnCustomerID, domain.ColumnTotalSpent, domain.ColumnSpendingSegment)
	for _, s := range SpendingSegments(ds) {
		t.Rows = append(t.Rows, []string{s.CustomerID, FormatFloat(s.TotalSpent), string(s.SpendingSegment)})
	}
	return one(t)
}

func highValueCustomersTable(ds *domain.Dataset) ([]*domain.Table, error) {
	customers, contribution, err := HighValueCustomers(ds)
	if err != nil {
		return nil, err
	}
	t := revenueTable(domain.ColumnCustomerID, customers)
	t.Notes = map[string]string{"revenue_contribution": formatPercent(contribution)}
	return one(t)
}

func topSellingProductsTable(ds *domain.Dataset) ([]*domain.Table, error) {
	return one(TopSellingTable(TopSellingProducts(ds)))
}

// TopSellingTable renders the top selling products in export form.
func TopSellingTable(products []ProductSales) *domain.Table {
	t := newTable(domain.ColumnProductName, domain.ColumnQuantity, domain.ColumnTotalSpent)
	for _, p := range products {
		t.Rows = append(t.Rows, []string{p.ProductName, FormatFloat(p.Quantity), FormatFloat(p.TotalSpent)})
	}
	return t
}

func popularCategoriesTable(ds *domain.Dataset) ([]*domain.Table, error) {
	t := newTable(domain.ColumnProductCategory, "Total_products")
	for _, c := range PopularCategories(ds) {
		t.Rows = append(t.Rows, []string{c.Category, strconv.Itoa(c.LineItems)})
	}
	return one(t)
}

func categoryRevenueTable(ds *domain.Dataset) ([]*domain.Table, error) {
	return one(revenueTable(domain.ColumnProductCategory, CategoryRevenue(ds)))
}

func productProfitabilityTable(ds *domain.Dataset) ([]*domain.Table, error) {
	t := newTable("Rank", domain.ColumnProductName, domain.ColumnProfit)
	for _, p := range ProductProfitability(ds) {
		t.Rows = append(t.Rows, []string{strconv.Itoa(p.Rank), p.ProductName, FormatFloat(p.Profit)})
	}
	return one(t)
}

func salesTrendsTable(ds *domain.Dataset) ([]*domain.Table, error) {
	periods, ext, err := SalesTrends(ds)
	if err != nil {
		return nil, err
	}
	t := newTable(domain.ColumnYear, domain.ColumnMonth, domain.ColumnTotalSpent)
	for _, p := range periods {
		t.Rows = append(t.Rows, []string{strconv.Itoa(p.Year), strconv.Itoa(p.Month), FormatFloat(p.TotalSpent)})
	}
	t.Notes = map[string]string{
		"peak_period": formatPeriod(ext.Peak.Year, ext.Peak.Month),
		"low_period":  formatPeriod(ext.Low.Year, ext.Low.Month),
	}
	return one(t)
}

func seasonSalesTable(ds *domain.Dataset) ([]*domain.Table, error) {
	seasons, ext, err := SeasonSales(ds)
	if err != nil {
		return nil, err
	}
	t := revenueTable(domain.ColumnSeason, seasons)
	t.Notes = map[string]string{"peak_season": ext.Peak.Key, "low_season": ext.Low.Key}
	return one(t)
}

func productSalesTimelineTable(ds *domain.Dataset) ([]*domain.Table, error) {
	t := newTable(domain.ColumnProductName, domain.ColumnTransactionDate, domain.ColumnTotalSpent)
	for _, s := range ProductSalesTimeline(ds) {
		t.Rows = append(t.Rows, []string{s.ProductName, FormatDate(s.Date), FormatFloat(s.TotalSpent)})
	}
	return one(t)
}

func regionSalesTable(ds *domain.Dataset) ([]*domain.Table, error) {
	return one(revenueTable(domain.ColumnRegion, RegionSales(ds)))
}

func regionCategoryPreferenceTable(ds *domain.Dataset) ([]*domain.Table, error) {
	prefs, err := RegionCategoryPreference(ds)
	if err != nil {
		return nil, err
	}
	return one(preferenceTable(domain.ColumnRegion, domain.ColumnProductCategory, prefs))
}

func regionCategoryMatrixTable(ds *domain.Dataset) ([]*domain.Table, error) {
	m := RegionCategoryMatrix(ds)
	t := newTable(append([]string{domain.ColumnRegion}, m.Columns...)...)
	for i, r := range m.Rows {
		row := []string{r}
		for _, v := range m.Values[i] {
			row = append(row, FormatFloat(v))
		}
		t.Rows = append(t.Rows, row)
	}
	return one(t)
}

func paymentMethodRevenueTable(ds *domain.Dataset) ([]*domain.Table, error) {
	methods, mostCommon := PaymentMethodRevenue(ds)
	t := revenueTable(domain.ColumnPaymentMethod, methods)
	t.Notes = map[string]string{"most_common": mostCommon}
	return one(t)
}

func regionPaymentPreferenceTable(ds *domain.Dataset) ([]*domain.Table, error) {
	prefs, err := RegionPaymentPreference(ds)
	if err != nil {
		return nil, err
	}
	return one(preferenceTable(domain.ColumnRegion, domain.ColumnPaymentMethod, prefs))
}

func paymentSegmentCrosstabTable(ds *domain.Dataset) ([]*domain.Table, error) {
	c := PaymentSegmentCrosstab(ds)
	columns := []string{domain.ColumnPaymentMethod}
	for _, s := range c.Columns {
		columns = append(columns, string(s))
	}
	t := newTable(columns...)
	for i, method := range c.Rows {
		row := []string{method}
		for _, n := range c.Counts[i] {
			row = append(row, strconv.Itoa(n))
		}
		t.Rows = append(t.Rows, row)
	}
	return one(t)
}

func ageSegmentSpendingTable(ds *domain.Dataset) ([]*domain.Table, error) {
	return one(revenueTable(domain.ColumnAgeSegment, AgeSegmentSpending(ds)))
}

func genderProductRevenueTable(ds *domain.Dataset) ([]*domain.Table, error) {
	return one(preferenceTable(domain.ColumnGender, domain.ColumnProductName, GenderProductRevenue(ds)))
}

func topProductByGenderTable(ds *domain.Dataset) ([]*domain.Table, error) {
	prefs, err := TopProductByGender(ds)
	if err != nil {
		return nil, err
	}
	return one(preferenceTable(domain.ColumnGender, domain.ColumnProductName, prefs))
}

func genderProductPreferencesTables(ds *domain.Dataset) ([]*domain.Table, error) {
	genders, byGender := GenderProductPreferences(ds)
	tables := make([]*domain.Table, 0, len(genders))
	for _, g := range genders {
		t := newTable(domain.ColumnProductName, domain.ColumnTotalSpent)
		for _, p := range byGender[g] {
			t.Rows = append(t.Rows, []string{p.Key, FormatFloat(p.TotalSpent)})
		}
		t.Title = "Product Preferences (" + g + ")"
		tables = append(tables, t)
	}
	return tables, nil
}

func demographicBehaviorTable(ds *domain.Dataset) ([]*domain.Table, error) {
	rows, err := DemographicBehavior(ds)
	if err != nil {
		return nil, err
	}
	t := newTable(domain.ColumnDemographicsSegment, "Avg_Spent", "Median_Spent", domain.ColumnTotalSpent, "Number_Of_Customer")
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Segment,
			FormatFloat(r.AvgSpent),
			FormatFloat(r.MedianSpent),
			FormatFloat(r.TotalSpent),
			strconv.Itoa(r.Transactions),
		})
	}
	return one(t)
}
