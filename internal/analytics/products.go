package analytics

import "retailpulse/pkg/contracts/domain"

// ProductSales is the volume and revenue of one product.
type ProductSales struct {
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	TotalSpent  float64 `json:"total_spent"`
}

// TopSellingProducts sums Quantity and Total_Spent per product, highest
// revenue first.
func TopSellingProducts(ds *domain.Dataset) []ProductSales {
	groups := groupBy(ds, byString(productName), lessString)
	out := make([]ProductSales, len(groups))
	for i, g := range groups {
		out[i] = ProductSales{
			ProductName: g.key,
			Quantity:    sumOf(g.members, quantity),
			TotalSpent:  sumOf(g.members, totalSpent),
		}
	}
	sortDesc(out, func(p ProductSales) float64 { return p.TotalSpent })
	return out
}

// CategoryCount is the number of line items sold in one category.
type CategoryCount struct {
	Category  string `json:"category"`
	LineItems int    `json:"line_items"`
}

// PopularCategories counts line items per product category in category order.
func PopularCategories(ds *domain.Dataset) []CategoryCount {
	groups := groupBy(ds, byString(productCategory), lessString)
	out := make([]CategoryCount, len(groups))
	for i, g := range groups {
		out[i] = CategoryCount{Category: g.key, LineItems: len(g.members)}
	}
	return out
}

// CategoryRevenue sums Total_Spent per product category in category order.
func CategoryRevenue(ds *domain.Dataset) []Revenue {
	return revenueBy(ds, productCategory)
}

// ProductProfit is one row of the profitability ranking.
type ProductProfit struct {
	Rank        int     `json:"rank"`
	ProductName string  `json:"product_name"`
	Profit      float64 `json:"profit"`
}

// ProductProfitability sums per-unit profit per product, most profitable
// first, and numbers the rows 1..n in that order.
func ProductProfitability(ds *domain.Dataset) []ProductProfit {
	groups := groupBy(ds, byString(productName), lessString)
	out := make([]ProductProfit, len(groups))
	for i, g := range groups {
		out[i] = ProductProfit{ProductName: g.key, Profit: sumOf(g.members, profit)}
	}
	sortDesc(out, func(p ProductProfit) float64 { return p.Profit })
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
