package recommendation

import (
	"context"
	"log/slog"

	"retailpulse/pkg/contracts/domain"
)

// Engine applies a catalog to segmented datasets.
type Engine struct {
	catalog *Catalog
	logger  *slog.Logger
}

// NewEngine creates an engine over catalog. A nil catalog uses the defaults.
func NewEngine(catalog *Catalog, logger *slog.Logger) *Engine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		catalog: catalog,
		logger:  logger.With(slog.String("component", "recommendation")),
	}
}

// Apply returns a copy of ds with suggestions set. High spenders get the
// up-sell for their product and everyone else the cross-sell; a product
// missing from the table gets nothing. At most one field is set per record.
func (e *Engine) Apply(ctx context.Context, ds *domain.Dataset) *domain.Dataset {
	records := ds.Records()
	var upSold, crossSold int
	for i := range records {
		Recommend(e.catalog, &records[i])
		if records[i].UpSell != "" {
			upSold++
		}
		if records[i].CrossSell != "" {
			crossSold++
		}
	}

	e.logger.InfoContext(ctx, "recommendations applied",
		slog.Int("records", len(records)),
		slog.Int("up_sell", upSold),
		slog.Int("cross_sell", crossSold))

	return domain.NewDataset(records)
}

// Recommend sets the suggestion fields of one record from its segment.
func Recommend(c *Catalog, t *domain.Transaction) {
	t.UpSell, t.CrossSell = "", ""
	switch t.SpendingSegment {
	case domain.SpendingHigh:
		if s, ok := c.UpSell(t.ProductName); ok {
			t.UpSell = s
		}
	case domain.SpendingMedium, domain.SpendingLow:
		if s, ok := c.CrossSell(t.ProductName); ok {
			t.CrossSell = s
		}
	}
}
