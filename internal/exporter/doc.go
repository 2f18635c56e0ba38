// Package exporter persists the derived tables of a pipeline run.
//
// CSVWriter writes delimited text with an optional UTF-8 BOM for Excel
// compatibility. Exporter writes the enriched transactions, the top selling
// products and the chronologically ordered transactions as CSV, and an
// optional workbook with one sheet per view plus a quality summary.
//
// Example usage:
//
//	exp := exporter.NewExporter(cfg.ResolvePaths(), cfg.Analytics.WriteBOM, logger)
//	files, err := exp.Export(ctx, exporter.Bundle{
//		Enriched: dataset,
//		Ordered:  checks.Chronology.Ordered,
//		Report:   report,
//		Quality:  checks,
//	})
package exporter
