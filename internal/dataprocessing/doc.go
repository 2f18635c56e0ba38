// Package dataprocessing turns raw transaction exports into normalized
// records.
//
// # Components
//
//  1. Loader: reads delimited text (.csv, .tsv, .txt) or Excel (.xlsx)
//     files, optionally matched by a doublestar glob, into a RawTable
//  2. Normalizer: validates the schema, coerces typed fields and appends the
//     derived fields (Total_Spent, profit, Year, Month, Day, Season)
//
// # Usage
//
//	loader := dataprocessing.NewLoader(logger, "")
//	raw, err := loader.Load(ctx, "data/**/*.csv")
//	if err != nil {
//	    return err
//	}
//	records, err := dataprocessing.NewNormalizer(logger).Normalize(ctx, raw)
//
// # Error Handling
//
// A missing required column yields a SchemaError naming every absent column.
// A non-empty cell that cannot be parsed as its column type yields a
// TypeCoercionError naming the column, the 1-based data row and the value.
// Both abort the pipeline. Empty cells are undefined values, never errors.
package dataprocessing
