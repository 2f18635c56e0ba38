// Package shared holds helpers used by more than one package of the
// retailpulse codebase that do not belong to a specific pipeline stage.
//
// The testutil subpackage provides:
//
//   - a buffered slog handler for asserting on log output
//   - transaction fixtures and CSV input files for pipeline tests
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    fixtures := testutil.NewTransactionFixtures(t.TempDir())
//	    path, err := fixtures.WriteCSV("sales.csv", fixtures.SampleRows())
//	    require.NoError(t, err)
//	    ...
//	}
package shared
