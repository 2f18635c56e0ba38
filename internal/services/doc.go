// Package services implements the application layer between the pipeline
// packages and the viewer.
//
// # Available Services
//
//	- AnalysisService: runs load, normalize, segment, recommend, then the
//	  aggregate views and quality checks concurrently, exports the derived
//	  tables and publishes an immutable Snapshot
//	- InputWatcher: debounced fsnotify watcher that triggers full re-runs
//	- SelectionService: the process-wide currently selected section and view
//	- ViewerService: read-only queries over the latest snapshot
//	- HealthService: health, readiness and liveness checks
//
// # Snapshots
//
// A run never patches a published snapshot. Readers call Latest and keep
// working with the pointer they got; a concurrent run swaps in a new one:
//
//	snap, ok := analysis.Latest()
//	if !ok {
//	    return ErrNoSnapshot
//	}
//	tables, _ := snap.Report.View("region_sales")
package services
