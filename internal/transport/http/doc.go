// Package http implements the HTTP handlers of the analytics viewer. The
// handlers are a thin layer over the services package: they parse the
// request, call the service and format the response.
//
// # Routes
//
//	GET  /                      selector page (html/template)
//	GET  /api/sections          every section with its views and availability
//	GET  /api/sections/{id}     tables and chart series of one section
//	GET  /api/views/{view}      tables of a single view
//	GET  /api/quality           quality report of the latest run
//	GET  /api/run               metadata of the latest run
//	GET  /api/selection         currently selected section and view
//	PUT  /api/selection         change the selection
//	GET  /api/health[/ready|/live|/stats|/detailed]
//	GET  /api/version
//	GET  /metrics               Prometheus exposition
//
// Handlers only read published snapshots. Nothing here starts a pipeline
// run.
//
// # Error Handling
//
// All errors are rendered as RFC 7807 problem details by
// errors.ErrorHandler:
//
//	{
//	    "type": "/errors/analysis/not-available",
//	    "title": "Service Unavailable",
//	    "status": 503,
//	    "detail": "the pipeline has not finished a run yet",
//	    "instance": "/api/sections/payment-trends",
//	    "trace_id": "..."
//	}
//
// # Testing
//
// Handlers are tested with httptest against testify mocks of
// ViewerServiceInterface and SelectionServiceInterface.
package http
