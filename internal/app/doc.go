// Package app wires the retail analytics pipeline and its viewer together.
//
// # Initialization Flow
//
//	1. Resolve export paths and create their directories
//	2. Initialize OpenTelemetry and the business metrics
//	3. Create the analysis, selection, viewer and health services
//	4. Connect selection changes and published snapshots to the websocket feed
//	5. Build the chi router and the HTTP server
//
// Nothing runs until Analyze or Serve is called. Analyze runs the pipeline
// once and returns. Serve runs it, starts the feed and the server, and keeps
// re-running on input changes when watching is enabled. Cancelling the
// context passed to Serve shuts everything down gracefully.
//
// # Middleware Order
//
//	RequestID -> RealIP -> [/ws, /metrics] -> OTel -> Logger -> Recoverer ->
//	SecurityHeaders -> CORS -> RateLimit -> handlers
package app
