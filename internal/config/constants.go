package config

import "time"

// Application constants
const (
	AppName    = "RetailPulse"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment override, e.g. RETAIL_SERVER_PORT.
	EnvPrefix = "RETAIL"

	// DefaultConfigFile is looked up when no explicit file is given.
	DefaultConfigFile = "retailpulse.yaml"

	// WebSocket keepalive
	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second
	WebSocketWriteWait  = 10 * time.Second

	// MaxRequestBodySize bounds JSON bodies accepted by the viewer API.
	MaxRequestBodySize = 64 << 10

	// Default export file names, relative to paths.output_dir
	DefaultEnrichedFile   = "enriched_transactions.csv"
	DefaultTopSellingFile = "top_selling_products.csv"
	DefaultOrderedFile    = "transactions_chronological.csv"
	DefaultWorkbookFile   = "retail_analysis.xlsx"
)
