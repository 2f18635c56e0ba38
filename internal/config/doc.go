// Package config loads retailpulse configuration.
//
// Values are resolved in three layers, later layers winning:
//
//  1. Default values (Default)
//  2. A YAML file (retailpulse.yaml, configs/retailpulse.yaml, or an explicit path)
//  3. Environment variables prefixed with RETAIL_
//
// Environment variables follow the nesting of the YAML document:
//
//	RETAIL_SERVER_PORT=8080
//	RETAIL_PATHS_INPUT=data/*.csv
//	RETAIL_ANALYTICS_WORKERS=8
//	RETAIL_LOGGING_LEVEL=debug
//
// The loaded configuration is validated with go-playground/validator struct
// tags before it is returned.
package config
