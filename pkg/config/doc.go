// Package config loads the OTA server configuration.
//
// Sources, later wins:
//
//   - .env (or the file named by ENV_FILE)
//   - configs/config_{APP_ENV}.yaml, optional
//   - OTA_* environment variables, e.g. OTA_TRACING_ENDPOINT, OTA_LOG_FILTER
//   - {NAME}_FILE secrets for credentials
//
// Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The listening port is not read here: PORT is resolved by the service
// bootstrap so that the override can be logged once telemetry is up.
package config
