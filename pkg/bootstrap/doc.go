// Package bootstrap builds the OTA server's observability pipeline.
//
// It owns the only process-wide registration point, the logrus standard
// logger, and installs into it a Pipeline of layers:
//
//	otel-logs  bridge into the OpenTelemetry log provider  filter: BridgeDirectives
//	console    text/JSON to stdout (+ rotated file)       filter: ConsoleDirectives
//
// Alongside it sets the global OpenTelemetry tracer and log providers, both
// exporting synchronously (one export per span or record).
//
// Example usage:
//
//	func main() {
//	    cfg, err := config.Load()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    tel, err := bootstrap.InitTelemetry(ctx, cfg, version.Version)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer tel.Shutdown(ctx)
//
//	    events, err := bootstrap.InitKafka(cfg.Kafka)
//	    ...
//	}
package bootstrap
