// Package version holds the build version reported by /health and attached
// to telemetry resources.
package version

// Version is overridden at build time:
//
//	go build -ldflags "-X github.com/Goden-Gun/ota-server/pkg/version.Version=1.2.3"
var Version = "0.1.0"
