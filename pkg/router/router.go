package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Goden-Gun/ota-server/pkg/firmware"
	"github.com/Goden-Gun/ota-server/pkg/tracing"
)

// Route paths.
const (
	PathHealth   = "/health"
	PathFirmware = "/firmware"
	PathDocs     = "/docs"
	PathOpenAPI  = "/api-docs/openapi.json"
)

// EventPublisher publishes firmware events; *kafka.Manager implements it.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Options configures the route table.
type Options struct {
	Version          string
	Firmware         firmware.Source
	FirmwareFilename string

	// Events, when set, receives a firmware.downloaded event per download.
	Events     EventPublisher
	EventTopic string

	// Metrics, when set, records request metrics and is served at MetricsPath.
	Metrics     *Metrics
	MetricsPath string
}

// New builds the HTTP handler for the OTA server.
func New(opts Options) *gin.Engine {
	if opts.Firmware == nil {
		opts.Firmware = firmware.Stub{}
	}
	if opts.FirmwareFilename == "" {
		opts.FirmwareFilename = "firmware.bin"
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}

	r := gin.New()
	r.Use(recovery(), requestID(), tracing.Middleware())
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
	}
	r.Use(accessLog())

	h := &handlers{opts: opts, doc: openAPIDocument(opts.Version)}
	r.GET(PathHealth, h.health)
	r.GET(PathFirmware, h.firmware)
	r.GET(PathOpenAPI, h.openAPI)
	r.GET(PathDocs, h.docs)
	if opts.Metrics != nil {
		r.GET(opts.MetricsPath, gin.WrapH(opts.Metrics.Handler()))
	}
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}

type handlers struct {
	opts Options
	doc  []byte
}
