package bootstrap

import (
	"context"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	_ "google.golang.org/grpc/encoding/gzip"

	"github.com/Goden-Gun/ota-server/pkg/codes"
	"github.com/Goden-Gun/ota-server/pkg/config"
)

// ShutdownFunc 关闭函数类型
type ShutdownFunc func(context.Context) error

// BuildTraceProvider 初始化 OpenTelemetry 分布式追踪，并设置为全局 TracerProvider
//
// Spans are exported synchronously, one export per finished span.
func BuildTraceProvider(ctx context.Context, cfg config.TracingConfig, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	var (
		exporter sdktrace.SpanExporter
		err      error
	)

	switch strings.ToLower(cfg.Exporter) {
	case "disabled":
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "otlp", "otlp-grpc", "":
		exporter, err = newOTLPTraceExporter(ctx, cfg)
	default:
		return nil, codes.Errorf(codes.ErrExporterConfig, "unknown trace exporter %q", cfg.Exporter)
	}
	if err != nil {
		return nil, exporterError(err)
	}

	ratio := cfg.SampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithSyncer(exporter))
	}

	provider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return provider, nil
}

func newOTLPTraceExporter(ctx context.Context, cfg config.TracingConfig) (sdktrace.SpanExporter, error) {
	endpoint, err := parseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	compressor, err := compressionDialOption(cfg.Compression)
	if err != nil {
		return nil, err
	}

	clientOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpointURL(endpoint.String())}
	if compressor != nil {
		clientOpts = append(clientOpts, otlptracegrpc.WithDialOption(compressor))
	}
	if len(cfg.Headers) > 0 {
		clientOpts = append(clientOpts, otlptracegrpc.WithHeaders(cfg.Headers))
	}
	return otlptracegrpc.New(ctx, clientOpts...)
}

// exporterError tags err as an exporter configuration failure once.
func exporterError(err error) error {
	if codes.Has(err, codes.ErrExporterConfig) {
		return err
	}
	return codes.Wrap(codes.ErrExporterConfig, err)
}

// parseEndpoint accepts http(s)://host[:port] collector URLs. http implies
// a plaintext connection.
func parseEndpoint(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, codes.Errorf(codes.ErrExporterConfig, "endpoint is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, codes.Errorf(codes.ErrExporterConfig, "endpoint %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, codes.Errorf(codes.ErrExporterConfig, "endpoint %q: scheme must be http or https", raw)
	}
	if u.Hostname() == "" {
		return nil, codes.Errorf(codes.ErrExporterConfig, "endpoint %q: missing host", raw)
	}
	return u, nil
}

// compressionDialOption selects the gRPC compressor for OTLP export calls.
func compressionDialOption(name string) (grpc.DialOption, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return nil, nil
	case ZstdName, "gzip":
		return grpc.WithDefaultCallOptions(grpc.UseCompressor(strings.ToLower(name))), nil
	default:
		return nil, codes.Errorf(codes.ErrExporterConfig, "unsupported compression %q", name)
	}
}
