package bootstrap

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/Goden-Gun/ota-server/pkg/codes"
	"github.com/Goden-Gun/ota-server/pkg/config"
)

// BuildLogProvider creates the OpenTelemetry log provider fed by the bridge
// layer and sets it as the global log provider. Records are exported
// synchronously through a simple processor.
func BuildLogProvider(ctx context.Context, cfg config.LogExportConfig, res *resource.Resource) (*sdklog.LoggerProvider, error) {
	var (
		exporter sdklog.Exporter
		err      error
	)

	switch strings.ToLower(cfg.Exporter) {
	case "stdout", "":
		exporter, err = stdoutlog.New()
	case "otlp", "otlp-grpc":
		exporter, err = newOTLPLogExporter(ctx, cfg)
	default:
		return nil, codes.Errorf(codes.ErrExporterConfig, "unknown log exporter %q", cfg.Exporter)
	}
	if err != nil {
		return nil, exporterError(err)
	}

	return newLogProvider(exporter, res), nil
}

func newLogProvider(exporter sdklog.Exporter, res *resource.Resource) *sdklog.LoggerProvider {
	provider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)),
	)
	global.SetLoggerProvider(provider)
	return provider
}

func newOTLPLogExporter(ctx context.Context, cfg config.LogExportConfig) (sdklog.Exporter, error) {
	endpoint, err := parseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	compressor, err := compressionDialOption(cfg.Compression)
	if err != nil {
		return nil, err
	}

	clientOpts := []otlploggrpc.Option{otlploggrpc.WithEndpointURL(endpoint.String())}
	if compressor != nil {
		clientOpts = append(clientOpts, otlploggrpc.WithDialOption(compressor))
	}
	if len(cfg.Headers) > 0 {
		clientOpts = append(clientOpts, otlploggrpc.WithHeaders(cfg.Headers))
	}
	return otlploggrpc.New(ctx, clientOpts...)
}
