package bootstrap

import (
	"context"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log/global"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/Goden-Gun/ota-server/pkg/codes"
	"github.com/Goden-Gun/ota-server/pkg/config"
	"github.com/Goden-Gun/ota-server/pkg/filter"
	"github.com/Goden-Gun/ota-server/pkg/logger"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestNewResource(t *testing.T) {
	res := NewResource("ota-server", "1.0.0", map[string]string{"deployment.environment": "dev"})

	got := map[attribute.Key]string{}
	for _, kv := range res.Attributes() {
		got[kv.Key] = kv.Value.Emit()
	}
	assert.Equal(t, "ota-server", got[semconv.ServiceNameKey])
	assert.Equal(t, "1.0.0", got[semconv.ServiceVersionKey])
	assert.Equal(t, "dev", got["deployment.environment"])
	assert.Equal(t, semconv.SchemaURL, res.SchemaURL())

	assert.Equal(t, "unknown-service", NewResource("", "", nil).Attributes()[0].Value.AsString())
}

func TestBuildTraceProviderRejectsBadEndpoints(t *testing.T) {
	ctx := testContext(t)
	res := NewResource("ota-server", "", nil)

	for _, endpoint := range []string{"localhost:4317", "://bad", "", "ftp://collector:4317", "http://:4317"} {
		_, err := BuildTraceProvider(ctx, config.TracingConfig{Exporter: "otlp", Endpoint: endpoint}, res)
		require.Error(t, err, endpoint)
		assert.True(t, codes.Has(err, codes.ErrExporterConfig), endpoint)
		assert.Equal(t, codes.KindFatal, codes.KindOf(err))
	}
}

func TestBuildTraceProviderOptions(t *testing.T) {
	ctx := testContext(t)
	res := NewResource("ota-server", "", nil)

	_, err := BuildTraceProvider(ctx, config.TracingConfig{Exporter: "jaeger"}, res)
	assert.True(t, codes.Has(err, codes.ErrExporterConfig))

	_, err = BuildTraceProvider(ctx, config.TracingConfig{
		Exporter: "otlp", Endpoint: config.DefaultOTLPEndpoint, Compression: "brotli",
	}, res)
	assert.True(t, codes.Has(err, codes.ErrExporterConfig))

	for _, compression := range []string{"zstd", "gzip", "none"} {
		tp, err := BuildTraceProvider(ctx, config.TracingConfig{
			Exporter:    "otlp",
			Endpoint:    config.DefaultOTLPEndpoint,
			Compression: compression,
			Headers:     map[string]string{"x-tenant": "ota"},
		}, res)
		require.NoError(t, err, compression)
		assert.Same(t, tp, otel.GetTracerProvider())
		require.NoError(t, tp.Shutdown(ctx))
	}

	tp, err := BuildTraceProvider(ctx, config.TracingConfig{Exporter: "disabled"}, res)
	require.NoError(t, err)
	_, span := tp.Tracer("test").Start(ctx, "noop")
	span.End()
	require.NoError(t, tp.Shutdown(ctx))
}

func TestBuildLogProvider(t *testing.T) {
	ctx := testContext(t)
	res := NewResource("ota-server", "", nil)

	lp, err := BuildLogProvider(ctx, config.LogExportConfig{Exporter: "stdout"}, res)
	require.NoError(t, err)
	assert.Same(t, lp, global.GetLoggerProvider())
	require.NoError(t, lp.Shutdown(ctx))

	_, err = BuildLogProvider(ctx, config.LogExportConfig{Exporter: "otlp", Endpoint: "collector"}, res)
	assert.True(t, codes.Has(err, codes.ErrExporterConfig))

	_, err = BuildLogProvider(ctx, config.LogExportConfig{Exporter: "syslog"}, res)
	assert.True(t, codes.Has(err, codes.ErrExporterConfig))

	lp, err = BuildLogProvider(ctx, config.LogExportConfig{
		Exporter: "otlp", Endpoint: config.DefaultOTLPEndpoint, Compression: "zstd",
	}, res)
	require.NoError(t, err)
	require.NoError(t, lp.Shutdown(ctx))
}

func testConfig() *config.Config {
	cfg := &config.Config{
		App:     config.AppConfig{Name: "ota-server"},
		Logs:    config.LogExportConfig{Exporter: "stdout"},
		Tracing: config.TracingConfig{Exporter: "disabled"},
	}
	return cfg
}

func TestInitTelemetryInstallsOnce(t *testing.T) {
	resetInstall(t)
	ctx := testContext(t)

	tel, err := InitTelemetry(ctx, testConfig(), "1.0.0")
	require.NoError(t, err)
	require.NotNil(t, tel)
	assert.True(t, Installed())
	require.Len(t, tel.Pipeline.Layers(), 2)
	assert.NotNil(t, tel.Tracer("test"))

	require.NotPanics(t, func() {
		logger.Named(logger.SourceService).Info("logged without a context")
	})

	_, err = InitTelemetry(ctx, testConfig(), "1.0.0")
	require.Error(t, err)
	assert.True(t, codes.Has(err, codes.ErrSubscriberInstall))
	assert.True(t, Installed())

	// the rejected call leaves the running providers and pipeline in place
	assert.Same(t, tel.TracerProvider, otel.GetTracerProvider())
	assert.Same(t, tel.LoggerProvider, global.GetLoggerProvider())
	hooks := log.StandardLogger().Hooks[log.InfoLevel]
	require.Len(t, hooks, 1)
	assert.Same(t, tel.Pipeline, hooks[0])

	require.NoError(t, tel.Shutdown(ctx))
	require.NoError(t, tel.Shutdown(ctx))
}

func TestInitTelemetryRejectsBadConfig(t *testing.T) {
	resetInstall(t)
	ctx := testContext(t)

	cfg := testConfig()
	cfg.Log.Filter = "net/http=loud"
	_, err := InitTelemetry(ctx, cfg, "")
	assert.True(t, codes.Has(err, codes.ErrConfig))

	cfg = testConfig()
	cfg.Tracing = config.TracingConfig{Exporter: "otlp", Endpoint: "localhost:4317"}
	_, err = InitTelemetry(ctx, cfg, "")
	assert.True(t, codes.Has(err, codes.ErrExporterConfig))
	assert.False(t, Installed())
}

func TestShutdownNil(t *testing.T) {
	var tel *Telemetry
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestInstalledPipelineExportsEachEventOnce(t *testing.T) {
	resetInstall(t)
	ctx := testContext(t)

	exp := &memoryExporter{}
	lp := newLogProvider(exp, NewResource("ota-server", "", nil))
	defer lp.Shutdown(ctx)

	console := &recordingSink{}
	p := NewPipeline(ComposeLayers(lp, filter.BridgeDefaults(), console, filter.ConsoleDefaults())...)
	require.NoError(t, Install(p, false))

	logger.Named(logger.SourceFirmware).Info("image served")
	logger.WithTrace(ctx).Warn("with context")
	logger.Named(filter.SourceGRPC).Error("transport noise")
	logger.Named(filter.SourceOTel).Debug("sdk diagnostics")

	assert.Equal(t, []string{"image served", "with context"}, exp.bodies())
	assert.Equal(t, []string{"image served", "with context", "sdk diagnostics"}, console.messages())
}
