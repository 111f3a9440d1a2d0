package bootstrap

import (
	"context"
	"errors"
	"sync"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/grpclog"

	"github.com/Goden-Gun/ota-server/pkg/codes"
	"github.com/Goden-Gun/ota-server/pkg/config"
	"github.com/Goden-Gun/ota-server/pkg/filter"
	"github.com/Goden-Gun/ota-server/pkg/logger"
)

// Telemetry is the handle returned by InitTelemetry. Components that emit
// spans take it explicitly; logging goes through pkg/logger.
type Telemetry struct {
	LoggerProvider *sdklog.LoggerProvider
	TracerProvider *sdktrace.TracerProvider
	Pipeline       *Pipeline

	shutdownOnce sync.Once
	shutdownErr  error
}

// InitTelemetry 初始化日志与追踪管线，整个进程只能调用一次
//
// The install slot is claimed first, so a second call fails before touching
// any global state. Order after that: library log redirection, filters and
// console sink, resource, log provider, trace provider, pipeline install.
// A failure at any step releases what was already built and returns a fatal
// coded error.
func InitTelemetry(ctx context.Context, cfg *config.Config, version string) (t *Telemetry, err error) {
	if !reserve() {
		return nil, codes.Wrap(codes.ErrSubscriberInstall, ErrAlreadyInstalled)
	}
	defer func() {
		if err != nil {
			release()
		}
	}()

	redirectLibraryLogs()

	logFilter, err := filter.OrDefault(cfg.Log.OTelFilter, filter.BridgeDirectives)
	if err != nil {
		return nil, codes.Errorf(codes.ErrConfig, "log.otel_filter: %w", err)
	}
	fmtFilter, err := filter.OrDefault(cfg.Log.Filter, filter.ConsoleDirectives)
	if err != nil {
		return nil, codes.Errorf(codes.ErrConfig, "log.filter: %w", err)
	}
	console, err := NewConsoleSink(cfg.Log)
	if err != nil {
		return nil, codes.Errorf(codes.ErrConfig, "log.file: %w", err)
	}

	res := NewResource(cfg.App.Name, version, cfg.Tracing.ResourceTags)

	lp, err := BuildLogProvider(ctx, cfg.Logs, res)
	if err != nil {
		return nil, err
	}
	tp, err := BuildTraceProvider(ctx, cfg.Tracing, res)
	if err != nil {
		_ = lp.Shutdown(ctx)
		return nil, err
	}

	t = &Telemetry{
		LoggerProvider: lp,
		TracerProvider: tp,
		Pipeline:       NewPipeline(ComposeLayers(lp, logFilter, console, fmtFilter)...),
	}
	install(t.Pipeline, cfg.Log.ReportCaller)

	otel.SetLogger(logger.LogrLogger(filter.SourceOTel))
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		logger.Named(filter.SourceOTel).WithError(err).Error("opentelemetry export error")
	}))

	logger.Named(logger.SourceTelemetry).WithFields(logger.Fields{
		"service":     cfg.App.Name,
		"traces":      cfg.Tracing.Exporter,
		"logs":        cfg.Logs.Exporter,
		"otel_filter": logFilter.String(),
		"filter":      fmtFilter.String(),
	}).Info("telemetry pipeline installed")

	return t, nil
}

// redirectLibraryLogs points third-party loggers at the pipeline under their
// own sources so the filters can silence them. gRPC requires this before any
// client is created.
func redirectLibraryLogs() {
	grpclog.SetLoggerV2(logger.GRPCLogger(filter.SourceGRPC))
	gin.DefaultWriter = logger.Named(filter.SourceGin).WriterLevel(log.DebugLevel)
	gin.DefaultErrorWriter = logger.Named(filter.SourceGin).WriterLevel(log.ErrorLevel)
}

// Tracer returns a named tracer from the installed provider.
func (t *Telemetry) Tracer(name string) trace.Tracer {
	return t.TracerProvider.Tracer(name)
}

// Shutdown flushes pending spans and log records and stops both providers.
// Safe to call more than once.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	t.shutdownOnce.Do(func() {
		var shutdowns []ShutdownFunc
		if t.TracerProvider != nil {
			shutdowns = append(shutdowns, t.TracerProvider.Shutdown)
		}
		if t.LoggerProvider != nil {
			shutdowns = append(shutdowns, t.LoggerProvider.Shutdown)
		}
		var errs []error
		for _, shutdown := range shutdowns {
			if err := shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		t.shutdownErr = errors.Join(errs...)
	})
	return t.shutdownErr
}
