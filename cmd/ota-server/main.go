// Command ota-server serves firmware images to devices.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/Goden-Gun/ota-server/pkg/bootstrap"
	"github.com/Goden-Gun/ota-server/pkg/codes"
	"github.com/Goden-Gun/ota-server/pkg/config"
	"github.com/Goden-Gun/ota-server/pkg/firmware"
	"github.com/Goden-Gun/ota-server/pkg/logger"
	"github.com/Goden-Gun/ota-server/pkg/router"
	"github.com/Goden-Gun/ota-server/pkg/service"
	"github.com/Goden-Gun/ota-server/pkg/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

// run serves until ctx is cancelled and returns the process exit code.
func run(ctx context.Context) int {
	cfg, err := config.Load()
	if err != nil {
		err = codes.Wrap(codes.ErrConfig, err)
		logger.WithError(err).Error("load config")
		return codes.ExitCode(err)
	}
	if cfg.App.Env == "prod" || cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	tel, err := bootstrap.InitTelemetry(ctx, cfg, version.Version)
	if err != nil {
		logger.WithError(err).Error("init telemetry")
		return codes.ExitCode(err)
	}
	// Flush whatever the exporters still hold once serving ends.
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.App.ShutdownTimeout.Duration())
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Named(logger.SourceTelemetry).WithError(err).Warn("telemetry shutdown")
		}
	}()

	opts := router.Options{
		Version:          version.Version,
		Firmware:         firmware.FromConfig(cfg.Firmware),
		FirmwareFilename: cfg.Firmware.Filename,
		EventTopic:       cfg.Kafka.Topic,
		MetricsPath:      cfg.Metrics.Path,
	}
	if cfg.Metrics.Enabled {
		opts.Metrics = router.NewMetrics()
	}

	events, err := bootstrap.InitKafka(cfg.Kafka)
	if err != nil {
		// events are best effort; serve without them
		logger.Named(logger.SourceEvents).WithError(err).Warn("kafka disabled")
	}
	if events != nil {
		defer events.Close()
		if opts.Metrics != nil {
			events.SetPublishObserver(opts.Metrics)
		}
		opts.Events = events
	}

	svc := service.New(service.Options{
		Handler:         router.New(opts),
		DefaultPort:     cfg.App.Port,
		ShutdownTimeout: cfg.App.ShutdownTimeout.Duration(),
	})
	if err := svc.Run(ctx); err != nil {
		if !codes.Has(err, codes.ErrListenerBind) {
			logger.Named(logger.SourceService).WithError(err).Error("server stopped")
		}
		return codes.ExitCode(err)
	}
	logger.Named(logger.SourceService).Info("server stopped")
	return codes.ExitOK
}
