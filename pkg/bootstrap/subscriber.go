package bootstrap

import (
	"errors"
	"io"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/Goden-Gun/ota-server/pkg/codes"
)

// ErrAlreadyInstalled is returned (wrapped as SUBSCRIBER_INSTALL) by a second Install.
var ErrAlreadyInstalled = errors.New("log pipeline already installed")

// installed guards the one process-wide registration point: the logrus
// standard logger. Everything else receives the Telemetry handle explicitly.
var installed atomic.Bool

// Install makes p the only hook of the logrus standard logger. The logger's
// own output is discarded; sinks write for themselves. Install succeeds once
// per process; later calls fail without touching the installed pipeline.
func Install(p *Pipeline, reportCaller bool) error {
	if p == nil {
		return codes.Errorf(codes.ErrSubscriberInstall, "nil pipeline")
	}
	if !reserve() {
		return codes.Wrap(codes.ErrSubscriberInstall, ErrAlreadyInstalled)
	}
	install(p, reportCaller)
	return nil
}

// reserve claims the install slot. A caller that fails before installing
// must release it.
func reserve() bool {
	return installed.CompareAndSwap(false, true)
}

func release() {
	installed.Store(false)
}

func install(p *Pipeline, reportCaller bool) {
	std := log.StandardLogger()
	hooks := make(log.LevelHooks)
	hooks.Add(p)
	std.ReplaceHooks(hooks)
	std.SetOutput(io.Discard)
	std.SetLevel(p.MaxLevel())
	std.SetReportCaller(reportCaller)
}

// Installed reports whether a pipeline has been installed.
func Installed() bool {
	return installed.Load()
}
