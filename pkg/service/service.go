// Package service binds the listener and serves the router until the
// process is told to stop.
package service

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/Goden-Gun/ota-server/pkg/codes"
	"github.com/Goden-Gun/ota-server/pkg/filter"
	"github.com/Goden-Gun/ota-server/pkg/logger"
)

// PortEnv overrides the configured port.
const PortEnv = "PORT"

// BindHost is the address every listener binds on.
const BindHost = "0.0.0.0"

// State is the bootstrap progress.
type State int32

const (
	StateStart State = iota
	StateResolvePort
	StateBindListener
	StateServing
	StateBindFailed
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateResolvePort:
		return "resolve_port"
	case StateBindListener:
		return "bind_listener"
	case StateServing:
		return "serving"
	case StateBindFailed:
		return "bind_failed"
	case StateStopped:
		return "stopped"
	default:
		return "unknown(" + strconv.Itoa(int(s)) + ")"
	}
}

// Options configures a Service.
type Options struct {
	Handler         http.Handler
	DefaultPort     int
	ShutdownTimeout time.Duration

	// Getenv and Listen default to os.Getenv and net.Listen.
	Getenv func(string) string
	Listen func(network, address string) (net.Listener, error)
}

// Service runs the HTTP server.
type Service struct {
	opts  Options
	state atomic.Int32
	addr  atomic.Value // net.Addr once bound
}

// New returns a Service in StateStart.
func New(opts Options) *Service {
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.Listen == nil {
		opts.Listen = net.Listen
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.Handler == nil {
		opts.Handler = http.NotFoundHandler()
	}
	return &Service{opts: opts}
}

// State reports the current bootstrap state.
func (s *Service) State() State { return State(s.state.Load()) }

// Addr returns the bound address, or nil before Serving.
func (s *Service) Addr() net.Addr {
	addr, _ := s.addr.Load().(net.Addr)
	return addr
}

func (s *Service) setState(st State) { s.state.Store(int32(st)) }

// ResolvePort returns the PORT override when set, else the default port.
func (s *Service) ResolvePort() string {
	s.setState(StateResolvePort)
	entry := logger.Named(logger.SourceService)
	if port := s.opts.Getenv(PortEnv); port != "" {
		entry.WithField("port", port).Info("using PORT from environment")
		return port
	}
	port := strconv.Itoa(s.opts.DefaultPort)
	entry.WithField("port", port).Warn("PORT not set, falling back to default port")
	return port
}

// Run resolves the port, binds and serves until ctx is cancelled. A bind
// failure is logged and returned as a LISTENER_BIND error.
func (s *Service) Run(ctx context.Context) error {
	s.setState(StateStart)
	port := s.ResolvePort()

	s.setState(StateBindListener)
	entry := logger.Named(logger.SourceService)
	address := net.JoinHostPort(BindHost, port)
	ln, err := s.opts.Listen("tcp", address)
	if err != nil {
		s.setState(StateBindFailed)
		entry.WithError(err).WithField("address", address).Error("failed to bind listener")
		return codes.Errorf(codes.ErrListenerBind, "bind %s: %w", address, err)
	}
	s.addr.Store(ln.Addr())
	s.setState(StateServing)
	entry.WithField("address", ln.Addr().String()).Info("listening")

	return s.serve(ctx, ln)
}

func (s *Service) serve(ctx context.Context, ln net.Listener) error {
	errWriter := logger.Named(filter.SourceHTTP).WriterLevel(logger.WarnLevel)
	defer errWriter.Close()

	srv := &http.Server{
		Handler:           s.opts.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          log.New(errWriter, "", 0),
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	select {
	case err := <-serveErr:
		s.setState(StateStopped)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Named(logger.SourceService).Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	<-serveErr
	s.setState(StateStopped)
	return err
}
