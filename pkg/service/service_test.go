package service

import (
	"context"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Goden-Gun/ota-server/pkg/codes"
	"github.com/Goden-Gun/ota-server/pkg/logger"
)

func captureStd(t *testing.T) *test.Hook {
	t.Helper()
	std := logrus.StandardLogger()
	prevLevel := std.GetLevel()
	std.SetLevel(logrus.DebugLevel)
	hook := test.NewGlobal()
	t.Cleanup(func() {
		std.ReplaceHooks(make(logrus.LevelHooks))
		std.SetLevel(prevLevel)
	})
	return hook
}

func envOf(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

// recordingListen binds loopback on an ephemeral port but remembers the
// address it was asked for.
type recordingListen struct {
	mu        sync.Mutex
	requested []string
}

func (r *recordingListen) listen(network, address string) (net.Listener, error) {
	r.mu.Lock()
	r.requested = append(r.requested, address)
	r.mu.Unlock()
	return net.Listen(network, "127.0.0.1:0")
}

func (r *recordingListen) addresses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.requested...)
}

func waitServing(t *testing.T, s *Service) {
	t.Helper()
	require.Eventually(t, func() bool { return s.State() == StateServing }, 2*time.Second, 5*time.Millisecond)
}

func runAsync(s *Service, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	return done
}

func TestPortFromEnvironment(t *testing.T) {
	hook := captureStd(t)
	rl := &recordingListen{}
	s := New(Options{
		DefaultPort: 3000,
		Getenv:      envOf(map[string]string{PortEnv: "8080"}),
		Listen:      rl.listen,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(s, ctx)
	waitServing(t, s)

	assert.Equal(t, []string{"0.0.0.0:8080"}, rl.addresses())
	assert.NotNil(t, s.Addr())

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, StateStopped, s.State())

	var override bool
	for _, e := range hook.AllEntries() {
		if e.Message == "using PORT from environment" {
			override = true
			assert.Equal(t, logrus.InfoLevel, e.Level)
			assert.Equal(t, logger.SourceService, logger.SourceOf(e))
		}
		assert.NotEqual(t, logrus.WarnLevel, e.Level)
	}
	assert.True(t, override)
}

func TestDefaultPortWarns(t *testing.T) {
	hook := captureStd(t)
	rl := &recordingListen{}
	s := New(Options{DefaultPort: 3000, Getenv: envOf(nil), Listen: rl.listen})

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(s, ctx)
	waitServing(t, s)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []string{"0.0.0.0:3000"}, rl.addresses())

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["port"] == "3000" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestBindFailure(t *testing.T) {
	hook := captureStd(t)

	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer occupied.Close()

	s := New(Options{
		Getenv: envOf(map[string]string{PortEnv: "1"}),
		Listen: func(network, _ string) (net.Listener, error) {
			return net.Listen(network, occupied.Addr().String())
		},
	})

	var runErr error
	require.NotPanics(t, func() { runErr = s.Run(context.Background()) })
	require.Error(t, runErr)
	assert.True(t, codes.Has(runErr, codes.ErrListenerBind))
	assert.Equal(t, codes.KindOperational, codes.KindOf(runErr))
	assert.Equal(t, codes.ExitBindFailed, codes.ExitCode(runErr))
	assert.Equal(t, StateBindFailed, s.State())
	assert.Nil(t, s.Addr())

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, logrus.ErrorLevel, last.Level)
	assert.Equal(t, "failed to bind listener", last.Message)
}

func TestServesHandler(t *testing.T) {
	captureStd(t)
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	s := New(Options{
		Handler: handler,
		Getenv:  envOf(map[string]string{PortEnv: "0"}),
		Listen: func(network, _ string) (net.Listener, error) {
			return net.Listen(network, "127.0.0.1:0")
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(s, ctx)
	waitServing(t, s)

	resp, err := http.Get("http://" + s.Addr().String() + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	cancel()
	require.NoError(t, <-done)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "serving", StateServing.String())
	assert.Equal(t, "bind_failed", StateBindFailed.String())
	assert.Equal(t, "unknown(42)", State(42).String())
}
