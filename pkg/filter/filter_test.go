package filter

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaultOnly(t *testing.T) {
	f, err := Parse("info")
	require.NoError(t, err)

	assert.True(t, f.Enabled("ota/service", log.ErrorLevel))
	assert.True(t, f.Enabled("ota/service", log.InfoLevel))
	assert.False(t, f.Enabled("ota/service", log.DebugLevel))
	assert.Equal(t, log.InfoLevel, f.MaxLevel())
}

func TestParseEmptyDefaultsToError(t *testing.T) {
	f, err := Parse("")
	require.NoError(t, err)

	assert.True(t, f.Enabled("anything", log.ErrorLevel))
	assert.False(t, f.Enabled("anything", log.WarnLevel))
	assert.Equal(t, "error", f.String())
}

func TestParseErrors(t *testing.T) {
	for _, spec := range []string{"loud", "grpc=verbose", "=info", "info,net/http=nope"} {
		_, err := Parse(spec)
		assert.Error(t, err, spec)
	}
}

func TestMostSpecificTargetWins(t *testing.T) {
	f := MustParse("warn,ota=debug,ota/firmware=error,ota/firmware/cache=off")

	assert.True(t, f.Enabled("ota/service", log.DebugLevel))
	assert.False(t, f.Enabled("ota/firmware", log.WarnLevel))
	assert.True(t, f.Enabled("ota/firmware", log.ErrorLevel))
	assert.False(t, f.Enabled("ota/firmware/cache", log.PanicLevel))
	assert.False(t, f.Enabled("ota/firmware/cache/lru", log.ErrorLevel))
	assert.False(t, f.Enabled("other", log.InfoLevel))
	assert.True(t, f.Enabled("other", log.WarnLevel))
}

func TestTargetBoundary(t *testing.T) {
	f := MustParse("info,net/http=off")

	assert.False(t, f.Enabled("net/http", log.ErrorLevel))
	assert.False(t, f.Enabled("net/http/httputil", log.ErrorLevel))
	assert.True(t, f.Enabled("net/httpx", log.InfoLevel))
	assert.True(t, f.Enabled("net", log.InfoLevel))
}

func TestLaterDirectivesReplaceEarlier(t *testing.T) {
	f := MustParse("debug, grpc=info ,warn,grpc=off")

	assert.False(t, f.Enabled("grpc", log.ErrorLevel))
	assert.False(t, f.Enabled("x", log.InfoLevel))
	assert.Equal(t, "warn,grpc=off", f.String())
}

func TestSuppressedSourcesNeverPass(t *testing.T) {
	sinks := map[string]*Filter{"bridge": BridgeDefaults(), "console": ConsoleDefaults()}
	suppressed := []string{SourceGRPC, SourceGRPC + "/transport", SourceHTTP, SourceSarama, SourceGin}

	for name, f := range sinks {
		for _, src := range suppressed {
			for _, lvl := range log.AllLevels {
				assert.False(t, f.Enabled(src, lvl), "%s: %s@%s", name, src, lvl)
			}
		}
	}
}

func TestDefaultThresholdPasses(t *testing.T) {
	sinks := map[string]*Filter{"bridge": BridgeDefaults(), "console": ConsoleDefaults()}

	for name, f := range sinks {
		for _, lvl := range log.AllLevels {
			want := lvl <= log.InfoLevel
			assert.Equal(t, want, f.Enabled("ota/http", lvl), "%s: %s", name, lvl)
		}
	}
}

func TestTelemetrySDKDiagnostics(t *testing.T) {
	assert.True(t, ConsoleDefaults().Enabled(SourceOTel, log.DebugLevel))
	assert.False(t, ConsoleDefaults().Enabled(SourceOTel, log.TraceLevel))
	assert.False(t, BridgeDefaults().Enabled(SourceOTel, log.ErrorLevel))

	assert.Equal(t, log.DebugLevel, ConsoleDefaults().MaxLevel())
	assert.Equal(t, log.InfoLevel, BridgeDefaults().MaxLevel())
}

func TestOrDefault(t *testing.T) {
	f, err := OrDefault("", ConsoleDirectives)
	require.NoError(t, err)
	assert.Equal(t, ConsoleDefaults().String(), f.String())

	f, err = OrDefault("trace", ConsoleDirectives)
	require.NoError(t, err)
	assert.True(t, f.Enabled(SourceGRPC, log.TraceLevel))
}

func TestStringParsesBack(t *testing.T) {
	f := MustParse("warning,ota/firmware=warn,grpc=off")
	assert.Equal(t, "warn,ota/firmware=warn,grpc=off", f.String())

	again, err := Parse(f.String())
	require.NoError(t, err)
	assert.Equal(t, f.Directives(), again.Directives())
}
