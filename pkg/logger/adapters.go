package logger

import (
	"fmt"

	"github.com/go-logr/logr"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/grpclog"
)

// GRPCLogger routes gRPC's internal logging into the pipeline under source.
func GRPCLogger(source string) grpclog.LoggerV2 {
	return &grpcLogger{entry: Named(source)}
}

type grpcLogger struct {
	entry *Entry
}

func (g *grpcLogger) Info(args ...any)                    { g.entry.Info(args...) }
func (g *grpcLogger) Infoln(args ...any)                  { g.entry.Infoln(args...) }
func (g *grpcLogger) Infof(format string, args ...any)    { g.entry.Infof(format, args...) }
func (g *grpcLogger) Warning(args ...any)                 { g.entry.Warn(args...) }
func (g *grpcLogger) Warningln(args ...any)               { g.entry.Warnln(args...) }
func (g *grpcLogger) Warningf(format string, args ...any) { g.entry.Warnf(format, args...) }
func (g *grpcLogger) Error(args ...any)                   { g.entry.Error(args...) }
func (g *grpcLogger) Errorln(args ...any)                 { g.entry.Errorln(args...) }
func (g *grpcLogger) Errorf(format string, args ...any)   { g.entry.Errorf(format, args...) }
func (g *grpcLogger) Fatal(args ...any)                   { g.entry.Fatal(args...) }
func (g *grpcLogger) Fatalln(args ...any)                 { g.entry.Fatalln(args...) }
func (g *grpcLogger) Fatalf(format string, args ...any)   { g.entry.Fatalf(format, args...) }

// V reports verbosity; gRPC's verbose logs map to debug.
func (g *grpcLogger) V(l int) bool {
	if l <= 0 {
		return log.IsLevelEnabled(log.InfoLevel)
	}
	return log.IsLevelEnabled(log.DebugLevel)
}

// LogrLogger exposes the pipeline as a logr.Logger, for libraries such as
// the OpenTelemetry SDK that log through logr.
func LogrLogger(source string) logr.Logger {
	return logr.New(&logrSink{entry: Named(source)})
}

type logrSink struct {
	entry *Entry
}

func (s *logrSink) Init(logr.RuntimeInfo) {}

func (s *logrSink) Enabled(level int) bool {
	return log.IsLevelEnabled(logrLevel(level))
}

func (s *logrSink) Info(level int, msg string, keysAndValues ...any) {
	s.entry.WithFields(kvFields(keysAndValues)).Log(logrLevel(level), msg)
}

func (s *logrSink) Error(err error, msg string, keysAndValues ...any) {
	s.entry.WithFields(kvFields(keysAndValues)).WithError(err).Error(msg)
}

func (s *logrSink) WithValues(keysAndValues ...any) logr.LogSink {
	return &logrSink{entry: s.entry.WithFields(kvFields(keysAndValues))}
}

func (s *logrSink) WithName(name string) logr.LogSink {
	if prev, ok := s.entry.Data["logger"].(string); ok && prev != "" {
		name = prev + "." + name
	}
	return &logrSink{entry: s.entry.WithField("logger", name)}
}

// logrLevel maps logr verbosity to logrus. The OpenTelemetry SDK logs
// warnings at V(1), info at V(4) and debug at V(8).
func logrLevel(v int) log.Level {
	switch {
	case v <= 1:
		return log.WarnLevel
	case v <= 4:
		return log.InfoLevel
	case v <= 8:
		return log.DebugLevel
	default:
		return log.TraceLevel
	}
}

func kvFields(kv []any) Fields {
	fields := make(Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields[key] = kv[i+1]
	}
	if len(kv)%2 == 1 {
		fields["!BADKEY"] = kv[len(kv)-1]
	}
	return fields
}
