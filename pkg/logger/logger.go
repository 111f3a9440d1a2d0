// Package logger is a thin wrapper around logrus' standard logger.
//
// It is designed to be imported as `log`, so every component shares the one
// pipeline installed by pkg/bootstrap. Entries carry a "source" field naming
// the emitting component; per-sink filters match on it.
package logger

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// SourceKey is the entry field holding the emitting component's name.
const SourceKey = "source"

// Source names for this service's own components.
const (
	SourceService   = "ota/service"
	SourceHTTP      = "ota/http"
	SourceFirmware  = "ota/firmware"
	SourceEvents    = "ota/events"
	SourceTelemetry = "ota/telemetry"
)

type Fields = log.Fields
type Entry = log.Entry
type Level = log.Level

const (
	PanicLevel = log.PanicLevel
	FatalLevel = log.FatalLevel
	ErrorLevel = log.ErrorLevel
	WarnLevel  = log.WarnLevel
	InfoLevel  = log.InfoLevel
	DebugLevel = log.DebugLevel
	TraceLevel = log.TraceLevel
)

func StandardLogger() *log.Logger { return log.StandardLogger() }

// Named returns an entry tagged with source.
func Named(source string) *Entry { return log.WithField(SourceKey, source) }

// SourceOf returns the source an entry was tagged with, or "".
func SourceOf(e *Entry) string {
	if e == nil {
		return ""
	}
	if s, ok := e.Data[SourceKey].(string); ok {
		return s
	}
	return ""
}

func WithField(key string, value any) *Entry { return log.WithField(key, value) }
func WithFields(fields Fields) *Entry        { return log.WithFields(fields) }
func WithError(err error) *Entry             { return log.WithError(err) }

// WithTrace binds ctx and adds "trace_id" when OpenTelemetry span context is present.
func WithTrace(ctx context.Context) *Entry {
	return EntryWithTrace(log.NewEntry(log.StandardLogger()), ctx)
}

// EntryWithTrace is WithTrace for an existing entry, e.g. one from Named.
func EntryWithTrace(e *Entry, ctx context.Context) *Entry {
	if ctx == nil {
		return e
	}
	e = e.WithContext(ctx)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		e = e.WithFields(Fields{
			"trace_id": sc.TraceID().String(),
			"span_id":  sc.SpanID().String(),
		})
	}
	return e
}

func Debug(args ...any) { log.Debug(args...) }
func Info(args ...any)  { log.Info(args...) }
func Warn(args ...any)  { log.Warn(args...) }
func Error(args ...any) { log.Error(args...) }

func Debugf(format string, args ...any) { log.Debugf(format, args...) }
func Infof(format string, args ...any)  { log.Infof(format, args...) }
func Warnf(format string, args ...any)  { log.Warnf(format, args...) }
func Errorf(format string, args ...any) { log.Errorf(format, args...) }
