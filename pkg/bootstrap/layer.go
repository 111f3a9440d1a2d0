package bootstrap

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/bridges/otellogrus"
	otellog "go.opentelemetry.io/otel/log"

	"github.com/Goden-Gun/ota-server/pkg/filter"
	"github.com/Goden-Gun/ota-server/pkg/logger"
)

// Layer names.
const (
	LayerOTelLogs = "otel-logs"
	LayerConsole  = "console"
)

// Sink receives the entries a layer's filter lets through.
type Sink interface {
	Emit(entry *log.Entry) error
}

// Layer pairs a sink with its filter.
type Layer struct {
	Name   string
	Sink   Sink
	Filter *filter.Filter
}

// ComposeLayers returns the service's layers in emission order: the bridge
// into the OpenTelemetry log provider, then the console.
func ComposeLayers(lp otellog.LoggerProvider, logFilter *filter.Filter, console Sink, fmtFilter *filter.Filter) []Layer {
	return []Layer{
		{Name: LayerOTelLogs, Sink: NewBridgeSink(lp), Filter: logFilter},
		{Name: LayerConsole, Sink: console, Filter: fmtFilter},
	}
}

// Pipeline fans entries out to its layers. It is installed as the single
// hook of the logrus standard logger, so each layer sees an entry at most once.
type Pipeline struct {
	layers []Layer
}

// NewPipeline builds a pipeline over layers. Layers without a filter pass
// everything at error or above.
func NewPipeline(layers ...Layer) *Pipeline {
	p := &Pipeline{layers: make([]Layer, len(layers))}
	copy(p.layers, layers)
	for i := range p.layers {
		if p.layers[i].Filter == nil {
			p.layers[i].Filter = filter.MustParse("")
		}
	}
	return p
}

// Layers returns a copy of the layer list.
func (p *Pipeline) Layers() []Layer {
	out := make([]Layer, len(p.layers))
	copy(out, p.layers)
	return out
}

// MaxLevel is the most verbose level any layer accepts.
func (p *Pipeline) MaxLevel() log.Level {
	most := log.PanicLevel
	for _, l := range p.layers {
		if lvl := l.Filter.MaxLevel(); lvl > most {
			most = lvl
		}
	}
	return most
}

// Levels implements logrus.Hook.
func (p *Pipeline) Levels() []log.Level {
	return log.AllLevels
}

// Fire implements logrus.Hook.
func (p *Pipeline) Fire(entry *log.Entry) error {
	source := logger.SourceOf(entry)
	var errs []error
	for _, l := range p.layers {
		if !l.Filter.Enabled(source, entry.Level) {
			continue
		}
		if err := l.Sink.Emit(entry); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", l.Name, err))
		}
	}
	return errors.Join(errs...)
}

// BridgeSink forwards entries into an OpenTelemetry log provider.
type BridgeSink struct {
	hook *otellogrus.Hook
}

// BridgeScope is the instrumentation scope of bridged records.
const BridgeScope = "github.com/Goden-Gun/ota-server"

func NewBridgeSink(lp otellog.LoggerProvider) *BridgeSink {
	return &BridgeSink{hook: otellogrus.NewHook(BridgeScope, otellogrus.WithLoggerProvider(lp))}
}

// Emit forwards entry. The OpenTelemetry processors require a context, so
// entries logged without one are forwarded as a copy carrying Background.
func (s *BridgeSink) Emit(entry *log.Entry) error {
	if entry.Context == nil {
		e := entry.WithContext(context.Background())
		e.Time = entry.Time
		e.Level = entry.Level
		e.Message = entry.Message
		e.Caller = entry.Caller
		entry = e
	}
	return s.hook.Fire(entry)
}
