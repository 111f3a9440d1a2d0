// Package filter decides, per sink, which log entries pass.
//
// A Filter is parsed from a directive list such as
//
//	info,google.golang.org/grpc=off,go.opentelemetry.io/otel=debug
//
// A bare level sets the default threshold; target=level overrides it for
// entries whose source is target or lives under it ("/" or "." separated).
// The longest matching target wins.
package filter

import (
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Noisy third-party sources silenced by the default directive lists.
const (
	SourceGRPC   = "google.golang.org/grpc"
	SourceHTTP   = "net/http"
	SourceSarama = "github.com/IBM/sarama"
	SourceGin    = "github.com/gin-gonic/gin"
	SourceOTel   = "go.opentelemetry.io/otel"
)

// Directive is one target=level rule.
type Directive struct {
	Target string
	Level  log.Level
	Off    bool
}

func (d Directive) allows(level log.Level) bool {
	return !d.Off && level <= d.Level
}

func (d Directive) levelString() string {
	if d.Off {
		return "off"
	}
	if d.Level == log.WarnLevel {
		return "warn"
	}
	return d.Level.String()
}

func (d Directive) String() string {
	if d.Target == "" {
		return d.levelString()
	}
	return d.Target + "=" + d.levelString()
}

// Filter is an immutable directive list.
type Filter struct {
	def        Directive
	directives []Directive // longest target first
}

// Parse builds a Filter from a comma-separated directive list. Without a
// bare level the default threshold is error.
func Parse(spec string) (*Filter, error) {
	f := &Filter{def: Directive{Level: log.ErrorLevel}}
	byTarget := map[string]Directive{}

	for _, raw := range strings.Split(spec, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		target, lvl, hasTarget := strings.Cut(raw, "=")
		if !hasTarget {
			target, lvl = "", raw
		}
		target = strings.TrimSpace(target)
		if hasTarget && target == "" {
			return nil, fmt.Errorf("directive %q: empty target", raw)
		}
		d, err := parseLevel(strings.TrimSpace(lvl))
		if err != nil {
			return nil, fmt.Errorf("directive %q: %w", raw, err)
		}
		d.Target = target
		if target == "" {
			f.def = d
			continue
		}
		byTarget[target] = d
	}

	for _, d := range byTarget {
		f.directives = append(f.directives, d)
	}
	sort.Slice(f.directives, func(i, j int) bool {
		a, b := f.directives[i].Target, f.directives[j].Target
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
	return f, nil
}

// MustParse is Parse for compile-time constant directive lists.
func MustParse(spec string) *Filter {
	f, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return f
}

func parseLevel(s string) (Directive, error) {
	if strings.EqualFold(s, "off") {
		return Directive{Off: true}, nil
	}
	lvl, err := log.ParseLevel(s)
	if err != nil {
		return Directive{}, err
	}
	return Directive{Level: lvl}, nil
}

// Enabled reports whether an entry from source at level passes.
func (f *Filter) Enabled(source string, level log.Level) bool {
	return f.match(source).allows(level)
}

func (f *Filter) match(source string) Directive {
	for _, d := range f.directives {
		if matches(d.Target, source) {
			return d
		}
	}
	return f.def
}

func matches(target, source string) bool {
	if !strings.HasPrefix(source, target) {
		return false
	}
	if len(source) == len(target) {
		return true
	}
	switch source[len(target)] {
	case '/', '.':
		return true
	}
	return false
}

// MaxLevel returns the most verbose level any directive lets through.
// The logger feeding this filter must be at least this verbose.
func (f *Filter) MaxLevel() log.Level {
	most := log.PanicLevel
	for _, d := range f.Directives() {
		if !d.Off && d.Level > most {
			most = d.Level
		}
	}
	return most
}

// Directives returns the default followed by the overrides, most specific first.
func (f *Filter) Directives() []Directive {
	return append([]Directive{f.def}, f.directives...)
}

func (f *Filter) String() string {
	parts := make([]string, 0, len(f.directives)+1)
	for _, d := range f.Directives() {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, ",")
}
