package bootstrap

import (
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// NewResource builds the process identity attached to every log record and span.
func NewResource(serviceName, version string, tags map[string]string) *resource.Resource {
	if serviceName == "" {
		serviceName = "unknown-service"
	}
	attrs := []attribute.KeyValue{semconv.ServiceName(serviceName)}
	if version != "" {
		attrs = append(attrs, semconv.ServiceVersion(version))
	}

	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, attribute.String(k, tags[k]))
	}

	return resource.NewWithAttributes(semconv.SchemaURL, attrs...)
}
