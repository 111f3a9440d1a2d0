package filter

// quiet silences transport and framework internals on every sink.
var quiet = SourceGRPC + "=off," + SourceHTTP + "=off," + SourceSarama + "=off," + SourceGin + "=off"

var (
	// BridgeDirectives feeds the OpenTelemetry log sink. The SDK's own
	// diagnostics stay off so exporter failures cannot loop back into it.
	BridgeDirectives = "info," + quiet + "," + SourceOTel + "=off"

	// ConsoleDirectives feeds the human-readable sink and surfaces the
	// telemetry SDK's debug output.
	ConsoleDirectives = "info," + quiet + "," + SourceOTel + "=debug"
)

// BridgeDefaults returns the directive list for the OpenTelemetry log sink.
func BridgeDefaults() *Filter { return MustParse(BridgeDirectives) }

// ConsoleDefaults returns the directive list for the console sink.
func ConsoleDefaults() *Filter { return MustParse(ConsoleDirectives) }

// OrDefault parses spec, falling back to def when spec is blank.
func OrDefault(spec, def string) (*Filter, error) {
	if spec == "" {
		spec = def
	}
	return Parse(spec)
}
