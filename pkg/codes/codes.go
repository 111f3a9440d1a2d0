package codes

import (
	"errors"
	"fmt"
)

// Kind separates startup failures that must stop the process from
// operator-level conditions that end it cleanly.
type Kind int

const (
	// KindFatal errors abort startup before any traffic is accepted.
	KindFatal Kind = iota + 1
	// KindOperational errors are logged and end the process without a panic.
	KindOperational
)

func (k Kind) String() string {
	switch k {
	case KindFatal:
		return "fatal"
	case KindOperational:
		return "operational"
	default:
		return "unknown"
	}
}

// Process exit codes.
const (
	ExitOK         = 0
	ExitFatal      = 1
	ExitBindFailed = 2
)

// ErrorCode represents a structured startup error shared across the service.
type ErrorCode struct {
	Numeric int32
	Symbol  string
	Message string
	Kind    Kind
}

var (
	// ErrConfig indicates the configuration could not be loaded or parsed.
	ErrConfig = ErrorCode{Numeric: 10001, Symbol: "CONFIG_INVALID", Message: "invalid configuration", Kind: KindFatal}
	// ErrExporterConfig indicates a malformed exporter endpoint or credentials.
	ErrExporterConfig = ErrorCode{Numeric: 10002, Symbol: "EXPORTER_CONFIG", Message: "telemetry exporter misconfigured", Kind: KindFatal}
	// ErrSubscriberInstall indicates the log pipeline was already installed.
	ErrSubscriberInstall = ErrorCode{Numeric: 10003, Symbol: "SUBSCRIBER_INSTALL", Message: "log pipeline install failed", Kind: KindFatal}
	// ErrListenerBind indicates the listening port could not be bound.
	ErrListenerBind = ErrorCode{Numeric: 20001, Symbol: "LISTENER_BIND", Message: "listener bind failed", Kind: KindOperational}
)

// Registry exposes a static list for validation or docs.
var Registry = []ErrorCode{
	ErrConfig,
	ErrExporterConfig,
	ErrSubscriberInstall,
	ErrListenerBind,
}

// Error carries an ErrorCode together with its cause.
type Error struct {
	Code ErrorCode
	Err  error
}

// Wrap attaches code to err. A nil err yields nil.
func Wrap(code ErrorCode, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}

// Errorf builds a coded error from a format string.
func Errorf(code ErrorCode, format string, args ...any) error {
	return &Error{Code: code, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Code.Symbol + ": " + e.Code.Message
	}
	return e.Code.Symbol + ": " + e.Code.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same symbol.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code.Symbol == e.Code.Symbol
}

// Has reports whether err carries code anywhere in its chain.
func Has(err error, code ErrorCode) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Code.Symbol == code.Symbol {
			return true
		}
		err = e.Err
	}
	return false
}

// KindOf returns the kind of the outermost coded error in err's chain.
// Uncoded errors are treated as fatal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Code.Kind
	}
	return KindFatal
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if KindOf(err) == KindOperational {
		return ExitBindFailed
	}
	return ExitFatal
}
