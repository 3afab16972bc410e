package rpcerr

import "errors"

// Severity classifies how serious a reported failure is, mirrored straight
// onto ErrorResponse.severity. Unlike a plain logging level, UNKNOWN is a
// legitimate value here: it's what a caller gets when an error was raised
// without ever being decorated, which happens for anything that escapes the
// Meta Service's own error paths (a panic recovery, a raw driver error).
type Severity string

const (
	SeverityUnknown Severity = "UNKNOWN"
	SeverityFatal   Severity = "FATAL"
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// WithSeverity decorates err with a severity level.
func WithSeverity(err error, severity Severity) error {
	if err == nil {
		return nil
	}
	return &withSeverity{cause: err, severity: severity}
}

// GetSeverity returns the severity attached anywhere in err's cause chain,
// outermost decoration wins.
func GetSeverity(err error) Severity {
	if c, ok := err.(*withSeverity); ok {
		return c.severity
	}
	if n := errors.Unwrap(err); n != nil {
		if inner := GetSeverity(n); inner != "" {
			return inner
		}
	}
	return ""
}

type withSeverity struct {
	cause    error
	severity Severity
}

func (w *withSeverity) Error() string { return w.cause.Error() }
func (w *withSeverity) Unwrap() error { return w.cause }
