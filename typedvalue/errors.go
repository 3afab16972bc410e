package typedvalue

import "fmt"

// IllegalArgumentError is returned by the codec whenever decoding produces a
// value incompatible with the declared column type, a decimal carries a
// negative scale, or an array element's tag conflicts with its declared
// element type. It is a distinct type so callers can detect it with
// errors.As rather than by string matching; rpcerr.Flatten does not give it
// a SQL state of its own.
type IllegalArgumentError struct {
	Reason string
}

func (e *IllegalArgumentError) Error() string {
	return fmt.Sprintf("illegal argument: %s", e.Reason)
}

func illegalArgument(format string, args ...any) error {
	return &IllegalArgumentError{Reason: fmt.Sprintf(format, args...)}
}
