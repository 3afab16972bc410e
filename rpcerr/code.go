package rpcerr

import (
	"errors"

	"github.com/metarpc/metarpc/sqlstate"
)

// WithSQLState decorates err with a SQLSTATE code.
func WithSQLState(err error, code sqlstate.Code) error {
	if err == nil {
		return nil
	}
	return &withSQLState{cause: err, code: code}
}

// GetSQLState returns the SQLSTATE attached anywhere in err's cause chain,
// falling back to sqlstate.Uncategorized when nothing decorated it.
func GetSQLState(err error) sqlstate.Code {
	if c, ok := err.(*withSQLState); ok {
		return c.code
	}
	if n := errors.Unwrap(err); n != nil {
		if inner := GetSQLState(n); inner != sqlstate.Uncategorized {
			return inner
		}
	}
	return sqlstate.Uncategorized
}

type withSQLState struct {
	cause error
	code  sqlstate.Code
}

func (w *withSQLState) Error() string { return w.cause.Error() }
func (w *withSQLState) Unwrap() error { return w.cause }

// WithErrorCode decorates err with the protocol's vendor-specific numeric
// error code, separate from the standard SQLSTATE.
func WithErrorCode(err error, code int32) error {
	if err == nil {
		return nil
	}
	return &withErrorCode{cause: err, code: code}
}

// GetErrorCode returns the numeric error code attached to err, or -1 — the
// sentinel for "unknown" — if none was attached.
func GetErrorCode(err error) int32 {
	if c, ok := err.(*withErrorCode); ok {
		return c.code
	}
	if n := errors.Unwrap(err); n != nil {
		if inner := GetErrorCode(n); inner != -1 {
			return inner
		}
	}
	return -1
}

type withErrorCode struct {
	cause error
	code  int32
}

func (w *withErrorCode) Error() string { return w.cause.Error() }
func (w *withErrorCode) Unwrap() error { return w.cause }
