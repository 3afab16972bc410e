package rpcerr

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Chain joins a request's causal error sequence — outermost failure first,
// the engine-side error it wraps last — into a single error whose message
// renders each link separated by " -> ", while still exposing every link
// individually through StackTraces, rather than collapsing the chain into
// one opaque string. WithStackEntry builds on it.
func Chain(errs ...error) error {
	var joined *multierror.Error
	for _, err := range errs {
		if err != nil {
			joined = multierror.Append(joined, err)
		}
	}
	if joined == nil {
		return nil
	}
	joined.ErrorFormat = func(errs []error) string {
		parts := make([]string, len(errs))
		for i, e := range errs {
			parts[i] = e.Error()
		}
		out := parts[0]
		for _, p := range parts[1:] {
			out += " -> " + p
		}
		return out
	}
	return joined
}

// StackTraces renders err's causal chain as the ordered list of
// human-readable strings carried in ErrorResponse.stackTraces. A *multierror
// built by Chain expands to one entry per link; any other error yields a
// single entry.
func StackTraces(err error) []string {
	if err == nil {
		return nil
	}
	if merr, ok := err.(*multierror.Error); ok {
		out := make([]string, len(merr.Errors))
		for i, e := range merr.Errors {
			out[i] = e.Error()
		}
		return out
	}
	return []string{err.Error()}
}

// WithStackEntry appends an additional diagnostic line ahead of err's own
// message, without otherwise changing err's identity for errors.Is/As.
func WithStackEntry(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Chain(fmt.Errorf(format, args...), err)
}
