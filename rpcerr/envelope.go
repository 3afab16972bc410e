package rpcerr

import "github.com/metarpc/metarpc/sqlstate"

// Envelope is the wire shape of ErrorResponse: the fields every serializer
// renders, independent of whether the transport carries it as JSON or as
// the tagged binary schema.
type Envelope struct {
	ErrorMessage string
	ErrorCode    int32
	SQLState     sqlstate.Code
	Severity     Severity
	StackTraces  []string
}

// Flatten reduces an arbitrarily decorated/chained error into the envelope
// the transport writes back to the client. A nil err still produces a valid
// envelope carrying the protocol's sentinel unknown values, since a caller
// who got this far already knows something failed and just needs a body to
// put on the HTTP 500.
func Flatten(err error) Envelope {
	if err == nil {
		return Envelope{
			ErrorMessage: "unknown error",
			ErrorCode:    -1,
			SQLState:     sqlstate.Success,
			Severity:     SeverityUnknown,
		}
	}

	sev := GetSeverity(err)
	if sev == "" {
		sev = SeverityUnknown
	}

	state := GetSQLState(err)
	if state == sqlstate.Uncategorized {
		state = sqlstate.Success
	}

	return Envelope{
		ErrorMessage: err.Error(),
		ErrorCode:    GetErrorCode(err),
		SQLState:     state,
		Severity:     sev,
		StackTraces:  StackTraces(err),
	}
}
