package rpcerr

import (
	"errors"
	"fmt"

	"github.com/metarpc/metarpc/sqlstate"
)

// StatementCanceled is the fixed message a canceled cursor's subsequent
// Fetch must report, regardless of how far iteration had progressed.
const StatementCanceled = "Statement canceled"

// ConnectionNotFound reports an operation against an id the Session Store
// has never issued, or has already evicted.
func ConnectionNotFound(id string) error {
	err := fmt.Errorf("connection not found: %s", id)
	return WithSQLState(WithSeverity(err, SeverityError), sqlstate.InvalidConnectionReference)
}

// StatementNotFound reports an operation against a StatementHandle the
// Session Store has never issued, or has already closed.
func StatementNotFound(connID string, stmtID int64) error {
	err := fmt.Errorf("statement not found: connection=%s statement=%d", connID, stmtID)
	return WithSQLState(WithSeverity(err, SeverityError), sqlstate.InvalidSQLStatementName)
}

// Canceled reports a Fetch against a cursor that Cancel has already marked
// canceled.
func Canceled() error {
	err := errors.New(StatementCanceled)
	return WithSQLState(WithSeverity(err, SeverityError), sqlstate.Success)
}

// Protocol reports a malformed envelope, an unknown discriminator, or an
// invalid tag encountered while decoding a request or response.
func Protocol(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	return WithSQLState(WithSeverity(err, SeverityFatal), sqlstate.ConnectionException)
}

// State reports an operation attempted against a closed or otherwise
// invalid handle that nonetheless exists (as opposed to one the Session
// Store never heard of — see ConnectionNotFound/StatementNotFound).
func State(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	return WithSQLState(WithSeverity(err, SeverityError), sqlstate.InvalidTransactionState)
}
