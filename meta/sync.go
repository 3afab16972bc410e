package meta

import (
	"context"
	"fmt"

	"github.com/metarpc/metarpc/rpcerr"
	"github.com/metarpc/metarpc/sqlstate"
	"github.com/metarpc/metarpc/typedvalue"
)

// QueryState is the client-held reconstruction hint a SyncResultsRequest
// carries — mirroring the query information a client would need to
// redrive Prepare and Execute from scratch against a statement the server
// no longer recognizes. The Meta Service never acts on it: SyncResults
// does not take it, and the Session Store holds no durable state across a
// restart, so there is nothing server-side to reconstruct from it. A
// client that gets back SyncResult.Missing retries using its own copy of
// what it already sent.
type QueryState struct {
	SQL             string
	ParameterValues []typedvalue.Value
}

// SyncResult reports the outcome of reconciling a client-observed cursor
// offset against the server's retained cursor.
type SyncResult struct {
	// Missing is true when the connection, statement, or its retained
	// cursor no longer exists — e.g. after a server restart, or a TTL
	// eviction the client hasn't learned about yet. The client must
	// redrive Prepare/Execute using its own QueryState to recover.
	Missing bool
	// Moved is true when the server's cursor had to be skipped forward
	// to catch up with the client's reported offset.
	Moved bool
}

// SyncResults reconciles a client's observed cursor position against the
// statement's retained server-side cursor (§4.4). Unlike every other
// data-plane operation, a missing connection/statement/cursor is not an
// error here — reporting that is the entire point of the call — but an
// offset that precedes the server's cursor position still is, exactly as
// it is for Fetch, since rewinding a forward-only cursor is impossible.
func (s *Service) SyncResults(ctx context.Context, connID string, stmtID int64, offset int64) (result SyncResult, err error) {
	err = s.withDelegate(ctx, func(ctx context.Context) error {
		conn, lookupErr := s.store.Connection(connID)
		if lookupErr != nil {
			result = SyncResult{Missing: true}
			return nil
		}

		conn.Lock()
		defer conn.Unlock()

		stmt, findErr := s.store.Statement(connID, stmtID)
		if findErr != nil || stmt.Cursor == nil || stmt.Cursor.Canceled() {
			result = SyncResult{Missing: true}
			return nil
		}

		pos := stmt.Cursor.Position()
		if offset < pos {
			return rpcerr.WithSQLState(rpcerr.WithSeverity(
				fmt.Errorf("sync offset %d precedes cursor position %d", offset, pos),
				rpcerr.SeverityError), sqlstate.InvalidCursorState)
		}

		if offset == pos {
			result = SyncResult{}
			return nil
		}

		if skipErr := stmt.Cursor.Engine().Skip(ctx, offset-pos); skipErr != nil {
			return fmt.Errorf("meta: sync results skip to offset %d: %w", offset, skipErr)
		}
		stmt.Cursor.Advance(offset - pos)
		result = SyncResult{Moved: true}
		return nil
	})
	return result, err
}
