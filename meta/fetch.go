package meta

import (
	"context"
	"fmt"

	"github.com/metarpc/metarpc/rpcerr"
	"github.com/metarpc/metarpc/session"
	"github.com/metarpc/metarpc/sqlstate"
)

// Fetch advances a statement's retained cursor and materializes the next
// frame (§4.4 Fetch algorithm). Cursors are forward-only: an offset behind
// the cursor's current position is an error; an offset ahead of it skips
// forward first.
func (s *Service) Fetch(ctx context.Context, connID string, stmtID, offset, frameMaxSize int64) (frame Frame, err error) {
	err = s.withDelegate(ctx, func(ctx context.Context) error {
		conn, lookupErr := s.store.Connection(connID)
		if lookupErr != nil {
			return lookupErr
		}

		conn.Lock()
		defer conn.Unlock()

		stmt, findErr := s.store.Statement(connID, stmtID)
		if findErr != nil {
			return findErr
		}

		if stmt.Cursor == nil {
			return rpcerr.WithSQLState(rpcerr.WithSeverity(
				fmt.Errorf("statement %d has no open cursor", stmtID), rpcerr.SeverityError),
				sqlstate.InvalidCursorState)
		}

		if stmt.Cursor.Canceled() {
			stmt.ReleaseCursor(ctx)
			stmt.State = session.StmtClosed
			return rpcerr.Canceled()
		}

		if offset < stmt.Cursor.Position() {
			return rpcerr.WithSQLState(rpcerr.WithSeverity(
				fmt.Errorf("fetch offset %d precedes cursor position %d", offset, stmt.Cursor.Position()),
				rpcerr.SeverityError), sqlstate.InvalidCursorState)
		}

		if offset > stmt.Cursor.Position() {
			if skipErr := stmt.Cursor.Engine().Skip(ctx, offset-stmt.Cursor.Position()); skipErr != nil {
				return fmt.Errorf("meta: skip to offset %d: %w", offset, skipErr)
			}
			stmt.Cursor.Advance(offset - stmt.Cursor.Position())
		}

		size := frameMaxSize
		if size <= 0 {
			size = DefaultFrameMaxSize
		}

		rows, done, fetchErr := stmt.Cursor.Engine().Fetch(ctx, int(size))
		if fetchErr != nil {
			return fmt.Errorf("meta: fetch: %w", fetchErr)
		}

		startOffset := stmt.Cursor.Position()
		stmt.Cursor.Advance(int64(len(rows)))

		if done {
			stmt.ReleaseCursor(ctx)
		}

		frame = Frame{Offset: startOffset, Done: done, Rows: rows}
		return nil
	})
	return frame, err
}
