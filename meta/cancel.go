package meta

import "context"

// Cancel is an out-of-band operation on a statement id: it atomically
// transitions the statement's retained cursor to Canceled. It does not
// interrupt any Engine call already in flight — it only sets a flag the
// next Fetch observes at its next row boundary (§4.4/§5 "Cancellation").
// Canceling a statement with no open cursor, or one the Session Store has
// already forgotten, is not an error.
func (s *Service) Cancel(ctx context.Context, connID string, stmtID int64) error {
	return s.withDelegate(ctx, func(ctx context.Context) error {
		conn, err := s.store.Connection(connID)
		if err != nil {
			return nil
		}

		conn.Lock()
		defer conn.Unlock()

		stmt, err := s.store.Statement(connID, stmtID)
		if err != nil || stmt.Cursor == nil {
			return nil
		}

		stmt.Cursor.Cancel()
		return nil
	})
}
