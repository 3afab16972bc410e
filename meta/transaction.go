package meta

import (
	"context"
	"fmt"

	"github.com/metarpc/metarpc/session"
)

// Commit flushes dirty properties then commits the connection's
// transaction. Per §4.3, commits/rollbacks flush first, then perform the
// transaction call.
func (s *Service) Commit(ctx context.Context, connID string) error {
	return s.withDelegate(ctx, func(ctx context.Context) error {
		conn, err := s.store.Connection(connID)
		if err != nil {
			return err
		}

		conn.Lock()
		defer conn.Unlock()

		if err := flushDirty(ctx, conn); err != nil {
			return fmt.Errorf("meta: flush properties for connection %q: %w", connID, err)
		}

		if err := conn.Conn.Commit(ctx); err != nil {
			return fmt.Errorf("meta: commit: %w", err)
		}

		if conn.Props.AutoCommit {
			conn.State = session.ConnOpen
		}
		return nil
	})
}

// Rollback flushes dirty properties then rolls back the connection's
// transaction.
func (s *Service) Rollback(ctx context.Context, connID string) error {
	return s.withDelegate(ctx, func(ctx context.Context) error {
		conn, err := s.store.Connection(connID)
		if err != nil {
			return err
		}

		conn.Lock()
		defer conn.Unlock()

		if err := flushDirty(ctx, conn); err != nil {
			return fmt.Errorf("meta: flush properties for connection %q: %w", connID, err)
		}

		if err := conn.Conn.Rollback(ctx); err != nil {
			return fmt.Errorf("meta: rollback: %w", err)
		}

		if conn.Props.AutoCommit {
			conn.State = session.ConnOpen
		}
		return nil
	})
}
