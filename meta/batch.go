package meta

import (
	"context"
	"fmt"

	"github.com/metarpc/metarpc/session"
	"github.com/metarpc/metarpc/typedvalue"
)

// BatchResult carries the update counts a batch produced before it either
// finished or hit its first error — mirrors the ordered, stop-at-first-error
// draining discipline of a response queue: everything before the failure is
// still reported, nothing after it runs.
type BatchResult struct {
	UpdateCounts []int64
	Err          error
}

// PrepareAndExecuteBatch prepares and runs each SQL command against connID
// in order, using a fresh Engine-side prepare per command since each may
// differ. Execution stops at the first failing command; update counts for
// every command before it are still returned alongside the error.
func (s *Service) PrepareAndExecuteBatch(ctx context.Context, connID string, sqlCommands []string) (res BatchResult) {
	res.Err = s.withDelegate(ctx, func(ctx context.Context) error {
		conn, err := s.store.Connection(connID)
		if err != nil {
			return err
		}

		conn.Lock()
		defer conn.Unlock()

		if err := flushDirty(ctx, conn); err != nil {
			return fmt.Errorf("meta: flush properties for connection %q: %w", connID, err)
		}

		counts := make([]int64, 0, len(sqlCommands))
		for _, sql := range sqlCommands {
			engineStmt, prepErr := conn.Conn.Prepare(ctx, sql)
			if prepErr != nil {
				res.UpdateCounts = counts
				return fmt.Errorf("meta: batch prepare %q: %w", sql, prepErr)
			}

			cursor, _, updateCount, execErr := engineStmt.Execute(ctx, nil, 0)
			engineStmt.Close(ctx)
			if cursor != nil {
				cursor.Close(ctx)
			}
			if execErr != nil {
				res.UpdateCounts = counts
				return fmt.Errorf("meta: batch execute %q: %w", sql, execErr)
			}

			counts = append(counts, updateCount)
		}

		res.UpdateCounts = counts
		return nil
	})
	return res
}

// ExecuteBatch runs an already-prepared statement once per parameter row,
// in order, stopping at the first failing row. Each row's update count
// before the failure is still returned.
func (s *Service) ExecuteBatch(ctx context.Context, connID string, stmtID int64, paramBatches [][]typedvalue.Value) (res BatchResult) {
	res.Err = s.withDelegate(ctx, func(ctx context.Context) error {
		conn, err := s.store.Connection(connID)
		if err != nil {
			return err
		}

		conn.Lock()
		defer conn.Unlock()

		if err := flushDirty(ctx, conn); err != nil {
			return fmt.Errorf("meta: flush properties for connection %q: %w", connID, err)
		}

		stmt, findErr := s.store.Statement(connID, stmtID)
		if findErr != nil {
			return findErr
		}

		counts := make([]int64, 0, len(paramBatches))
		for _, params := range paramBatches {
			if bindErr := bindParams(stmt.ParamSignature, params); bindErr != nil {
				res.UpdateCounts = counts
				return bindErr
			}

			stmt.State = session.StmtExecuting
			cursor, _, updateCount, execErr := stmt.Engine.Execute(ctx, params, 0)
			if cursor != nil {
				cursor.Close(ctx)
			}
			if execErr != nil {
				stmt.State = session.StmtIdle
				res.UpdateCounts = counts
				return fmt.Errorf("meta: batch execute: %w", execErr)
			}
			stmt.State = session.StmtIdle

			counts = append(counts, updateCount)
		}

		res.UpdateCounts = counts
		return nil
	})
	return res
}
