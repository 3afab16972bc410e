package meta

import (
	"context"
	"fmt"

	"github.com/metarpc/metarpc/rpcerr"
	"github.com/metarpc/metarpc/session"
	"github.com/metarpc/metarpc/sqlstate"
	"github.com/metarpc/metarpc/typedvalue"
)

// bindParams rejects an arity mismatch between the supplied parameter
// values and the statement's prepared parameter signature (§4.4 Execute
// algorithm step 2). An empty signature (the Engine Adapter could not
// introspect parameter types) passes any arity through unchecked.
func bindParams(sig []typedvalue.ParamMetaData, params []typedvalue.Value) error {
	if len(sig) == 0 {
		return nil
	}
	if len(params) != len(sig) {
		err := fmt.Errorf("expected %d parameters, got %d", len(sig), len(params))
		return rpcerr.WithSQLState(rpcerr.WithSeverity(err, rpcerr.SeverityError), sqlstate.InvalidParameterValue)
	}
	return nil
}

// Execute runs an already-prepared statement and materializes the first
// frame (§4.4 Execute algorithm).
func (s *Service) Execute(ctx context.Context, connID string, stmtID int64, params []typedvalue.Value, maxRowsPerFrame int64) (result *ResultSet, err error) {
	err = s.withDelegate(ctx, func(ctx context.Context) error {
		conn, lookupErr := s.store.Connection(connID)
		if lookupErr != nil {
			return lookupErr
		}

		conn.Lock()
		defer conn.Unlock()

		if flushErr := flushDirty(ctx, conn); flushErr != nil {
			return fmt.Errorf("meta: flush properties for connection %q: %w", connID, flushErr)
		}

		stmt, findErr := s.store.Statement(connID, stmtID)
		if findErr != nil {
			return findErr
		}

		rs, execErr := executeStatement(ctx, stmt, params, maxRowsPerFrame)
		if execErr != nil {
			return execErr
		}
		result = rs
		return nil
	})
	return result, err
}

// PrepareAndExecute fuses Prepare and Execute against a StatementHandle
// the caller already allocated via CreateStatement.
func (s *Service) PrepareAndExecute(ctx context.Context, connID string, stmtID int64, sql string, maxRowsTotal, maxRowsPerFrame int64) (result *ResultSet, err error) {
	err = s.withDelegate(ctx, func(ctx context.Context) error {
		conn, lookupErr := s.store.Connection(connID)
		if lookupErr != nil {
			return lookupErr
		}

		conn.Lock()
		defer conn.Unlock()

		if flushErr := flushDirty(ctx, conn); flushErr != nil {
			return fmt.Errorf("meta: flush properties for connection %q: %w", connID, flushErr)
		}

		stmt, bindErr := rebindPrepared(ctx, s.store, conn, connID, stmtID, sql)
		if bindErr != nil {
			return bindErr
		}
		stmt.MaxRowsTotal = maxRowsTotal

		rs, execErr := executeStatement(ctx, stmt, nil, maxRowsPerFrame)
		if execErr != nil {
			return execErr
		}
		result = rs
		return nil
	})
	return result, err
}

// executeStatement is the shared Execute-algorithm core: bind parameters,
// invoke the Engine, and materialize the first frame. Callers must hold
// the owning connection's lock.
func executeStatement(ctx context.Context, stmt *session.Statement, params []typedvalue.Value, maxRowsPerFrame int64) (*ResultSet, error) {
	if err := bindParams(stmt.ParamSignature, params); err != nil {
		return nil, err
	}

	stmt.State = session.StmtExecuting

	cursor, sig, updateCount, err := stmt.Engine.Execute(ctx, params, stmt.MaxRowsTotal)
	if err != nil {
		stmt.State = session.StmtIdle
		return nil, fmt.Errorf("meta: execute: %w", err)
	}
	stmt.ResultSignature = sig

	if cursor == nil {
		stmt.State = session.StmtIdle
		return &ResultSet{
			StatementID:     stmt.ID,
			ResultSignature: sig,
			UpdateCount:     updateCount,
			Frame:           Frame{Done: true},
		}, nil
	}

	frameSize := maxRowsPerFrame
	if frameSize <= 0 {
		frameSize = DefaultFrameMaxSize
	}

	rows, done, err := cursor.Fetch(ctx, int(frameSize))
	if err != nil {
		cursor.Close(ctx)
		stmt.State = session.StmtIdle
		return nil, fmt.Errorf("meta: materialize first frame: %w", err)
	}

	if done {
		cursor.Close(ctx)
		stmt.State = session.StmtIdle
		stmt.Cursor = nil
	} else {
		stmt.Cursor = session.NewCursor(cursor)
		stmt.Cursor.Advance(int64(len(rows)))
		stmt.State = session.StmtHasCursor
	}

	return &ResultSet{
		StatementID:     stmt.ID,
		ResultSignature: sig,
		UpdateCount:     updateCount,
		Frame:           Frame{Offset: 0, Done: done, Rows: rows},
	}, nil
}
