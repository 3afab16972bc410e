package session

import (
	"context"

	"github.com/metarpc/metarpc/engine"
	"github.com/metarpc/metarpc/typedvalue"
)

// StmtState is the per-statement state machine (§4.4): Idle is the initial
// state; execute moves to Executing then either HasCursor (rows pending)
// or back to Idle (a bare update); an explicit Cancel marks the cursor
// Canceled, observed on the next fetch; Close is terminal.
type StmtState int

const (
	StmtIdle StmtState = iota
	StmtExecuting
	StmtHasCursor
	StmtCanceled
	StmtClosed
)

// Statement is a server-side StatementHandle: the prepared Engine
// statement, its parameter/result signatures, and the cursor bound to it
// once Execute or Fetch has materialized a frame.
type Statement struct {
	ConnID string
	ID     int64
	SQL    string

	ParamSignature  []typedvalue.ParamMetaData
	ResultSignature []typedvalue.ColumnMetaData

	// MaxRowsTotal is the row cap bound at PrepareAndExecute time (≤0
	// meaning unbounded); Execute reuses it on every call against this
	// handle since the wire Execute request itself only carries the
	// per-frame cap. Prepare does not set it: the cap carried by a
	// PrepareRequest is not applied, so a handle created by Prepare or
	// CreateStatement executes with no row cap.
	MaxRowsTotal int64

	State  StmtState
	Engine engine.Statement
	Cursor *Cursor
}

func newStatement(connID string, id int64, sql string, engineStmt engine.Statement) *Statement {
	var paramSig []typedvalue.ParamMetaData
	if engineStmt != nil {
		paramSig = engineStmt.ParamSignature()
	}
	return &Statement{
		ConnID:         connID,
		ID:             id,
		SQL:            sql,
		ParamSignature: paramSig,
		State:          StmtIdle,
		Engine:         engineStmt,
	}
}

// ReleaseCursor closes and clears the bound cursor, if any, leaving the
// statement Idle. Safe to call when there is no cursor. Exported for the
// Meta Service's Fetch algorithm.
func (s *Statement) ReleaseCursor(ctx context.Context) error {
	return s.releaseCursor(ctx)
}

// releaseCursor closes and clears the bound cursor, if any, leaving the
// statement Idle. Safe to call when there is no cursor.
func (s *Statement) releaseCursor(ctx context.Context) error {
	if s.Cursor == nil {
		return nil
	}
	err := s.Cursor.engineCursor.Close(ctx)
	s.Cursor = nil
	if s.State == StmtHasCursor {
		s.State = StmtIdle
	}
	return err
}
