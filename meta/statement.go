package meta

import (
	"context"
	"fmt"

	"github.com/metarpc/metarpc/session"
)

// CreateStatement allocates a bare StatementHandle with no SQL bound yet.
// A client typically follows with PrepareAndExecute against the returned
// id, rather than calling the standalone Prepare below.
func (s *Service) CreateStatement(ctx context.Context, connID string) (stmt *session.Statement, err error) {
	err = s.withDelegate(ctx, func(ctx context.Context) error {
		stmt, err = s.store.CreateStatement(connID, "", nil)
		return err
	})
	return stmt, err
}

// CloseStatement releases a statement's cursor and Engine resource.
// Idempotent.
func (s *Service) CloseStatement(ctx context.Context, connID string, stmtID int64) error {
	return s.withDelegate(ctx, func(ctx context.Context) error {
		return s.store.CloseStatement(ctx, connID, stmtID)
	})
}

// Prepare parses SQL against the Engine and allocates a fresh
// StatementHandle carrying the resulting parameter/column signatures,
// without executing it.
func (s *Service) Prepare(ctx context.Context, connID, sql string) (stmt *session.Statement, err error) {
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

		engineStmt, prepErr := conn.Conn.Prepare(ctx, sql)
		if prepErr != nil {
			return fmt.Errorf("meta: prepare %q: %w", sql, prepErr)
		}

		created, createErr := s.store.CreateStatement(connID, sql, engineStmt)
		if createErr != nil {
			return createErr
		}
		stmt = created
		return nil
	})
	return stmt, err
}

// rebindPrepared prepares sql against the Engine and binds the resulting
// statement onto an existing StatementHandle, used by the fused
// PrepareAndExecute path where the caller already holds a stmtID from
// CreateStatement. Callers must hold conn's lock and have already flushed
// dirty properties.
func rebindPrepared(ctx context.Context, store *session.Store, conn *session.Connection, connID string, stmtID int64, sql string) (*session.Statement, error) {
	stmt, err := store.Statement(connID, stmtID)
	if err != nil {
		return nil, err
	}

	engineStmt, err := conn.Conn.Prepare(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("meta: prepare %q: %w", sql, err)
	}

	if stmt.Engine != nil {
		stmt.Engine.Close(ctx)
	}

	stmt.SQL = sql
	stmt.Engine = engineStmt
	stmt.ParamSignature = engineStmt.ParamSignature()
	stmt.ResultSignature = nil
	stmt.State = session.StmtIdle
	return stmt, nil
}
