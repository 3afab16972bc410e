// Package engine defines the blackbox capability the Meta Service drives:
// something that can open connections, prepare and execute statements, and
// hand back row cursors. The protocol core never assumes a specific
// database; engine/sqlengine is the concrete database/sql binding shipped
// with this repository, but any other implementation of these interfaces
// plugs in unmodified.
package engine

import (
	"context"

	"github.com/metarpc/metarpc/typedvalue"
)

// Engine opens backend connections. One Engine instance typically wraps one
// *sql.DB connection pool.
type Engine interface {
	Open(ctx context.Context) (Conn, error)
	// Name identifies the engine for DatabaseProperty responses, e.g.
	// "mysql" plus the driver-reported server version.
	Name(ctx context.Context) (string, error)
}

// Conn is a single backend connection, pinned for the lifetime of one
// ConnectionHandle so that session state (temp tables, SET variables,
// transactions) behaves the way a client expects from a single database
// session.
type Conn interface {
	Prepare(ctx context.Context, sql string) (Statement, error)

	// SetAutoCommit toggles transaction mode. Turning it off begins a
	// transaction that Commit/Rollback later resolve; turning it back on
	// commits any open transaction. Commit/Rollback while already in
	// autocommit are no-ops.
	SetAutoCommit(ctx context.Context, autoCommit bool) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// SetCatalog and SetSchema apply a pending property flush; either may
	// be a no-op depending on what the backend supports.
	SetCatalog(ctx context.Context, catalog string) error
	SetSchema(ctx context.Context, schema string) error
	SetReadOnly(ctx context.Context, readOnly bool) error
	SetTransactionIsolation(ctx context.Context, level int32) error

	Schemas(ctx context.Context, catalogFilter string) (Cursor, []typedvalue.ColumnMetaData, error)
	Tables(ctx context.Context, catalog, schemaPattern, tableNamePattern string, types []string) (Cursor, []typedvalue.ColumnMetaData, error)
	Columns(ctx context.Context, catalog, schemaPattern, tableNamePattern, columnNamePattern string) (Cursor, []typedvalue.ColumnMetaData, error)
	TypeInfo(ctx context.Context) (Cursor, []typedvalue.ColumnMetaData, error)

	Close(ctx context.Context) error
}

// Statement is a prepared statement bound to a Conn.
type Statement interface {
	ParamSignature() []typedvalue.ParamMetaData

	// Execute binds params against the parameter signature and runs the
	// statement. maxRowsTotal <= 0 means unbounded. For a statement that
	// returns no rows (DDL/DML), cursor is nil and updateCount holds the
	// affected row count.
	Execute(ctx context.Context, params []typedvalue.Value, maxRowsTotal int64) (cursor Cursor, resultSignature []typedvalue.ColumnMetaData, updateCount int64, err error)

	Close(ctx context.Context) error
}

// Cursor is a live, forward-only, server-held row iterator. Fetch reads up
// to n rows; done reports whether the cursor is exhausted (in which case
// the caller must still call Close). Skip discards rows without
// materializing them, used to catch a Fetch cursor up to a requested
// offset ahead of its current position.
type Cursor interface {
	Fetch(ctx context.Context, n int) (rows [][]typedvalue.Value, done bool, err error)
	Skip(ctx context.Context, n int64) error
	Close(ctx context.Context) error
}
