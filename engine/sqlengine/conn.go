package sqlengine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/metarpc/metarpc/engine"
	"github.com/metarpc/metarpc/typedvalue"
)

// sqlConn pins one *sql.Conn for the lifetime of a ConnectionHandle,
// optionally wrapping it in a *sql.Tx when autocommit is off.
type sqlConn struct {
	conn       *sql.Conn
	tx         *sql.Tx
	logger     *slog.Logger
	autoCommit bool
}

// querier is satisfied by both *sql.Conn and *sql.Tx, letting every
// statement/catalog method run against whichever is currently active
// without branching at every call site.
type querier interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (c *sqlConn) active() querier {
	if c.tx != nil {
		return c.tx
	}
	return c.conn
}

func (c *sqlConn) SetAutoCommit(ctx context.Context, autoCommit bool) error {
	if autoCommit == c.autoCommit {
		return nil
	}
	if autoCommit {
		// Turning autocommit back on without an explicit commit/rollback
		// resolves the open transaction the same way a commit would.
		if c.tx != nil {
			if err := c.tx.Commit(); err != nil {
				return fmt.Errorf("sqlengine: implicit commit on autocommit enable: %w", err)
			}
			c.tx = nil
		}
		c.autoCommit = true
		return nil
	}

	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlengine: begin transaction: %w", err)
	}
	c.tx = tx
	c.autoCommit = false
	return nil
}

func (c *sqlConn) Commit(ctx context.Context) error {
	if c.tx == nil {
		return nil
	}
	err := c.tx.Commit()
	c.tx = nil
	if !c.autoCommit {
		// Keep Transactional state: immediately open the next transaction
		// so subsequent statements remain scoped, matching the state
		// machine's "commit keeps Transactional unless autocommit toggled".
		tx, beginErr := c.conn.BeginTx(ctx, nil)
		if beginErr != nil {
			return fmt.Errorf("sqlengine: commit: %w (and failed to reopen transaction: %v)", err, beginErr)
		}
		c.tx = tx
	}
	if err != nil {
		return fmt.Errorf("sqlengine: commit: %w", err)
	}
	return nil
}

func (c *sqlConn) Rollback(ctx context.Context) error {
	if c.tx == nil {
		return nil
	}
	err := c.tx.Rollback()
	c.tx = nil
	if !c.autoCommit {
		tx, beginErr := c.conn.BeginTx(ctx, nil)
		if beginErr != nil {
			return fmt.Errorf("sqlengine: rollback: %w (and failed to reopen transaction: %v)", err, beginErr)
		}
		c.tx = tx
	}
	if err != nil {
		return fmt.Errorf("sqlengine: rollback: %w", err)
	}
	return nil
}

func (c *sqlConn) SetCatalog(ctx context.Context, catalog string) error {
	if catalog == "" {
		return nil
	}
	_, err := c.conn.ExecContext(ctx, "USE "+quoteIdent(catalog))
	return err
}

func (c *sqlConn) SetSchema(ctx context.Context, schema string) error {
	// MySQL has no separate schema concept distinct from catalog; treat it
	// as a synonym so the property still round-trips through ConnectionSync.
	return c.SetCatalog(ctx, schema)
}

func (c *sqlConn) SetReadOnly(ctx context.Context, readOnly bool) error {
	mode := "READ WRITE"
	if readOnly {
		mode = "READ ONLY"
	}
	_, err := c.conn.ExecContext(ctx, "SET SESSION TRANSACTION "+mode)
	return err
}

func (c *sqlConn) SetTransactionIsolation(ctx context.Context, level int32) error {
	name, ok := isolationLevelName(level)
	if !ok {
		return fmt.Errorf("sqlengine: unsupported transaction isolation level %d", level)
	}
	_, err := c.conn.ExecContext(ctx, "SET SESSION TRANSACTION ISOLATION LEVEL "+name)
	return err
}

func (c *sqlConn) Prepare(ctx context.Context, query string) (engine.Statement, error) {
	stmt, err := c.active().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlengine: prepare: %w", err)
	}
	return newSQLStatement(ctx, c, stmt, query)
}

func (c *sqlConn) Close(ctx context.Context) error {
	if c.tx != nil {
		if err := c.tx.Rollback(); err != nil && c.logger != nil {
			c.logger.Warn("rollback on connection close failed", "err", err)
		}
	}
	return c.conn.Close()
}

func quoteIdent(ident string) string {
	return "`" + ident + "`"
}

func isolationLevelName(level int32) (string, bool) {
	switch level {
	case 1:
		return "READ UNCOMMITTED", true
	case 2:
		return "READ COMMITTED", true
	case 4:
		return "REPEATABLE READ", true
	case 8:
		return "SERIALIZABLE", true
	default:
		return "", false
	}
}

var _ engine.Conn = (*sqlConn)(nil)

// columnSignatureFor introspects a *sql.Rows' column metadata into the
// wire's ColumnMetaData, the Engine-side source for every result signature.
func columnSignatureFor(rows *sql.Rows) ([]typedvalue.ColumnMetaData, error) {
	cols, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("sqlengine: column types: %w", err)
	}
	sig := make([]typedvalue.ColumnMetaData, len(cols))
	for i, col := range cols {
		sqlType := sqlTypeFor(col)
		precision, scale, _ := col.DecimalSize()
		nullable, _ := col.Nullable()
		sig[i] = typedvalue.ColumnMetaData{
			Ordinal:   int32(i),
			Name:      col.Name(),
			Label:     col.Name(),
			Type:      sqlType,
			Precision: int32(precision),
			Scale:     int32(scale),
			Nullable:  nullable,
			Signed:    isSignedType(sqlType),
		}
	}
	return sig, nil
}
