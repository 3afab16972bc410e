// Package sqlengine is the database/sql binding of the engine.Engine
// capability: one *sql.DB pool, one *sql.Conn checked out per
// ConnectionHandle, and information_schema-backed catalog queries. It is
// driver-agnostic — the shipped binary registers
// github.com/go-sql-driver/mysql, but any database/sql driver works
// unmodified.
package sqlengine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/metarpc/metarpc/engine"
)

// Engine wraps a *sql.DB pool and the driver name it was opened with.
type Engine struct {
	db         *sql.DB
	driverName string
	logger     *slog.Logger
}

// Open constructs an Engine around a freshly opened *sql.DB. The caller is
// responsible for having imported the driver package for its side-effect
// registration (e.g. blank-importing github.com/go-sql-driver/mysql).
func Open(driverName, dsn string, logger *slog.Logger) (*Engine, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlengine: open %s: %w", driverName, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{db: db, driverName: driverName, logger: logger}, nil
}

// Name reports the driver name plus the backend's self-reported version.
func (e *Engine) Name(ctx context.Context) (string, error) {
	var version string
	if err := e.db.QueryRowContext(ctx, "SELECT VERSION()").Scan(&version); err != nil {
		return e.driverName, nil
	}
	return fmt.Sprintf("%s %s", e.driverName, version), nil
}

// Close shuts down the underlying pool. It is not part of engine.Engine,
// so Server.Close does not call it.
func (e *Engine) Close() error {
	return e.db.Close()
}

// Open checks out a single *sql.Conn and pins it to the returned Conn for
// the lifetime of one ConnectionHandle.
func (e *Engine) Open(ctx context.Context) (engine.Conn, error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlengine: checkout connection: %w", err)
	}
	return &sqlConn{conn: conn, logger: e.logger, autoCommit: true}, nil
}
