package session

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/metarpc/metarpc/engine"
	"github.com/metarpc/metarpc/rpcerr"
)

// Store is the Session Store: capacity-bounded, idle-expiring caches of
// live Connections and Statements. It is the exclusive owner of both — a
// client driver only ever holds the opaque identifiers this Store hands
// back (§3 "Lifecycle ownership").
//
// Eviction releases the underlying Engine resource before the id becomes
// invalid again, matching the "silent" recovery §7 calls out as the one
// exception to every other failure being surfaced as an ErrorResponse: an
// Engine close that fails during eviction is logged and the id is
// invalidated regardless (§4.4 "Failure semantics").
type Store struct {
	logger *slog.Logger
	conns  *lru.LRU[string, *Connection]
	stmts  *lru.LRU[string, *Statement]
}

// NewStore constructs a Session Store with independent capacity/TTL bounds
// for connections and statements.
func NewStore(connCapacity int, connTTL time.Duration, stmtCapacity int, stmtTTL time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{logger: logger}

	s.conns = lru.NewLRU[string, *Connection](connCapacity, s.onConnectionEvicted, connTTL)
	s.stmts = lru.NewLRU[string, *Statement](stmtCapacity, s.onStatementEvicted, stmtTTL)
	return s
}

func (s *Store) onConnectionEvicted(id string, conn *Connection) {
	conn.Lock()
	defer conn.Unlock()
	if conn.State == ConnClosed {
		return
	}
	conn.State = ConnClosed
	if err := conn.Conn.Close(context.Background()); err != nil {
		s.logger.Warn("engine connection close failed during eviction", "conn_id", id, "err", err)
	}
}

func (s *Store) onStatementEvicted(key string, stmt *Statement) {
	if stmt.State == StmtClosed {
		return
	}
	stmt.State = StmtClosed
	if err := stmt.releaseCursor(context.Background()); err != nil {
		s.logger.Warn("cursor close failed during statement eviction", "conn_id", stmt.ConnID, "stmt_id", stmt.ID, "err", err)
	}
	if stmt.Engine != nil {
		if err := stmt.Engine.Close(context.Background()); err != nil {
			s.logger.Warn("engine statement close failed during eviction", "conn_id", stmt.ConnID, "stmt_id", stmt.ID, "err", err)
		}
	}
}

func statementKey(connID string, stmtID int64) string {
	return connID + ":" + strconv.FormatInt(stmtID, 10)
}

// OpenConnection allocates a ConnectionHandle. It is idempotent when connID
// already names a live connection with identical properties; otherwise a
// second OpenConnection for the same id fails (§4.1 OpenConnection row).
func (s *Store) OpenConnection(id string, engineConn engine.Conn, props Properties) (*Connection, error) {
	if existing, ok := s.conns.Get(id); ok {
		existing.Lock()
		defer existing.Unlock()
		if existing.Props == props {
			return existing, nil
		}
		return nil, fmt.Errorf("connection %q already open with different properties", id)
	}

	conn := newConnection(id, engineConn, props)
	s.conns.Add(id, conn)
	return conn, nil
}

// Connection looks up a live ConnectionHandle, touching its recency.
func (s *Store) Connection(id string) (*Connection, error) {
	conn, ok := s.conns.Get(id)
	if !ok {
		return nil, rpcerr.ConnectionNotFound(id)
	}
	return conn, nil
}

// CloseConnection releases a connection and every statement it owns.
// Idempotent: closing an id that is already gone is not an error (§4.1
// CloseConnection row).
func (s *Store) CloseConnection(ctx context.Context, id string) error {
	conn, ok := s.conns.Get(id)
	if !ok {
		return nil
	}

	conn.Lock()
	stmtIDs := make([]int64, 0, len(conn.statements))
	for stmtID := range conn.statements {
		stmtIDs = append(stmtIDs, stmtID)
	}
	conn.Unlock()

	for _, stmtID := range stmtIDs {
		if err := s.CloseStatement(ctx, id, stmtID); err != nil {
			s.logger.Warn("statement close failed during connection close", "conn_id", id, "stmt_id", stmtID, "err", err)
		}
	}

	conn.Lock()
	alreadyClosed := conn.State == ConnClosed
	conn.State = ConnClosed
	conn.Unlock()

	s.conns.Remove(id)

	if alreadyClosed {
		return nil
	}
	if err := engineConnClose(ctx, conn); err != nil {
		s.logger.Warn("engine connection close failed", "conn_id", id, "err", err)
	}
	return nil
}

func engineConnClose(ctx context.Context, conn *Connection) error {
	return conn.Conn.Close(ctx)
}

// CreateStatement allocates a StatementHandle owned by connID.
func (s *Store) CreateStatement(connID string, sql string, engineStmt engine.Statement) (*Statement, error) {
	conn, err := s.Connection(connID)
	if err != nil {
		return nil, err
	}

	conn.Lock()
	defer conn.Unlock()

	id := conn.nextStatementID()
	stmt := newStatement(connID, id, sql, engineStmt)
	conn.addStatement(stmt)
	s.stmts.Add(statementKey(connID, id), stmt)
	return stmt, nil
}

// Statement looks up a live StatementHandle, touching its recency.
func (s *Store) Statement(connID string, stmtID int64) (*Statement, error) {
	stmt, ok := s.stmts.Get(statementKey(connID, stmtID))
	if !ok {
		return nil, rpcerr.StatementNotFound(connID, stmtID)
	}
	return stmt, nil
}

// CloseStatement releases a statement's cursor and Engine resource.
// Idempotent.
func (s *Store) CloseStatement(ctx context.Context, connID string, stmtID int64) error {
	key := statementKey(connID, stmtID)
	stmt, ok := s.stmts.Get(key)
	if !ok {
		return nil
	}

	if stmt.State != StmtClosed {
		if err := stmt.releaseCursor(ctx); err != nil {
			s.logger.Warn("cursor close failed on statement close", "conn_id", connID, "stmt_id", stmtID, "err", err)
		}
		if stmt.Engine != nil {
			if err := stmt.Engine.Close(ctx); err != nil {
				s.logger.Warn("engine statement close failed", "conn_id", connID, "stmt_id", stmtID, "err", err)
			}
		}
		stmt.State = StmtClosed
	}

	s.stmts.Remove(key)

	if conn, err := s.Connection(connID); err == nil {
		conn.Lock()
		conn.removeStatement(stmtID)
		conn.Unlock()
	}
	return nil
}

// ConnectionCount is the diagnostic surface (§9's explicit test-observation
// interface, replacing reflection) reporting how many connections are
// currently live.
func (s *Store) ConnectionCount() int {
	return s.conns.Len()
}

// StatementCount reports how many statements a connection currently owns
// — the testable property behind "statement count after close" (§8).
func (s *Store) StatementCount(connID string) int {
	conn, err := s.Connection(connID)
	if err != nil {
		return 0
	}
	return conn.statementCount()
}

// Close releases every connection and statement the Store currently holds,
// running each through the same eviction path a capacity/TTL expiry would
// — the Engine Adapter's Close is called exactly once per live connection
// either way. Used by the Server Runtime on graceful shutdown.
func (s *Store) Close() error {
	s.stmts.Purge()
	s.conns.Purge()
	return nil
}
