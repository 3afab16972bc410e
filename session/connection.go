// Package session implements the Session Store: the in-memory,
// capacity-bounded caches of live connections, statements, and their
// result cursors that the Meta Service drives. Session Store exclusively
// owns these resources; client drivers ever hold only the opaque
// identifiers handed back across the wire.
package session

import (
	"sync"

	"github.com/metarpc/metarpc/engine"
)

// ConnState is the per-connection state machine: Open (autocommit) is the
// initial state; turning autocommit off moves to Transactional on the next
// property flush; Close is terminal.
type ConnState int

const (
	ConnOpen ConnState = iota
	ConnTransactional
	ConnClosed
)

// Properties mirrors the client-local view of connection properties
// recognized on ConnectionSync. The Dirty bit is set by a client-requested
// mutation and cleared only once the next data-plane operation flushes it
// to the Engine — see flushDirty in package meta.
type Properties struct {
	AutoCommit           bool
	ReadOnly             bool
	Catalog              string
	Schema               string
	TransactionIsolation int32
	Dirty                bool
}

// Connection is a server-side ConnectionHandle: the Engine-side connection
// resource, the client's property view, and every Statement it owns.
// All access to a Connection's mutable state goes through its own mutex,
// which callers acquire for the duration of whatever Engine call they're
// making — see §4.3/§5.
type Connection struct {
	ID    string
	Conn  engine.Conn
	Props Properties
	State ConnState

	mu         sync.Mutex
	nextStmtID int64
	statements map[int64]*Statement
}

func newConnection(id string, conn engine.Conn, props Properties) *Connection {
	return &Connection{
		ID:         id,
		Conn:       conn,
		Props:      props,
		State:      ConnOpen,
		statements: make(map[int64]*Statement),
	}
}

// Lock acquires the connection's mutex. Every operation that touches this
// Connection or any Statement it owns must hold this lock for the
// duration of the Engine call it makes.
func (c *Connection) Lock() { c.mu.Lock() }

// Unlock releases the connection's mutex.
func (c *Connection) Unlock() { c.mu.Unlock() }

// nextStatementID allocates the next monotonically increasing statement id
// for this connection. Callers must hold the connection's lock.
func (c *Connection) nextStatementID() int64 {
	c.nextStmtID++
	return c.nextStmtID
}

// addStatement registers a Statement under this connection. Callers must
// hold the connection's lock.
func (c *Connection) addStatement(stmt *Statement) {
	c.statements[stmt.ID] = stmt
}

// statement looks up a Statement by id. Callers must hold the connection's
// lock.
func (c *Connection) statement(id int64) (*Statement, bool) {
	s, ok := c.statements[id]
	return s, ok
}

// removeStatement drops a Statement from this connection's table. Callers
// must hold the connection's lock.
func (c *Connection) removeStatement(id int64) {
	delete(c.statements, id)
}

// statementCount reports how many statements this connection currently
// owns — the diagnostic surface behind the statement-count-after-close
// testable property (§8).
func (c *Connection) statementCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.statements)
}
