package session

import (
	"sync/atomic"

	"github.com/metarpc/metarpc/engine"
)

// Cursor is the server-held iterator state bound to a Statement once a
// frame has been materialized: the live Engine cursor plus the absolute
// row position already delivered, so Fetch can enforce forward-only
// offsets (§4.4).
type Cursor struct {
	engineCursor engine.Cursor
	position     int64
	canceled     atomic.Bool
}

func newCursor(ec engine.Cursor) *Cursor {
	return &Cursor{engineCursor: ec}
}

// NewCursor wraps a live Engine cursor for retention under a StatementHandle,
// for use by the Meta Service once it has materialized a frame and decided
// to retain the cursor rather than release it.
func NewCursor(ec engine.Cursor) *Cursor {
	return newCursor(ec)
}

// Position reports the absolute offset of the next row this cursor will
// yield — the row count already delivered across every prior frame.
func (c *Cursor) Position() int64 { return c.position }

// advance records that n additional rows were delivered.
func (c *Cursor) advance(n int64) { c.position += n }

// Advance records that n additional rows were delivered. Exported for the
// Meta Service, which owns frame materialization and therefore knows how
// many rows moved the cursor forward.
func (c *Cursor) Advance(n int64) { c.advance(n) }

// Cancel marks the cursor canceled. The *next* Fetch against it observes
// the flag and fails with a canceled-statement error instead of returning
// rows, per §4.4/§7.
func (c *Cursor) Cancel() { c.canceled.Store(true) }

// Canceled reports whether Cancel has been called on this cursor.
func (c *Cursor) Canceled() bool { return c.canceled.Load() }

// Engine returns the underlying Engine cursor, for the Meta Service's
// Fetch algorithm to skip/read/close directly.
func (c *Cursor) Engine() engine.Cursor { return c.engineCursor }
