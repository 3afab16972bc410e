// Package meta implements the Meta Service: the stateful façade that
// dispatches every request variant onto Engine operations through the
// Session Store, enforcing the connection/statement state machines and
// materializing result frames.
package meta

import (
	"context"
	"log/slog"

	"github.com/metarpc/metarpc/engine"
	"github.com/metarpc/metarpc/session"
)

// DefaultFrameMaxSize is the per-frame row cap applied when a caller asks
// for zero or a negative frame size.
const DefaultFrameMaxSize = 100

// Service is the Meta Service. It holds no session state of its own —
// that lives entirely in the Session Store — only the collaborators every
// operation needs.
type Service struct {
	store         *session.Store
	engine        engine.Engine
	logger        *slog.Logger
	serverAddress string
	delegate      session.Delegate
}

// NewService wires a Meta Service around a Session Store and an Engine.
// serverAddress is echoed back on every response's RPC metadata (§4.4
// "Server RPC metadata"); delegate may be nil, meaning no impersonation
// boundary is configured.
func NewService(store *session.Store, eng engine.Engine, logger *slog.Logger, serverAddress string, delegate session.Delegate) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:         store,
		engine:        eng,
		logger:        logger,
		serverAddress: serverAddress,
		delegate:      delegate,
	}
}

// ServerAddress is the value every response's RPC metadata envelope
// carries.
func (s *Service) ServerAddress() string { return s.serverAddress }

// withDelegate runs action through the configured impersonation boundary,
// or directly if none is configured.
func (s *Service) withDelegate(ctx context.Context, action func(ctx context.Context) error) error {
	return session.Impersonate(ctx, s.delegate, action)
}

// flushDirty applies any pending local property mutations to the Engine
// connection and clears the dirty bit. Callers must hold conn's lock.
// Per §4.3, this runs before every data-plane operation — execute,
// prepare, metadata query, commit/rollback.
func flushDirty(ctx context.Context, conn *session.Connection) error {
	if !conn.Props.Dirty {
		return nil
	}
	if err := conn.Conn.SetAutoCommit(ctx, conn.Props.AutoCommit); err != nil {
		return err
	}
	if err := conn.Conn.SetReadOnly(ctx, conn.Props.ReadOnly); err != nil {
		return err
	}
	if conn.Props.Catalog != "" {
		if err := conn.Conn.SetCatalog(ctx, conn.Props.Catalog); err != nil {
			return err
		}
	}
	if conn.Props.Schema != "" {
		if err := conn.Conn.SetSchema(ctx, conn.Props.Schema); err != nil {
			return err
		}
	}
	if conn.Props.TransactionIsolation != 0 {
		if err := conn.Conn.SetTransactionIsolation(ctx, conn.Props.TransactionIsolation); err != nil {
			return err
		}
	}

	conn.Props.Dirty = false
	if conn.Props.AutoCommit {
		conn.State = session.ConnOpen
	} else {
		conn.State = session.ConnTransactional
	}
	return nil
}
