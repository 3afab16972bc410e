package metarpc

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/metarpc/metarpc/session"
)

// OptionFn configures a Server at construction time. Unlike a typical
// functional option, these may fail — a non-positive timeout or byte cap is
// a configuration error worth rejecting at NewServer time rather than
// silently ignoring.
type OptionFn func(*Server) error

// WithLogger overrides the default slog.Default() logger.
func WithLogger(logger *slog.Logger) OptionFn {
	return func(srv *Server) error {
		if logger == nil {
			return fmt.Errorf("metarpc: logger must not be nil")
		}
		srv.logger = logger
		return nil
	}
}

// WithServerAddress sets the value every response's RPC metadata envelope
// carries. If unset, the Server falls back to the listener's local address
// once Serve is called.
func WithServerAddress(addr string) OptionFn {
	return func(srv *Server) error {
		srv.serverAddress = addr
		return nil
	}
}

// WithDelegate installs the impersonation boundary every request is routed
// through (§4.3 "Identity delegation").
func WithDelegate(delegate session.Delegate) OptionFn {
	return func(srv *Server) error {
		srv.delegate = delegate
		return nil
	}
}

// WithMaxHeaderBytes overrides the request header-size cap (§4.5, default
// DefaultMaxHeaderBytes).
func WithMaxHeaderBytes(n int) OptionFn {
	return func(srv *Server) error {
		if n <= 0 {
			return fmt.Errorf("metarpc: max header bytes must be positive, got %d", n)
		}
		srv.maxHeaderBytes = n
		return nil
	}
}

// WithReadHeaderTimeout overrides the hardening-default header read
// timeout applied to the underlying net/http.Server.
func WithReadHeaderTimeout(d time.Duration) OptionFn {
	return func(srv *Server) error {
		if d <= 0 {
			return fmt.Errorf("metarpc: read header timeout must be positive, got %s", d)
		}
		srv.readHeaderTimeout = d
		return nil
	}
}

// WithSessionStore overrides the default Session Store, letting a caller
// tune connection/statement capacity and TTL bounds explicitly instead of
// accepting the package defaults.
func WithSessionStore(store *session.Store) OptionFn {
	return func(srv *Server) error {
		if store == nil {
			return fmt.Errorf("metarpc: session store must not be nil")
		}
		srv.store = store
		return nil
	}
}
