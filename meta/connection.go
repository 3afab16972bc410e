package meta

import (
	"context"
	"fmt"

	"github.com/metarpc/metarpc/session"
)

// OpenConnection allocates a ConnectionHandle, opening a fresh Engine
// connection underneath it. Idempotent when connID already names a live
// connection with identical properties (enforced by the Session Store).
func (s *Service) OpenConnection(ctx context.Context, connID string, props session.Properties) (conn *session.Connection, err error) {
	err = s.withDelegate(ctx, func(ctx context.Context) error {
		if existing, lookupErr := s.store.Connection(connID); lookupErr == nil {
			conn = existing
			_, openErr := s.store.OpenConnection(connID, existing.Conn, props)
			return openErr
		}

		engineConn, openErr := s.engine.Open(ctx)
		if openErr != nil {
			return fmt.Errorf("meta: open connection %q: %w", connID, openErr)
		}

		conn, err = s.store.OpenConnection(connID, engineConn, props)
		if err != nil {
			engineConn.Close(ctx)
			return err
		}
		return nil
	})
	return conn, err
}

// CloseConnection releases a connection and every statement it owns.
// Idempotent.
func (s *Service) CloseConnection(ctx context.Context, connID string) error {
	return s.withDelegate(ctx, func(ctx context.Context) error {
		return s.store.CloseConnection(ctx, connID)
	})
}

// ConnectionSync pushes the client-local property changes onto the
// connection's dirty view and returns the server's post-apply view. The
// changes are not flushed to the Engine immediately — the next data-plane
// operation does that (§4.3).
func (s *Service) ConnectionSync(ctx context.Context, connID string, requested session.Properties) (session.Properties, error) {
	conn, err := s.store.Connection(connID)
	if err != nil {
		return session.Properties{}, err
	}

	conn.Lock()
	defer conn.Unlock()

	if conn.Props == requested {
		return conn.Props, nil
	}

	requested.Dirty = true
	conn.Props = requested
	return conn.Props, nil
}

// ProtocolVersion is this implementation's wire protocol build marker —
// the AVATICA_VERSION analogue (§8 scenario 5). It is fixed at compile
// time and never derived from the backing Engine, so a client comparing
// its own build constant against DatabaseProperty's response is
// comparing protocol versions, not database versions.
const ProtocolVersion = "metarpc-1.0"

// SupportedFeatures lists the optional capabilities this server honors,
// reported under PropertySupportedFeatures.
const SupportedFeatures = "AUTO_COMMIT,TRANSACTIONS,CANCEL,IMPERSONATION,BATCH"

// Property names recognized by DatabaseProperty.
const (
	PropertyAvaticaVersion    = "AVATICA_VERSION"
	PropertyEngineVersion     = "ENGINE_VERSION"
	PropertySupportedFeatures = "SUPPORTED_FEATURES"
)

// DatabaseProperty reports metadata named by name: the protocol build
// constant, the backing Engine's own version string, or the feature list,
// keyed the way the wire's map-shaped DatabasePropertyResponse expects. An
// empty name returns every recognized property at once, the way a client
// probing capabilities on connect would.
func (s *Service) DatabaseProperty(ctx context.Context, connID, name string) (map[string]string, error) {
	if _, err := s.store.Connection(connID); err != nil {
		return nil, err
	}
	var engineVersion string
	err := s.withDelegate(ctx, func(ctx context.Context) error {
		var nameErr error
		engineVersion, nameErr = s.engine.Name(ctx)
		return nameErr
	})
	if err != nil {
		return nil, fmt.Errorf("meta: database property: %w", err)
	}

	all := map[string]string{
		PropertyAvaticaVersion:    ProtocolVersion,
		PropertyEngineVersion:     engineVersion,
		PropertySupportedFeatures: SupportedFeatures,
	}

	if name == "" {
		return all, nil
	}
	value, ok := all[name]
	if !ok {
		return nil, fmt.Errorf("meta: database property: unrecognized property %q", name)
	}
	return map[string]string{name: value}, nil
}
