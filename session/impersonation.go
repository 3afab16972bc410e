package session

import "context"

// Delegate is the impersonation boundary hook (§4.3). When configured,
// every data-plane operation is wrapped by a call to Delegate: it receives
// the authenticated remote user and network address and is responsible for
// running action within whatever authorization context it establishes
// (e.g. a downstream `SET ROLE`, a per-tenant connection pool selection).
// The Session Store never caches credentials — only connection
// identifiers — so this is the only place a caller's identity passes
// through at all.
type Delegate func(ctx context.Context, remoteUser, remoteAddr string, action func(ctx context.Context) error) error

// Identity carries the caller attributes a Delegate needs, threaded through
// context by the Transport Dispatcher.
type Identity struct {
	RemoteUser string
	RemoteAddr string
}

type identityKey struct{}

// WithIdentity attaches the caller's identity to ctx for a Delegate to read
// back out via IdentityFromContext.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity attached by WithIdentity, or the
// zero Identity if none was attached.
func IdentityFromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}

// Impersonate runs action directly when no Delegate is configured, or
// wraps it through the Delegate using the identity found on ctx otherwise.
func Impersonate(ctx context.Context, delegate Delegate, action func(ctx context.Context) error) error {
	if delegate == nil {
		return action(ctx)
	}
	id := IdentityFromContext(ctx)
	return delegate(ctx, id.RemoteUser, id.RemoteAddr, action)
}
