package tokengate

import "context"

type identityContextKey struct{}

// Identity is the request-scoped authenticated principal. It lives only on
// the request context: identity is passed explicitly alongside each request
// rather than held in ambient per-thread state, so nothing can leak across
// concurrently handled requests.
type Identity struct {
	Subject string
}

// WithIdentity attaches the authenticated identity to ctx for downstream
// handlers.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	if id == nil {
		return ctx
	}
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext returns the identity attached by the request
// authenticator, if any. Absence means the request is unauthenticated;
// whether that is acceptable is the route's decision, not the middleware's.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	if ctx == nil {
		return nil, false
	}

	id, ok := ctx.Value(identityContextKey{}).(*Identity)
	return id, ok
}
