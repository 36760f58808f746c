package auth

import "context"

// Principal is the authenticated actor of a single request.
type Principal struct {
	// ID is the internal user id. It is never serialized.
	ID   int
	Name string
}

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the principal stored in ctx, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	if !ok || p.ID < 1 {
		return Principal{}, false
	}
	return p, true
}
