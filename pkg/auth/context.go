package auth

import "context"

// PrincipalContextKey is the key used to store the Principal in the request
// context.
//
// Using an empty struct as the key prevents collisions with other context
// keys, as each empty struct type is distinct even if they have the same
// name in different packages.
type PrincipalContextKey struct{}

// WithPrincipal stores a Principal in the context.
// If principal is nil, the original context is returned unchanged.
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	if principal == nil {
		return ctx
	}
	return context.WithValue(ctx, PrincipalContextKey{}, principal)
}

// PrincipalFromContext retrieves the Principal from the context.
// Returns the principal and true if present, nil and false otherwise.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	principal, ok := ctx.Value(PrincipalContextKey{}).(*Principal)
	return principal, ok
}
