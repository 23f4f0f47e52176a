package session

import "context"

type ctxKey struct{}

// WithResolver stores r in ctx for request-scoped handlers.
func WithResolver(ctx context.Context, r *Resolver) context.Context {
	return context.WithValue(ctx, ctxKey{}, r)
}

// FromContext returns the request's Resolver. Handlers only run behind the
// visitor middleware, so a missing resolver is a wiring bug and panics.
func FromContext(ctx context.Context) *Resolver {
	r, _ := ctx.Value(ctxKey{}).(*Resolver)
	if r == nil {
		panic("session: no resolver in request context")
	}
	return r
}

// ResolverFrom is FromContext without the panic, for code that also runs
// outside visitor scope.
func ResolverFrom(ctx context.Context) (*Resolver, bool) {
	r, ok := ctx.Value(ctxKey{}).(*Resolver)
	return r, ok && r != nil
}
