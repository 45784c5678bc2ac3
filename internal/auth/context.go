package auth

import "context"

type userCtxKey struct{}

// WithUser returns ctx carrying the authenticated username.
func WithUser(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, userCtxKey{}, username)
}

// UserFromContext returns the username set by WithUser, or "".
func UserFromContext(ctx context.Context) string {
	u, _ := ctx.Value(userCtxKey{}).(string)
	return u
}
