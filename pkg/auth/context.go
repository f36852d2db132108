package auth

import "context"

// tokenKey is a private type for the token context key.
type tokenKey struct{}

// SetToken stores the issued token in the context.
func SetToken(ctx context.Context, tok string) context.Context {
	return context.WithValue(ctx, tokenKey{}, tok)
}

// TokenFromContext retrieves the issued token as an opaque string.
// Returns an empty string if the request did not pass the guard.
func TokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(tokenKey{}).(string); ok {
		return v
	}
	return ""
}
