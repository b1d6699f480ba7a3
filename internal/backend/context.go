package backend

import "context"

type accessTokenKey struct{}

// WithAccessToken attaches the caller's access token so data operations run
// under that identity's row-level permissions.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessTokenFromContext returns the token stored by WithAccessToken, or "".
func AccessTokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	token, _ := ctx.Value(accessTokenKey{}).(string)
	return token
}
