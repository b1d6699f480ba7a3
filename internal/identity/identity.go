// Package identity carries the signed-in identity of a request through
// context.Context.
package identity

import (
	"context"
	"errors"

	"github.com/falijedan/falijedan/internal/backend"
)

var ErrUnauthenticated = errors.New("unauthenticated")

type identityContextKey struct{}

func WithIdentity(ctx context.Context, id *backend.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// FromContext retrieves the identity stored in ctx.
// It returns nil if ctx is nil, if no identity is stored, or if the stored value has a different type.
func FromContext(ctx context.Context) *backend.Identity {
	if ctx == nil {
		return nil
	}

	id, ok := ctx.Value(identityContextKey{}).(*backend.Identity)
	if !ok {
		return nil
	}

	return id
}

// Require returns the identity in ctx or ErrUnauthenticated.
func Require(ctx context.Context) (*backend.Identity, error) {
	id := FromContext(ctx)
	if id == nil || id.ID == "" {
		return nil, ErrUnauthenticated
	}
	return id, nil
}

// Is reports whether viewer is the identity with the given id.
func Is(viewer *backend.Identity, userID string) bool {
	return viewer != nil && viewer.ID != "" && viewer.ID == userID
}
