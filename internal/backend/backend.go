// Package backend is the narrow facade between the web application and the
// hosted backend that owns authentication and persistence.
package backend

import (
	"context"
	"time"
)

// Identity is an authenticated user as reported by the auth subsystem.
type Identity struct {
	ID    string
	Email string
}

// Session is a signed-in identity together with the tokens that prove it.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Identity     Identity
}

func (s *Session) Expired(now time.Time) bool {
	return s == nil || (!s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt))
}

type AuthEventType string

const (
	SignedIn       AuthEventType = "SIGNED_IN"
	SignedOut      AuthEventType = "SIGNED_OUT"
	TokenRefreshed AuthEventType = "TOKEN_REFRESHED"
)

// AuthEvent is pushed to subscribers whenever the auth state of an identity
// changes. Session is nil for SignedOut.
type AuthEvent struct {
	Type     AuthEventType
	Identity Identity
	Session  *Session
	// PreviousRefreshToken identifies the session a TokenRefreshed event
	// replaces.
	PreviousRefreshToken string
}

// Auth is the authentication half of the facade.
type Auth interface {
	// GetSession resolves the identity behind an access token. It returns
	// ErrNoSession when the token is missing, expired or revoked.
	GetSession(ctx context.Context, accessToken string) (*Identity, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	SignOut(ctx context.Context, session *Session) error
	// OnAuthChange registers fn for auth events until the returned function
	// is called.
	OnAuthChange(fn func(AuthEvent)) (unsubscribe func())
}

// Data is the record half of the facade. Every call is a single
// request/response: no retries, no pagination.
type Data interface {
	// Select decodes every matching row into dst, a pointer to a slice.
	Select(ctx context.Context, q Query, dst any) error
	// SelectSingle decodes exactly one row into dst. Zero rows yields
	// ErrNotFound, more than one ErrMultipleRows.
	SelectSingle(ctx context.Context, q Query, dst any) error
	// Insert stores record (a pointer) and fills in backend generated fields.
	Insert(ctx context.Context, collection Collection, record any) error
	// Upsert inserts record or replaces the row with the same primary key.
	Upsert(ctx context.Context, collection Collection, record any) error
}

type Client interface {
	Auth
	Data
	Close() error
}

// SelectAll runs q and returns the decoded rows.
func SelectAll[T any](ctx context.Context, data Data, q Query) ([]T, error) {
	var rows []T
	if err := data.Select(ctx, q, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// SelectOne runs q as a single-row select.
func SelectOne[T any](ctx context.Context, data Data, q Query) (T, error) {
	var row T
	err := data.SelectSingle(ctx, q, &row)
	return row, err
}
