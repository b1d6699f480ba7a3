package backend

import (
	"context"
	"fmt"
)

type unconfigured struct {
	Broadcaster
	err error
}

// Unconfigured returns a client whose every operation fails with
// ErrNotConfigured wrapped around reason. It lets the server start without a
// backend so pages can report the problem instead of the process exiting.
func Unconfigured(reason error) Client {
	err := ErrNotConfigured
	if reason != nil {
		err = fmt.Errorf("%w: %v", ErrNotConfigured, reason)
	}
	return &unconfigured{err: err}
}

func (u *unconfigured) GetSession(context.Context, string) (*Identity, error) {
	return nil, u.err
}

func (u *unconfigured) SignIn(context.Context, string, string) (*Session, error) {
	return nil, u.err
}

func (u *unconfigured) SignUp(context.Context, string, string) (*Session, error) {
	return nil, u.err
}

func (u *unconfigured) Refresh(context.Context, string) (*Session, error) {
	return nil, u.err
}

func (u *unconfigured) SignOut(context.Context, *Session) error {
	return u.err
}

func (u *unconfigured) Select(context.Context, Query, any) error {
	return u.err
}

func (u *unconfigured) SelectSingle(context.Context, Query, any) error {
	return u.err
}

func (u *unconfigured) Insert(context.Context, Collection, any) error {
	return u.err
}

func (u *unconfigured) Upsert(context.Context, Collection, any) error {
	return u.err
}

func (u *unconfigured) Close() error {
	return nil
}
