package metrics

import (
	"context"
	"time"

	"github.com/falijedan/falijedan/internal/backend"
)

// InstrumentedClient records every facade call before delegating.
type InstrumentedClient struct {
	backend.Client
	recorder *Recorder
}

func (r *Recorder) Instrument(client backend.Client) *InstrumentedClient {
	return &InstrumentedClient{Client: client, recorder: r}
}

func (c *InstrumentedClient) GetSession(ctx context.Context, accessToken string) (*backend.Identity, error) {
	start := time.Now()
	identity, err := c.Client.GetSession(ctx, accessToken)
	c.recorder.observe("get_session", "", start, err)
	return identity, err
}

func (c *InstrumentedClient) SignIn(ctx context.Context, email, password string) (*backend.Session, error) {
	start := time.Now()
	session, err := c.Client.SignIn(ctx, email, password)
	c.recorder.observe("sign_in", "", start, err)
	return session, err
}

func (c *InstrumentedClient) SignUp(ctx context.Context, email, password string) (*backend.Session, error) {
	start := time.Now()
	session, err := c.Client.SignUp(ctx, email, password)
	c.recorder.observe("sign_up", "", start, err)
	return session, err
}

func (c *InstrumentedClient) Refresh(ctx context.Context, refreshToken string) (*backend.Session, error) {
	start := time.Now()
	session, err := c.Client.Refresh(ctx, refreshToken)
	c.recorder.observe("refresh", "", start, err)
	return session, err
}

func (c *InstrumentedClient) SignOut(ctx context.Context, session *backend.Session) error {
	start := time.Now()
	err := c.Client.SignOut(ctx, session)
	c.recorder.observe("sign_out", "", start, err)
	return err
}

func (c *InstrumentedClient) Select(ctx context.Context, q backend.Query, dst any) error {
	start := time.Now()
	err := c.Client.Select(ctx, q, dst)
	c.recorder.observe("select", q.Collection, start, err)
	return err
}

func (c *InstrumentedClient) SelectSingle(ctx context.Context, q backend.Query, dst any) error {
	start := time.Now()
	err := c.Client.SelectSingle(ctx, q, dst)
	c.recorder.observe("select_single", q.Collection, start, err)
	return err
}

func (c *InstrumentedClient) Insert(ctx context.Context, collection backend.Collection, record any) error {
	start := time.Now()
	err := c.Client.Insert(ctx, collection, record)
	c.recorder.observe("insert", collection, start, err)
	return err
}

func (c *InstrumentedClient) Upsert(ctx context.Context, collection backend.Collection, record any) error {
	start := time.Now()
	err := c.Client.Upsert(ctx, collection, record)
	c.recorder.observe("upsert", collection, start, err)
	return err
}
