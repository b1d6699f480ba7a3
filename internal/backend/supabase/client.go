// Package supabase implements the backend facade against a hosted Supabase
// project: GoTrue for authentication and PostgREST for records.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/falijedan/falijedan/internal/backend"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10

	singleObjectMediaType = "application/vnd.pgrst.object+json"
	noRowsCode            = "PGRST116"

	// Postgres rejects a filter value that cannot be cast to the column type,
	// e.g. a non-uuid id.
	invalidTextCode = "22P02"
)

type Config struct {
	URL     string
	AnonKey string
	// JWTSecret enables local verification of access tokens. When empty
	// GetSession asks the auth server instead.
	JWTSecret  string
	HTTPClient *http.Client
}

type Client struct {
	backend.Broadcaster

	baseURL    *url.URL
	anonKey    string
	jwtSecret  []byte
	httpClient *http.Client
	now        func() time.Time
}

var _ backend.Client = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" || strings.TrimSpace(cfg.AnonKey) == "" {
		return nil, backend.ErrNotConfigured
	}
	baseURL, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.URL), "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid supabase url: %w", err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid supabase url: unsupported scheme %q", baseURL.Scheme)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	var secret []byte
	if cfg.JWTSecret != "" {
		secret = []byte(cfg.JWTSecret)
	}

	return &Client{
		baseURL:    baseURL,
		anonKey:    strings.TrimSpace(cfg.AnonKey),
		jwtSecret:  secret,
		httpClient: httpClient,
		now:        time.Now,
	}, nil
}

func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) Select(ctx context.Context, q backend.Query, dst any) error {
	return c.doQuery(ctx, "select", q, "application/json", dst)
}

func (c *Client) SelectSingle(ctx context.Context, q backend.Query, dst any) error {
	return c.doQuery(ctx, "select_single", q, singleObjectMediaType, dst)
}

func (c *Client) Insert(ctx context.Context, collection backend.Collection, record any) error {
	return c.write(ctx, "insert", collection, record, "return=representation")
}

func (c *Client) Upsert(ctx context.Context, collection backend.Collection, record any) error {
	return c.write(ctx, "upsert", collection, record, "return=representation,resolution=merge-duplicates")
}

func (c *Client) doQuery(ctx context.Context, op string, q backend.Query, accept string, dst any) error {
	endpoint := c.restURL(q.Collection, encodeQuery(q))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &backend.Error{Op: op, Collection: q.Collection, Err: err}
	}
	c.setDataHeaders(ctx, req)
	req.Header.Set("Accept", accept)

	return c.do(req, op, q.Collection, dst, false)
}

func (c *Client) write(ctx context.Context, op string, collection backend.Collection, record any, prefer string) error {
	body, err := json.Marshal(record)
	if err != nil {
		return &backend.Error{Op: op, Collection: collection, Err: fmt.Errorf("encode record: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.restURL(collection, nil), bytes.NewReader(body))
	if err != nil {
		return &backend.Error{Op: op, Collection: collection, Err: err}
	}
	c.setDataHeaders(ctx, req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Prefer", prefer)

	return c.do(req, op, collection, record, true)
}

// do executes req and decodes a successful body into dst. PostgREST answers
// writes with an array; firstOfArray unwraps it into the record pointer.
func (c *Client) do(req *http.Request, op string, collection backend.Collection, dst any, firstOfArray bool) error {
	logger := log.Ctx(req.Context())
	start := c.now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &backend.Error{Op: op, Collection: collection, Err: err}
	}
	defer resp.Body.Close()

	logger.Debug().
		Str("op", op).
		Str("collection", string(collection)).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Backend request completed")

	if resp.StatusCode >= 300 {
		return restError(op, collection, resp)
	}
	if dst == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if firstOfArray {
		var rows []json.RawMessage
		if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
			return &backend.Error{Op: op, Collection: collection, Err: fmt.Errorf("decode response: %w", err)}
		}
		if len(rows) == 0 {
			return nil
		}
		if err := json.Unmarshal(rows[0], dst); err != nil {
			return &backend.Error{Op: op, Collection: collection, Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &backend.Error{Op: op, Collection: collection, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

type restErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func restError(op string, collection backend.Collection, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body restErrorBody
	if err := json.Unmarshal(raw, &body); err != nil || body.Message == "" {
		body.Message = strings.TrimSpace(string(raw))
		if body.Message == "" {
			body.Message = http.StatusText(resp.StatusCode)
		}
	}

	backendErr := &backend.Error{
		Op:         op,
		Collection: collection,
		Status:     resp.StatusCode,
		Code:       body.Code,
		Message:    body.Message,
	}
	switch {
	case body.Code == noRowsCode:
		if strings.Contains(body.Details, " 0 rows") {
			backendErr.Err = backend.ErrNotFound
		} else {
			backendErr.Err = backend.ErrMultipleRows
		}
	case body.Code == invalidTextCode && op == "select_single":
		// No row can carry a malformed id.
		backendErr.Err = backend.ErrNotFound
	}
	return backendErr
}

func (c *Client) restURL(collection backend.Collection, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/rest/v1/" + url.PathEscape(string(collection))
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) authURL(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/auth/v1/" + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) setDataHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("apikey", c.anonKey)
	token := backend.AccessTokenFromContext(ctx)
	if token == "" {
		token = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

// encodeQuery renders q in PostgREST's horizontal filtering syntax.
func encodeQuery(q backend.Query) url.Values {
	values := url.Values{}
	values.Set("select", "*")
	for _, filter := range q.Filters {
		column := string(filter.Column)
		switch filter.Op {
		case backend.OpEq:
			value := ""
			if len(filter.Values) > 0 {
				value = filter.Values[0]
			}
			values.Add(column, "eq."+value)
		case backend.OpIn:
			quoted := make([]string, len(filter.Values))
			for i, value := range filter.Values {
				quoted[i] = quoteListValue(value)
			}
			values.Add(column, "in.("+strings.Join(quoted, ",")+")")
		}
	}
	if q.Order != nil {
		direction := "asc"
		if q.Order.Direction == backend.Descending {
			direction = "desc"
		}
		values.Set("order", string(q.Order.Column)+"."+direction)
	}
	return values
}

func quoteListValue(value string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
	return `"` + escaped + `"`
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
