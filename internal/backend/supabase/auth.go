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

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/falijedan/falijedan/internal/backend"
)

// ErrConfirmationPending is returned by SignUp when the project requires the
// email address to be confirmed before a session is issued.
var ErrConfirmationPending = backend.ErrConfirmationPending

type authUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type tokenResponse struct {
	AccessToken  string   `json:"access_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
	ExpiresAt    int64    `json:"expires_at"`
	RefreshToken string   `json:"refresh_token"`
	User         authUser `json:"user"`
}

// signupResponse covers both shapes GoTrue returns: a full session when
// autoconfirm is on, the bare user otherwise.
type signupResponse struct {
	tokenResponse
	ID    string `json:"id"`
	Email string `json:"email"`
}

type authErrorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (b authErrorBody) message() string {
	for _, candidate := range []string{b.ErrorDescription, b.Msg, b.Message, b.Error} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

type accessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Client) GetSession(ctx context.Context, accessToken string) (*backend.Identity, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, backend.ErrNoSession
	}
	if len(c.jwtSecret) > 0 {
		return c.verifyLocally(accessToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.authURL("user", nil), nil)
	if err != nil {
		return nil, &backend.Error{Op: "get_session", Err: err}
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var user authUser
	if err := c.doAuth(req, "get_session", &user); err != nil {
		var backendErr *backend.Error
		if errors.As(err, &backendErr) && (backendErr.Status == http.StatusUnauthorized || backendErr.Status == http.StatusForbidden) {
			return nil, backend.ErrNoSession
		}
		return nil, err
	}
	if user.ID == "" {
		return nil, backend.ErrNoSession
	}
	return &backend.Identity{ID: user.ID, Email: user.Email}, nil
}

func (c *Client) verifyLocally(accessToken string) (*backend.Identity, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(
		accessToken,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return c.jwtSecret, nil
		},
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", backend.ErrNoSession, err)
	}
	if claims.Subject == "" || claims.Role == "anon" {
		return nil, backend.ErrNoSession
	}
	return &backend.Identity{ID: claims.Subject, Email: claims.Email}, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*backend.Session, error) {
	var resp tokenResponse
	query := url.Values{"grant_type": []string{"password"}}
	payload := map[string]string{"email": email, "password": password}
	if err := c.postAuth(ctx, "sign_in", "token", query, payload, "", &resp); err != nil {
		if isInvalidGrant(err) {
			return nil, backend.ErrInvalidCredentials
		}
		return nil, err
	}

	session := c.sessionFromToken(resp)
	c.Publish(backend.AuthEvent{Type: backend.SignedIn, Identity: session.Identity, Session: session})
	return session, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*backend.Session, error) {
	var resp signupResponse
	payload := map[string]string{"email": email, "password": password}
	if err := c.postAuth(ctx, "sign_up", "signup", nil, payload, "", &resp); err != nil {
		var backendErr *backend.Error
		if errors.As(err, &backendErr) && (backendErr.Code == "user_already_exists" || backendErr.Code == "email_exists") {
			return nil, backend.ErrEmailTaken
		}
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, ErrConfirmationPending
	}

	session := c.sessionFromToken(resp.tokenResponse)
	c.Publish(backend.AuthEvent{Type: backend.SignedIn, Identity: session.Identity, Session: session})
	return session, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*backend.Session, error) {
	if refreshToken == "" {
		return nil, backend.ErrNoSession
	}
	var resp tokenResponse
	query := url.Values{"grant_type": []string{"refresh_token"}}
	payload := map[string]string{"refresh_token": refreshToken}
	if err := c.postAuth(ctx, "refresh", "token", query, payload, "", &resp); err != nil {
		if isInvalidGrant(err) {
			return nil, backend.ErrNoSession
		}
		return nil, err
	}

	session := c.sessionFromToken(resp)
	c.Publish(backend.AuthEvent{
		Type:                 backend.TokenRefreshed,
		Identity:             session.Identity,
		Session:              session,
		PreviousRefreshToken: refreshToken,
	})
	return session, nil
}

func (c *Client) SignOut(ctx context.Context, session *backend.Session) error {
	if session == nil {
		return nil
	}
	err := c.postAuth(ctx, "sign_out", "logout", nil, nil, session.AccessToken, nil)
	// The session is gone locally either way.
	c.Publish(backend.AuthEvent{Type: backend.SignedOut, Identity: session.Identity})
	if err != nil {
		var backendErr *backend.Error
		if errors.As(err, &backendErr) && (backendErr.Status == http.StatusUnauthorized || backendErr.Status == http.StatusNotFound) {
			return nil
		}
		return err
	}
	return nil
}

func (c *Client) sessionFromToken(resp tokenResponse) *backend.Session {
	expiresAt := time.Time{}
	switch {
	case resp.ExpiresAt > 0:
		expiresAt = time.Unix(resp.ExpiresAt, 0)
	case resp.ExpiresIn > 0:
		expiresAt = c.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return &backend.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    expiresAt,
		Identity:     backend.Identity{ID: resp.User.ID, Email: resp.User.Email},
	}
}

func (c *Client) postAuth(ctx context.Context, op, path string, query url.Values, payload any, bearer string, dst any) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return &backend.Error{Op: op, Err: fmt.Errorf("encode payload: %w", err)}
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL(path, query), body)
	if err != nil {
		return &backend.Error{Op: op, Err: err}
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	return c.doAuth(req, op, dst)
}

func (c *Client) doAuth(req *http.Request, op string, dst any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isContextError(err) {
			return &backend.Error{Op: op, Err: err}
		}
		log.Ctx(req.Context()).Warn().Err(err).Str("op", op).Msg("Auth request failed")
		return &backend.Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var body authErrorBody
		_ = json.Unmarshal(raw, &body)
		message := body.message()
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		code := body.ErrorCode
		if code == "" {
			code = body.Error
		}
		return &backend.Error{Op: op, Status: resp.StatusCode, Code: code, Message: message}
	}

	if dst == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &backend.Error{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func isInvalidGrant(err error) bool {
	var backendErr *backend.Error
	if !errors.As(err, &backendErr) {
		return false
	}
	switch backendErr.Code {
	case "invalid_grant", "invalid_credentials", "refresh_token_not_found", "refresh_token_already_used":
		return true
	}
	return backendErr.Status == http.StatusBadRequest && strings.Contains(strings.ToLower(backendErr.Message), "invalid")
}
