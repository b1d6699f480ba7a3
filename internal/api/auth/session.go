package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/falijedan/falijedan/internal/backend"
)

const (
	sessionCookieName = "falijedan_session"
	defaultSessionTTL = 7 * 24 * time.Hour
	sessionTokenBytes = 32
)

type GateConfig struct {
	// SessionTTL bounds how long a browser session lives without a new
	// sign-in, whatever the backend tokens say.
	SessionTTL   time.Duration
	SecureCookie bool
}

type sessionRecord struct {
	session   *backend.Session
	expiresAt time.Time
	// refreshMu serializes token refreshes of one browser session.
	refreshMu *sync.Mutex
}

// Gate keeps the server side of browser sessions. A browser holds an opaque
// cookie; the gate maps it to the backend session and resolves the identity
// behind it on every request.
type Gate struct {
	client backend.Auth
	ttl    time.Duration
	secure bool
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*sessionRecord
}

func NewGate(client backend.Auth, cfg GateConfig) *Gate {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Gate{
		client:   client,
		ttl:      ttl,
		secure:   cfg.SecureCookie,
		now:      time.Now,
		sessions: make(map[string]*sessionRecord),
	}
}

// Subscribe applies backend auth events to the stored sessions until the
// returned function is called.
func (g *Gate) Subscribe() (unsubscribe func()) {
	return g.client.OnAuthChange(g.apply)
}

func (g *Gate) apply(event backend.AuthEvent) {
	switch event.Type {
	case backend.SignedOut:
		removed := g.dropIdentity(event.Identity.ID)
		log.Debug().Str("user_id", event.Identity.ID).Int("sessions", removed).Msg("Signed out sessions dropped")
	case backend.TokenRefreshed:
		if event.Session == nil || event.PreviousRefreshToken == "" {
			return
		}
		g.mu.Lock()
		for _, record := range g.sessions {
			if record.session.RefreshToken == event.PreviousRefreshToken {
				record.session = event.Session
			}
		}
		g.mu.Unlock()
	}
}

// Start stores session for the browser behind w and sets the session cookie.
func (g *Gate) Start(w http.ResponseWriter, session *backend.Session) error {
	if w == nil || session == nil {
		return errors.New("session requires response writer and backend session")
	}

	token, err := newSessionToken()
	if err != nil {
		return err
	}

	expiresAt := g.now().Add(g.ttl)
	g.mu.Lock()
	g.sessions[token] = &sessionRecord{
		session:   session,
		expiresAt: expiresAt,
		refreshMu: &sync.Mutex{},
	}
	g.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
		MaxAge:   int(g.ttl.Seconds()),
	})
	return nil
}

// End forgets the browser's session, clears the cookie and returns the
// backend session so the caller can sign it out.
func (g *Gate) End(w http.ResponseWriter, r *http.Request) *backend.Session {
	defer g.clearCookie(w)
	if r == nil {
		return nil
	}

	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}

	var session *backend.Session
	g.mu.Lock()
	if record, ok := g.sessions[cookie.Value]; ok {
		session = record.session
		delete(g.sessions, cookie.Value)
	}
	g.mu.Unlock()
	return session
}

// Resolve returns the identity and backend session of the browser behind r,
// or nil when it is not signed in. Stale sessions are refreshed once; a
// session the backend rejects is dropped and its cookie cleared. Other
// backend failures are returned without touching the session.
func (g *Gate) Resolve(w http.ResponseWriter, r *http.Request) (*backend.Identity, *backend.Session, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, nil, nil
	}
	token := cookie.Value

	record, session, ok := g.lookup(token)
	if !ok {
		g.clearCookie(w)
		return nil, nil, nil
	}

	ctx := r.Context()
	if session.Expired(g.now()) {
		session, err = g.refresh(ctx, token, record, session)
		if err != nil {
			return g.reject(w, token, err)
		}
	}

	identity, err := g.client.GetSession(ctx, session.AccessToken)
	if errors.Is(err, backend.ErrNoSession) {
		session, err = g.refresh(ctx, token, record, session)
		if err != nil {
			return g.reject(w, token, err)
		}
		identity, err = g.client.GetSession(ctx, session.AccessToken)
	}
	if err != nil {
		return g.reject(w, token, err)
	}
	return identity, session, nil
}

func (g *Gate) reject(w http.ResponseWriter, token string, err error) (*backend.Identity, *backend.Session, error) {
	if errors.Is(err, backend.ErrNoSession) {
		g.delete(token)
		g.clearCookie(w)
		return nil, nil, nil
	}
	return nil, nil, err
}

// refresh exchanges the refresh token of stale for a new session. A
// concurrent request may already have refreshed it, in which case its result
// is reused.
func (g *Gate) refresh(ctx context.Context, token string, record *sessionRecord, stale *backend.Session) (*backend.Session, error) {
	record.refreshMu.Lock()
	defer record.refreshMu.Unlock()

	if _, current, ok := g.lookup(token); ok && current.AccessToken != stale.AccessToken {
		return current, nil
	}

	session, err := g.client.Refresh(ctx, stale.RefreshToken)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	if current, ok := g.sessions[token]; ok {
		current.session = session
	}
	g.mu.Unlock()
	return session, nil
}

// Prune drops browser sessions past their lifetime.
func (g *Gate) Prune(context.Context) (int, error) {
	now := g.now()
	removed := 0
	g.mu.Lock()
	for token, record := range g.sessions {
		if !now.Before(record.expiresAt) {
			delete(g.sessions, token)
			removed++
		}
	}
	g.mu.Unlock()
	return removed, nil
}

// Len reports the number of stored browser sessions.
func (g *Gate) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.sessions)
}

func (g *Gate) lookup(token string) (*sessionRecord, *backend.Session, bool) {
	g.mu.RLock()
	record, ok := g.sessions[token]
	var session *backend.Session
	var expiresAt time.Time
	if ok {
		session = record.session
		expiresAt = record.expiresAt
	}
	g.mu.RUnlock()
	if !ok {
		return nil, nil, false
	}

	if !g.now().Before(expiresAt) {
		g.delete(token)
		return nil, nil, false
	}

	return record, session, true
}

func (g *Gate) delete(token string) {
	g.mu.Lock()
	delete(g.sessions, token)
	g.mu.Unlock()
}

func (g *Gate) dropIdentity(userID string) int {
	removed := 0
	g.mu.Lock()
	for token, record := range g.sessions {
		if record.session.Identity.ID == userID {
			delete(g.sessions, token)
			removed++
		}
	}
	g.mu.Unlock()
	return removed
}

func (g *Gate) clearCookie(w http.ResponseWriter) {
	if w == nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

func newSessionToken() (string, error) {
	token := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(token); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(token), nil
}
