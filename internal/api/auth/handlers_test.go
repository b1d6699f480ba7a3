package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/falijedan/falijedan/internal/backend"
	"github.com/falijedan/falijedan/internal/identity"
	"github.com/falijedan/falijedan/internal/ratelimit"
	"github.com/falijedan/falijedan/internal/testutil"
)

func setupHandlers(t *testing.T) (*testutil.FakeBackend, *Gate) {
	t.Helper()

	fake := testutil.NewFakeBackend()
	fake.AddUser("u1", "ana@example.com", "secret123")
	gate := NewGate(fake, GateConfig{})
	unsubscribe := gate.Subscribe()
	t.Cleanup(unsubscribe)

	prev, _ := loadConfig()
	InitHandlers(HandlerConfig{Client: fake, Gate: gate, Limiter: ratelimit.New(nil)})
	t.Cleanup(func() {
		handlerMu.Lock()
		handlerCfg = prev
		handlerMu.Unlock()
	})
	return fake, gate
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "203.0.113.7:41000"
	return req
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName && cookie.MaxAge > 0 {
			return cookie
		}
	}
	return nil
}

func TestHandleLoginPageRendersForms(t *testing.T) {
	setupHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/login?redirect_to=%2Fadd-match", nil)
	rec := httptest.NewRecorder()
	HandleLoginPage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `action="/login"`) || !strings.Contains(body, `action="/signup"`) {
		t.Fatalf("expected sign-in and sign-up forms, got %q", body)
	}
	if !strings.Contains(body, `name="redirect_to" value="/add-match"`) {
		t.Fatalf("expected redirect_to to be carried, got %q", body)
	}
}

func TestHandleLoginPageRedirectsSignedInVisitor(t *testing.T) {
	setupHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/login?redirect_to=%2Fprofile", nil)
	req = req.WithContext(identity.WithIdentity(req.Context(), &backend.Identity{ID: "u1"}))
	rec := httptest.NewRecorder()
	HandleLoginPage(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/profile" {
		t.Fatalf("expected redirect to /profile, got %q", got)
	}
}

func TestHandleLoginSuccess(t *testing.T) {
	_, gate := setupHandlers(t)

	rec := httptest.NewRecorder()
	HandleLogin(rec, postForm("/login", url.Values{
		"email":       {"ana@example.com"},
		"password":    {"secret123"},
		"redirect_to": {"/match/m1"},
	}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d: %s", http.StatusSeeOther, rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != "/match/m1" {
		t.Fatalf("expected redirect to /match/m1, got %q", got)
	}
	if sessionCookie(rec) == nil {
		t.Fatal("expected a session cookie")
	}
	if gate.Len() != 1 {
		t.Fatalf("expected one stored session, got %d", gate.Len())
	}
}

func TestHandleLoginRejectsOffsiteRedirect(t *testing.T) {
	setupHandlers(t)

	rec := httptest.NewRecorder()
	HandleLogin(rec, postForm("/login", url.Values{
		"email":       {"ana@example.com"},
		"password":    {"secret123"},
		"redirect_to": {"//evil.example.com/"},
	}))

	if got := rec.Header().Get("Location"); got != "/" {
		t.Fatalf("expected redirect to /, got %q", got)
	}
}

func TestHandleLoginHTMXRedirect(t *testing.T) {
	setupHandlers(t)

	req := postForm("/login", url.Values{"email": {"ana@example.com"}, "password": {"secret123"}})
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	HandleLogin(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/" {
		t.Fatalf("expected HX-Redirect to /, got %q", got)
	}
}

func TestHandleLoginInvalidCredentials(t *testing.T) {
	_, gate := setupHandlers(t)

	rec := httptest.NewRecorder()
	HandleLogin(rec, postForm("/login", url.Values{"email": {"ana@example.com"}, "password": {"wrong"}}))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Neispravan email ili lozinka.") {
		t.Fatalf("expected invalid credentials message, got %q", rec.Body.String())
	}
	if sessionCookie(rec) != nil || gate.Len() != 0 {
		t.Fatal("expected no session after a rejected sign-in")
	}
}

func TestHandleLoginLocksOutAfterRepeatedFailures(t *testing.T) {
	setupHandlers(t)

	var rec *httptest.ResponseRecorder
	for i := 0; i < ratelimit.DefaultConfig().LoginMaxAttempts; i++ {
		rec = httptest.NewRecorder()
		HandleLogin(rec, postForm("/login", url.Values{"email": {"ana@example.com"}, "password": {"wrong"}}))
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected lockout on the last failure, got %d", rec.Code)
	}

	// Even the right password is refused while locked out.
	rec = httptest.NewRecorder()
	HandleLogin(rec, postForm("/login", url.Values{"email": {"ana@example.com"}, "password": {"secret123"}}))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
	if !strings.Contains(rec.Body.String(), "Previše neuspjelih pokušaja.") {
		t.Fatalf("expected lockout message, got %q", rec.Body.String())
	}
}

func TestHandleLoginBackendUnavailable(t *testing.T) {
	fake, _ := setupHandlers(t)
	fake.Fail["sign_in"] = backend.ErrNotConfigured

	rec := httptest.NewRecorder()
	HandleLogin(rec, postForm("/login", url.Values{"email": {"ana@example.com"}, "password": {"secret123"}}))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Prijava trenutno nije moguća.") {
		t.Fatalf("expected sign-in error message, got %q", rec.Body.String())
	}
}

func TestHandleSignup(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		failWith   error
		wantStatus int
		wantText   string
		wantCookie bool
	}{
		{
			name:       "new_account",
			email:      "ivo@example.com",
			wantStatus: http.StatusSeeOther,
			wantCookie: true,
		},
		{
			name:       "email_taken",
			email:      "ana@example.com",
			wantStatus: http.StatusConflict,
			wantText:   "Račun s ovom email adresom već postoji.",
		},
		{
			name:       "weak_password",
			email:      "ivo@example.com",
			failWith:   &backend.Error{Op: "sign_up", Status: http.StatusUnprocessableEntity, Code: "weak_password", Message: "Password should be at least 6 characters."},
			wantStatus: http.StatusUnprocessableEntity,
			wantText:   "Lozinka mora imati najmanje 6 znakova.",
		},
		{
			name:       "confirmation_pending",
			email:      "ivo@example.com",
			failWith:   backend.ErrConfirmationPending,
			wantStatus: http.StatusOK,
			wantText:   "Provjerite email kako biste potvrdili račun",
		},
		{
			name:       "backend_failure",
			email:      "ivo@example.com",
			failWith:   &backend.Error{Op: "sign_up", Status: http.StatusInternalServerError, Message: "boom"},
			wantStatus: http.StatusBadGateway,
			wantText:   "Registracija trenutno nije moguća.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fake, gate := setupHandlers(t)
			if tc.failWith != nil {
				fake.Fail["sign_up"] = tc.failWith
			}

			rec := httptest.NewRecorder()
			HandleSignup(rec, postForm("/signup", url.Values{"email": {tc.email}, "password": {"secret123"}}))

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			if tc.wantText != "" && !strings.Contains(rec.Body.String(), tc.wantText) {
				t.Fatalf("expected %q in body, got %q", tc.wantText, rec.Body.String())
			}
			if got := sessionCookie(rec) != nil; got != tc.wantCookie {
				t.Fatalf("expected session cookie %v, got %v", tc.wantCookie, got)
			}
			if tc.wantCookie && gate.Len() != 1 {
				t.Fatalf("expected one stored session, got %d", gate.Len())
			}
		})
	}
}

func TestHandleLogoutEndsSession(t *testing.T) {
	fake, gate := setupHandlers(t)
	session := fake.IssueSession(backend.Identity{ID: "u1", Email: "ana@example.com"})
	cookie := startSession(t, gate, session)

	req := postForm("/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	HandleLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/login" {
		t.Fatalf("expected redirect to /login, got %q", got)
	}
	if !clearedCookie(rec) {
		t.Fatal("expected session cookie to be cleared")
	}
	if gate.Len() != 0 {
		t.Fatalf("expected no stored sessions, got %d", gate.Len())
	}
}

func TestHandleLogoutWithoutSession(t *testing.T) {
	setupHandlers(t)

	rec := httptest.NewRecorder()
	HandleLogout(rec, postForm("/logout", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
}

func TestHandlersRequireInit(t *testing.T) {
	prev, _ := loadConfig()
	handlerMu.Lock()
	handlerCfg = HandlerConfig{}
	handlerMu.Unlock()
	t.Cleanup(func() {
		handlerMu.Lock()
		handlerCfg = prev
		handlerMu.Unlock()
	})

	rec := httptest.NewRecorder()
	HandleLogin(rec, postForm("/login", url.Values{"email": {"a@b.c"}, "password": {"x"}}))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}
