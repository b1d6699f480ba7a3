package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/falijedan/falijedan/internal/api/auth"
	"github.com/falijedan/falijedan/internal/backend"
	"github.com/falijedan/falijedan/internal/i18n"
	"github.com/falijedan/falijedan/internal/identity"
	"github.com/falijedan/falijedan/internal/testutil"
)

func TestChainMiddlewareOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := ChainMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), mark("inner"), mark("outer"))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Join(order, ",") != "outer,inner" {
		t.Fatalf("expected outer,inner, got %v", order)
	}
}

func TestWithRequestID(t *testing.T) {
	var seen string
	handler := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatal("expected request id in context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != seen {
		t.Fatalf("expected header %q, got %q", seen, got)
	}
}

func TestWithLoggingWithoutRequestID(t *testing.T) {
	handler := WithLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rec.Code)
	}
}

func TestWithRecovery(t *testing.T) {
	handler := WithRecovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}

func TestWithLocale(t *testing.T) {
	bundle, err := i18n.NewBundle("hr", time.UTC)
	if err != nil {
		t.Fatalf("new bundle: %v", err)
	}

	tests := []struct {
		name           string
		acceptLanguage string
		wantLang       string
	}{
		{name: "no_header", wantLang: "hr"},
		{name: "english", acceptLanguage: "en-US,en;q=0.9", wantLang: "en"},
		{name: "unsupported", acceptLanguage: "ja", wantLang: "hr"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			handler := WithLocale(bundle)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = i18n.FromContext(r.Context()).Lang()
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.acceptLanguage != "" {
				req.Header.Set("Accept-Language", tc.acceptLanguage)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if got != tc.wantLang {
				t.Fatalf("expected locale %q, got %q", tc.wantLang, got)
			}
			if rec.Header().Get("Content-Language") != tc.wantLang {
				t.Fatalf("expected Content-Language %q, got %q", tc.wantLang, rec.Header().Get("Content-Language"))
			}
		})
	}
}

func TestWithIdentity(t *testing.T) {
	fake := testutil.NewFakeBackend()
	gate := auth.NewGate(fake, auth.GateConfig{})
	session := fake.IssueSession(backend.Identity{ID: "u1", Email: "ana@example.com"})

	rec := httptest.NewRecorder()
	if err := gate.Start(rec, session); err != nil {
		t.Fatalf("start session: %v", err)
	}
	cookies := rec.Result().Cookies()

	var gotUser *backend.Identity
	var gotToken string
	handler := WithIdentity(gate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = identity.FromContext(r.Context())
		gotToken = backend.AccessTokenFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotUser == nil || gotUser.ID != "u1" {
		t.Fatalf("expected identity u1, got %+v", gotUser)
	}
	if gotToken != session.AccessToken {
		t.Fatalf("expected access token %q, got %q", session.AccessToken, gotToken)
	}

	// Static assets skip the lookup.
	gotUser = nil
	req = httptest.NewRequest(http.MethodGet, "/static/css/main.css", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if gotUser != nil {
		t.Fatalf("expected no identity for static assets, got %+v", gotUser)
	}
}

func TestWithIdentityBackendFailureLeavesVisitorAnonymous(t *testing.T) {
	fake := testutil.NewFakeBackend()
	gate := auth.NewGate(fake, auth.GateConfig{})
	session := fake.IssueSession(backend.Identity{ID: "u1"})

	rec := httptest.NewRecorder()
	if err := gate.Start(rec, session); err != nil {
		t.Fatalf("start session: %v", err)
	}
	fake.Fail["get_session"] = &backend.Error{Op: "get_session", Status: http.StatusBadGateway, Message: "down"}

	called := false
	handler := WithIdentity(gate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if identity.FromContext(r.Context()) != nil {
			t.Fatal("expected anonymous visitor")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Fatal("expected next handler to run")
	}
}

func TestRequireIdentity(t *testing.T) {
	handler := RequireIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile?tab=joined", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/login?redirect_to=%2Fprofile%3Ftab%3Djoined" {
		t.Fatalf("unexpected redirect %q", got)
	}

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req = req.WithContext(identity.WithIdentity(req.Context(), &backend.Identity{ID: "u1"}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
}
