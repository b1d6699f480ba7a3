// internal/api/auth/handlers.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/falijedan/falijedan/internal/api/apiutil"
	"github.com/falijedan/falijedan/internal/backend"
	"github.com/falijedan/falijedan/internal/i18n"
	"github.com/falijedan/falijedan/internal/identity"
	"github.com/falijedan/falijedan/internal/ratelimit"
	authtempl "github.com/falijedan/falijedan/internal/templates/components/auth"
	"github.com/falijedan/falijedan/internal/templates/layouts"
)

const authRequestTimeout = 5 * time.Second

// HandlerConfig carries what the sign-in handlers need.
type HandlerConfig struct {
	Client  backend.Auth
	Gate    *Gate
	Limiter *ratelimit.Limiter
	// TrustProxy reads the client address from X-Forwarded-For.
	TrustProxy bool
}

var (
	handlerMu  sync.RWMutex
	handlerCfg HandlerConfig
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(cfg HandlerConfig) {
	if cfg.Limiter == nil {
		cfg.Limiter = ratelimit.New(nil)
	}
	handlerMu.Lock()
	handlerCfg = cfg
	handlerMu.Unlock()
}

func loadConfig() (HandlerConfig, bool) {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return handlerCfg, handlerCfg.Client != nil && handlerCfg.Gate != nil
}

// GET /login
func HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	redirectTo := apiutil.SafeRedirectPath(r.URL.Query().Get("redirect_to"))
	if identity.FromContext(r.Context()) != nil {
		apiutil.Redirect(w, r, redirectTo)
		return
	}
	renderLogin(w, r, http.StatusOK, authtempl.LoginView{RedirectTo: redirectTo})
}

// POST /login
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	locale := i18n.FromContext(r.Context())

	cfg, ok := loadConfig()
	if !ok {
		logger.Error().Msg("Auth handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	view := authtempl.LoginView{
		Email:      email,
		RedirectTo: apiutil.SafeRedirectPath(r.FormValue("redirect_to")),
	}
	if email == "" || password == "" {
		view.Error = locale.T(i18n.LoginInvalid)
		renderLogin(w, r, http.StatusBadRequest, view)
		return
	}

	ip := ratelimit.GetClientIP(r, cfg.TrustProxy)
	if result := cfg.Limiter.CheckLogin(email, ip); !result.Allowed {
		ratelimit.LogRateLimitExceeded("login", email, ip, result.Reason)
		w.Header().Set("Retry-After", retryAfterSeconds(result.RetryAfter))
		view.Error = locale.T(i18n.LoginLocked)
		renderLogin(w, r, http.StatusTooManyRequests, view)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), authRequestTimeout)
	defer cancel()

	session, err := cfg.Client.SignIn(ctx, email, password)
	if errors.Is(err, backend.ErrInvalidCredentials) {
		status := http.StatusUnauthorized
		view.Error = locale.T(i18n.LoginInvalid)
		if cfg.Limiter.RecordLoginFailure(email, ip) {
			status = http.StatusTooManyRequests
			view.Error = locale.T(i18n.LoginLocked)
		}
		logger.Info().Str("email", ratelimit.SanitizeIdentifier(email)).Msg("Sign-in rejected")
		renderLogin(w, r, status, view)
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("email", ratelimit.SanitizeIdentifier(email)).Msg("Sign-in failed")
		view.Error = locale.T(i18n.LoginError)
		renderLogin(w, r, backendStatus(err), view)
		return
	}

	cfg.Limiter.ResetLogin(email)
	if err := cfg.Gate.Start(w, session); err != nil {
		logger.Error().Err(err).Msg("Failed to start browser session")
		view.Error = locale.T(i18n.LoginError)
		renderLogin(w, r, http.StatusInternalServerError, view)
		return
	}

	logger.Info().Str("user_id", session.Identity.ID).Msg("Signed in")
	apiutil.Redirect(w, r, view.RedirectTo)
}

// POST /signup
func HandleSignup(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	locale := i18n.FromContext(r.Context())

	cfg, ok := loadConfig()
	if !ok {
		logger.Error().Msg("Auth handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	view := authtempl.LoginView{
		Email:      email,
		RedirectTo: apiutil.SafeRedirectPath(r.FormValue("redirect_to")),
	}
	if email == "" {
		view.SignupError = locale.T(i18n.SignupError)
		renderLogin(w, r, http.StatusBadRequest, view)
		return
	}

	ip := ratelimit.GetClientIP(r, cfg.TrustProxy)
	if result := cfg.Limiter.CheckSignup(ip); !result.Allowed {
		ratelimit.LogRateLimitExceeded("signup", email, ip, result.Reason)
		w.Header().Set("Retry-After", retryAfterSeconds(result.RetryAfter))
		view.SignupError = locale.T(i18n.LoginLocked)
		renderLogin(w, r, http.StatusTooManyRequests, view)
		return
	}
	cfg.Limiter.RecordSignup(ip)

	ctx, cancel := context.WithTimeout(r.Context(), authRequestTimeout)
	defer cancel()

	session, err := cfg.Client.SignUp(ctx, email, password)
	switch {
	case errors.Is(err, backend.ErrConfirmationPending):
		logger.Info().Str("email", ratelimit.SanitizeIdentifier(email)).Msg("Sign-up awaiting email confirmation")
		renderLogin(w, r, http.StatusOK, authtempl.LoginView{
			Email:      email,
			RedirectTo: view.RedirectTo,
			Notice:     locale.T(i18n.SignupConfirm),
		})
		return
	case errors.Is(err, backend.ErrEmailTaken):
		view.SignupError = locale.T(i18n.SignupEmailTaken)
		renderLogin(w, r, http.StatusConflict, view)
		return
	case isWeakPassword(err):
		view.SignupError = locale.T(i18n.SignupWeakPassword)
		renderLogin(w, r, http.StatusUnprocessableEntity, view)
		return
	case err != nil:
		logger.Error().Err(err).Str("email", ratelimit.SanitizeIdentifier(email)).Msg("Sign-up failed")
		view.SignupError = locale.T(i18n.SignupError)
		renderLogin(w, r, backendStatus(err), view)
		return
	}

	if err := cfg.Gate.Start(w, session); err != nil {
		logger.Error().Err(err).Msg("Failed to start browser session")
		view.SignupError = locale.T(i18n.SignupError)
		renderLogin(w, r, http.StatusInternalServerError, view)
		return
	}

	logger.Info().Str("user_id", session.Identity.ID).Msg("Signed up")
	apiutil.Redirect(w, r, view.RedirectTo)
}

// POST /logout
func HandleLogout(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	cfg, ok := loadConfig()
	if !ok {
		logger.Error().Msg("Auth handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	session := cfg.Gate.End(w, r)
	if session != nil {
		ctx, cancel := context.WithTimeout(r.Context(), authRequestTimeout)
		defer cancel()
		if err := cfg.Client.SignOut(ctx, session); err != nil {
			logger.Warn().Err(err).Str("user_id", session.Identity.ID).Msg("Backend sign-out failed")
		} else {
			logger.Info().Str("user_id", session.Identity.ID).Msg("Signed out")
		}
	}

	apiutil.Redirect(w, r, "/login")
}

func renderLogin(w http.ResponseWriter, r *http.Request, status int, view authtempl.LoginView) {
	title := i18n.FromContext(r.Context()).T(i18n.LoginHeading)
	page := layouts.Base(title, authtempl.LoginPage(view))
	apiutil.RenderHTMLComponent(r.Context(), w, status, page, nil, "Failed to render login page", "Failed to render page")
}

// isWeakPassword recognizes the backend's password policy rejection.
func isWeakPassword(err error) bool {
	var backendErr *backend.Error
	if !errors.As(err, &backendErr) {
		return false
	}
	return backendErr.Code == "weak_password" ||
		(backendErr.Status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(backendErr.Message), "password"))
}

func backendStatus(err error) int {
	if errors.Is(err, backend.ErrNotConfigured) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

func retryAfterSeconds(d time.Duration) string {
	seconds := int(d.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
