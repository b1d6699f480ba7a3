// internal/api/middleware.go
package api

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/falijedan/falijedan/internal/api/apiutil"
	"github.com/falijedan/falijedan/internal/api/auth"
	"github.com/falijedan/falijedan/internal/backend"
	"github.com/falijedan/falijedan/internal/i18n"
	"github.com/falijedan/falijedan/internal/identity"
)

type Middleware func(http.Handler) http.Handler

type requestIDKey struct{}

// ChainMiddleware wraps h so the first middleware listed runs innermost.
func ChainMiddleware(h http.Handler, middleware ...Middleware) http.Handler {
	for _, m := range middleware {
		h = m(h)
	}
	return h
}

// RequestIDFromContext returns the id assigned by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey{}).(string)
	return requestID
}

func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create response wrapper to capture status code
		wrapped := wrapResponseWriter(w)

		next.ServeHTTP(wrapped, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.status).
			Dur("duration", time.Since(start)).
			Str("request_id", RequestIDFromContext(r.Context())).
			Msg("Request completed")
	})
}

func WithRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger := log.Ctx(r.Context())
				// Log the full stack trace
				stack := debug.Stack()
				logger.Error().
					Interface("error", err).
					Str("stack", string(stack)).
					Msg("Panic recovered")

				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()

		// Create a logger with the request ID
		logger := log.With().Str("request_id", requestID).Logger()

		// Add both the request ID and logger to context
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		ctx = logger.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithLocale picks the page language from Accept-Language.
func WithLocale(bundle *i18n.Bundle) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := bundle.Negotiate(r.Header.Get("Accept-Language"))
			w.Header().Set("Content-Language", locale.Lang())
			next.ServeHTTP(w, r.WithContext(i18n.WithLocale(r.Context(), locale)))
		})
	}
}

// WithIdentity resolves the browser session and puts the identity and the
// backend access token on the request context. A session that cannot be
// resolved leaves the visitor anonymous.
func WithIdentity(gate *auth.Gate) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip session lookup for static assets and infra endpoints
			path := r.URL.Path
			if strings.HasPrefix(path, "/static/") || path == "/health" || path == "/metrics" || path == "/favicon.ico" {
				next.ServeHTTP(w, r)
				return
			}

			user, session, err := gate.Resolve(w, r)
			if err != nil {
				log.Ctx(r.Context()).Warn().Err(err).Msg("Failed to resolve session")
				next.ServeHTTP(w, r)
				return
			}

			if user != nil {
				ctx := identity.WithIdentity(r.Context(), user)
				ctx = backend.WithAccessToken(ctx, session.AccessToken)
				logger := log.Ctx(ctx).With().Str("user_id", user.ID).Logger()
				r = r.WithContext(logger.WithContext(ctx))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireIdentity sends anonymous visitors to the login page and back to the
// requested page afterwards.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity.FromContext(r.Context()) == nil {
			log.Ctx(r.Context()).Debug().Str("path", r.URL.Path).Msg("Anonymous visitor sent to login")
			apiutil.LoginRedirect(w, r, r.URL.RequestURI())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// responseWriter wrapper to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
