package apiutil

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"

	"github.com/falijedan/falijedan/internal/api/htmx"
)

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// RenderHTMLComponent renders component into a buffer first so a failed
// render can still answer with a clean 500.
func RenderHTMLComponent(ctx context.Context, w http.ResponseWriter, status int, component templ.Component, headers map[string]string, logMsg string, errMsg string) bool {
	logger := log.Ctx(ctx)
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		logger.Error().Err(err).Msg(logMsg)
		http.Error(w, errMsg, http.StatusInternalServerError)
		return false
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	for key, value := range headers {
		w.Header().Set(key, value)
	}
	if status != 0 && status != http.StatusOK {
		w.WriteHeader(status)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error().Err(err).Msg("Failed to write response")
	}
	return true
}

// Redirect sends the browser to target. htmx requests get an HX-Redirect
// header instead of a 3xx so the whole page navigates.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if htmx.IsRequest(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// LoginRedirect sends an anonymous visitor to the login page, remembering
// where they wanted to go.
func LoginRedirect(w http.ResponseWriter, r *http.Request, returnTo string) {
	Redirect(w, r, "/login?redirect_to="+url.QueryEscape(SafeRedirectPath(returnTo)))
}

// SafeRedirectPath keeps only local absolute paths, defaulting to "/".
func SafeRedirectPath(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" {
		return "/"
	}
	return parsed.RequestURI()
}
