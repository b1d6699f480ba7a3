// internal/api/profile/handlers.go
package profile

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/falijedan/falijedan/internal/api/apiutil"
	"github.com/falijedan/falijedan/internal/backend"
	"github.com/falijedan/falijedan/internal/i18n"
	"github.com/falijedan/falijedan/internal/identity"
	"github.com/falijedan/falijedan/internal/models"
	domain "github.com/falijedan/falijedan/internal/profile"
	profiletempl "github.com/falijedan/falijedan/internal/templates/components/profile"
	"github.com/falijedan/falijedan/internal/templates/layouts"
)

const profileQueryTimeout = 5 * time.Second

type HandlerConfig struct {
	Data backend.Data
	// Now stamps profile updates. Nil uses time.Now.
	Now func() time.Time
}

var (
	handlerMu  sync.RWMutex
	handlerCfg HandlerConfig
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(cfg HandlerConfig) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	handlerMu.Lock()
	handlerCfg = cfg
	handlerMu.Unlock()
}

func loadConfig() (HandlerConfig, bool) {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return handlerCfg, handlerCfg.Data != nil
}

// GET /profile
func HandleProfilePage(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	cfg, ok := loadConfig()
	if !ok {
		logger.Error().Msg("Profile handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	viewer := identity.FromContext(r.Context())
	if viewer == nil {
		apiutil.LoginRedirect(w, r, r.URL.RequestURI())
		return
	}

	query := r.URL.Query()
	view := profiletempl.View{
		Viewer:  *viewer,
		Editing: query.Get("edit") == "1",
		Tab:     parseTab(query.Get("tab")),
	}

	ctx, cancel := context.WithTimeout(r.Context(), profileQueryTimeout)
	defer cancel()

	profile, err := domain.LoadProfile(ctx, cfg.Data, viewer)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load profile")
	}
	view.Profile = profile

	renderProfile(ctx, w, r, cfg, view)
}

// POST /profile
func HandleProfileSave(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	cfg, ok := loadConfig()
	if !ok {
		logger.Error().Msg("Profile handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	viewer := identity.FromContext(r.Context())
	if viewer == nil {
		apiutil.LoginRedirect(w, r, "/profile")
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	tab := parseTab(r.PostFormValue("tab"))
	fullName := strings.TrimSpace(r.PostFormValue("full_name"))

	ctx, cancel := context.WithTimeout(r.Context(), profileQueryTimeout)
	defer cancel()

	if _, err := domain.SaveProfile(ctx, cfg.Data, viewer, fullName, cfg.Now()); err != nil {
		// The page stays in edit mode with the typed name and no banner.
		logger.Error().Err(err).Msg("Failed to save profile")
		view := profiletempl.View{
			Viewer:  *viewer,
			Profile: &models.Profile{ID: viewer.ID, FullName: &fullName},
			Editing: true,
			Tab:     tab,
		}
		renderProfile(ctx, w, r, cfg, view)
		return
	}

	logger.Info().Msg("Profile saved")
	apiutil.Redirect(w, r, "/profile?tab="+url.QueryEscape(tab))
}

func renderProfile(ctx context.Context, w http.ResponseWriter, r *http.Request, cfg HandlerConfig, view profiletempl.View) {
	logger := log.Ctx(r.Context())
	locale := i18n.FromContext(r.Context())
	viewer := &view.Viewer

	created, err := domain.LoadCreatedMatches(ctx, cfg.Data, viewer)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load created matches")
		view.Error = locale.T(i18n.ProfileLoadError)
	}
	joined, err := domain.LoadJoinedMatches(ctx, cfg.Data, viewer)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load joined matches")
		view.Error = locale.T(i18n.ProfileLoadError)
	}
	view.Created = created
	view.Joined = joined

	page := layouts.Base(locale.T(i18n.NavProfile), profiletempl.Page(view))
	apiutil.RenderHTMLComponent(r.Context(), w, http.StatusOK, page, nil, "Failed to render profile page", "Failed to render page")
}

func parseTab(raw string) string {
	if raw == profiletempl.TabJoined {
		return profiletempl.TabJoined
	}
	return profiletempl.TabCreated
}
