// internal/api/matches/handlers.go
package matches

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/falijedan/falijedan/internal/api/apiutil"
	"github.com/falijedan/falijedan/internal/api/htmx"
	"github.com/falijedan/falijedan/internal/backend"
	"github.com/falijedan/falijedan/internal/i18n"
	"github.com/falijedan/falijedan/internal/identity"
	"github.com/falijedan/falijedan/internal/mapview"
	domain "github.com/falijedan/falijedan/internal/matches"
	matchestempl "github.com/falijedan/falijedan/internal/templates/components/matches"
	"github.com/falijedan/falijedan/internal/templates/layouts"
)

const matchesQueryTimeout = 5 * time.Second

type HandlerConfig struct {
	Data backend.Data
	// Maps builds the embedded map of the detail page. Nil hides the map.
	Maps *mapview.Embedder
}

var (
	handlerMu  sync.RWMutex
	handlerCfg HandlerConfig
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(cfg HandlerConfig) {
	handlerMu.Lock()
	handlerCfg = cfg
	handlerMu.Unlock()
}

func loadConfig() (HandlerConfig, bool) {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return handlerCfg, handlerCfg.Data != nil
}

// GET /
func HandleListing(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	locale := i18n.FromContext(r.Context())

	cfg, ok := loadConfig()
	if !ok {
		logger.Error().Msg("Match handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	filter := domain.ParseFilter(r.URL.Query())
	view := matchestempl.ListingView{Filter: filter}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	listing, err := domain.LoadMatches(ctx, cfg.Data)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load matches")
		view.LoadError = locale.T(i18n.ListLoadError)
	} else {
		view.Matches = domain.ApplyFilter(listing.Matches, filter)
		view.Locations = listing.Locations
	}

	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(r.Context(), w, http.StatusOK, matchestempl.MatchList(view), nil, "Failed to render match list", "Failed to render page")
		return
	}
	page := layouts.Base("", matchestempl.ListingPage(view))
	apiutil.RenderHTMLComponent(r.Context(), w, http.StatusOK, page, nil, "Failed to render match listing", "Failed to render page")
}

// GET /match/{id}
func HandleMatchDetail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	cfg, ok := loadConfig()
	if !ok {
		logger.Error().Msg("Match handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	renderDetail(w, r, cfg, r.PathValue("id"), http.StatusOK, "")
}

// POST /match/{id}/join
func HandleJoin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	locale := i18n.FromContext(r.Context())

	cfg, ok := loadConfig()
	if !ok {
		logger.Error().Msg("Match handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	matchID := r.PathValue("id")
	detailPath := "/match/" + url.PathEscape(matchID)
	viewer := identity.FromContext(r.Context())
	if viewer == nil {
		apiutil.LoginRedirect(w, r, detailPath)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	if _, err := domain.Join(ctx, cfg.Data, matchID, viewer); err != nil {
		if errors.Is(err, identity.ErrUnauthenticated) {
			apiutil.LoginRedirect(w, r, detailPath)
			return
		}
		logger.Error().Err(err).Str("match_id", matchID).Msg("Failed to join match")
		renderDetail(w, r, cfg, matchID, http.StatusBadGateway, locale.T(i18n.DetailJoinError))
		return
	}

	logger.Info().Str("match_id", matchID).Msg("Joined match")
	apiutil.Redirect(w, r, detailPath)
}

// renderDetail loads and renders the detail page. joinError is shown above
// the match when set.
func renderDetail(w http.ResponseWriter, r *http.Request, cfg HandlerConfig, matchID string, status int, joinError string) {
	logger := log.Ctx(r.Context())
	locale := i18n.FromContext(r.Context())
	viewer := identity.FromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	match, err := domain.LoadMatchDetail(ctx, cfg.Data, matchID)
	if err != nil {
		message, errStatus := locale.T(i18n.DetailLoadError), http.StatusBadGateway
		if errors.Is(err, domain.ErrNotFound) {
			message, errStatus = locale.T(i18n.DetailNotFound), http.StatusNotFound
		} else {
			logger.Error().Err(err).Str("match_id", matchID).Msg("Failed to load match")
		}
		page := layouts.Base("", matchestempl.DetailError(message))
		apiutil.RenderHTMLComponent(r.Context(), w, errStatus, page, nil, "Failed to render match detail", "Failed to render page")
		return
	}

	participants, err := domain.LoadParticipants(ctx, cfg.Data, match.ID, viewer)
	if err != nil {
		logger.Error().Err(err).Str("match_id", match.ID).Msg("Failed to load participants")
		participants = nil
	}

	joined, err := domain.IsParticipant(ctx, cfg.Data, match.ID, viewer)
	if err != nil {
		logger.Warn().Err(err).Str("match_id", match.ID).Msg("Failed to check participation")
		joined = false
	}

	view := matchestempl.DetailView{
		Match:        match,
		Participants: participants,
		Joined:       joined,
		Error:        joinError,
	}
	if cfg.Maps != nil {
		view.MapURL = cfg.Maps.EmbedURL(match.Latitude, match.Longitude)
	}

	page := layouts.Base(match.Title(), matchestempl.DetailPage(view))
	apiutil.RenderHTMLComponent(r.Context(), w, status, page, nil, "Failed to render match detail", "Failed to render page")
}

// GET /add-match
func HandleAddMatchPage(w http.ResponseWriter, r *http.Request) {
	renderForm(w, r, http.StatusOK, matchestempl.FormView{Form: domain.NewMatchForm()})
}

// POST /add-match
func HandleCreateMatch(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	locale := i18n.FromContext(r.Context())

	cfg, ok := loadConfig()
	if !ok {
		logger.Error().Msg("Match handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	viewer := identity.FromContext(r.Context())
	if viewer == nil {
		apiutil.LoginRedirect(w, r, "/add-match")
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	form, err := domain.ParseMatchForm(r.PostForm, locale.Location())
	var fieldErrs domain.FieldErrors
	if errors.As(err, &fieldErrs) {
		renderForm(w, r, http.StatusUnprocessableEntity, matchestempl.FormView{Form: form, Errors: fieldErrs})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	matchID, err := domain.CreateMatch(ctx, cfg.Data, form, viewer)
	if err != nil {
		if errors.Is(err, identity.ErrUnauthenticated) {
			apiutil.LoginRedirect(w, r, "/add-match")
			return
		}
		logger.Error().Err(err).Msg("Failed to create match")
		renderForm(w, r, http.StatusBadGateway, matchestempl.FormView{Form: form, Error: locale.T(i18n.FormError)})
		return
	}

	logger.Info().Str("match_id", matchID).Str("sport", string(form.Sport)).Msg("Match created")
	apiutil.Redirect(w, r, "/")
}

func renderForm(w http.ResponseWriter, r *http.Request, status int, view matchestempl.FormView) {
	title := i18n.FromContext(r.Context()).T(i18n.FormHeading)
	page := layouts.Base(title, matchestempl.AddMatchPage(view))
	apiutil.RenderHTMLComponent(r.Context(), w, status, page, nil, "Failed to render add match page", "Failed to render page")
}
