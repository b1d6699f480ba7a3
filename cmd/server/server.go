// cmd/server/server.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/falijedan/falijedan/internal/api"
	"github.com/falijedan/falijedan/internal/api/auth"
	"github.com/falijedan/falijedan/internal/api/matches"
	"github.com/falijedan/falijedan/internal/api/profile"
	"github.com/falijedan/falijedan/internal/backend"
	"github.com/falijedan/falijedan/internal/backend/sqlstore"
	"github.com/falijedan/falijedan/internal/backend/supabase"
	"github.com/falijedan/falijedan/internal/config"
	"github.com/falijedan/falijedan/internal/db"
	"github.com/falijedan/falijedan/internal/i18n"
	"github.com/falijedan/falijedan/internal/mapview"
	"github.com/falijedan/falijedan/internal/metrics"
	"github.com/falijedan/falijedan/internal/ratelimit"
	"github.com/falijedan/falijedan/internal/scheduler"
)

type application struct {
	cfg         *config.Config
	client      backend.Client
	gate        *auth.Gate
	recorder    *metrics.Recorder
	scheduler   *scheduler.Service
	unsubscribe func()
	server      *http.Server
}

func newApplication(cfg *config.Config) (*application, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	bundle, err := i18n.NewBundle(cfg.App.Locale, loc)
	if err != nil {
		return nil, err
	}
	maps, err := mapview.New(cfg.Map.EmbedURL, cfg.Map.Span)
	if err != nil {
		return nil, err
	}

	client, pruners, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}

	app := &application{cfg: cfg}
	if cfg.Features.EnableMetrics {
		app.recorder = metrics.New()
		client = app.recorder.Instrument(client)
	}
	app.client = client

	app.gate = auth.NewGate(client, auth.GateConfig{
		SessionTTL:   cfg.Auth.SessionTTL,
		SecureCookie: strings.HasPrefix(cfg.App.BaseURL, "https://"),
	})
	app.unsubscribe = app.gate.Subscribe()
	if app.recorder != nil {
		app.recorder.TrackSessions(app.gate.Len)
	}

	limiter := ratelimit.New(&ratelimit.Config{
		LoginMaxAttempts: cfg.Auth.LoginLimit,
		LoginWindow:      cfg.Auth.LoginWindow,
		LoginLockout:     cfg.Auth.LoginLockout,
	})

	auth.InitHandlers(auth.HandlerConfig{
		Client:     client,
		Gate:       app.gate,
		Limiter:    limiter,
		TrustProxy: os.Getenv("TRUST_PROXY") == "true",
	})
	matches.InitHandlers(matches.HandlerConfig{Data: client, Maps: maps})
	profile.InitHandlers(profile.HandlerConfig{Data: client})

	app.scheduler, err = scheduler.New()
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	pruners["browser_sessions"] = app.gate
	pruners["auth_rate_limits"] = scheduler.PrunerFunc(func(context.Context) (int, error) {
		return limiter.Prune(), nil
	})
	if err := scheduler.RegisterMaintenanceJobs(app.scheduler, cfg.Auth.PruneCron, pruners); err != nil {
		app.Close()
		return nil, fmt.Errorf("register maintenance jobs: %w", err)
	}

	app.server = &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      app.handler(bundle),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return app, nil
}

// openBackend builds the configured backend client. Missing credentials do
// not stop the server: every call then fails with backend.ErrNotConfigured
// and the pages show their load errors.
func openBackend(cfg *config.Config) (backend.Client, map[string]scheduler.Pruner, error) {
	pruners := make(map[string]scheduler.Pruner)

	if missing := cfg.Backend.Missing(); len(missing) > 0 {
		log.Warn().Strs("missing", missing).Str("driver", cfg.Backend.Driver).Msg("Backend not configured")
		return backend.Unconfigured(fmt.Errorf("missing %s", strings.Join(missing, ", "))), pruners, nil
	}

	switch cfg.Backend.Driver {
	case config.DriverSupabase:
		client, err := supabase.New(supabase.Config{
			URL:       cfg.Backend.URL,
			AnonKey:   cfg.Backend.AnonKey,
			JWTSecret: cfg.Backend.JWTSecret,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create supabase client: %w", err)
		}
		return client, pruners, nil

	case config.DriverSQLite, config.DriverPostgres:
		database, err := db.NewFromConfig(cfg)
		if err != nil {
			return nil, nil, err
		}
		secret := cfg.App.SecretKey
		if secret == "" {
			// Development only; Validate requires the key elsewhere.
			log.Warn().Msg("APP_SECRET_KEY not set; local sessions end when the server restarts")
			secret = uuid.NewString()
		}
		store, err := sqlstore.New(database, sqlstore.Config{
			Secret:     secret,
			AccessTTL:  cfg.Auth.AccessTTL,
			RefreshTTL: cfg.Auth.RefreshTTL,
		})
		if err != nil {
			database.Close()
			return nil, nil, err
		}
		pruners["refresh_tokens"] = scheduler.PrunerFunc(store.PruneRefreshTokens)
		return store, pruners, nil

	default:
		return nil, nil, fmt.Errorf("unsupported backend driver: %s", cfg.Backend.Driver)
	}
}

func (a *application) handler(bundle *i18n.Bundle) http.Handler {
	router := http.NewServeMux()
	a.registerRoutes(router)

	// The first middleware runs innermost, next to the mux.
	middleware := []api.Middleware{
		api.WithIdentity(a.gate),
		api.WithLocale(bundle),
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	}
	if a.recorder != nil {
		middleware = append([]api.Middleware{a.recorder.Middleware}, middleware...)
	}
	return api.ChainMiddleware(router, middleware...)
}

func (a *application) registerRoutes(mux *http.ServeMux) {
	// Matches
	mux.HandleFunc("GET /{$}", matches.HandleListing)
	mux.HandleFunc("GET /match/{id}", matches.HandleMatchDetail)
	mux.HandleFunc("POST /match/{id}/join", matches.HandleJoin)
	mux.Handle("GET /add-match", api.RequireIdentity(http.HandlerFunc(matches.HandleAddMatchPage)))
	mux.HandleFunc("POST /add-match", matches.HandleCreateMatch)

	// Auth
	mux.HandleFunc("GET /login", auth.HandleLoginPage)
	mux.HandleFunc("POST /login", auth.HandleLogin)
	mux.HandleFunc("POST /signup", auth.HandleSignup)
	mux.HandleFunc("POST /logout", auth.HandleLogout)

	// Profile
	mux.Handle("GET /profile", api.RequireIdentity(http.HandlerFunc(profile.HandleProfilePage)))
	mux.HandleFunc("POST /profile", profile.HandleProfileSave)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if a.recorder != nil {
		mux.Handle("GET /metrics", a.recorder.Handler())
	}

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "static"
	}
	fs := http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir)))
	mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Ctx(r.Context()).Debug().
			Str("path", r.URL.Path).
			Str("static_dir", staticDir).
			Msg("Static file request")
		fs.ServeHTTP(w, r)
	}))
}

// Close releases the auth subscription, the scheduler and the backend.
func (a *application) Close() error {
	var errs []error
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.scheduler != nil {
		if err := a.scheduler.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
		}
	}
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close backend: %w", err))
		}
	}
	return errors.Join(errs...)
}
