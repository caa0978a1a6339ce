// Package server exposes the companion to the browser extension as a small
// JSON API on localhost.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/valpere/justhighlight/internal/dictionary"
	"github.com/valpere/justhighlight/internal/events"
	"github.com/valpere/justhighlight/internal/i18n"
	"github.com/valpere/justhighlight/internal/popup"
	"github.com/valpere/justhighlight/internal/session"
	"github.com/valpere/justhighlight/internal/settings"
)

// Resolver is the cached single-word lookup.
type Resolver interface {
	Resolve(ctx context.Context, word, sourceLang, targetLang string) (string, error)
}

type Deps struct {
	Dictionary *dictionary.Service
	Cache      Resolver
	Settings   *settings.Store
	Bus        *events.Bus
	Popups     *popup.Manager
	Session    *session.Controller
	Catalog    *i18n.Catalog
	Logger     *slog.Logger
}

type Server struct {
	dict     *dictionary.Service
	cache    Resolver
	settings *settings.Store
	bus      *events.Bus
	popups   *popup.Manager
	session  *session.Controller
	catalog  *i18n.Catalog
	logger   *slog.Logger
}

func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Catalog == nil {
		d.Catalog = i18n.MustNew()
	}
	return &Server{
		dict:     d.Dictionary,
		cache:    d.Cache,
		settings: d.Settings,
		bus:      d.Bus,
		popups:   d.Popups,
		session:  d.Session,
		catalog:  d.Catalog,
		logger:   d.Logger,
	}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/resolve", s.handleResolve)
	r.Post("/translate", s.handleTranslate)

	r.Route("/dictionary", func(r chi.Router) {
		r.Get("/", s.handleDictionaryList)
		r.Post("/", s.handleDictionaryAdd)
		r.Get("/review", s.handleDictionaryReview)
		r.Delete("/{word}", s.handleDictionaryDelete)
	})

	r.Get("/settings", s.handleSettingsGet)
	r.Put("/settings", s.handleSettingsPut)

	r.Post("/events", s.handleEvent)

	r.Route("/popup", func(r chi.Router) {
		r.Get("/", s.handlePopupCurrent)
		r.Post("/selection", s.handlePopupSelection)
		r.Post("/click", s.handlePopupClick)
		r.Get("/{id}", s.handlePopupGet)
		r.Put("/{id}/region", s.handlePopupRegion)
		r.Delete("/{id}", s.handlePopupClose)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// Run serves on addr until ctx ends, then shuts down gracefully within
// shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("companion listening", "addr", ln.Addr().String())

	var runErr error
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("graceful shutdown failed", "error", err)
		}
		runErr = <-errCh
	case runErr = <-errCh:
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return runErr
	}
	s.logger.Info("companion stopped")
	return nil
}
