// =============================================================================
// Branch Dashboard - JSON API
// =============================================================================
//
// The server exposes the views to the presentation layer. Handlers only read
// view state and typed metrics; no business rule lives here.
//
// ROUTES:
//   GET  /api/preferences
//   GET  /api/datasets
//   GET  /api/datasets/{code}
//   GET  /api/datasets/{code}/combined
//   GET  /api/datasets/{code}/records/{identity}
//   GET  /api/datasets/{code}/spread
//   GET  /api/datasets/{code}/export.xlsx
//   POST /api/datasets/{code}/refresh
//   GET  /api/kpis/sales
//   GET  /api/kpis/collection
//
// =============================================================================

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ginjaninja78/branch-dashboard/internal/config"
	"github.com/ginjaninja78/branch-dashboard/internal/logging"
	"github.com/ginjaninja78/branch-dashboard/internal/view"
)

// Server serves the dashboard API.
type Server struct {
	router   *chi.Mux
	registry *view.Registry
	cfg      *config.MainConfig
	logger   logging.Logger
}

// New creates a Server over a registry of views.
func New(cfg *config.MainConfig, registry *view.Registry, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		router:   chi.NewRouter(),
		registry: registry,
		cfg:      cfg,
		logger:   logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.withTheme)
}

func (s *Server) setupRoutes() {
	s.router.Get("/api/preferences", s.handlePreferences)

	s.router.Route("/api/datasets", func(r chi.Router) {
		r.Get("/", s.handleListDatasets)
		r.Route("/{code}", func(r chi.Router) {
			r.Use(s.withView)
			r.Get("/", s.handleDataset)
			r.Get("/combined", s.handleCombined)
			r.Get("/records/{identity}", s.handleRecord)
			r.Get("/spread", s.handleSpread)
			r.Get("/export.xlsx", s.handleExport)
			r.Post("/refresh", s.handleRefresh)
		})
	})

	s.router.Get("/api/kpis/sales", s.handleSalesKPIs)
	s.router.Get("/api/kpis/collection", s.handleCollectionKPIs)
}

// Start listens on the configured address until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ServerAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on %s", s.cfg.ServerAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

// withTheme puts the configured display preference on the request context.
func (s *Server) withTheme(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(config.WithTheme(r.Context(), s.cfg.Theme)))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("%s %s -> %d (%s) [%s]",
			r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}

type viewKey struct{}

// withView resolves {code} to a view or answers 404.
func (s *Server) withView(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		v, ok := s.registry.Get(code)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown dataset "+code)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), viewKey{}, v)))
	})
}

func viewFrom(r *http.Request) *view.View {
	return r.Context().Value(viewKey{}).(*view.View)
}
