// Package server exposes the cleaning and statistics engine over HTTP.
// Each browser session owns one uploaded table, identified by a cookie.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
	"github.com/KaramelBytes/datalens-cli/internal/loader"
	"github.com/KaramelBytes/datalens-cli/internal/session"
)

// Config holds the server settings that do not come from the request.
type Config struct {
	// DataDir receives the cleaned CSV of each session.
	DataDir string
	// MaxUploadBytes caps the multipart request body.
	MaxUploadBytes int64
	// PreviewRows is the default row count of /preview.
	PreviewRows int
	Loader      loader.Options
	Analyzer    analysis.Analyzer
}

// Server serves one session store.
type Server struct {
	cfg    Config
	store  session.Store
	log    *slog.Logger
	router chi.Router
}

// New builds the router. A nil logger uses slog.Default().
func New(cfg Config, store session.Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 16 << 20
	}
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = 10
	}
	s := &Server{cfg: cfg, store: store, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Get("/healthz", s.handleHealth)
	r.Group(func(r chi.Router) {
		r.Use(withSession)
		r.Post("/upload", s.handleUpload)
		r.Get("/preview", s.handlePreview)
		r.Get("/summary", s.handleSummary)
		r.Get("/extract-features", s.handleFeatures)
		r.Post("/clean", s.handleClean)
		r.Get("/download-cleaned", s.handleDownload)
		r.Post("/reset", s.handleReset)
	})
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) cleanedPath(sid string) string {
	return filepath.Join(s.cfg.DataDir, sid+"_cleaned.csv")
}
