package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"QuantPicker/internal/collector"
	"QuantPicker/internal/recorder"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	shutdownWait     = 5 * time.Second
	requestTimeout   = 300 * time.Second
	defaultMaxUpload = 10 << 20
)

// Server exposes ranking, scoring and run history over HTTP.
type Server struct {
	Collector *collector.Collector
	Universe  collector.UniverseProvider
	Recorder  recorder.Recorder
	Days      int
	Limit     int
	MaxUpload int64
}

// New creates a Server. rec may be nil when persistence is disabled.
func New(col *collector.Collector, uni collector.UniverseProvider, rec recorder.Recorder, days, limit int) *Server {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Server{
		Collector: col,
		Universe:  uni,
		Recorder:  rec,
		Days:      days,
		Limit:     limit,
		MaxUpload: defaultMaxUpload,
	}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, r, http.StatusOK, "healthy")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/rank", s.handleRank)
		r.Post("/rank/upload", s.handleUpload)
		r.Get("/score/{ticker}", s.handleScore)
		r.Get("/chart/{ticker}", s.handleChart)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/export.csv", s.handleExportRun)
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       requestTimeout,
		WriteTimeout:      requestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.S().Infof("server listening on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	zap.S().Info("server stopped")
	return nil
}
