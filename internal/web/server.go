// Package web serves the dashboard that drives the pipeline over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
	"github.com/blackwell-systems/bookpipe/internal/pipeline"
)

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators the dashboard drives.
type Deps struct {
	Store      pipeline.Store
	Searcher   pipeline.Searcher
	Downloader *pipeline.Downloader
	// Uploader is nil when no cloud backend is configured.
	Uploader    *pipeline.Uploader
	Pages       pipeline.Pages
	SearchCount int
	Logger      *zap.Logger
}

// Status is the dashboard state reported by /api/status.
type Status struct {
	Initialized       bool   `json:"initialized"`
	ZlibAuthenticated bool   `json:"zlibrary_authenticated"`
	CloudConfigured   bool   `json:"cloud_configured"`
	CloudBackend      string `json:"cloud_backend,omitempty"`
	LastActivity      string `json:"last_activity,omitempty"`
	LastMessage       string `json:"last_message,omitempty"`
}

// Server is the dashboard HTTP server.
type Server struct {
	deps   Deps
	logger *zap.Logger

	// opMu serializes pipeline operations so concurrent requests never
	// interleave store writes.
	opMu sync.Mutex

	statusMu sync.RWMutex
	status   Status
	now      func() time.Time
}

// New creates a Server. initial seeds the reported status.
func New(deps Deps, initial Status) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	initial.Initialized = true
	initial.CloudConfigured = deps.Uploader != nil
	return &Server{deps: deps, logger: logger, status: initial, now: time.Now}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	// Actions change the store or the library, so they only answer POST.
	r.Post("/search", s.handleSearch)
	r.Post("/download", s.handleDownload)
	r.Post("/upload", s.handleUpload)
	r.Post("/generate-html", s.handleGenerate)

	r.Get("/", s.handleDashboard)
	r.Get("/view-catalog", s.handleViewCatalog)
	r.Get("/books", s.handleBooks)
	r.Get("/stats", s.handleStats)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleAPIStatus)
		r.Get("/stats", s.handleAPIStats)
		r.Get("/books", s.handleAPIBooks)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", zap.String("addr", addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("start shutdown")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("failed to gracefully shutdown the server", zap.Error(err))
			if err := server.Close(); err != nil {
				return err
			}
		}
		return nil
	}
}

// Status returns a snapshot of the dashboard state.
func (s *Server) Status() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

func (s *Server) touch(msg string) {
	s.statusMu.Lock()
	s.status.LastActivity = s.now().Format(catalog.TimeLayout)
	s.status.LastMessage = msg
	s.statusMu.Unlock()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
