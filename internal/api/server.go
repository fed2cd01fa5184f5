// Package api serves the janitord admin HTTP interface: health, metrics, a
// read-only snapshot of the watched subtree and a manual clean trigger.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/driftersoft/janitord/internal/api/ratelimit"
	"github.com/driftersoft/janitord/internal/engine"
	"github.com/driftersoft/janitord/pkg/observability"
)

// Server exposes HTTP handlers over a Cleaner.
type Server struct {
	cleaner      *engine.Cleaner
	cleanLimiter *ratelimit.Limiter
	log          *slog.Logger
	router       chi.Router
}

// NewServer constructs the admin server.
func NewServer(cleaner *engine.Cleaner, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	srv := &Server{
		cleaner:      cleaner,
		cleanLimiter: ratelimit.New(6, time.Minute),
		log:          log.With("component", "api"),
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(observability.MetricsMiddleware)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Route("/v1", func(r chi.Router) {
		r.Get("/snapshot", srv.handleSnapshot)
		r.Post("/clean", srv.handleClean)
	})

	srv.router = router
	return srv
}

// Handler returns the route tree, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	s.log.Info("admin api listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// snapshotNode is the wire form of one tree entry.
type snapshotNode struct {
	Name     string         `json:"name"`
	Path     string         `json:"path"`
	IsDir    bool           `json:"is_dir"`
	Size     int64          `json:"size_bytes,omitempty"`
	ModTime  *time.Time     `json:"mtime,omitempty"`
	Children []snapshotNode `json:"children,omitempty"`
}

func toNode(e *engine.Entry) snapshotNode {
	n := snapshotNode{Name: e.Name(), Path: e.Path()}
	if md := e.Metadata(); md != nil {
		n.IsDir = md.IsDir
		n.Size = md.Size
		mt := md.MTime
		n.ModTime = &mt
	}
	for _, c := range e.Children() {
		n.Children = append(n.Children, toNode(c))
	}
	return n
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	root, err := s.cleaner.Snapshot(r.Context())
	if err != nil {
		s.log.Error("snapshot failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, toNode(root))
}

type cleanResponse struct {
	DryRun  bool              `json:"dry_run"`
	Deleted []engine.Deletion `json:"deleted"`
}

func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ok, retry := s.cleanLimiter.Allow(host); !ok {
		w.Header().Set("Retry-After", retry.Round(time.Second).String())
		writeError(w, http.StatusTooManyRequests, errors.New("too many clean requests"))
		return
	}

	dry := r.URL.Query().Get("dry") == "true"
	deleted, err := s.cleaner.Clean(r.Context(), dry)
	if err != nil {
		s.log.Error("manual cycle failed", "error", err, "dry_run", dry)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if deleted == nil {
		deleted = []engine.Deletion{}
	}
	writeJSON(w, http.StatusOK, cleanResponse{DryRun: dry, Deleted: deleted})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
