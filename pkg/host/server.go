package host

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/flowpane/flowpane/pkg/layout"
	"github.com/flowpane/flowpane/pkg/msg/wschan"
)

// Server exposes a host over HTTP: views attach through /ws, /graph.svg
// serves the rendered document for plain browsers, and /healthz answers
// liveness probes.
type Server struct {
	host   *Host
	engine layout.Engine
}

// NewServer wraps host. engine renders /graph.svg; pass a cached engine
// to avoid re-laying-out on every request.
func NewServer(host *Host, engine layout.Engine) *Server {
	return &Server{host: host, engine: engine}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/graph.svg", s.handleGraphSVG)
	r.Get("/ws", s.handleWS)
	return r
}

// ListenAndServe runs the server until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	s.host.logger.Info("serving", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errc:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleGraphSVG(w http.ResponseWriter, r *http.Request) {
	snap := s.host.Snapshot()
	if snap.Empty() {
		http.Error(w, "no document loaded", http.StatusServiceUnavailable)
		return
	}

	result, err := s.engine.Layout(r.Context(), snap.Content)
	if err != nil {
		s.host.logger.Error("render for /graph.svg failed", "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(result.SVG)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := wschan.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.host.logger.Warn("upgrade failed", "err", err)
		return
	}

	conn := wschan.New(ws, s.host.logger)
	defer conn.Close()

	s.host.Attach(r.Context(), uuid.NewString(), conn)
}
