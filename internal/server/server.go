// Package server is the companion HTTP server for the visualization demo:
// it serves the static demo assets, exposes the live session metrics as
// JSON, and hosts the websocket relay endpoint.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/relay"
)

// Server wires the router, the relay hub, and the asset watcher.
type Server struct {
	hub       *relay.Hub
	log       logrus.FieldLogger
	assetsDir string
	http      *http.Server
}

// New builds a server listening on addr, serving static files from
// assetsDir.
func New(addr, assetsDir string, hub *relay.Hub, log logrus.FieldLogger) *Server {
	s := &Server{
		hub:       hub,
		log:       log,
		assetsDir: assetsDir,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/summary", s.handleSummary).Methods(http.MethodGet)
	r.HandleFunc("/api/export", s.handleExport).Methods(http.MethodGet)
	r.HandleFunc("/api/recommendations", s.handleRecommendations).Methods(http.MethodGet)
	r.HandleFunc("/ws", hub.ServeWS)
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(assetsDir)))
	r.Use(s.logRequests)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully. The asset
// watcher runs alongside and stops with the context.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		if err := watchAssets(ctx, s.assetsDir, s.hub, s.log); err != nil {
			s.log.WithError(err).Warn("asset watcher unavailable")
		}
	}()

	errc := make(chan error, 1)
	go func() {
		s.log.WithFields(logrus.Fields{
			"addr":   s.http.Addr,
			"assets": s.assetsDir,
		}).Info("server listening")
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.log, map[string]string{"status": "ok"})
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.log, map[string]any{
		"summary":          s.hub.Summary(),
		"engagement_score": s.hub.EngagementScore(),
		"subscribers":      s.hub.SubscriberCount(),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.log, s.hub.Export())
}

func (s *Server) handleRecommendations(w http.ResponseWriter, _ *http.Request) {
	recs := s.hub.Recommendations()
	if recs == nil {
		recs = []string{}
	}
	writeJSON(w, s.log, map[string][]string{"recommendations": recs})
}

func writeJSON(w http.ResponseWriter, log logrus.FieldLogger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("response encode failed")
	}
}

// logRequests is a line-per-request logging middleware.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"remote":   r.RemoteAddr,
			"duration": time.Since(start).Round(time.Microsecond).String(),
		}).Debug("request")
	})
}
