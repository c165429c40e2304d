// Package debug serves runtime profiles and live registry state over HTTP.
package debug

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"strings"
	"sync"
	"time"

	"github.com/objectregistry/internal/service"
	"github.com/objectregistry/pkg/model"
	"github.com/objectregistry/pkg/utils"
	"github.com/objectregistry/pkg/writer"
)

// Inspector is the service surface exposed under /debug/registry.
type Inspector interface {
	Stats() service.ServiceStats
	HealthCheck(ctx context.Context) error
	Report(ctx context.Context, runUUID string) (*model.PopulationReport, error)
}

// Config holds debug server configuration.
type Config struct {
	Addr  string // Listen address, e.g. "localhost:6060"
	Token string // Bearer token required on every request when set
}

// Server exposes pprof and registry endpoints.
type Server struct {
	config    *Config
	inspector Inspector
	logger    utils.Logger

	mux      *http.ServeMux
	server   *http.Server
	listener net.Listener
	wg       sync.WaitGroup
}

// NewServer creates a Server. A nil logger discards output.
func NewServer(cfg *Config, inspector Inspector, logger utils.Logger) *Server {
	if logger == nil {
		logger = &utils.NullLogger{}
	}
	s := &Server{
		config:    cfg,
		inspector: inspector,
		logger:    logger,
		mux:       http.NewServeMux(),
	}
	s.registerHandlers()
	return s
}

// Handler returns the HTTP handler for integration with existing servers.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Addr returns the bound address once Start has returned.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.config.Addr
	}
	return s.listener.Addr().String()
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Debug server error: %v", err)
		}
	}()
	s.logger.Info("Debug server listening on http://%s/debug/", ln.Addr())
	return nil
}

// Stop shuts the server down, waiting up to five seconds for open requests.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to shutdown debug server: %w", err)
	}
	return nil
}

func (s *Server) registerHandlers() {
	s.mux.HandleFunc("/debug/pprof/", s.auth(pprof.Index))
	s.mux.HandleFunc("/debug/pprof/cmdline", s.auth(pprof.Cmdline))
	s.mux.HandleFunc("/debug/pprof/profile", s.auth(pprof.Profile))
	s.mux.HandleFunc("/debug/pprof/symbol", s.auth(pprof.Symbol))
	s.mux.HandleFunc("/debug/pprof/trace", s.auth(pprof.Trace))

	s.mux.HandleFunc("/debug/registry/stats", s.auth(s.handleStats))
	s.mux.HandleFunc("/debug/registry/health", s.auth(s.handleHealth))
	s.mux.HandleFunc("/debug/registry/report", s.auth(s.handleReport))
}

func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	if s.config.Token == "" {
		return next
	}
	want := []byte(s.config.Token)
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		token = strings.TrimPrefix(token, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), want) == 1 {
			next(w, r)
			return
		}
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.inspector.Stats())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.inspector.HealthCheck(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.inspector.Report(r.Context(), r.URL.Query().Get("run"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON[T any](w http.ResponseWriter, status int, v T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = writer.NewJSONWriter[T]().Write(v, w)
}
