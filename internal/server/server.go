// Package server exposes the usage aggregate over a local HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/theirongolddev/pulse/internal/model"
	"github.com/theirongolddev/pulse/internal/pipeline"
)

// DefaultAddr is used when Config.Addr is empty.
const DefaultAddr = "127.0.0.1:3456"

// Config controls the server runtime behavior.
type Config struct {
	Addr    string
	Options pipeline.Options // pipeline settings for every scan
	Advisor Advisor          // optional
}

// Optimization is one advisory tip attached to the usage response.
type Optimization struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"` // high, medium, low or positive
}

// Advisor derives optimization tips from an aggregate.
type Advisor interface {
	Advise(agg model.Aggregate) []Optimization
}

// usageResponse is served at /api/usage.
type usageResponse struct {
	model.Aggregate
	Optimizations []Optimization `json:"optimizations,omitempty"`
}

var localOrigin = regexp.MustCompile(`^https?://(localhost|127\.0\.0\.1|\[::1\])(:\d+)?$`)

// Server memoizes one aggregate and serves it until a refresh is requested.
type Server struct {
	cfg Config
	run func(pipeline.Options) (*pipeline.Result, error)

	mu     sync.Mutex
	cached *usageResponse
}

// New returns a server with the provided config.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return &Server{cfg: cfg, run: pipeline.Run}
}

// Handler returns the HTTP routes wrapped in the origin check.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/usage", s.handleUsage)
	return requireLocalOrigin(mux)
}

// Run serves HTTP until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("pulse http server: %w", err)
	}
}

// usage returns the memoized response, building it on first use or when
// refresh is set. Concurrent callers wait for a single scan.
func (s *Server) usage(refresh bool) (*usageResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && !refresh {
		return s.cached, nil
	}

	opts := s.cfg.Options
	opts.ForceRefresh = opts.ForceRefresh || refresh
	start := time.Now()
	result, err := s.run(opts)
	if err != nil {
		return nil, err
	}

	resp := &usageResponse{Aggregate: result.Aggregate}
	if s.cfg.Advisor != nil {
		resp.Optimizations = s.cfg.Advisor.Advise(result.Aggregate)
	}
	s.cached = resp
	log.Printf("pulse: scanned %d files (%d cached, %d reparsed) in %s",
		result.TotalFiles, result.CacheHits, result.Reparsed, time.Since(start).Round(time.Millisecond))
	return resp, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	refresh := r.URL.Query().Get("refresh") == "true"
	resp, err := s.usage(refresh)
	if err != nil {
		log.Printf("pulse: building usage: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to parse session data"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// requireLocalOrigin rejects browser requests from any page not served on
// the loopback interface. Requests without an Origin header pass.
func requireLocalOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if !localOrigin.MatchString(origin) {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
				return
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
