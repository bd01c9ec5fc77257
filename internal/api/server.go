// Package api provides the HTTP API for driving and observing the simulation.
// GET endpoints are public. Fortress writes require a bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/talgya/agentik/internal/engine"
	"github.com/talgya/agentik/internal/persistence"
)

// Server serves the simulation over HTTP.
type Server struct {
	Runner      *engine.Runner
	DB          *persistence.DB // Nil disables saved fortresses and log history.
	Width       int             // Size of worlds built from test environments
	Height      int
	FortressDir string
	Port        int
	AdminKey    string // Bearer token for admin endpoints. Empty = disabled.
	CORSOrigins []string

	mu      sync.Mutex
	runID   string
	started time.Time

	hub hub
	srv *http.Server
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	// Manual stepping is the only endpoint that does real work per request.
	stepLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/start_simulation", s.handleStart)
	mux.HandleFunc("/api/stop_simulation", s.handleStop)
	mux.HandleFunc("/api/simulation_state", s.handleState)
	mux.HandleFunc("/api/step_simulation", RateLimitMiddleware(stepLimiter, s.handleStep))
	mux.HandleFunc("/api/available_tests", s.handleAvailableTests)
	mux.HandleFunc("/api/available_fortresses", s.handleAvailableFortresses)
	mux.HandleFunc("/api/logs", s.handleLogs)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/schema", s.handleSchema)
	mux.HandleFunc("/api/stream", s.handleStream)

	// Admin endpoints.
	mux.HandleFunc("/api/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/save_fortress", s.adminOnly(s.handleSaveFortress))
	mux.HandleFunc("/api/import_fortress", s.adminOnly(s.handleImportFortress))
	mux.HandleFunc("/api/delete_fortress", s.adminOnly(s.handleDeleteFortress))

	return corsMiddleware(s.CORSOrigins, mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	s.mu.Lock()
	s.started = time.Now()
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.srv
	s.mu.Unlock()

	slog.Info("HTTP API starting", "addr", srv.Addr, "admin_auth", s.AdminKey != "", "storage", s.DB != nil)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops the HTTP server started by Start.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// RunID returns the identifier of the current run.
func (s *Server) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// Publish records a finished step: its narration goes to the log history and
// the world to every stream subscriber. Wire it to Runner.OnStep.
func (s *Server) Publish(w *engine.World) {
	runID := s.RunID()

	if s.DB != nil {
		if err := s.DB.SaveLogs(runID, w.Tick, engine.Narrate(w.Agents)); err != nil {
			slog.Error("saving step logs failed", "run", runID, "step", w.Tick, "error", err)
		}
	}

	s.publish("step", runID, w)
}

// corsMiddleware adds CORS headers for the configured origins. "*" allows any.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case allowed["*"]:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no WORLDSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}

			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
