package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/agentik/internal/agents"
	"github.com/talgya/agentik/internal/engine"
	"github.com/talgya/agentik/internal/persistence"
	"github.com/talgya/agentik/internal/scenario"
	"github.com/talgya/agentik/internal/schema"
)

type startRequest struct {
	TestEnv      string `json:"test_env"`
	FortressFile string `json:"fortress_file"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	RunID   string `json:"run_id,omitempty"`
}

type stepResponse struct {
	Status        string        `json:"status"`
	FortressState *engine.World `json:"fortress_state"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	world, source, err := s.buildWorld(req)
	if err != nil {
		slog.Warn("start simulation failed", "source", source, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	runID := uuid.NewString()
	s.mu.Lock()
	s.runID = runID
	s.mu.Unlock()

	// world belongs to the runner from here on; only the snapshot is read.
	snap := s.Runner.Replace(world)
	s.Runner.Start()
	s.publish("start", runID, snap)

	if s.DB != nil {
		if err := s.DB.SaveMeta("last_run", runID); err != nil {
			slog.Error("recording run failed", "run", runID, "error", err)
		}
	}
	slog.Info("simulation started", "run", runID, "source", source, "agents", len(snap.Agents))

	writeJSON(w, statusResponse{
		Status:  "success",
		Message: "Simulation started successfully",
		RunID:   runID,
	})
}

// buildWorld resolves a start request. Test environments win over fortresses;
// an empty request gets the default world.
func (s *Server) buildWorld(req startRequest) (*engine.World, string, error) {
	switch {
	case req.TestEnv != "":
		w, err := scenario.Build(req.TestEnv, s.Width, s.Height)
		return w, "test:" + req.TestEnv, err
	case req.FortressFile != "":
		w, err := s.loadFortress(req.FortressFile)
		return w, "fortress:" + req.FortressFile, err
	default:
		w, err := engine.CreateWorld(s.Width, s.Height)
		return w, "default", err
	}
}

// loadFortress looks in the store, then the built-in demos, then the
// fortress directory.
func (s *Server) loadFortress(name string) (*engine.World, error) {
	if s.DB != nil {
		w, err := s.DB.LoadFortress(name)
		if !errors.Is(err, persistence.ErrNotFound) {
			return w, err
		}
	}
	w, err := scenario.Demo(name)
	if !errors.Is(err, scenario.ErrUnknownScenario) {
		return w, err
	}
	return scenario.FromDir(s.FortressDir, name)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, scenario.ErrUnknownScenario), errors.Is(err, persistence.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidDimensions):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	s.Runner.Stop()
	slog.Info("simulation stopped", "run", s.RunID(), "step", s.Runner.Snapshot().Tick)
	writeJSON(w, statusResponse{Status: "success", Message: "Simulation stopped"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Runner.Snapshot())
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	writeJSON(w, stepResponse{Status: "success", FortressState: s.Runner.StepOnce()})
}

func (s *Server) handleAvailableTests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, scenario.Names())
}

func (s *Server) handleAvailableFortresses(w http.ResponseWriter, r *http.Request) {
	names := scenario.DemoFortresses()

	if s.DB != nil {
		infos, err := s.DB.ListFortresses()
		if err != nil {
			slog.Error("listing saved fortresses failed", "error", err)
		}
		for _, info := range infos {
			names = append(names, info.Name)
		}
	}

	files, err := scenario.DirFortresses(s.FortressDir)
	if err != nil {
		slog.Error("listing fortress files failed", "dir", s.FortressDir, "error", err)
	}
	names = append(names, files...)

	writeJSON(w, dedupe(names))
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, 500)
	}

	lines, err := s.DB.RecentLogs(limit)
	if err != nil {
		slog.Error("reading logs failed", "error", err)
		http.Error(w, "reading logs failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, lines)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Runner.Snapshot()

	counts := snap.CountByType()
	population := make(map[string]int, len(counts))
	for _, t := range agents.Archetypes() {
		population[t.String()] = counts[t]
	}

	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	uptime := ""
	if !started.IsZero() {
		uptime = humanize.Time(started)
	}

	writeJSON(w, map[string]any{
		"name":       "agentik",
		"run_id":     s.RunID(),
		"step":       snap.Tick,
		"running":    s.Runner.Running(),
		"speed":      s.Runner.Speed(),
		"width":      snap.Width,
		"height":     snap.Height,
		"agents":     len(snap.Agents),
		"population": population,
		"started":    uptime,
	})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/schema+json")
	w.Write(schema.Source())
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Runner.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Runner.Speed()})
}
