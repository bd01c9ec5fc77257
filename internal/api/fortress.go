package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/talgya/agentik/internal/engine"
	"github.com/talgya/agentik/internal/persistence"
	"github.com/talgya/agentik/internal/scenario"
	"github.com/talgya/agentik/internal/schema"
)

var fortressName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type fortressRequest struct {
	Name   string          `json:"name"`
	World  json.RawMessage `json:"world,omitempty"`  // World JSON, schema-checked
	Source string          `json:"source,omitempty"` // Fortress text format
}

// fortressWrite decodes and checks the common part of admin fortress writes.
func (s *Server) fortressWrite(w http.ResponseWriter, r *http.Request) (fortressRequest, bool) {
	var req fortressRequest
	if !requireMethod(w, r, http.MethodPost) {
		return req, false
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return req, false
	}
	if !fortressName.MatchString(req.Name) {
		http.Error(w, "name must be 1-64 letters, digits, '-' or '_'", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// handleSaveFortress stores the live world under a name.
func (s *Server) handleSaveFortress(w http.ResponseWriter, r *http.Request) {
	req, ok := s.fortressWrite(w, r)
	if !ok {
		return
	}

	snap := s.Runner.Snapshot()
	if err := s.DB.SaveFortress(req.Name, s.RunID(), snap); err != nil {
		slog.Error("fortress save failed", "name", req.Name, "error", err)
		http.Error(w, "fortress save failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"name": req.Name, "step": snap.Tick, "message": "fortress saved"})
}

// handleImportFortress stores an uploaded world, given either as world JSON
// or as fortress source text.
func (s *Server) handleImportFortress(w http.ResponseWriter, r *http.Request) {
	req, ok := s.fortressWrite(w, r)
	if !ok {
		return
	}

	world, err := importWorld(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.DB.SaveFortress(req.Name, "import", world); err != nil {
		slog.Error("fortress import failed", "name", req.Name, "error", err)
		http.Error(w, "fortress import failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"name": req.Name, "agents": len(world.Agents), "message": "fortress imported"})
}

func importWorld(req fortressRequest) (*engine.World, error) {
	switch {
	case req.Source != "" && len(req.World) > 0:
		return nil, errors.New("give either world or source, not both")
	case req.Source != "":
		return scenario.ParseFortress(req.Name, req.Source)
	case len(req.World) > 0:
		if err := schema.Validate(req.World); err != nil {
			return nil, err
		}
		var world engine.World
		if err := json.Unmarshal(req.World, &world); err != nil {
			return nil, err
		}
		if err := world.Normalize(); err != nil {
			return nil, err
		}
		return &world, nil
	}
	return nil, errors.New("world or source is required")
}

func (s *Server) handleDeleteFortress(w http.ResponseWriter, r *http.Request) {
	req, ok := s.fortressWrite(w, r)
	if !ok {
		return
	}
	if err := s.DB.DeleteFortress(req.Name); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, persistence.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, map[string]any{"name": req.Name, "message": "fortress deleted"})
}
