// Package engine advances the world one discrete step at a time and derives
// the interactions and narration that step produced.
package engine

import (
	"errors"
	"fmt"

	"github.com/talgya/agentik/internal/agents"
	"github.com/talgya/agentik/internal/world"
)

// MaxLogs is the number of narration lines a world retains.
const MaxLogs = 20

// MaxDimension bounds either side of a world. The JSON schema carries the
// same limit.
const MaxDimension = 1024

// ErrInvalidDimensions is returned for worlds with a non-positive or
// oversized side.
var ErrInvalidDimensions = errors.New("invalid dimensions")

// World is the complete simulation state. Step mutates it in place and hands
// it back; callers own it between steps.
type World struct {
	Width                int                   `json:"width"`
	Height               int                   `json:"height"`
	Grid                 world.Grid            `json:"grid"`
	Agents               []*agents.Agent       `json:"agents"`
	Tick                 uint64                `json:"step"`
	Logs                 []string              `json:"logs"`
	Conversations        []Conversation        `json:"conversations"`
	SocialEvents         []SocialEvent         `json:"social_events"`
	EnvironmentalChanges []EnvironmentalChange `json:"environmental_changes"`
}

// NewWorld builds a world around an explicit population. Agents are clamped
// into bounds and their meters into [0, 100].
func NewWorld(width, height int, population []*agents.Agent) (*World, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	w := &World{
		Width:                width,
		Height:               height,
		Grid:                 world.Generate(width, height),
		Agents:               append([]*agents.Agent{}, population...),
		Logs:                 []string{},
		Conversations:        []Conversation{},
		SocialEvents:         []SocialEvent{},
		EnvironmentalChanges: []EnvironmentalChange{},
	}
	w.clampAgents()
	return w, nil
}

// CreateWorld builds the default five-agent world.
func CreateWorld(width, height int) (*World, error) {
	w, err := NewWorld(width, height, DefaultPopulation())
	if err != nil {
		return nil, err
	}
	w.Logs = append(w.Logs,
		"🌍 World initialized with intelligent autonomous agents",
		"🦆 Grazer is exploring the environment",
		"🦠 Scavenger is feeding on resources",
		"🌱 Plant is growing and spreading",
		"🚶 Socializer is seeking social interaction",
		"🦁 Predator is patrolling territory",
	)
	return w, nil
}

// DefaultPopulation returns one agent of each archetype at the fixed start tiles.
func DefaultPopulation() []*agents.Agent {
	return []*agents.Agent{
		{Type: agents.Grazer, Pos: agents.Position{X: 5, Y: 5}, State: agents.StateExploring, Energy: 85, Social: 70, Mood: "curious", Personality: agents.Extroverted},
		{Type: agents.Scavenger, Pos: agents.Position{X: 8, Y: 7}, State: agents.StateFeeding, Energy: 92, Social: 45, Mood: "content", Personality: agents.Peaceful},
		{Type: agents.Plant, Pos: agents.Position{X: 12, Y: 10}, State: agents.StateGrowing, Energy: 78, Social: 20, Mood: "peaceful", Personality: agents.Peaceful},
		{Type: agents.Socializer, Pos: agents.Position{X: 3, Y: 8}, State: agents.StateWandering, Energy: 88, Social: 80, Mood: "excited", Personality: agents.Extroverted},
		{Type: agents.Predator, Pos: agents.Position{X: 15, Y: 3}, State: agents.StatePatrolling, Energy: 95, Social: 30, Mood: "alert", Personality: agents.Aggressive},
	}
}

// Normalize repairs a world read from outside the engine: terrain is rebuilt
// from the dimensions, agents are clamped, and nil collections become empty.
func (w *World) Normalize() error {
	if err := checkDimensions(w.Width, w.Height); err != nil {
		return err
	}
	w.Grid = world.Generate(w.Width, w.Height)
	w.clampAgents()
	if w.Agents == nil {
		w.Agents = []*agents.Agent{}
	}
	if w.Logs == nil {
		w.Logs = []string{}
	}
	if w.Conversations == nil {
		w.Conversations = []Conversation{}
	}
	if w.SocialEvents == nil {
		w.SocialEvents = []SocialEvent{}
	}
	if w.EnvironmentalChanges == nil {
		w.EnvironmentalChanges = []EnvironmentalChange{}
	}
	return nil
}

// Clone returns a deep copy safe to hand to readers while stepping continues.
func (w *World) Clone() *World {
	c := *w
	c.Grid = w.Grid.Clone()
	c.Agents = make([]*agents.Agent, len(w.Agents))
	for i, a := range w.Agents {
		c.Agents[i] = a.Clone()
	}
	c.Logs = append([]string{}, w.Logs...)
	c.Conversations = append([]Conversation{}, w.Conversations...)
	c.SocialEvents = append([]SocialEvent{}, w.SocialEvents...)
	c.EnvironmentalChanges = append([]EnvironmentalChange{}, w.EnvironmentalChanges...)
	return &c
}

// CountByType returns the population broken down by archetype.
func (w *World) CountByType() map[agents.Archetype]int {
	counts := make(map[agents.Archetype]int)
	for _, a := range w.Agents {
		counts[a.Type]++
	}
	return counts
}

func checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return nil
}

func (w *World) clampAgents() {
	for _, a := range w.Agents {
		a.Pos.X = clampInt(a.Pos.X, 0, w.Width-1)
		a.Pos.Y = clampInt(a.Pos.Y, 0, w.Height-1)
		a.SetEnergy(a.Energy)
		a.SetSocial(a.Social)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
