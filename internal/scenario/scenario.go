// Package scenario builds ready-to-run worlds: the named test environments
// and fortresses described in a small text format.
package scenario

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/agentik/internal/agents"
	"github.com/talgya/agentik/internal/engine"
)

// ErrUnknownScenario is returned for test or fortress names nobody defined.
var ErrUnknownScenario = errors.New("unknown scenario")

// clusterSize is how many extra agents an archetype scenario adds.
const clusterSize = 4

// Test environments in listing order. A nil focus means the plain default world.
var tests = []struct {
	name  string
	focus *agents.Archetype
}{
	{"DUCK", archetype(agents.Grazer)},
	{"AMOEBA", archetype(agents.Scavenger)},
	{"GRASS", archetype(agents.Plant)},
	{"WANDERER", archetype(agents.Socializer)},
	{"STALKER", archetype(agents.Predator)},
	{"BOKO", nil},
	{"GORON", nil},
	{"BLUPEE", nil},
	{"KOROK", nil},
	{"POKEMON", nil},
}

func archetype(a agents.Archetype) *agents.Archetype { return &a }

// Names lists the test environments.
func Names() []string {
	names := make([]string, len(tests))
	for i, t := range tests {
		names[i] = t.name
	}
	return names
}

// Build creates the named test environment. Names are case-insensitive.
func Build(name string, width, height int) (*engine.World, error) {
	for _, t := range tests {
		if !strings.EqualFold(t.name, name) {
			continue
		}
		w, err := engine.CreateWorld(width, height)
		if err != nil {
			return nil, err
		}
		if t.focus == nil {
			return w, nil
		}
		placed := populate(w, *t.focus, clusterSize, seedFor(t.name))
		w.Logs = append(w.Logs, fmt.Sprintf("🧪 Test environment %s: %d extra %s agents", t.name, placed, *t.focus))
		return w, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
}

// Template returns a fresh agent of type t with the default world's starting
// state, mood and personality for that archetype.
func Template(t agents.Archetype, pos agents.Position) *agents.Agent {
	for _, a := range engine.DefaultPopulation() {
		if a.Type == t {
			a.Pos = pos
			return a
		}
	}
	return &agents.Agent{Type: t, Pos: pos, Energy: 80, Social: 50}
}

func seedFor(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(h.Sum64())
}

// populate adds up to n agents of type t on the free tiles where a noise field
// seeded from seed peaks. Returns how many were placed.
func populate(w *engine.World, t agents.Archetype, n int, seed int64) int {
	noise := opensimplex.NewNormalized(seed)

	taken := make(map[agents.Position]bool, len(w.Agents))
	for _, a := range w.Agents {
		taken[a.Pos] = true
	}

	type spot struct {
		pos   agents.Position
		score float64
	}
	var spots []spot
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			p := agents.Position{X: x, Y: y}
			if taken[p] {
				continue
			}
			spots = append(spots, spot{p, octaveNoise(noise, float64(x), float64(y), 3, 0.15, 0.5)})
		}
	}
	sort.SliceStable(spots, func(i, j int) bool { return spots[i].score > spots[j].score })

	placed := 0
	for _, s := range spots {
		if placed == n {
			break
		}
		w.Agents = append(w.Agents, Template(t, s.pos))
		placed++
	}
	return placed
}

// octaveNoise layers several frequencies of noise into one value in [0, 1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
