// Package agents provides the agent data model, local perception and the
// per-archetype decision rules.
package agents

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Archetype is one of the five fixed behavior classes.
type Archetype uint8

const (
	Grazer     Archetype = iota // Source tag D (duck)
	Scavenger                   // Source tag A (amoeba)
	Plant                       // Source tag G (grass)
	Socializer                  // Source tag W (wanderer)
	Predator                    // Source tag S (stalker)
)

var archetypeNames = [...]string{"Grazer", "Scavenger", "Plant", "Socializer", "Predator"}
var archetypeCodes = [...]byte{'D', 'A', 'G', 'W', 'S'}

// Archetypes lists every archetype in declaration order.
func Archetypes() []Archetype {
	return []Archetype{Grazer, Scavenger, Plant, Socializer, Predator}
}

func (a Archetype) String() string {
	if int(a) < len(archetypeNames) {
		return archetypeNames[a]
	}
	return fmt.Sprintf("Archetype(%d)", uint8(a))
}

// Code returns the single-letter source tag.
func (a Archetype) Code() byte {
	if int(a) < len(archetypeCodes) {
		return archetypeCodes[a]
	}
	return '?'
}

// IsPrey is true for the archetypes predators hunt and plants feed.
func (a Archetype) IsPrey() bool {
	return a == Grazer || a == Scavenger
}

// ParseArchetype accepts a name ("grazer") or a source tag ("D").
func ParseArchetype(s string) (Archetype, error) {
	for i, name := range archetypeNames {
		if strings.EqualFold(s, name) || (len(s) == 1 && strings.ToUpper(s)[0] == archetypeCodes[i]) {
			return Archetype(i), nil
		}
	}
	return 0, fmt.Errorf("unknown archetype %q", s)
}

func (a Archetype) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Archetype) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseArchetype(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Personality is fixed at creation.
type Personality string

const (
	Peaceful    Personality = "peaceful"
	Extroverted Personality = "extroverted"
	Aggressive  Personality = "aggressive"
)

// ParsePersonality validates a personality label.
func ParsePersonality(s string) (Personality, error) {
	switch p := Personality(strings.ToLower(s)); p {
	case Peaceful, Extroverted, Aggressive:
		return p, nil
	}
	return "", fmt.Errorf("unknown personality %q", s)
}

// Behavioral state labels. Descriptive only; nothing enforces transitions.
const (
	StateExploring         = "exploring"
	StateFleeing           = "fleeing"
	StateForaging          = "foraging"
	StateEating            = "eating"
	StateSeekingCompany    = "seeking_company"
	StateSocializing       = "socializing"
	StateStarving          = "starving"
	StateFeeding           = "feeding"
	StateSeekingMate       = "seeking_mate"
	StateReproducing       = "reproducing"
	StateGrowing           = "growing"
	StateBeingConsumed     = "being_consumed"
	StateAbsorbingWater    = "absorbing_water"
	StateSpreading         = "spreading"
	StatePhotosynthesizing = "photosynthesizing"
	StateDesperatelyLonely = "desperately_lonely"
	StateWandering         = "wandering"
	StateTerritorial       = "territorial_defense"
	StateHunting           = "hunting"
	StatePatrolling        = "patrolling"
)

// MoodLonely is the mood two agents must share for a bonding conversation.
const MoodLonely = "lonely"

// Position is an integer grid coordinate, serialized as [x, y].
type Position struct {
	X, Y int
}

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

func (p *Position) UnmarshalJSON(b []byte) error {
	var xy [2]int
	if err := json.Unmarshal(b, &xy); err != nil {
		return err
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

// Agent is one inhabitant of the world.
type Agent struct {
	Type        Archetype   `json:"type"`
	Pos         Position    `json:"pos"`
	State       string      `json:"state"`
	Energy      float64     `json:"energy"` // 0–100
	Social      float64     `json:"social"` // 0–100
	Target      *Position   `json:"target"` // Last pursued or fled-from tile
	Mood        string      `json:"mood"`
	Personality Personality `json:"personality"`
}

// Clone returns a deep copy.
func (a *Agent) Clone() *Agent {
	c := *a
	if a.Target != nil {
		t := *a.Target
		c.Target = &t
	}
	return &c
}

// SetEnergy assigns energy, clamped to [0, 100].
func (a *Agent) SetEnergy(v float64) {
	a.Energy = clampMeter(v)
}

// SetSocial assigns social need, clamped to [0, 100].
func (a *Agent) SetSocial(v float64) {
	a.Social = clampMeter(v)
}

func (a *Agent) setTarget(p Position) {
	a.Target = &p
}

func (a *Agent) setMode(state, mood string) {
	a.State = state
	a.Mood = mood
}

func (a *Agent) String() string {
	return fmt.Sprintf("%s@(%d,%d)", a.Type, a.Pos.X, a.Pos.Y)
}

func clampMeter(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
