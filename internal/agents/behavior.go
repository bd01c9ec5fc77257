// Archetype decision rules. Every step an agent perceives its surroundings,
// takes exactly one branch of its archetype's rules (first match wins), then
// pays the universal energy and social decay.
package agents

import (
	"github.com/talgya/agentik/internal/entropy"
	"github.com/talgya/agentik/internal/world"
)

// Env is the slice of world state an agent may read while deciding.
type Env struct {
	Width, Height int
	Grid          world.Grid
	Population    []*Agent // Current population, including the acting agent
	Staged        []*Agent // Spawned earlier in this pass, not yet merged
	Rand          entropy.Source
}

// Perception is what an agent sees this step.
type Perception struct {
	Neighbors []*Agent
	Terrain   []Tile
}

// Perceive gathers neighbors within PerceptionRadius and tiles within TerrainRadius.
func Perceive(a *Agent, env *Env) Perception {
	return Perception{
		Neighbors: Neighbors(a, env.Population, PerceptionRadius),
		Terrain:   NearbyTerrain(a, env.Grid, TerrainRadius),
	}
}

// Behavior is one archetype's decision procedure. It mutates the agent and
// may return a newly spawned agent.
type Behavior interface {
	Decide(a *Agent, p Perception, env *Env) *Agent
}

// BehaviorFor selects the decision procedure for an archetype.
func BehaviorFor(t Archetype) Behavior {
	switch t {
	case Grazer:
		return grazer{}
	case Scavenger:
		return scavenger{}
	case Plant:
		return plant{}
	case Socializer:
		return socializer{}
	case Predator:
		return predator{}
	default:
		return inert{}
	}
}

// Act runs one full step for a: perceive, decide, decay. Returns a spawn or nil.
func Act(a *Agent, env *Env) *Agent {
	p := Perceive(a, env)
	spawn := BehaviorFor(a.Type).Decide(a, p, env)
	Decay(a, env.Rand)
	return spawn
}

// Decay applies the passage of time: energy and social both drain.
func Decay(a *Agent, rng entropy.Source) {
	a.SetEnergy(a.Energy - entropy.Uniform(rng, 0.5, 1.0))
	a.SetSocial(a.Social - entropy.Uniform(rng, 0.3, 0.7))
}

// ── Grazer ───────────────────────────────────────────────────────────

type grazer struct{}

func (grazer) Decide(a *Agent, p Perception, env *Env) *Agent {
	if threats := ofType(p.Neighbors, Predator); len(threats) > 0 {
		threat := nearestAgent(a.Pos, threats)
		a.setMode(StateFleeing, "frightened")
		a.setTarget(threat.Pos)
		env.flee(a, threat.Pos)
		a.SetEnergy(a.Energy - 2)
		return nil
	}

	if a.Energy < 40 {
		a.setMode(StateForaging, "hungry")
		if !forage(a, p, env, 5, StateEating) && entropy.Chance(env.Rand, 0.3) {
			env.jitter(a, -1, 1)
		}
		return nil
	}

	if a.Social > 75 {
		a.setMode(StateSeekingCompany, MoodLonely)
		if company := ofType(p.Neighbors, Grazer, Socializer); len(company) > 0 {
			other := company[0]
			a.setTarget(other.Pos)
			env.approach(a, other.Pos, 1)
			if Adjacent(a.Pos, other.Pos) {
				a.SetSocial(a.Social + 3)
				a.setMode(StateSocializing, "happy")
			}
		}
		return nil
	}

	a.setMode(StateExploring, "curious")
	if entropy.Chance(env.Rand, 0.2) {
		env.jitter(a, -1, 0, 1)
	}
	return nil
}

// ── Scavenger ────────────────────────────────────────────────────────

type scavenger struct{}

func (scavenger) Decide(a *Agent, p Perception, env *Env) *Agent {
	switch {
	case a.Energy < 30:
		a.setMode(StateStarving, "desperate")
		if !forage(a, p, env, 8, StateFeeding) && entropy.Chance(env.Rand, 0.4) {
			env.jitter(a, -1, 1)
		}

	case a.Energy > 80:
		// Pays for reproduction but never produces offspring.
		a.setMode(StateSeekingMate, "focused")
		if mates := ofType(p.Neighbors, Scavenger); len(mates) > 0 {
			mate := mates[0]
			a.setTarget(mate.Pos)
			env.approach(a, mate.Pos, 1)
			if Adjacent(a.Pos, mate.Pos) {
				a.SetEnergy(a.Energy - 20)
				a.setMode(StateReproducing, "excited")
			}
		}

	default:
		a.setMode(StateGrowing, "content")
		if entropy.Chance(env.Rand, 0.1) {
			env.jitter(a, -1, 0, 1)
		}
	}
	return nil
}

// ── Plant ────────────────────────────────────────────────────────────

type plant struct{}

func (plant) Decide(a *Agent, p Perception, env *Env) *Agent {
	water := filterTiles(p.Terrain, world.TerrainWater)

	switch {
	case len(ofType(p.Neighbors, Grazer, Scavenger)) > 0:
		a.setMode(StateBeingConsumed, "stressed")
		a.SetEnergy(a.Energy - 3)
		if a.Energy > 20 {
			a.SetEnergy(a.Energy + 2)
		}

	case len(water) > 0 && a.Energy < 60:
		a.setMode(StateAbsorbingWater, "content")
		a.SetEnergy(a.Energy + 3)

	case a.Energy > 80:
		a.setMode(StateSpreading, "productive")
		spots := env.emptyGround(a)
		if len(spots) > 0 && entropy.Chance(env.Rand, 0.05) {
			sprout := NewSprout(spots[entropy.Choice(env.Rand, len(spots))])
			a.SetEnergy(a.Energy - 20)
			return sprout
		}

	default:
		a.setMode(StatePhotosynthesizing, "peaceful")
		a.SetEnergy(a.Energy + 1)
	}
	return nil
}

// NewSprout is a freshly spread plant.
func NewSprout(pos Position) *Agent {
	return &Agent{
		Type:        Plant,
		Pos:         pos,
		State:       StateGrowing,
		Energy:      30,
		Social:      10,
		Mood:        "new",
		Personality: Peaceful,
	}
}

// ── Socializer ───────────────────────────────────────────────────────

type socializer struct{}

func (socializer) Decide(a *Agent, p Perception, env *Env) *Agent {
	targets := ofType(p.Neighbors, Grazer, Socializer, Scavenger)

	switch {
	case a.Social > 85:
		a.setMode(StateDesperatelyLonely, "panicked")
		if len(targets) == 0 {
			if entropy.Chance(env.Rand, 0.6) {
				env.jitter(a, -2, -1, 1, 2)
			}
			return nil
		}
		other := targets[0]
		a.setTarget(other.Pos)
		env.approach(a, other.Pos, 2)
		if Adjacent(a.Pos, other.Pos) {
			a.SetSocial(a.Social + 5)
			a.setMode(StateSocializing, "relieved")
		}

	case a.Personality == Extroverted && len(targets) > 0:
		a.setMode(StateSeekingCompany, "excited")
		other := nearestAgent(a.Pos, targets)
		a.setTarget(other.Pos)
		env.approach(a, other.Pos, 1)

	default:
		a.setMode(StateWandering, "curious")
		if entropy.Chance(env.Rand, 0.3) {
			env.jitter(a, -1, 1)
		}
	}
	return nil
}

// ── Predator ─────────────────────────────────────────────────────────

type predator struct{}

func (predator) Decide(a *Agent, p Perception, env *Env) *Agent {
	rivals := ofType(p.Neighbors, Predator)
	prey := ofType(p.Neighbors, Grazer, Scavenger)

	switch {
	case len(rivals) > 0:
		a.setMode(StateTerritorial, "aggressive")
		rival := rivals[0]
		a.setTarget(rival.Pos)
		env.approach(a, rival.Pos, 2)
		a.SetEnergy(a.Energy - 3)

	case len(prey) > 0 && a.Energy < 70:
		a.setMode(StateHunting, "focused")
		quarry := prey[0]
		a.setTarget(quarry.Pos)
		if entropy.Chance(env.Rand, 0.7) {
			env.approach(a, quarry.Pos, 1)
			return nil
		}
		env.approach(a, quarry.Pos, 3)
		if Adjacent(a.Pos, quarry.Pos) {
			a.SetEnergy(a.Energy + 15)
			a.setMode(StateFeeding, "satisfied")
		}

	default:
		a.setMode(StatePatrolling, "alert")
		if entropy.Chance(env.Rand, 0.4) {
			env.jitter(a, -1, 1)
		}
	}
	return nil
}

type inert struct{}

func (inert) Decide(*Agent, Perception, *Env) *Agent { return nil }

// ── shared moves ─────────────────────────────────────────────────────

// forage heads for the nearest ground tile in view and eats on arrival.
// Returns false when no ground is visible.
func forage(a *Agent, p Perception, env *Env, gain float64, fedState string) bool {
	ground := filterTiles(p.Terrain, world.TerrainGround)
	if len(ground) == 0 {
		return false
	}
	food := closestTile(a.Pos, ground)
	a.setTarget(food)
	env.approach(a, food, 1)
	if Adjacent(a.Pos, food) {
		a.SetEnergy(a.Energy + gain)
		a.setMode(fedState, "satisfied")
	}
	return true
}

// approach moves up to n cells toward target on each axis independently.
func (env *Env) approach(a *Agent, target Position, n int) {
	a.Pos = env.clamp(Position{
		X: a.Pos.X + n*sign(target.X-a.Pos.X),
		Y: a.Pos.Y + n*sign(target.Y-a.Pos.Y),
	})
}

// flee steps one cell away from threat on both axes. A shared coordinate
// retreats toward the lower edge.
func (env *Env) flee(a *Agent, threat Position) {
	a.Pos = env.clamp(Position{
		X: a.Pos.X + awayStep(a.Pos.X-threat.X),
		Y: a.Pos.Y + awayStep(a.Pos.Y-threat.Y),
	})
}

// jitter offsets both axes by one draw each from steps.
func (env *Env) jitter(a *Agent, steps ...int) {
	dx := entropy.Pick(env.Rand, steps...)
	dy := entropy.Pick(env.Rand, steps...)
	a.Pos = env.clamp(Position{X: a.Pos.X + dx, Y: a.Pos.Y + dy})
}

func (env *Env) clamp(p Position) Position {
	return Position{X: clampInt(p.X, 0, env.Width-1), Y: clampInt(p.Y, 0, env.Height-1)}
}

// emptyGround lists ground tiles around a that no agent, live or staged, occupies.
func (env *Env) emptyGround(a *Agent) []Position {
	var spots []Position
	for _, pos := range filterTiles(NearbyTerrain(a, env.Grid, SpreadRadius), world.TerrainGround) {
		if !env.occupied(pos) {
			spots = append(spots, pos)
		}
	}
	return spots
}

func (env *Env) occupied(pos Position) bool {
	for _, o := range env.Population {
		if o.Pos == pos {
			return true
		}
	}
	for _, o := range env.Staged {
		if o.Pos == pos {
			return true
		}
	}
	return false
}

func awayStep(d int) int {
	if d > 0 {
		return 1
	}
	return -1
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
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
