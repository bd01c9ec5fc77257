package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/agentik/internal/entropy"
	"github.com/talgya/agentik/internal/world"
)

func newEnv(rng entropy.Source, pop ...*Agent) *Env {
	return &Env{
		Width:      25,
		Height:     19,
		Grid:       world.Generate(25, 19),
		Population: pop,
		Rand:       rng,
	}
}

func decide(a *Agent, env *Env) *Agent {
	return BehaviorFor(a.Type).Decide(a, Perceive(a, env), env)
}

func TestGrazerFleesBeforeAnythingElse(t *testing.T) {
	for _, energy := range []float64{10, 50, 95} {
		g := &Agent{Type: Grazer, Pos: Position{11, 10}, Energy: energy, Social: 90}
		s := &Agent{Type: Predator, Pos: Position{10, 10}, Energy: 95}
		seq := entropy.NewSequence()
		env := newEnv(seq, g, s)

		decide(g, env)

		assert.Equal(t, StateFleeing, g.State)
		assert.Equal(t, "frightened", g.Mood)
		assert.Equal(t, Position{12, 9}, g.Pos)
		require.NotNil(t, g.Target)
		assert.Equal(t, Position{10, 10}, *g.Target)
		assert.Equal(t, energy-2, g.Energy)
		assert.Equal(t, 0, seq.Drawn())
	}
}

func TestGrazerFleeClampsAtEdge(t *testing.T) {
	g := &Agent{Type: Grazer, Pos: Position{0, 0}, Energy: 1}
	s := &Agent{Type: Predator, Pos: Position{1, 1}}
	env := newEnv(entropy.NewSequence(), g, s)

	decide(g, env)

	assert.Equal(t, Position{0, 0}, g.Pos)
	assert.Equal(t, 0.0, g.Energy)
}

func TestGrazerForagesNearestGround(t *testing.T) {
	g := &Agent{Type: Grazer, Pos: Position{6, 6}, Energy: 30, Social: 10}
	env := newEnv(entropy.NewSequence(), g)

	decide(g, env)

	// (5,6) is the only ground tile one step away; (6,6) itself is cover.
	require.NotNil(t, g.Target)
	assert.Equal(t, Position{5, 6}, *g.Target)
	assert.Equal(t, Position{5, 6}, g.Pos)
	assert.Equal(t, 35.0, g.Energy)
	assert.Equal(t, StateEating, g.State)
	assert.Equal(t, "satisfied", g.Mood)
}

func TestGrazerJittersWithoutGround(t *testing.T) {
	g := &Agent{Type: Grazer, Pos: Position{1, 1}, Energy: 30}
	env := newEnv(entropy.NewSequence(0.1, 0.9, 0.2), g)

	decide(g, env)

	assert.Equal(t, StateForaging, g.State)
	assert.Equal(t, "hungry", g.Mood)
	assert.Equal(t, Position{2, 0}, g.Pos)
	assert.Nil(t, g.Target)
}

func TestGrazerSeeksCompany(t *testing.T) {
	g := &Agent{Type: Grazer, Pos: Position{10, 10}, Energy: 60, Social: 80}
	w := &Agent{Type: Socializer, Pos: Position{12, 12}}
	env := newEnv(entropy.NewSequence(), g, w)

	decide(g, env)

	assert.Equal(t, Position{11, 11}, g.Pos)
	assert.Equal(t, 83.0, g.Social)
	assert.Equal(t, StateSocializing, g.State)
	assert.Equal(t, "happy", g.Mood)
}

func TestGrazerExplores(t *testing.T) {
	g := &Agent{Type: Grazer, Pos: Position{10, 10}, Energy: 60, Social: 50}
	env := newEnv(entropy.NewSequence(0.1, 0.0, 0.99), g)

	decide(g, env)

	assert.Equal(t, StateExploring, g.State)
	assert.Equal(t, Position{9, 11}, g.Pos)
}

func TestScavengerPaysForReproductionWithoutSpawning(t *testing.T) {
	a := &Agent{Type: Scavenger, Pos: Position{5, 10}, Energy: 90}
	mate := &Agent{Type: Scavenger, Pos: Position{7, 10}, Energy: 50}
	env := newEnv(entropy.NewSequence(), a, mate)

	spawn := decide(a, env)

	assert.Nil(t, spawn)
	assert.Equal(t, Position{6, 10}, a.Pos)
	assert.Equal(t, 70.0, a.Energy)
	assert.Equal(t, StateReproducing, a.State)
	require.NotNil(t, a.Target)
	assert.Equal(t, Position{7, 10}, *a.Target)
}

func TestScavengerStarving(t *testing.T) {
	a := &Agent{Type: Scavenger, Pos: Position{12, 9}, Energy: 20}
	env := newEnv(entropy.NewSequence(), a)

	decide(a, env)

	assert.Equal(t, Position{12, 9}, a.Pos)
	assert.Equal(t, 28.0, a.Energy)
	assert.Equal(t, StateFeeding, a.State)
}

func TestScavengerGrowing(t *testing.T) {
	a := &Agent{Type: Scavenger, Pos: Position{12, 9}, Energy: 50}
	env := newEnv(entropy.NewSequence(0.5), a)

	decide(a, env)

	assert.Equal(t, StateGrowing, a.State)
	assert.Equal(t, "content", a.Mood)
	assert.Equal(t, Position{12, 9}, a.Pos)
}

func TestPlantBranches(t *testing.T) {
	t.Run("being consumed regrows above 20", func(t *testing.T) {
		p := &Agent{Type: Plant, Pos: Position{12, 10}, Energy: 50}
		g := &Agent{Type: Grazer, Pos: Position{13, 10}}
		decide(p, newEnv(entropy.NewSequence(), p, g))
		assert.Equal(t, StateBeingConsumed, p.State)
		assert.Equal(t, 49.0, p.Energy)
	})
	t.Run("being consumed below 20", func(t *testing.T) {
		p := &Agent{Type: Plant, Pos: Position{12, 10}, Energy: 21}
		a := &Agent{Type: Scavenger, Pos: Position{12, 12}}
		decide(p, newEnv(entropy.NewSequence(), p, a))
		assert.Equal(t, 18.0, p.Energy)
	})
	t.Run("absorbs water", func(t *testing.T) {
		p := &Agent{Type: Plant, Pos: Position{3, 3}, Energy: 50}
		decide(p, newEnv(entropy.NewSequence(), p))
		assert.Equal(t, StateAbsorbingWater, p.State)
		assert.Equal(t, 53.0, p.Energy)
	})
	t.Run("photosynthesizes", func(t *testing.T) {
		p := &Agent{Type: Plant, Pos: Position{12, 10}, Energy: 70}
		decide(p, newEnv(entropy.NewSequence(), p))
		assert.Equal(t, StatePhotosynthesizing, p.State)
		assert.Equal(t, 71.0, p.Energy)
	})
}

func TestPlantSpreads(t *testing.T) {
	p := &Agent{Type: Plant, Pos: Position{12, 10}, Energy: 85}
	env := newEnv(entropy.NewSequence(0.0, 0.0), p)

	sprout := decide(p, env)

	require.NotNil(t, sprout)
	assert.Equal(t, Plant, sprout.Type)
	assert.Equal(t, Position{11, 9}, sprout.Pos)
	assert.Equal(t, 30.0, sprout.Energy)
	assert.Equal(t, 10.0, sprout.Social)
	assert.Equal(t, "new", sprout.Mood)
	assert.Equal(t, 65.0, p.Energy)
	assert.Equal(t, StateSpreading, p.State)
}

func TestPlantSpreadSkipsStagedTiles(t *testing.T) {
	p := &Agent{Type: Plant, Pos: Position{12, 10}, Energy: 85}
	env := newEnv(entropy.NewSequence(0.0, 0.0), p)
	env.Staged = []*Agent{NewSprout(Position{11, 9})}

	sprout := decide(p, env)

	require.NotNil(t, sprout)
	assert.Equal(t, Position{12, 9}, sprout.Pos)
}

func TestPlantSpreadMissesDraw(t *testing.T) {
	p := &Agent{Type: Plant, Pos: Position{12, 10}, Energy: 85}
	seq := entropy.NewSequence(0.05)
	env := newEnv(seq, p)

	assert.Nil(t, decide(p, env))
	assert.Equal(t, 85.0, p.Energy)
	assert.Equal(t, 1, seq.Drawn())
}

func TestSocializerDesperateRushes(t *testing.T) {
	w := &Agent{Type: Socializer, Pos: Position{10, 10}, Social: 90}
	g := &Agent{Type: Grazer, Pos: Position{13, 10}}
	decide(w, newEnv(entropy.NewSequence(), w, g))

	assert.Equal(t, Position{12, 10}, w.Pos)
	assert.Equal(t, 95.0, w.Social)
	assert.Equal(t, StateSocializing, w.State)
	assert.Equal(t, "relieved", w.Mood)
}

func TestSocializerPanicsAlone(t *testing.T) {
	w := &Agent{Type: Socializer, Pos: Position{10, 10}, Social: 90}
	decide(w, newEnv(entropy.NewSequence(0.5, 0.0, 0.99), w))

	assert.Equal(t, StateDesperatelyLonely, w.State)
	assert.Equal(t, Position{8, 12}, w.Pos)
}

func TestSocializerExtrovertPicksNearest(t *testing.T) {
	w := &Agent{Type: Socializer, Pos: Position{10, 10}, Social: 50, Personality: Extroverted}
	far := &Agent{Type: Grazer, Pos: Position{12, 12}}
	near := &Agent{Type: Scavenger, Pos: Position{11, 10}}
	decide(w, newEnv(entropy.NewSequence(), w, far, near))

	assert.Equal(t, StateSeekingCompany, w.State)
	require.NotNil(t, w.Target)
	assert.Equal(t, Position{11, 10}, *w.Target)
	assert.Equal(t, Position{11, 10}, w.Pos)
	assert.Equal(t, 50.0, w.Social)
}

func TestSocializerPeacefulWanders(t *testing.T) {
	w := &Agent{Type: Socializer, Pos: Position{10, 10}, Social: 50, Personality: Peaceful}
	g := &Agent{Type: Grazer, Pos: Position{11, 10}}
	decide(w, newEnv(entropy.NewSequence(0.9), w, g))

	assert.Equal(t, StateWandering, w.State)
	assert.Equal(t, Position{10, 10}, w.Pos)
}

func TestPredatorBranches(t *testing.T) {
	t.Run("territorial", func(t *testing.T) {
		s := &Agent{Type: Predator, Pos: Position{10, 10}, Energy: 50}
		rival := &Agent{Type: Predator, Pos: Position{12, 8}}
		g := &Agent{Type: Grazer, Pos: Position{11, 10}}
		decide(s, newEnv(entropy.NewSequence(), s, g, rival))
		assert.Equal(t, StateTerritorial, s.State)
		assert.Equal(t, Position{12, 8}, s.Pos)
		assert.Equal(t, 47.0, s.Energy)
	})
	t.Run("stalks", func(t *testing.T) {
		s := &Agent{Type: Predator, Pos: Position{10, 10}, Energy: 50}
		g := &Agent{Type: Grazer, Pos: Position{13, 10}}
		decide(s, newEnv(entropy.NewSequence(0.1), s, g))
		assert.Equal(t, StateHunting, s.State)
		assert.Equal(t, Position{11, 10}, s.Pos)
		assert.Equal(t, 50.0, s.Energy)
	})
	t.Run("pounces", func(t *testing.T) {
		s := &Agent{Type: Predator, Pos: Position{10, 10}, Energy: 50}
		g := &Agent{Type: Grazer, Pos: Position{13, 10}}
		decide(s, newEnv(entropy.NewSequence(0.9), s, g))
		assert.Equal(t, StateFeeding, s.State)
		assert.Equal(t, Position{13, 10}, s.Pos)
		assert.Equal(t, 65.0, s.Energy)
	})
	t.Run("well fed patrols", func(t *testing.T) {
		s := &Agent{Type: Predator, Pos: Position{0, 0}, Energy: 90}
		g := &Agent{Type: Grazer, Pos: Position{1, 0}}
		decide(s, newEnv(entropy.NewSequence(0.0), s, g))
		assert.Equal(t, StatePatrolling, s.State)
		assert.Equal(t, Position{0, 0}, s.Pos)
	})
}

func TestActDecaysAndClamps(t *testing.T) {
	a := &Agent{Type: Scavenger, Pos: Position{12, 9}, Energy: 50, Social: 70}
	env := newEnv(entropy.NewSequence(0.9, 0.5, 0.5), a)

	Act(a, env)

	assert.Equal(t, 49.25, a.Energy)
	assert.Equal(t, 69.5, a.Social)

	b := &Agent{Type: Socializer, Pos: Position{12, 9}, Energy: 0.2, Social: 0.1}
	Act(b, newEnv(entropy.NewSequence(0.9, 0.0, 0.0), b))
	assert.Equal(t, 0.0, b.Energy)
	assert.Equal(t, 0.0, b.Social)
}

func TestUnknownArchetypeOnlyDecays(t *testing.T) {
	a := &Agent{Type: Archetype(9), Pos: Position{1, 1}, Energy: 50, Social: 50}
	seq := entropy.NewSequence(0.0)
	Act(a, newEnv(seq, a))
	assert.Equal(t, 2, seq.Drawn())
	assert.Equal(t, 49.5, a.Energy)
	assert.Equal(t, Position{1, 1}, a.Pos)
}
