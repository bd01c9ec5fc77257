package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/agentik/internal/agents"
	"github.com/talgya/agentik/internal/entropy"
	"github.com/talgya/agentik/internal/world"
)

func mustWorld(t *testing.T, width, height int, pop ...*agents.Agent) *World {
	t.Helper()
	w, err := NewWorld(width, height, pop)
	require.NoError(t, err)
	return w
}

func TestCreateWorldDefaults(t *testing.T) {
	w, err := CreateWorld(25, 19)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), w.Tick)
	assert.Len(t, w.Agents, 5)
	assert.Len(t, w.Logs, 6)
	assert.Equal(t, world.Generate(25, 19), w.Grid)
	assert.Empty(t, w.Conversations)

	var types []agents.Archetype
	for _, a := range w.Agents {
		types = append(types, a.Type)
	}
	assert.Equal(t, agents.Archetypes(), types)
}

func TestCreateWorldRejectsBadDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 19}, {25, 0}, {-1, 5}, {MaxDimension + 1, 5}, {5, 3000}} {
		_, err := CreateWorld(dims[0], dims[1])
		assert.True(t, errors.Is(err, ErrInvalidDimensions), "%v", dims)
	}

	_, err := NewWorld(MaxDimension, 1, nil)
	assert.NoError(t, err)

	w := &World{Width: 3000, Height: 3000}
	assert.ErrorIs(t, w.Normalize(), ErrInvalidDimensions)
	assert.Nil(t, w.Grid)
}

func TestCreateWorldClampsIntoSmallWorlds(t *testing.T) {
	w, err := CreateWorld(3, 3)
	require.NoError(t, err)
	for _, a := range w.Agents {
		assert.True(t, w.Grid.InBounds(a.Pos.X, a.Pos.Y), a.String())
	}
	assert.Equal(t, agents.Position{X: 2, Y: 2}, w.Agents[0].Pos)
}

// Golden step: the default world advanced once with every draw fixed at 0.05.
func TestStepGolden(t *testing.T) {
	w, err := CreateWorld(25, 19)
	require.NoError(t, err)
	seq := entropy.NewSequence(0.05)

	Step(w, seq)

	assert.Equal(t, uint64(1), w.Tick)
	assert.Equal(t, 21, seq.Drawn())

	want := []struct {
		pos            agents.Position
		state, mood    string
		energy, social float64
	}{
		{agents.Position{X: 4, Y: 4}, agents.StateExploring, "curious", 84.475, 69.68},
		{agents.Position{X: 8, Y: 7}, agents.StateSeekingMate, "focused", 91.475, 44.68},
		{agents.Position{X: 12, Y: 10}, agents.StatePhotosynthesizing, "peaceful", 78.475, 19.68},
		{agents.Position{X: 2, Y: 7}, agents.StateWandering, "curious", 87.475, 79.68},
		{agents.Position{X: 14, Y: 2}, agents.StatePatrolling, "alert", 94.475, 29.68},
	}
	require.Len(t, w.Agents, len(want))
	for i, exp := range want {
		a := w.Agents[i]
		assert.Equal(t, exp.pos, a.Pos, "agent %d", i)
		assert.Equal(t, exp.state, a.State, "agent %d", i)
		assert.Equal(t, exp.mood, a.Mood, "agent %d", i)
		assert.InDelta(t, exp.energy, a.Energy, 1e-9, "agent %d", i)
		assert.InDelta(t, exp.social, a.Social, 1e-9, "agent %d", i)
		assert.Nil(t, a.Target, "agent %d", i)
	}

	assert.Empty(t, w.Conversations)
	assert.Empty(t, w.SocialEvents)
	assert.Equal(t, []EnvironmentalChange{{Type: "weather", Description: "A gentle breeze is blowing through the world"}}, w.EnvironmentalChanges)
	assert.Len(t, w.Logs, 6)

	// Everything but the terrain, byte for byte.
	got, err := json.Marshal(struct {
		Step                 uint64                `json:"step"`
		Agents               []*agents.Agent       `json:"agents"`
		Logs                 []string              `json:"logs"`
		Conversations        []Conversation        `json:"conversations"`
		SocialEvents         []SocialEvent         `json:"social_events"`
		EnvironmentalChanges []EnvironmentalChange `json:"environmental_changes"`
	}{w.Tick, w.Agents, w.Logs, w.Conversations, w.SocialEvents, w.EnvironmentalChanges})
	require.NoError(t, err)

	fixture, err := os.ReadFile(filepath.Join("testdata", "golden_step.json"))
	require.NoError(t, err)
	var golden bytes.Buffer
	require.NoError(t, json.Compact(&golden, fixture))
	assert.Equal(t, golden.String(), string(got))
}

func TestStepKeepsWorldConsistent(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 1337} {
		t.Run(fmt.Sprint(seed), func(t *testing.T) {
			w, err := CreateWorld(25, 19)
			require.NoError(t, err)
			// A crowded meadow exercises every branch, spreading included.
			for x := 9; x <= 15; x += 2 {
				w.Agents = append(w.Agents,
					&agents.Agent{Type: agents.Plant, Pos: agents.Position{X: x, Y: 8}, Energy: 95, Social: 60},
					&agents.Agent{Type: agents.Predator, Pos: agents.Position{X: x, Y: 11}, Energy: 40, Social: 60},
					&agents.Agent{Type: agents.Grazer, Pos: agents.Position{X: x, Y: 12}, Energy: 20, Social: 80},
				)
			}
			rng := entropy.NewSeeded(seed)
			for i := 0; i < 300; i++ {
				before := len(w.Agents)
				Step(w, rng)
				require.GreaterOrEqual(t, len(w.Agents), before)
				require.LessOrEqual(t, len(w.Logs), MaxLogs)
				for _, a := range w.Agents {
					require.True(t, w.Grid.InBounds(a.Pos.X, a.Pos.Y), "%s out of bounds", a)
					require.GreaterOrEqual(t, a.Energy, 0.0)
					require.LessOrEqual(t, a.Energy, 100.0)
					require.GreaterOrEqual(t, a.Social, 0.0)
					require.LessOrEqual(t, a.Social, 100.0)
				}
			}
			assert.Equal(t, uint64(300), w.Tick)
		})
	}
}

func TestStepRegeneratesTerrain(t *testing.T) {
	w, err := CreateWorld(25, 19)
	require.NoError(t, err)
	w.Grid[0][0] = int(world.TerrainCover)

	Step(w, entropy.NewSeeded(3))
	assert.Equal(t, world.Generate(25, 19), w.Grid)

	other := mustWorld(t, 25, 19)
	Step(other, entropy.NewSeeded(99))
	assert.Equal(t, w.Grid, other.Grid)
}

func TestStepEmptyWorld(t *testing.T) {
	w := mustWorld(t, 10, 6)
	seq := entropy.NewSequence(0.9)

	Step(w, seq)
	Step(w, seq)

	assert.Equal(t, uint64(2), w.Tick)
	assert.NotNil(t, w.Agents)
	assert.Empty(t, w.Agents)
	assert.Equal(t, world.Generate(10, 6), w.Grid)
	assert.Equal(t, 4, seq.Drawn())
}

func TestStepPlantSpreading(t *testing.T) {
	parent := &agents.Agent{Type: agents.Plant, Pos: agents.Position{X: 12, Y: 10}, Energy: 85, Social: 10}
	w := mustWorld(t, 25, 19, parent)

	Step(w, entropy.NewSequence(0.0, 0.0, 0.5, 0.5, 0.5, 0.5))

	require.Len(t, w.Agents, 2)
	assert.Equal(t, agents.StateSpreading, parent.State)
	assert.InDelta(t, 64.25, parent.Energy, 1e-9)

	sprout := w.Agents[1]
	assert.Equal(t, agents.Plant, sprout.Type)
	assert.Equal(t, agents.Position{X: 11, Y: 9}, sprout.Pos)
	// Sprouts do not act in the step that created them.
	assert.Equal(t, 30.0, sprout.Energy)
	assert.Equal(t, agents.StateGrowing, sprout.State)
}

func TestStepConversationAtRangeBoundary(t *testing.T) {
	run := func(second agents.Position) *World {
		w := mustWorld(t, 25, 19,
			&agents.Agent{Type: agents.Plant, Pos: agents.Position{X: 10, Y: 10}, Energy: 50, Social: 80},
			&agents.Agent{Type: agents.Plant, Pos: second, Energy: 50, Social: 80},
		)
		return Step(w, entropy.NewSequence(0.5))
	}

	w := run(agents.Position{X: 12, Y: 10})
	require.Len(t, w.Conversations, 1)
	assert.Equal(t, Conversation{
		Participants: []agents.Archetype{agents.Plant, agents.Plant},
		Messages: []string{
			"Plant: 'Hello Plant! How are you today?'",
			"Plant: 'Hi Plant! I'm doing well, thanks!'",
		},
		Step: 1,
	}, w.Conversations[0])

	assert.Empty(t, run(agents.Position{X: 12, Y: 11}).Conversations)
}

func TestStepGrazerFleesAdjacentPredator(t *testing.T) {
	g := &agents.Agent{Type: agents.Grazer, Pos: agents.Position{X: 11, Y: 10}, Energy: 50, Social: 90}
	s := &agents.Agent{Type: agents.Predator, Pos: agents.Position{X: 10, Y: 10}, Energy: 95, Social: 30, Personality: agents.Aggressive}
	w := mustWorld(t, 25, 19, g, s)

	Step(w, entropy.NewSequence(0.5))

	assert.Equal(t, agents.StateFleeing, g.State)
	assert.Equal(t, agents.Position{X: 12, Y: 9}, g.Pos)
	assert.InDelta(t, 47.25, g.Energy, 1e-9)
	assert.Equal(t, agents.StatePatrolling, s.State)
	assert.Equal(t, []string{"🏃 Grazer is fleeing from a threat!"}, w.Logs)
}

func TestStepLaterAgentsSeeEarlierMoves(t *testing.T) {
	// The predator starts out of range; the grazer wanders into it first.
	w := mustWorld(t, 25, 19,
		&agents.Agent{Type: agents.Grazer, Pos: agents.Position{X: 10, Y: 10}, Energy: 50, Social: 50},
		&agents.Agent{Type: agents.Predator, Pos: agents.Position{X: 14, Y: 10}, Energy: 50, Social: 10},
	)
	Step(w, entropy.NewSequence(0.1, 0.99, 0.5))

	assert.Equal(t, agents.Position{X: 11, Y: 10}, w.Agents[0].Pos)
	assert.Equal(t, agents.StateHunting, w.Agents[1].State)
	assert.Equal(t, agents.Position{X: 13, Y: 10}, w.Agents[1].Pos)
}

func TestWorldJSONShape(t *testing.T) {
	w, err := CreateWorld(25, 19)
	require.NoError(t, err)

	raw, err := json.Marshal(w)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(raw, &flat))
	for _, key := range []string{"width", "height", "grid", "agents", "step", "logs", "conversations", "social_events", "environmental_changes"} {
		assert.Contains(t, flat, key)
	}
	first := flat["agents"].([]any)[0].(map[string]any)
	assert.Equal(t, "Grazer", first["type"])
	assert.Equal(t, []any{5.0, 5.0}, first["pos"])
	assert.Nil(t, first["target"])
	assert.Equal(t, "extroverted", first["personality"])

	var back World
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, w.Agents, back.Agents)
	assert.Equal(t, w.Grid, back.Grid)
}

func TestNormalizeRepairsImportedWorld(t *testing.T) {
	w := &World{
		Width:  5,
		Height: 5,
		Agents: []*agents.Agent{{Type: agents.Grazer, Pos: agents.Position{X: 9, Y: -2}, Energy: 140, Social: -4}},
	}
	require.NoError(t, w.Normalize())
	assert.Equal(t, agents.Position{X: 4, Y: 0}, w.Agents[0].Pos)
	assert.Equal(t, 100.0, w.Agents[0].Energy)
	assert.Equal(t, 0.0, w.Agents[0].Social)
	assert.Equal(t, world.Generate(5, 5), w.Grid)
	assert.NotNil(t, w.Logs)

	bad := &World{Width: 0, Height: 3}
	assert.ErrorIs(t, bad.Normalize(), ErrInvalidDimensions)
}

func TestCloneIsDeep(t *testing.T) {
	w, err := CreateWorld(25, 19)
	require.NoError(t, err)
	c := w.Clone()

	c.Agents[0].Pos.X = 20
	c.Grid[0][0] = 0
	c.Logs[0] = "changed"

	assert.Equal(t, 5, w.Agents[0].Pos.X)
	assert.Equal(t, int(world.TerrainWater), w.Grid[0][0])
	assert.NotEqual(t, "changed", w.Logs[0])
	assert.Equal(t, 1, w.CountByType()[agents.Plant])
}

func TestAppendLogsKeepsNewest(t *testing.T) {
	var logs []string
	for i := 0; i < 19; i++ {
		logs = append(logs, fmt.Sprint(i))
	}
	logs = appendLogs(logs, []string{"a", "b", "c"})
	require.Len(t, logs, MaxLogs)
	assert.Equal(t, "2", logs[0])
	assert.Equal(t, "c", logs[MaxLogs-1])

	assert.NotNil(t, appendLogs(nil, nil))
}
