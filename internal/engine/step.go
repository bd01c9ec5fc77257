package engine

import (
	"github.com/talgya/agentik/internal/agents"
	"github.com/talgya/agentik/internal/entropy"
	"github.com/talgya/agentik/internal/world"
)

// Step advances w by one tick and returns it.
//
// Agents act strictly in population order, each seeing the already-updated
// positions of those before it. Plants spread into a staging list that is
// merged once the pass is over, so sprouts never act in the step that made them.
// Callers must not touch w while Step runs.
func Step(w *World, rng entropy.Source) *World {
	w.Tick++
	w.Grid = world.Generate(w.Width, w.Height)

	env := &agents.Env{
		Width:      w.Width,
		Height:     w.Height,
		Grid:       w.Grid,
		Population: w.Agents,
		Rand:       rng,
	}
	for _, a := range w.Agents {
		if spawn := agents.Act(a, env); spawn != nil {
			env.Staged = append(env.Staged, spawn)
		}
	}
	w.Agents = append(w.Agents, env.Staged...)
	if w.Agents == nil {
		w.Agents = []*agents.Agent{}
	}

	w.Conversations = Conversations(w.Agents, w.Tick)
	w.SocialEvents = SocialEvents(w.Agents)
	w.EnvironmentalChanges = EnvironmentalChanges(rng)

	w.Logs = appendLogs(w.Logs, Narrate(w.Agents))
	return w
}

// appendLogs adds lines and keeps only the newest MaxLogs.
func appendLogs(logs, lines []string) []string {
	logs = append(logs, lines...)
	if len(logs) > MaxLogs {
		logs = append([]string{}, logs[len(logs)-MaxLogs:]...)
	}
	if logs == nil {
		logs = []string{}
	}
	return logs
}
