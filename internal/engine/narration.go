package engine

import (
	"fmt"

	"github.com/talgya/agentik/internal/agents"
)

// Narrate renders the step's notable conditions, one line per condition,
// each naming the first agent that meets it.
func Narrate(population []*agents.Agent) []string {
	var lines []string

	if a := first(population, func(a *agents.Agent) bool { return a.Energy < 20 }); a != nil {
		lines = append(lines, fmt.Sprintf("⚠️ Warning: %s is critically low on energy!", a.Type))
	}
	if a := first(population, func(a *agents.Agent) bool { return a.Social > 90 }); a != nil {
		lines = append(lines, fmt.Sprintf("💬 %s is feeling extremely social and seeking interaction", a.Type))
	}
	if a := first(population, inState(agents.StateHunting)); a != nil {
		lines = append(lines, fmt.Sprintf("🦁 %s is stalking prey in the area", a.Type))
	}
	if a := first(population, inState(agents.StateFleeing)); a != nil {
		lines = append(lines, fmt.Sprintf("🏃 %s is fleeing from a threat!", a.Type))
	}
	return lines
}

func first(population []*agents.Agent, match func(*agents.Agent) bool) *agents.Agent {
	for _, a := range population {
		if match(a) {
			return a
		}
	}
	return nil
}

func inState(state string) func(*agents.Agent) bool {
	return func(a *agents.Agent) bool { return a.State == state }
}
