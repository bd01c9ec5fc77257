// Interactions derived from the population after agents have acted.
// Nothing here mutates agents; each step's output replaces the last.
package engine

import (
	"fmt"

	"github.com/talgya/agentik/internal/agents"
	"github.com/talgya/agentik/internal/entropy"
)

const (
	conversationRange  = 2.0
	conversationSocial = 50.0
	groupSocial        = 70.0
)

// Conversation is a two-line exchange between neighbors.
type Conversation struct {
	Participants []agents.Archetype `json:"participants"`
	Messages     []string           `json:"messages"`
	Step         uint64             `json:"step"`
}

// SocialEvent is a notable group behavior.
type SocialEvent struct {
	Type         string             `json:"type"`
	Participants []agents.Archetype `json:"participants"`
	Description  string             `json:"description"`
}

// EnvironmentalChange is flavor about the world itself. It changes nothing.
type EnvironmentalChange struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Social event types.
const (
	EventGroupFormation  = "group_formation"
	EventHuntingBehavior = "hunting_behavior"
)

// Conversations pairs every two agents (i < j) that stand within two tiles
// of each other and both want company.
func Conversations(population []*agents.Agent, tick uint64) []Conversation {
	convs := []Conversation{}
	for i, a := range population {
		for _, b := range population[i+1:] {
			if agents.Distance(a.Pos, b.Pos) > conversationRange {
				continue
			}
			if a.Social > conversationSocial && b.Social > conversationSocial {
				convs = append(convs, converse(a, b, tick))
			}
		}
	}
	return convs
}

func converse(a, b *agents.Agent, tick uint64) Conversation {
	var first, second string
	switch {
	case a.State == agents.StateFleeing && b.State == agents.StateFleeing:
		first = "There's a threat nearby! We should stick together!"
		second = "Agreed! Safety in numbers!"
	case a.Mood == agents.MoodLonely && b.Mood == agents.MoodLonely:
		first = "I'm so glad I found you! I was feeling really lonely."
		second = "Me too! Let's explore together!"
	case a.State == agents.StateHunting && b.Type.IsPrey():
		first = "I can see you there..."
		second = "Oh no! I need to get away!"
	default:
		first = fmt.Sprintf("Hello %s! How are you today?", b.Type)
		second = fmt.Sprintf("Hi %s! I'm doing well, thanks!", a.Type)
	}
	return Conversation{
		Participants: []agents.Archetype{a.Type, b.Type},
		Messages: []string{
			fmt.Sprintf("%s: '%s'", a.Type, first),
			fmt.Sprintf("%s: '%s'", b.Type, second),
		},
		Step: tick,
	}
}

// SocialEvents reports group formation and hunting, at most one of each.
func SocialEvents(population []*agents.Agent) []SocialEvent {
	events := []SocialEvent{}

	var social []*agents.Agent
	for _, a := range population {
		if a.Social > groupSocial && (a.State == agents.StateSocializing || a.State == agents.StateSeekingCompany) {
			social = append(social, a)
		}
	}
	if len(social) >= 2 {
		events = append(events, SocialEvent{
			Type:         EventGroupFormation,
			Participants: []agents.Archetype{social[0].Type, social[1].Type},
			Description:  fmt.Sprintf("%s and %s formed a social group!", social[0].Type, social[1].Type),
		})
	}

	var hunters []agents.Archetype
	for _, a := range population {
		if a.State == agents.StateHunting {
			hunters = append(hunters, a.Type)
		}
	}
	if len(hunters) > 0 {
		events = append(events, SocialEvent{
			Type:         EventHuntingBehavior,
			Participants: hunters,
			Description:  fmt.Sprintf("%s is actively hunting for prey", hunters[0]),
		})
	}
	return events
}

// EnvironmentalChanges flips two independent coins: weather, then regrowth.
func EnvironmentalChanges(rng entropy.Source) []EnvironmentalChange {
	changes := []EnvironmentalChange{}
	if entropy.Chance(rng, 0.1) {
		changes = append(changes, EnvironmentalChange{
			Type:        "weather",
			Description: "A gentle breeze is blowing through the world",
		})
	}
	if entropy.Chance(rng, 0.05) {
		changes = append(changes, EnvironmentalChange{
			Type:        "resource",
			Description: "New grass patches are growing in fertile areas",
		})
	}
	return changes
}
