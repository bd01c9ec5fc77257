package scenario

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/talgya/agentik/internal/agents"
	"github.com/talgya/agentik/internal/engine"
)

// A fortress file declares the world size followed by its agents:
//
//	# two neighbors
//	world 25 x 19
//	agent grazer at 5,5 energy 60 mood curious
//	agent S at 7,5 state hunting personality aggressive
//	agent plant at 9,9 mood "very happy"
//
// State and mood labels that are not plain words are double-quoted with Go
// escapes. Unset agent fields take the archetype's defaults.
type fortressFile struct {
	World  *worldDecl   `@@`
	Agents []*agentDecl `@@*`
}

type worldDecl struct {
	Width  int `"world" @Number "x"`
	Height int `@Number`
}

type agentDecl struct {
	Pos lexer.Position

	Archetype string         `"agent" @Ident`
	X         int            `"at" @Number ","`
	Y         int            `@Number`
	Options   []*agentOption `@@*`
}

type agentOption struct {
	Energy      *float64 `  "energy" @Number`
	Social      *float64 `| "social" @Number`
	State       *string  `| "state" @(Ident | String)`
	Mood        *string  `| "mood" @(Ident | String)`
	Personality *string  `| "personality" @Ident`
}

var fortressLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[\s]+`},
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `-?[0-9]+(\.[0-9]+)?`},
	// No digits in identifiers so "25x19" still splits into size tokens.
	{Name: "Ident", Pattern: `[a-zA-Z_]+`},
	{Name: "Punct", Pattern: `,`},
})

var fortressParser = participle.MustBuild[fortressFile](
	participle.Lexer(fortressLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

// ParseFortress builds a world from fortress source. name is used in error
// messages and the opening log line.
func ParseFortress(name, src string) (*engine.World, error) {
	file, err := fortressParser.ParseString(name, src)
	if err != nil {
		return nil, fmt.Errorf("parse fortress %s: %w", name, err)
	}

	population := make([]*agents.Agent, 0, len(file.Agents))
	for _, decl := range file.Agents {
		a, err := decl.agent()
		if err != nil {
			return nil, fmt.Errorf("fortress %s line %d: %w", name, decl.Pos.Line, err)
		}
		population = append(population, a)
	}

	w, err := engine.NewWorld(file.World.Width, file.World.Height, population)
	if err != nil {
		return nil, fmt.Errorf("fortress %s: %w", name, err)
	}
	w.Logs = append(w.Logs, fmt.Sprintf("🏰 Fortress %s loaded with %d agents", name, len(population)))
	return w, nil
}

func (d *agentDecl) agent() (*agents.Agent, error) {
	t, err := agents.ParseArchetype(d.Archetype)
	if err != nil {
		return nil, err
	}
	a := Template(t, agents.Position{X: d.X, Y: d.Y})
	for _, opt := range d.Options {
		switch {
		case opt.Energy != nil:
			a.SetEnergy(*opt.Energy)
		case opt.Social != nil:
			a.SetSocial(*opt.Social)
		case opt.State != nil:
			a.State = *opt.State
		case opt.Mood != nil:
			a.Mood = *opt.Mood
		case opt.Personality != nil:
			p, err := agents.ParsePersonality(*opt.Personality)
			if err != nil {
				return nil, err
			}
			a.Personality = p
		}
	}
	return a, nil
}

// Format renders a world's size and population as fortress source.
// Terrain, history and targets are not part of the format.
func Format(w *engine.World) string {
	var b strings.Builder
	fmt.Fprintf(&b, "world %d x %d\n", w.Width, w.Height)
	for _, a := range w.Agents {
		fmt.Fprintf(&b, "agent %s at %d,%d energy %s social %s",
			strings.ToLower(a.Type.String()), a.Pos.X, a.Pos.Y, number(a.Energy), number(a.Social))
		if a.State != "" {
			fmt.Fprintf(&b, " state %s", label(a.State))
		}
		if a.Mood != "" {
			fmt.Fprintf(&b, " mood %s", label(a.Mood))
		}
		if a.Personality != "" {
			fmt.Fprintf(&b, " personality %s", a.Personality)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

var bareLabel = regexp.MustCompile(`^[a-zA-Z_]+$`)

// label leaves plain words alone and quotes anything the Ident token would
// not read back whole.
func label(s string) string {
	if bareLabel.MatchString(s) {
		return s
	}
	return strconv.Quote(s)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
