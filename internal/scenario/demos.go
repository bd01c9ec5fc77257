package scenario

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/talgya/agentik/internal/engine"
)

//go:embed fortresses/*.fort
var demoFS embed.FS

const demoExt = ".fort"

// DemoFortresses lists the built-in fortresses.
func DemoFortresses() []string {
	entries, err := demoFS.ReadDir("fortresses")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), demoExt))
	}
	sort.Strings(names)
	return names
}

// Demo parses the built-in fortress called name.
func Demo(name string) (*engine.World, error) {
	src, err := demoFS.ReadFile(path.Join("fortresses", name+demoExt))
	if err != nil {
		return nil, fmt.Errorf("%w: fortress %q", ErrUnknownScenario, name)
	}
	return ParseFortress(name, string(src))
}
