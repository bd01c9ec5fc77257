package scenario

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/talgya/agentik/internal/engine"
)

// DirFortresses lists the fortress files in dir. A missing dir is empty.
func DirFortresses(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	matches, err := fs.Glob(os.DirFS(dir), "*"+demoExt)
	if err != nil {
		return nil, fmt.Errorf("list fortresses in %s: %w", dir, err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(m, demoExt))
	}
	sort.Strings(names)
	return names, nil
}

// FromDir parses dir/<name>.fort.
func FromDir(dir, name string) (*engine.World, error) {
	if dir == "" || name != filepath.Base(name) {
		return nil, fmt.Errorf("%w: fortress %q", ErrUnknownScenario, name)
	}
	src, err := os.ReadFile(filepath.Join(dir, name+demoExt))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: fortress %q", ErrUnknownScenario, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read fortress %s: %w", name, err)
	}
	return ParseFortress(name, string(src))
}
