// Local perception: who is near an agent and what ground surrounds it.
package agents

import (
	"math"

	"github.com/talgya/agentik/internal/world"
)

const (
	PerceptionRadius = 3.0 // Euclidean, for other agents
	TerrainRadius    = 2   // Box half-width, for tiles (5×5 window)
	SpreadRadius     = 1   // Box half-width for plant spreading (3×3 window)
)

// Tile is one observed grid cell.
type Tile struct {
	X, Y int
	Code world.Terrain
}

// Neighbors returns every other agent within radius of a, in population order.
// Identity decides "other": two agents with equal fields are still distinct.
func Neighbors(a *Agent, population []*Agent, radius float64) []*Agent {
	var nearby []*Agent
	for _, other := range population {
		if other == a {
			continue
		}
		if Distance(a.Pos, other.Pos) <= radius {
			nearby = append(nearby, other)
		}
	}
	return nearby
}

// NearbyTerrain returns the non-zero tiles in the square window of half-width
// radius around a, row-major.
func NearbyTerrain(a *Agent, grid world.Grid, radius int) []Tile {
	var tiles []Tile
	for y := max(0, a.Pos.Y-radius); y < min(grid.Height(), a.Pos.Y+radius+1); y++ {
		for x := max(0, a.Pos.X-radius); x < min(grid.Width(), a.Pos.X+radius+1); x++ {
			if code := grid.At(x, y); code != world.TerrainUnset {
				tiles = append(tiles, Tile{X: x, Y: y, Code: code})
			}
		}
	}
	return tiles
}

// Distance is the continuous Euclidean distance between two tiles.
func Distance(a, b Position) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Manhattan is the taxicab distance between two tiles.
func Manhattan(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Adjacent is true when b lies in the 3×3 block centred on a.
func Adjacent(a, b Position) bool {
	return abs(a.X-b.X) <= 1 && abs(a.Y-b.Y) <= 1
}

func filterTiles(tiles []Tile, code world.Terrain) []Position {
	var out []Position
	for _, t := range tiles {
		if t.Code == code {
			out = append(out, Position{X: t.X, Y: t.Y})
		}
	}
	return out
}

// closestTile picks the Manhattan-nearest tile; the first one scanned wins ties.
func closestTile(from Position, tiles []Position) Position {
	best := tiles[0]
	bestDist := Manhattan(from, best)
	for _, p := range tiles[1:] {
		if d := Manhattan(from, p); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// nearestAgent picks the Euclidean-nearest agent; population order breaks ties.
func nearestAgent(from Position, candidates []*Agent) *Agent {
	best := candidates[0]
	bestDist := Distance(from, best.Pos)
	for _, c := range candidates[1:] {
		if d := Distance(from, c.Pos); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func ofType(agents []*Agent, types ...Archetype) []*Agent {
	var out []*Agent
	for _, a := range agents {
		for _, t := range types {
			if a.Type == t {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
