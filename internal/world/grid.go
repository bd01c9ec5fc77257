// Package world provides the tile grid and terrain generation.
// Tiles are addressed as grid[y][x], row-major.
package world

import "fmt"

// Terrain is the integer classification of a tile.
type Terrain int

const (
	TerrainUnset      Terrain = 0
	TerrainGround     Terrain = 1 // Plant-bearing ground
	TerrainWater      Terrain = 2
	TerrainHighGround Terrain = 3
	TerrainCover      Terrain = 4
	TerrainSpecial    Terrain = 5 // Special resource deposit
)

// TerrainName returns a display name for a terrain code.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainUnset:
		return "Unset"
	case TerrainGround:
		return "Ground"
	case TerrainWater:
		return "Water"
	case TerrainHighGround:
		return "HighGround"
	case TerrainCover:
		return "Cover"
	case TerrainSpecial:
		return "Special"
	default:
		return fmt.Sprintf("Terrain(%d)", int(t))
	}
}

// Grid holds terrain codes, one row per y.
type Grid [][]int

// NewGrid creates a width×height grid of unset tiles.
func NewGrid(width, height int) Grid {
	g := make(Grid, height)
	for y := range g {
		g[y] = make([]int, width)
	}
	return g
}

// Height returns the number of rows.
func (g Grid) Height() int {
	return len(g)
}

// Width returns the number of columns.
func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// InBounds returns true if (x, y) addresses a tile.
func (g Grid) InBounds(x, y int) bool {
	return y >= 0 && y < len(g) && x >= 0 && x < len(g[y])
}

// At returns the terrain at (x, y), or TerrainUnset out of bounds.
func (g Grid) At(x, y int) Terrain {
	if !g.InBounds(x, y) {
		return TerrainUnset
	}
	return Terrain(g[y][x])
}

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for y, row := range g {
		out[y] = append([]int(nil), row...)
	}
	return out
}

// Counts returns the number of tiles of each terrain code.
func (g Grid) Counts() map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, row := range g {
		for _, code := range row {
			counts[Terrain(code)]++
		}
	}
	return counts
}

// String returns a summary of the grid.
func (g Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d)", g.Width(), g.Height())
}
