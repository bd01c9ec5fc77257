// Terrain generation from fixed geometric zones. No randomness: the grid is a
// pure function of the dimensions, so it is rebuilt every step rather than stored.
package world

// Generate builds the zoned landscape for a width×height world.
func Generate(width, height int) Grid {
	g := NewGrid(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g[y][x] = int(zoneAt(x, y, width, height))
		}
	}
	return g
}

// zoneAt classifies one tile. First matching zone wins.
func zoneAt(x, y, width, height int) Terrain {
	switch {
	// Central meadow.
	case 8 <= x && x <= 16 && 6 <= y && y <= 12:
		return TerrainGround
	// Corner lakes.
	case (x < 3 || x > width-4) && (y < 3 || y > height-4):
		return TerrainWater
	// Highlands ringing the lakes.
	case (x < 5 || x > width-6) && (y < 5 || y > height-6):
		return TerrainHighGround
	// Two wooded bands.
	case (6 <= x && x <= 8 || 17 <= x && x <= 19) && 4 <= y && y <= height-5:
		return TerrainCover
	// Resource deposits.
	case (x == 10 || x == 14) && (y == 2 || y == height-3):
		return TerrainSpecial
	default:
		return TerrainGround
	}
}
