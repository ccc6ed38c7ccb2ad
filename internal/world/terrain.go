// Preview terrain: a land/water mask from layered simplex noise, for runs
// without a real terrain source.

package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Terrain is the coarse class of a cell as far as placement cares.
type Terrain uint8

const (
	TerrainLand Terrain = iota
	TerrainWater
)

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainLand:
		return "Land"
	case TerrainWater:
		return "Water"
	default:
		return "Unknown"
	}
}

// TerrainSource classifies grid cells. Real terrain painting lives outside
// this package and satisfies it; PreviewTerrain is the built-in stand-in.
type TerrainSource interface {
	TerrainAt(pos HexPosition) Terrain
}

// BlockWater adapts a TerrainSource into a resolver Blocked predicate.
func BlockWater(src TerrainSource) func(HexPosition) bool {
	return func(pos HexPosition) bool {
		return src.TerrainAt(pos) == TerrainWater
	}
}

// PreviewConfig holds preview terrain parameters.
type PreviewConfig struct {
	Seed      int64
	SeaLevel  float64 // elevation threshold for water (0.0-1.0)
	Frequency float64 // noise cycles per degree
	Octaves   int
}

// DefaultPreviewConfig returns a mostly-land mask with scattered lakes and coast.
func DefaultPreviewConfig() PreviewConfig {
	return PreviewConfig{
		Seed:      42,
		SeaLevel:  0.3,
		Frequency: 0.15,
		Octaves:   4,
	}
}

// PreviewTerrain is a deterministic land/water mask over a grid.
type PreviewTerrain struct {
	grid  HexGridSpec
	water []bool // row-major
}

// GeneratePreviewTerrain samples noise at each cell's geographic center, so
// the same region yields the same coastline at any hex size.
func GeneratePreviewTerrain(grid HexGridSpec, cfg PreviewConfig) *PreviewTerrain {
	if cfg.Octaves < 1 {
		cfg.Octaves = 1
	}
	elevNoise := opensimplex.NewNormalized(cfg.Seed)
	t := &PreviewTerrain{grid: grid, water: make([]bool, grid.CellCount())}

	for row := 0; row < grid.Height; row++ {
		for col := 0; col < grid.Width; col++ {
			lat, lon := grid.CellCenter(HexPosition{Col: col, Row: row})
			elev := octaveNoise(elevNoise, lon, lat, cfg.Octaves, cfg.Frequency, 0.5)
			t.water[row*grid.Width+col] = elev < cfg.SeaLevel
		}
	}
	return t
}

// TerrainAt classifies a cell; cells off the grid count as water.
func (t *PreviewTerrain) TerrainAt(pos HexPosition) Terrain {
	if !t.grid.InBounds(pos) || t.water[pos.Row*t.grid.Width+pos.Col] {
		return TerrainWater
	}
	return TerrainLand
}

// Counts returns a summary of terrain distribution.
func (t *PreviewTerrain) Counts() map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, w := range t.water {
		if w {
			counts[TerrainWater]++
		} else {
			counts[TerrainLand]++
		}
	}
	return counts
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
