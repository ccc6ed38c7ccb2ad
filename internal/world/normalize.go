package world

import (
	"math"

	"github.com/talgya/campaign-hexmap/internal/geo"
)

// PlaceRaw maps a feature to its grid cell before collision resolution.
// The feature is normalized against the grid's fractional tile span, the same
// one ComputeGrid used; integer tile bounds never enter this path.
func PlaceRaw(f CityFeature, g HexGridSpec) (HexPosition, error) {
	tc, err := geo.ProjectFractional(f.Lat, f.Lon, g.Zoom)
	if err != nil {
		return HexPosition{}, err
	}
	return g.CellOf(tc), nil
}

// CellOf maps a fractional tile coordinate to the nearest cell, clamped to the grid.
func (g HexGridSpec) CellOf(tc geo.TileCoord) HexPosition {
	nx, ny := g.Span.Normalize(tc)
	return HexPosition{
		Col: scaleToIndex(nx, g.Width),
		Row: scaleToIndex(ny, g.Height),
	}
}

func scaleToIndex(norm float64, cells int) int {
	i := int(math.Round(norm * float64(cells-1)))
	return min(max(i, 0), cells-1)
}

// CellCenter returns the geographic point a cell index stands for, the
// inverse of CellOf for in-grid points.
func (g HexGridSpec) CellCenter(pos HexPosition) (lat, lon float64) {
	nx := indexToNorm(pos.Col, g.Width)
	ny := indexToNorm(pos.Row, g.Height)
	return geo.Unproject(g.Span.Denormalize(nx, ny), g.Zoom)
}

func indexToNorm(i, cells int) float64 {
	if cells <= 1 {
		return 0.5
	}
	return float64(i) / float64(cells-1)
}

// MaxTruncationOffset is the worst-case disagreement, in cells on either
// axis, between normalizing against this grid's fractional span and
// normalizing against the floor corners of the raster tile window w.
//
// Both normalizations are affine in the tile coordinate, and at each corner
// of the bounds they differ by the discarded fraction of a tile divided by
// the whole-tile span I, which is below 1/I. Scaled to the grid that is
// ceil((cells-1)/I) plus one cell for rounding. A window one tile wide has
// I=0 and the truncated normalization is undefined; the bound is then the
// whole grid.
func MaxTruncationOffset(g HexGridSpec, w geo.TileWindow) int {
	ix := w.MaxX - w.MinX
	iy := w.MaxY - w.MinY
	if ix <= 0 || iy <= 0 {
		return max(g.Width, g.Height)
	}
	cx := int(math.Ceil(float64(g.Width-1)/float64(ix))) + 1
	cy := int(math.Ceil(float64(g.Height-1)/float64(iy))) + 1
	return max(cx, cy)
}
