package world

import (
	"fmt"
	"math"

	"github.com/talgya/campaign-hexmap/internal/geo"
)

// KmPerDegree is the length of one degree of latitude, and of longitude at the equator.
const KmPerDegree = 111.32

// MinTileSpan is the smallest fractional tile extent a grid can be
// dimensioned against. Anything narrower is numerically degenerate at the
// chosen zoom.
const MinTileSpan = 1e-6

// HexGridSpec is the dimensioned campaign grid. It keeps the fractional tile
// span it was derived from so that placement normalizes against exactly the
// same values.
type HexGridSpec struct {
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	HexSizeKM float64      `json:"hex_size_km"`
	Zoom      int          `json:"zoom"`
	Bounds    geo.Bounds   `json:"bounds"`
	Span      geo.TileSpan `json:"span"`
}

// ComputeGrid derives the grid dimensions for bounds at zoom with cells of
// roughly hexSizeKM across.
//
// The width comes from the east-west distance at the center latitude. The
// height is width scaled by the fractional tile-span aspect, which carries
// the Mercator stretch of the region. Counting whole raster tiles instead
// would collapse small or low-zoom regions to a square grid.
func ComputeGrid(b geo.Bounds, zoom int, hexSizeKM float64) (HexGridSpec, error) {
	if err := b.Validate(); err != nil {
		return HexGridSpec{}, err
	}
	if err := geo.CheckZoom(zoom); err != nil {
		return HexGridSpec{}, err
	}
	if math.IsNaN(hexSizeKM) || math.IsInf(hexSizeKM, 0) || hexSizeKM <= 0 {
		return HexGridSpec{}, &geo.ConfigurationError{
			Field: "hex_size_km", Value: hexSizeKM, Reason: "must be a positive number of kilometres",
		}
	}

	kmPerDegLon := KmPerDegree * math.Cos(b.CenterLat()*math.Pi/180)
	widthKM := b.WidthDeg() * kmPerDegLon
	width := max(1, int(math.Round(widthKM/hexSizeKM)))

	span, err := geo.FractionalSpan(b, zoom)
	if err != nil {
		return HexGridSpec{}, err
	}
	if span.TilesX() < MinTileSpan || span.TilesY() < MinTileSpan {
		return HexGridSpec{}, &geo.ConfigurationError{
			Field: "zoom",
			Value: zoom,
			Reason: fmt.Sprintf("bounds %s span only %.3g x %.3g tiles; use a higher zoom",
				b, span.TilesX(), span.TilesY()),
		}
	}

	height := max(1, int(math.Round(float64(width)*span.Aspect())))

	return HexGridSpec{
		Width:     width,
		Height:    height,
		HexSizeKM: hexSizeKM,
		Zoom:      zoom,
		Bounds:    b,
		Span:      span,
	}, nil
}

// CellCount returns width*height.
func (g HexGridSpec) CellCount() int {
	return g.Width * g.Height
}

// InBounds reports whether pos is a cell of the grid.
func (g HexGridSpec) InBounds(pos HexPosition) bool {
	return pos.Col >= 0 && pos.Col < g.Width && pos.Row >= 0 && pos.Row < g.Height
}

// Aspect returns height/width of the grid in cells.
func (g HexGridSpec) Aspect() float64 {
	return float64(g.Height) / float64(g.Width)
}

// WidthKM is the east-west extent at the center latitude.
func (g HexGridSpec) WidthKM() float64 {
	return g.Bounds.WidthDeg() * KmPerDegree * math.Cos(g.Bounds.CenterLat()*math.Pi/180)
}

// HeightKM is the north-south extent along a meridian.
func (g HexGridSpec) HeightKM() float64 {
	return g.Bounds.HeightDeg() * KmPerDegree
}

// AchievedHexSizeKM reports the cell size actually obtained on each axis
// after rounding to whole cells.
func (g HexGridSpec) AchievedHexSizeKM() (x, y float64) {
	return g.WidthKM() / float64(g.Width), g.HeightKM() / float64(g.Height)
}

func (g HexGridSpec) String() string {
	return fmt.Sprintf("Grid(%dx%d, hex=%gkm, z%d, bounds=%s)", g.Width, g.Height, g.HexSizeKM, g.Zoom, g.Bounds)
}
