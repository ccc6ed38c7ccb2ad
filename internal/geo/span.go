package geo

import (
	"errors"
	"fmt"
)

// TileSpan holds the corners of a bounds rectangle in tile space.
// Grid dimensioning and point normalization must share one TileSpan so that
// both work from identical fractional values.
type TileSpan struct {
	Zoom   int     `json:"zoom"`
	WestX  float64 `json:"west_x"`
	EastX  float64 `json:"east_x"`
	NorthY float64 `json:"north_y"`
	SouthY float64 `json:"south_y"`
}

// FractionalSpan projects the south-west and north-east corners of b.
func FractionalSpan(b Bounds, zoom int) (TileSpan, error) {
	sw, err := ProjectFractional(b.South, b.West, zoom)
	if err != nil {
		return TileSpan{}, cornerErr(err, "bounds.south", "bounds.west")
	}
	ne, err := ProjectFractional(b.North, b.East, zoom)
	if err != nil {
		return TileSpan{}, cornerErr(err, "bounds.north", "bounds.east")
	}
	return TileSpan{
		Zoom:   zoom,
		WestX:  sw.X,
		EastX:  ne.X,
		NorthY: ne.Y,
		SouthY: sw.Y,
	}, nil
}

// cornerErr renames the lat/lon field of a projection error to the bound it came from.
func cornerErr(err error, latField, lonField string) error {
	var de *DomainError
	if errors.As(err, &de) {
		renamed := *de
		switch de.Field {
		case "lat":
			renamed.Field = latField
		case "lon":
			renamed.Field = lonField
		}
		return &renamed
	}
	return err
}

// TilesX is the east-west extent in tiles.
func (s TileSpan) TilesX() float64 { return s.EastX - s.WestX }

// TilesY is the north-south extent in tiles. Y grows southward.
func (s TileSpan) TilesY() float64 { return s.SouthY - s.NorthY }

// Aspect returns TilesY/TilesX, the Mercator-corrected height-to-width ratio.
func (s TileSpan) Aspect() float64 {
	return s.TilesY() / s.TilesX()
}

// Normalize maps a tile coordinate into [0,1]x[0,1] relative to the span,
// with (0,0) at the north-west corner. Points outside the span fall outside
// the unit square; callers clamp after scaling.
func (s TileSpan) Normalize(tc TileCoord) (nx, ny float64) {
	return (tc.X - s.WestX) / s.TilesX(), (tc.Y - s.NorthY) / s.TilesY()
}

// Denormalize is the inverse of Normalize.
func (s TileSpan) Denormalize(nx, ny float64) TileCoord {
	return TileCoord{X: s.WestX + nx*s.TilesX(), Y: s.NorthY + ny*s.TilesY()}
}

func (s TileSpan) String() string {
	return fmt.Sprintf("z%d x[%.4f..%.4f] y[%.4f..%.4f]", s.Zoom, s.WestX, s.EastX, s.NorthY, s.SouthY)
}
