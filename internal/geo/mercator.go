package geo

import (
	"fmt"
	"math"
)

// MaxLatitude is the largest latitude the Web Mercator tile scheme covers,
// atan(sinh(π)) in degrees. Beyond it tan/asinh blows up toward infinity.
const MaxLatitude = 85.05112877980659

// MaxZoom keeps tile indices inside uint32, the width maptile uses.
const MaxZoom = 30

// TileCoord is a position in tile space at some zoom. X grows eastward and Y
// grows southward. Values are fractional unless produced by ProjectInteger.
type TileCoord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (t TileCoord) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", t.X, t.Y)
}

// CheckZoom validates a zoom level.
func CheckZoom(zoom int) error {
	if zoom < 0 {
		return configErr("zoom", zoom, "must be >= 0")
	}
	if zoom > MaxZoom {
		return configErr("zoom", zoom, "must be <= %d", MaxZoom)
	}
	return nil
}

// TilesPerAxis returns n = 2^zoom.
func TilesPerAxis(zoom int) float64 {
	return math.Ldexp(1, zoom)
}

// ProjectFractional converts a lat/lon to fractional slippy-tile coordinates.
func ProjectFractional(lat, lon float64, zoom int) (TileCoord, error) {
	if err := CheckZoom(zoom); err != nil {
		return TileCoord{}, err
	}
	if math.IsNaN(lat) || lat < -MaxLatitude || lat > MaxLatitude {
		return TileCoord{}, &DomainError{
			Field:  "lat",
			Value:  lat,
			Reason: fmt.Sprintf("outside the Mercator range ±%.4f°", MaxLatitude),
		}
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return TileCoord{}, &DomainError{Field: "lon", Value: lon, Reason: "outside [-180, 180]"}
	}

	n := TilesPerAxis(zoom)
	latRad := lat * math.Pi / 180
	return TileCoord{
		X: (lon + 180) / 360 * n,
		Y: (1 - math.Asinh(math.Tan(latRad))/math.Pi) / 2 * n,
	}, nil
}

// ProjectInteger returns the floor of ProjectFractional. Only the raster tile
// window uses it; grid placement always works on fractional values.
func ProjectInteger(lat, lon float64, zoom int) (TileCoord, error) {
	tc, err := ProjectFractional(lat, lon, zoom)
	if err != nil {
		return TileCoord{}, err
	}
	return TileCoord{X: math.Floor(tc.X), Y: math.Floor(tc.Y)}, nil
}

// Unproject is the inverse of ProjectFractional.
func Unproject(tc TileCoord, zoom int) (lat, lon float64) {
	n := TilesPerAxis(zoom)
	lon = tc.X/n*360 - 180
	lat = math.Atan(math.Sinh(math.Pi*(1-2*tc.Y/n))) * 180 / math.Pi
	return lat, lon
}
