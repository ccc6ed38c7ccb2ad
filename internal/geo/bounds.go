// Package geo provides geographic bounds and the Web Mercator tile projection
// that the hex grid is dimensioned against.
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Bounds is a validated rectangular region in degrees.
// Construct with NewBounds; the zero value is not valid.
type Bounds struct {
	West  float64 `json:"west" yaml:"west"`
	East  float64 `json:"east" yaml:"east"`
	South float64 `json:"south" yaml:"south"`
	North float64 `json:"north" yaml:"north"`
}

// NewBounds validates and returns a bounds rectangle.
func NewBounds(west, east, south, north float64) (Bounds, error) {
	b := Bounds{West: west, East: east, South: south, North: north}
	if err := b.Validate(); err != nil {
		return Bounds{}, err
	}
	return b, nil
}

// Validate checks ordering and ranges, reporting the first offending bound.
func (b Bounds) Validate() error {
	checks := []struct {
		field string
		value float64
		lo    float64
		hi    float64
	}{
		{"bounds.west", b.West, -180, 180},
		{"bounds.east", b.East, -180, 180},
		{"bounds.south", b.South, -90, 90},
		{"bounds.north", b.North, -90, 90},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || c.value < c.lo || c.value > c.hi {
			return configErr(c.field, c.value, "must be within [%g, %g]", c.lo, c.hi)
		}
	}
	if b.West >= b.East {
		return configErr("bounds.west", b.West, "must be less than bounds.east (%g)", b.East)
	}
	if b.South >= b.North {
		return configErr("bounds.south", b.South, "must be less than bounds.north (%g)", b.North)
	}
	return nil
}

// CenterLat returns the mid latitude used for the km-per-degree estimate.
func (b Bounds) CenterLat() float64 {
	return (b.North + b.South) / 2
}

// WidthDeg returns the longitude extent.
func (b Bounds) WidthDeg() float64 { return b.East - b.West }

// HeightDeg returns the latitude extent.
func (b Bounds) HeightDeg() float64 { return b.North - b.South }

// Contains reports whether the point lies inside the bounds, edges included.
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.South && lat <= b.North && lon >= b.West && lon <= b.East
}

// Bound converts to an orb.Bound (lon/lat ordering).
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{b.East, b.North},
	}
}

// String formats the bounds in the west,south,east,north order used on the command line.
func (b Bounds) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.West, b.South, b.East, b.North)
}

// ParseBounds parses "west,south,east,north", the order the map tools use.
func ParseBounds(s string) (Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Bounds{}, configErr("bounds", s, "expected west,south,east,north")
	}
	names := [4]string{"bounds.west", "bounds.south", "bounds.east", "bounds.north"}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Bounds{}, configErr(names[i], strings.TrimSpace(p), "not a number")
		}
		v[i] = f
	}
	return NewBounds(v[0], v[2], v[1], v[3])
}
