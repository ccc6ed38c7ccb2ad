package export

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/talgya/campaign-hexmap/internal/world"
)

// Feature kinds in the "kind" property.
const (
	KindGrid     = "grid"
	KindCity     = "city"
	KindUnplaced = "unplaced"
)

// BuildGeoJSON renders the grid outline and every feature. Placed cities
// sit at their source coordinates and carry the center of the cell they
// ended up in, so displacement is visible on a map. Unplaced features are
// drawn at the center of their raw cell.
func BuildGeoJSON(m *world.Map) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	outline := geojson.NewFeature(m.Grid.Bounds.Bound().ToPolygon())
	outline.Properties["kind"] = KindGrid
	outline.Properties["name"] = m.Name
	outline.Properties["width"] = m.Grid.Width
	outline.Properties["height"] = m.Grid.Height
	outline.Properties["hex_size_km"] = m.Grid.HexSizeKM
	kx, ky := m.Grid.AchievedHexSizeKM()
	outline.Properties["achieved_hex_size_km"] = []float64{kx, ky}
	outline.Properties["zoom"] = m.Grid.Zoom
	fc.Append(outline)

	for _, p := range m.Placements {
		f := geojson.NewFeature(orb.Point{p.Feature.Lon, p.Feature.Lat})
		lat, lon := m.Grid.CellCenter(p.Final)
		f.Properties["kind"] = KindCity
		f.Properties["name"] = p.Feature.Name
		f.Properties["priority"] = p.Feature.Priority
		f.Properties["raw"] = []int{p.Raw.Col, p.Raw.Row}
		f.Properties["final"] = []int{p.Final.Col, p.Final.Row}
		f.Properties["displacement"] = p.Displacement
		f.Properties["cell_center"] = []float64{lon, lat}
		fc.Append(f)
	}

	for _, w := range m.Unplaced {
		lat, lon := m.Grid.CellCenter(w.Raw)
		f := geojson.NewFeature(orb.Point{lon, lat})
		f.Properties["kind"] = KindUnplaced
		f.Properties["name"] = w.Feature
		f.Properties["raw"] = []int{w.Raw.Col, w.Raw.Row}
		f.Properties["search_radius"] = w.SearchRadius
		fc.Append(f)
	}

	return fc
}

// WriteGeoJSON writes the collection for m to path.
func WriteGeoJSON(path string, m *world.Map) error {
	return WriteFile(path, BuildGeoJSON(m))
}
