package world

import "fmt"

// Map holds a generated campaign grid and the features placed on it.
type Map struct {
	ID         string             `json:"id,omitempty"`
	Name       string             `json:"name,omitempty"`
	Grid       HexGridSpec        `json:"grid"`
	Placements []Placement        `json:"placements"`
	Unplaced   []PlacementWarning `json:"unplaced"`
	Collisions int                `json:"collisions"`

	byCell map[HexPosition]int
	byName map[string]int
}

// NewMap assembles a map from a grid and a resolution.
func NewMap(grid HexGridSpec, res Resolution) *Map {
	m := &Map{
		Grid:       grid,
		Placements: res.Placements,
		Unplaced:   res.Unplaced,
		Collisions: res.Collisions,
		byCell:     make(map[HexPosition]int, len(res.Placements)),
		byName:     make(map[string]int, len(res.Placements)),
	}
	for i, p := range res.Placements {
		m.byCell[p.Final] = i
		m.byName[p.Feature.Name] = i
	}
	return m
}

// At returns the feature occupying pos, if any.
func (m *Map) At(pos HexPosition) (Placement, bool) {
	i, ok := m.byCell[pos]
	if !ok {
		return Placement{}, false
	}
	return m.Placements[i], true
}

// Lookup returns the placement of a named feature.
func (m *Map) Lookup(name string) (Placement, bool) {
	i, ok := m.byName[name]
	if !ok {
		return Placement{}, false
	}
	return m.Placements[i], true
}

// Positions maps feature names to final cells, the contract handed to
// terrain painting and rendering.
func (m *Map) Positions() map[string]HexPosition {
	out := make(map[string]HexPosition, len(m.Placements))
	for _, p := range m.Placements {
		out[p.Feature.Name] = p.Final
	}
	return out
}

// UnplacedNames lists features that found no cell.
func (m *Map) UnplacedNames() []string {
	names := make([]string, len(m.Unplaced))
	for i, w := range m.Unplaced {
		names[i] = w.Feature
	}
	return names
}

// InBounds returns true if the coordinate is a cell of the grid.
func (m *Map) InBounds(pos HexPosition) bool {
	return m.Grid.InBounds(pos)
}

// HexCount returns the total number of cells.
func (m *Map) HexCount() int {
	return m.Grid.CellCount()
}

// Displaced counts placements that moved off their raw cell.
func (m *Map) Displaced() int {
	n := 0
	for _, p := range m.Placements {
		if p.Displaced() {
			n++
		}
	}
	return n
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(%dx%d, hexes=%d, placed=%d, unplaced=%d)",
		m.Grid.Width, m.Grid.Height, m.HexCount(), len(m.Placements), len(m.Unplaced))
}
