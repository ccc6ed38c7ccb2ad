// Collision resolution: at most one feature per cell.

package world

import "fmt"

// DefaultSearchRadius is how many square rings the resolver tries around a
// contested cell before giving up on a feature.
const DefaultSearchRadius = 10

// RawPlacement is a feature with the cell it normalized to.
type RawPlacement struct {
	Feature CityFeature
	Raw     HexPosition
}

// Placement is a feature's final cell and how far it was pushed.
type Placement struct {
	Feature      CityFeature `json:"feature"`
	Raw          HexPosition `json:"raw"`
	Final        HexPosition `json:"final"`
	Displacement int         `json:"displacement"` // square ring the final cell came from, 0 if undisplaced
	HexSteps     int         `json:"hex_steps"`    // true hex distance from Raw to Final
}

// Displaced reports whether the feature had to move off its raw cell.
func (p Placement) Displaced() bool {
	return p.Displacement > 0
}

// PlacementWarning records a feature that found no free cell within the
// search radius. It is collected, never returned as a failure.
type PlacementWarning struct {
	Feature      string      `json:"feature"`
	Raw          HexPosition `json:"raw"`
	SearchRadius int         `json:"search_radius"`
}

func (w PlacementWarning) Error() string {
	return fmt.Sprintf("placement warning: %s: no free cell within %d rings of %s", w.Feature, w.SearchRadius, w.Raw)
}

// Resolution is the outcome of one Resolve call.
type Resolution struct {
	Placements []Placement
	Unplaced   []PlacementWarning
	Collisions int // features whose raw cell was already taken or blocked
}

// Resolver assigns each feature a distinct cell. Not safe for concurrent
// use; the outcome depends on the order features arrive in.
type Resolver struct {
	Width        int
	Height       int
	SearchRadius int

	// Blocked, if set, marks cells no feature may claim (open water, say).
	// A blocked raw cell counts as a collision.
	Blocked func(HexPosition) bool
}

// NewResolver builds a resolver for g. A negative radius means DefaultSearchRadius.
func NewResolver(g HexGridSpec, searchRadius int) *Resolver {
	if searchRadius < 0 {
		searchRadius = DefaultSearchRadius
	}
	return &Resolver{Width: g.Width, Height: g.Height, SearchRadius: searchRadius}
}

// Resolve places features in the order given. A feature whose raw cell is
// free keeps it; otherwise rings of radius 1..SearchRadius are walked in
// SquareRing order and the first free in-grid cell is claimed.
func (r *Resolver) Resolve(raw []RawPlacement) Resolution {
	taken := make(map[HexPosition]bool, len(raw))
	res := Resolution{Placements: make([]Placement, 0, len(raw))}

	// No ring beyond this can reach a cell of the grid.
	reach := min(r.SearchRadius, max(r.Width, r.Height))

	for _, rp := range raw {
		if r.available(rp.Raw, taken) {
			taken[rp.Raw] = true
			res.Placements = append(res.Placements, Placement{Feature: rp.Feature, Raw: rp.Raw, Final: rp.Raw})
			continue
		}

		res.Collisions++
		final, ring, ok := r.search(rp.Raw, reach, taken)
		if !ok {
			res.Unplaced = append(res.Unplaced, PlacementWarning{
				Feature:      rp.Feature.Name,
				Raw:          rp.Raw,
				SearchRadius: r.SearchRadius,
			})
			continue
		}
		taken[final] = true
		res.Placements = append(res.Placements, Placement{
			Feature:      rp.Feature,
			Raw:          rp.Raw,
			Final:        final,
			Displacement: ring,
			HexSteps:     HexDistance(rp.Raw, final),
		})
	}
	return res
}

func (r *Resolver) search(center HexPosition, reach int, taken map[HexPosition]bool) (HexPosition, int, bool) {
	for k := 1; k <= reach; k++ {
		for _, c := range SquareRing(center, k) {
			if r.available(c, taken) {
				return c, k, true
			}
		}
	}
	return HexPosition{}, 0, false
}

func (r *Resolver) available(pos HexPosition, taken map[HexPosition]bool) bool {
	if pos.Col < 0 || pos.Col >= r.Width || pos.Row < 0 || pos.Row >= r.Height {
		return false
	}
	if taken[pos] {
		return false
	}
	return r.Blocked == nil || !r.Blocked(pos)
}

// ByName maps each placed feature name to its final cell.
func (res Resolution) ByName() map[string]HexPosition {
	out := make(map[string]HexPosition, len(res.Placements))
	for _, p := range res.Placements {
		out[p.Feature.Name] = p.Final
	}
	return out
}

// UnplacedNames lists the features that could not be placed, in placement order.
func (res Resolution) UnplacedNames() []string {
	names := make([]string, len(res.Unplaced))
	for i, w := range res.Unplaced {
		names[i] = w.Feature
	}
	return names
}
