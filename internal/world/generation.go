// Map generation: bounds -> grid -> raw cells -> resolved cells.

package world

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/talgya/campaign-hexmap/internal/geo"
)

// parallelThreshold is the feature count above which projection is split across workers.
const parallelThreshold = 2048

// GenConfig holds map generation parameters.
type GenConfig struct {
	Name         string
	Bounds       geo.Bounds
	Zoom         int     // tile-space resolution; 6-12 typical
	HexSizeKM    float64 // target cell size
	SearchRadius int     // collision search rings
	Workers      int     // projection workers for large feature sets (0 = GOMAXPROCS)

	// Blocked, if set, marks cells features may not occupy.
	Blocked func(HexPosition) bool
}

// DefaultGenConfig returns the settings the map tools have used by default.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Zoom:         10,
		HexSizeKM:    30,
		SearchRadius: DefaultSearchRadius,
	}
}

// SmallTestConfig returns a compact region for quick runs.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Name:         "iberia-east",
		Bounds:       geo.Bounds{West: -3, East: 4, South: 37, North: 43},
		Zoom:         7,
		HexSizeKM:    25,
		SearchRadius: 4,
	}
}

// Validate checks everything Generate needs before any work starts.
func (c GenConfig) Validate() error {
	if err := c.Bounds.Validate(); err != nil {
		return err
	}
	if err := geo.CheckZoom(c.Zoom); err != nil {
		return err
	}
	if math.IsNaN(c.HexSizeKM) || c.HexSizeKM <= 0 {
		return &geo.ConfigurationError{Field: "hex_size_km", Value: c.HexSizeKM, Reason: "must be positive"}
	}
	if c.SearchRadius < 0 {
		return &geo.ConfigurationError{Field: "search_radius", Value: c.SearchRadius, Reason: "must be >= 0"}
	}
	return nil
}

// Generate dimensions the grid and places features on it.
//
// Configuration and domain errors abort before anything is placed. Features
// that find no free cell are reported in Map.Unplaced.
func Generate(cfg GenConfig, features []CityFeature) (*Map, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkNames(features); err != nil {
		return nil, err
	}

	grid, err := ComputeGrid(cfg.Bounds, cfg.Zoom, cfg.HexSizeKM)
	if err != nil {
		return nil, err
	}

	order := OrderFeatures(features)
	raw, err := ProjectAll(grid, features, order, cfg.Workers)
	if err != nil {
		return nil, err
	}

	resolver := NewResolver(grid, cfg.SearchRadius)
	resolver.Blocked = cfg.Blocked
	res := resolver.Resolve(raw)

	for _, p := range res.Placements {
		if p.Displaced() {
			slog.Debug("feature displaced",
				"feature", p.Feature.Name,
				"raw", p.Raw.String(),
				"final", p.Final.String(),
				"ring", p.Displacement,
			)
		}
	}
	for _, w := range res.Unplaced {
		slog.Warn("feature unplaced", "feature", w.Feature, "raw", w.Raw.String(), "search_radius", w.SearchRadius)
	}

	m := NewMap(grid, res)
	m.Name = cfg.Name
	return m, nil
}

func checkNames(features []CityFeature) error {
	seen := make(map[string]int, len(features))
	for i, f := range features {
		if f.Name == "" {
			return &geo.ConfigurationError{Field: fmt.Sprintf("features[%d].name", i), Value: f.Name, Reason: "is empty"}
		}
		if j, dup := seen[f.Name]; dup {
			return &geo.ConfigurationError{
				Field:  fmt.Sprintf("features[%d].name", i),
				Value:  f.Name,
				Reason: fmt.Sprintf("duplicates features[%d]", j),
			}
		}
		seen[f.Name] = i
	}
	return nil
}

// ProjectAll computes raw cells for features visited in order. Projection
// has no shared state, so large inputs are split across workers; results and
// the reported error are the same as a sequential pass.
func ProjectAll(grid HexGridSpec, features []CityFeature, order []int, workers int) ([]RawPlacement, error) {
	out := make([]RawPlacement, len(order))
	errs := make([]error, len(order))

	project := func(lo, hi int) {
		for k := lo; k < hi; k++ {
			f := features[order[k]]
			pos, err := PlaceRaw(f, grid)
			if err != nil {
				errs[k] = featureErr(err, order[k], f.Name)
				continue
			}
			out[k] = RawPlacement{Feature: f, Raw: pos}
		}
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if len(order) < parallelThreshold || workers == 1 {
		project(0, len(order))
	} else {
		// Bounded worker pool only; failures are collected in errs.
		var g errgroup.Group
		g.SetLimit(workers)
		chunk := (len(order) + workers - 1) / workers
		for lo := 0; lo < len(order); lo += chunk {
			lo, hi := lo, min(lo+chunk, len(order))
			g.Go(func() error {
				project(lo, hi)
				return nil
			})
		}
		_ = g.Wait()
	}

	// Report the first failure in placement order.
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// featureErr points a projection error at the feature that caused it.
func featureErr(err error, index int, name string) error {
	var de *geo.DomainError
	if errors.As(err, &de) {
		renamed := *de
		renamed.Field = fmt.Sprintf("features[%d].%s (%s)", index, de.Field, name)
		return &renamed
	}
	return fmt.Errorf("feature %d (%s): %w", index, name, err)
}
