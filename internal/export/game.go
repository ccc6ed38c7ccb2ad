// Package export writes generated maps in the formats downstream tools read:
// the campaign game JSON and GeoJSON for inspection in a GIS viewer.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/talgya/campaign-hexmap/internal/geo"
	"github.com/talgya/campaign-hexmap/internal/world"
)

// GameMap describes the grid for the game client.
type GameMap struct {
	Name      string     `json:"name,omitempty"`
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	HexSizeKM float64    `json:"hex_size_km"`
	Zoom      int        `json:"zoom"`
	Bounds    geo.Bounds `json:"bounds"`
}

// GameCity is a placed city with its starting campaign attributes.
type GameCity struct {
	Name           string `json:"name"`
	Position       [2]int `json:"position"` // col, row
	Country        string `json:"country"`
	Type           string `json:"type"`
	Population     int    `json:"population"`
	Income         int    `json:"income"`
	CastleLevel    int    `json:"castle_level"`
	Specialization string `json:"specialization"`
	Description    string `json:"description"`
	ModernName     string `json:"modern_name"`
}

// GameFile is the document the campaign loads.
type GameFile struct {
	Map      GameMap             `json:"map"`
	Cities   map[string]GameCity `json:"cities"`
	Unplaced []string            `json:"unplaced"`
}

// BuildGame joins a generated map with the catalogue records its features
// came from. Features without a record get catalogue defaults.
func BuildGame(m *world.Map, records []world.CityRecord) (GameFile, error) {
	byName := make(map[string]world.CityRecord, len(records))
	for _, r := range records {
		byName[r.Name] = r
	}

	out := GameFile{
		Map: GameMap{
			Name:      m.Name,
			Width:     m.Grid.Width,
			Height:    m.Grid.Height,
			HexSizeKM: m.Grid.HexSizeKM,
			Zoom:      m.Grid.Zoom,
			Bounds:    m.Grid.Bounds,
		},
		Cities:   make(map[string]GameCity, len(m.Placements)),
		Unplaced: m.UnplacedNames(),
	}

	for _, p := range m.Placements {
		rec, ok := byName[p.Feature.Name]
		if !ok {
			rec = world.CityRecord{Name: p.Feature.Name, Latitude: p.Feature.Lat, Longitude: p.Feature.Lon}
		}
		if rec.CityType == "" {
			rec.CityType = world.CityMedium
		}

		id := rec.ID()
		if prev, dup := out.Cities[id]; dup {
			return GameFile{}, fmt.Errorf("cities %q and %q share id %q", prev.Name, rec.Name, id)
		}
		out.Cities[id] = GameCity{
			Name:           rec.Name,
			Position:       [2]int{p.Final.Col, p.Final.Row},
			Country:        orDefault(rec.Country, "neutral"),
			Type:           rec.CityType,
			Population:     rec.Population(),
			Income:         rec.Income(),
			CastleLevel:    rec.CastleLevel(),
			Specialization: rec.Specialization(),
			Description:    rec.Description,
			ModernName:     orDefault(rec.ModernName, rec.Name),
		}
	}
	return out, nil
}

// TypeCounts tallies placed cities by type, largest first.
func (g GameFile) TypeCounts() []TypeCount {
	counts := make(map[string]int)
	for _, c := range g.Cities {
		counts[c.Type]++
	}
	out := make([]TypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TypeCount{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// TypeCount is one row of TypeCounts.
type TypeCount struct {
	Type  string
	Count int
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Encode writes v as indented JSON.
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteFile encodes v to path, creating parent directories. A path of "-"
// writes to stdout.
func WriteFile(path string, v any) error {
	if path == "-" {
		return Encode(os.Stdout, v)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(f, v); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
