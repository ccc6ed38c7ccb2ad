package world

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/talgya/campaign-hexmap/internal/geo"
)

// CityFeature is a named point to place on the grid. Features with higher
// Priority are placed first and so keep their raw cell when contested.
type CityFeature struct {
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Priority float64 `json:"priority"`
}

// OrderFeatures returns the indices of features in placement order: stable
// by descending Priority, ties keeping input order.
func OrderFeatures(features []CityFeature) []int {
	order := make([]int, len(features))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return features[order[a]].Priority > features[order[b]].Priority
	})
	return order
}

// City types used by the historical catalogue.
const (
	CityCapital  = "capital"
	CityMajor    = "major_city"
	CityMedium   = "medium_city"
	CitySmall    = "small_city"
	CityPort     = "port"
	CityFortress = "fortress"
)

// capitalBoost lifts every capital above any population figure.
const capitalBoost = 1e12

// CityRecord is one entry of a city catalogue file.
type CityRecord struct {
	Name                string  `json:"name"`
	ModernName          string  `json:"modern_name,omitempty"`
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
	Country             string  `json:"country,omitempty"`
	CityType            string  `json:"city_type,omitempty"`
	EstimatedPopulation int     `json:"estimated_population,omitempty"`
	Description         string  `json:"description,omitempty"`
}

// Catalogue is the on-disk city list.
type Catalogue struct {
	Cities []CityRecord `json:"cities"`
}

// LoadCatalogue reads a JSON city catalogue.
func LoadCatalogue(path string) ([]CityRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read city catalogue: %w", err)
	}
	var cat Catalogue
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse city catalogue %s: %w", path, err)
	}
	for i, c := range cat.Cities {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("city catalogue %s: entry %d has no name", path, i)
		}
	}
	return cat.Cities, nil
}

// FilterInBounds keeps the records whose coordinates lie inside b.
func FilterInBounds(records []CityRecord, b geo.Bounds) []CityRecord {
	var out []CityRecord
	for _, r := range records {
		if b.Contains(r.Latitude, r.Longitude) {
			out = append(out, r)
		}
	}
	return out
}

// Priority ranks capitals first, then by population.
func (r CityRecord) Priority() float64 {
	p := float64(r.EstimatedPopulation)
	if r.CityType == CityCapital {
		p += capitalBoost
	}
	return p
}

// Feature converts the record for placement.
func (r CityRecord) Feature() CityFeature {
	return CityFeature{Name: r.Name, Lat: r.Latitude, Lon: r.Longitude, Priority: r.Priority()}
}

// Features converts a slice of records.
func Features(records []CityRecord) []CityFeature {
	out := make([]CityFeature, len(records))
	for i, r := range records {
		out[i] = r.Feature()
	}
	return out
}

// ID is the key used for the city in game exports.
func (r CityRecord) ID() string {
	return strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(r.Name))
}

// Population falls back to a small-town figure when the catalogue has none.
func (r CityRecord) Population() int {
	if r.EstimatedPopulation <= 0 {
		return 5000
	}
	return r.EstimatedPopulation
}

// Income is the per-turn yield, scaled by population within [0.5, 2].
func (r CityRecord) Income() int {
	base := 50
	switch r.CityType {
	case CityCapital:
		base = 150
	case CityMajor:
		base = 100
	case CityMedium:
		base = 60
	case CityPort:
		base = 80
	case CityFortress:
		base = 40
	case CitySmall:
		base = 30
	}
	factor := float64(r.Population()) / 10000
	factor = min(max(factor, 0.5), 2.0)
	return int(float64(base) * factor)
}

// CastleLevel is the starting fortification.
func (r CityRecord) CastleLevel() int {
	pop := r.Population()
	switch r.CityType {
	case CityCapital:
		if pop > 50000 {
			return 3
		}
		return 2
	case CityMajor:
		if pop > 30000 {
			return 2
		}
		return 1
	case CityFortress:
		return 2
	case CityPort:
		if pop > 10000 {
			return 1
		}
		return 0
	default:
		if pop > 15000 {
			return 1
		}
		return 0
	}
}

// Specialization derives the economic focus from type and description keywords.
func (r CityRecord) Specialization() string {
	desc := strings.ToLower(r.Description)
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(desc, w) {
				return true
			}
		}
		return false
	}

	switch {
	case r.CityType == CityPort || has("port"):
		return "trade"
	case has("trading", "commercial"):
		return "trade"
	case has("university", "learning"):
		return "education"
	case strings.Contains(r.CityType, CityFortress) || has("fortress"):
		return "military"
	case has("archbishopric", "cathedral"):
		return "religious"
	case has("banking", "finance"):
		return "trade"
	case r.Population() > 50000:
		return "trade"
	default:
		return "agriculture"
	}
}
