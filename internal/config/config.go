package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/talgya/campaign-hexmap/internal/geo"
	"github.com/talgya/campaign-hexmap/internal/world"
)

// File is a set of map definitions for batch generation.
type File struct {
	Defaults Defaults        `yaml:"defaults"`
	Maps     []MapDefinition `yaml:"map_definitions"`
}

// Defaults fill in fields a map definition leaves empty.
type Defaults struct {
	Zoom         int     `yaml:"zoom"`
	HexSizeKM    float64 `yaml:"hex_size_km"`
	SearchRadius *int    `yaml:"search_radius"`
	Cities       string  `yaml:"cities"`
}

// MapDefinition describes one campaign map to generate.
type MapDefinition struct {
	Name         string     `yaml:"name"`
	Description  string     `yaml:"description"`
	Bounds       geo.Bounds `yaml:"bounds"`
	Zoom         int        `yaml:"zoom"`
	HexSizeKM    float64    `yaml:"hex_size_km"`
	SearchRadius *int       `yaml:"search_radius"` // nil means default; 0 is a valid radius
	Cities       string     `yaml:"cities"`
	Output       string     `yaml:"output"`
}

// Load reads map definitions from a YAML file
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map definitions: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse map definitions: %w", err)
	}

	f.applyDefaults()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) applyDefaults() {
	base := world.DefaultGenConfig()
	if f.Defaults.Zoom == 0 {
		f.Defaults.Zoom = base.Zoom
	}
	if f.Defaults.HexSizeKM == 0 {
		f.Defaults.HexSizeKM = base.HexSizeKM
	}
	if f.Defaults.SearchRadius == nil {
		r := base.SearchRadius
		f.Defaults.SearchRadius = &r
	}

	for i := range f.Maps {
		m := &f.Maps[i]
		if m.Zoom == 0 {
			m.Zoom = f.Defaults.Zoom
		}
		if m.HexSizeKM == 0 {
			m.HexSizeKM = f.Defaults.HexSizeKM
		}
		if m.SearchRadius == nil {
			r := *f.Defaults.SearchRadius
			m.SearchRadius = &r
		}
		if m.Cities == "" {
			m.Cities = f.Defaults.Cities
		}
		if m.Output == "" {
			m.Output = m.Name + ".json"
		}
	}
}

// Validate checks every definition and reports all problems at once.
func (f *File) Validate() error {
	var errs []string
	if len(f.Maps) == 0 {
		errs = append(errs, "no map_definitions")
	}

	seen := make(map[string]bool)
	for i, m := range f.Maps {
		label := fmt.Sprintf("map_definitions[%d]", i)
		if m.Name == "" {
			errs = append(errs, label+".name is required")
		} else {
			label = fmt.Sprintf("%s (%s)", label, m.Name)
			if seen[m.Name] {
				errs = append(errs, label+": duplicate name")
			}
			seen[m.Name] = true
		}
		if err := m.GenConfig().Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", label, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("map definitions invalid:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Find returns the named definition.
func (f *File) Find(name string) (MapDefinition, bool) {
	for _, m := range f.Maps {
		if m.Name == name {
			return m, true
		}
	}
	return MapDefinition{}, false
}

// GenConfig converts the definition into generation parameters.
func (m MapDefinition) GenConfig() world.GenConfig {
	cfg := world.DefaultGenConfig()
	cfg.Name = m.Name
	cfg.Bounds = m.Bounds
	cfg.Zoom = m.Zoom
	cfg.HexSizeKM = m.HexSizeKM
	if m.SearchRadius != nil {
		cfg.SearchRadius = *m.SearchRadius
	}
	return cfg
}
