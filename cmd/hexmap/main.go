// Command hexmap builds campaign hex grids from geographic bounds and places
// catalogue cities on them.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	flag "github.com/spf13/pflag"

	"github.com/talgya/campaign-hexmap/internal/config"
	"github.com/talgya/campaign-hexmap/internal/export"
	"github.com/talgya/campaign-hexmap/internal/geo"
	"github.com/talgya/campaign-hexmap/internal/logging"
	"github.com/talgya/campaign-hexmap/internal/persistence"
	"github.com/talgya/campaign-hexmap/internal/world"
)

type options struct {
	bounds         string
	zoom           int
	hexSizeKM      float64
	cities         string
	searchRadius   int
	definitions    string
	maps           []string
	list           bool
	runs           bool
	dbPath         string
	geojson        string
	output         string
	logLevel       string
	logFormat      string
	previewTerrain bool
	seed           int64
}

func main() {
	defaults := world.DefaultGenConfig()
	var opts options

	flag.StringVar(&opts.bounds, "bounds", "", "geographic bounds as west,south,east,north (e.g. 14,49,24,55)")
	flag.IntVar(&opts.zoom, "zoom", defaults.Zoom, "tile zoom level the grid is dimensioned at")
	flag.Float64Var(&opts.hexSizeKM, "hex-size-km", defaults.HexSizeKM, "target hex size in kilometres")
	flag.StringVar(&opts.cities, "cities", "", "city catalogue JSON")
	flag.IntVar(&opts.searchRadius, "search-radius", defaults.SearchRadius, "rings searched around a contested cell")
	flag.StringVar(&opts.definitions, "definitions", "", "YAML map definitions for batch generation")
	flag.StringArrayVar(&opts.maps, "map", nil, "definition to generate (repeatable; default all)")
	flag.BoolVar(&opts.list, "list", false, "list map definitions and exit")
	flag.BoolVar(&opts.runs, "runs", false, "list runs saved in --db and exit")
	flag.StringVar(&opts.dbPath, "db", "", "SQLite database to record runs in")
	flag.StringVar(&opts.geojson, "geojson", "", "GeoJSON output file (directory in batch mode)")
	flag.StringVarP(&opts.output, "output", "o", "campaign_map.json", "game JSON output file, - for stdout")
	flag.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	flag.StringVar(&opts.logFormat, "log-format", "auto", "text, json or auto")
	flag.BoolVar(&opts.previewTerrain, "preview-terrain", false, "keep cities off a generated preview coastline")
	flag.Int64Var(&opts.seed, "seed", world.DefaultPreviewConfig().Seed, "preview terrain seed")
	flag.Parse()

	logging.Setup(opts.logLevel, opts.logFormat)

	if err := run(opts); err != nil {
		slog.Error("hexmap failed", "error", err)
		os.Exit(1)
	}
}

// job is one map to generate.
type job struct {
	cfg     world.GenConfig
	cities  string
	output  string
	geojson string
}

func run(opts options) error {
	if opts.runs {
		return listRuns(opts.dbPath)
	}

	jobs, err := plan(opts)
	if err != nil {
		return err
	}
	if jobs == nil {
		return nil
	}

	var db *persistence.DB
	if opts.dbPath != "" {
		db, err = openDB(opts.dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		slog.Info("database opened", "path", opts.dbPath)
	}

	for _, j := range jobs {
		if err := generate(j, opts, db); err != nil {
			return fmt.Errorf("%s: %w", j.cfg.Name, err)
		}
	}
	return nil
}

// openDB opens the run database, creating its directory first.
func openDB(path string) (*persistence.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	return persistence.Open(path)
}

// plan turns the command line into jobs. A nil slice with no error means
// there is nothing to generate.
func plan(opts options) ([]job, error) {
	if opts.definitions == "" {
		if opts.list || len(opts.maps) > 0 {
			return nil, errors.New("--list and --map need --definitions")
		}
		if opts.bounds == "" {
			return nil, errors.New("--bounds or --definitions is required")
		}
		b, err := geo.ParseBounds(opts.bounds)
		if err != nil {
			return nil, err
		}
		cfg := world.DefaultGenConfig()
		cfg.Name = strings.TrimSuffix(filepath.Base(opts.output), filepath.Ext(opts.output))
		cfg.Bounds = b
		cfg.Zoom = opts.zoom
		cfg.HexSizeKM = opts.hexSizeKM
		cfg.SearchRadius = opts.searchRadius
		return []job{{cfg: cfg, cities: opts.cities, output: opts.output, geojson: opts.geojson}}, nil
	}

	defs, err := config.Load(opts.definitions)
	if err != nil {
		return nil, err
	}

	if opts.list {
		for _, m := range defs.Maps {
			fmt.Printf("%-20s %-28s zoom %-2d %5.1f km  %s\n", m.Name, m.Bounds, m.Zoom, m.HexSizeKM, m.Description)
		}
		return nil, nil
	}

	selected := defs.Maps
	if len(opts.maps) > 0 {
		selected = selected[:0:0]
		for _, name := range opts.maps {
			m, ok := defs.Find(name)
			if !ok {
				return nil, fmt.Errorf("no map definition named %q", name)
			}
			selected = append(selected, m)
		}
	}

	jobs := make([]job, 0, len(selected))
	for _, m := range selected {
		j := job{cfg: m.GenConfig(), cities: m.Cities, output: m.Output}
		if opts.cities != "" {
			j.cities = opts.cities
		}
		if opts.geojson != "" {
			j.geojson = filepath.Join(opts.geojson, m.Name+".geojson")
		}
		jobs = append(jobs, j)
	}
	slog.Info("map definitions loaded", "path", opts.definitions, "selected", len(jobs), "defined", len(defs.Maps))
	return jobs, nil
}

func generate(j job, opts options, db *persistence.DB) error {
	cfg := j.cfg
	slog.Info("generating map",
		"name", cfg.Name,
		"bounds", cfg.Bounds.String(),
		"zoom", cfg.Zoom,
		"hex_size_km", cfg.HexSizeKM,
	)

	grid, err := world.ComputeGrid(cfg.Bounds, cfg.Zoom, cfg.HexSizeKM)
	if err != nil {
		return err
	}
	kx, ky := grid.AchievedHexSizeKM()
	slog.Info("grid dimensioned",
		"grid", grid.String(),
		"hexes", humanize.Comma(int64(grid.CellCount())),
		"aspect", fmt.Sprintf("%.4f", grid.Aspect()),
		"hex_km_x", fmt.Sprintf("%.2f", kx),
		"hex_km_y", fmt.Sprintf("%.2f", ky),
	)

	if window, err := geo.TileWindowFor(cfg.Bounds, cfg.Zoom); err == nil {
		frame := window.Frame(grid.Span, geo.DefaultTileSize)
		slog.Debug("raster tile window",
			"tiles", humanize.Comma(int64(window.Count())),
			"x", fmt.Sprintf("%d..%d", window.MinX, window.MaxX),
			"y", fmt.Sprintf("%d..%d", window.MinY, window.MaxY),
			"image_px", fmt.Sprintf("%dx%d", frame.ImageWidth, frame.ImageHeight),
			"max_truncation_offset", world.MaxTruncationOffset(grid, window),
		)
	}

	var records []world.CityRecord
	if j.cities != "" {
		all, err := world.LoadCatalogue(j.cities)
		if err != nil {
			return err
		}
		records = world.FilterInBounds(all, cfg.Bounds)
		slog.Info("city catalogue loaded",
			"path", j.cities,
			"total", humanize.Comma(int64(len(all))),
			"in_bounds", humanize.Comma(int64(len(records))),
		)
	} else {
		slog.Warn("no city catalogue given, exporting an empty map")
	}

	if opts.previewTerrain {
		pcfg := world.DefaultPreviewConfig()
		pcfg.Seed = opts.seed
		terrain := world.GeneratePreviewTerrain(grid, pcfg)
		for t, c := range terrain.Counts() {
			slog.Info("preview terrain", "type", world.TerrainName(t), "count", humanize.Comma(int64(c)))
		}
		cfg.Blocked = world.BlockWater(terrain)
	}

	m, err := world.Generate(cfg, world.Features(records))
	if err != nil {
		return err
	}

	game, err := export.BuildGame(m, records)
	if err != nil {
		return err
	}
	if err := export.WriteFile(j.output, game); err != nil {
		return err
	}
	for _, tc := range game.TypeCounts() {
		slog.Debug("city type", "type", tc.Type, "count", tc.Count)
	}

	if j.geojson != "" {
		if err := export.WriteGeoJSON(j.geojson, m); err != nil {
			return err
		}
		slog.Info("geojson written", "path", j.geojson)
	}

	if db != nil {
		id, err := db.SaveRun(m)
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		if err := db.SaveMeta("last_run", id); err != nil {
			return fmt.Errorf("save meta: %w", err)
		}
	}

	slog.Info("map ready",
		"name", m.Name,
		"output", j.output,
		"placed", humanize.Comma(int64(len(m.Placements))),
		"collisions", humanize.Comma(int64(m.Collisions)),
		"unplaced", len(m.Unplaced),
	)
	return nil
}

func listRuns(path string) error {
	if path == "" {
		return errors.New("--runs needs --db")
	}
	db, err := persistence.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns("")
	if err != nil {
		return err
	}
	last, _ := db.GetMeta("last_run")
	for _, r := range runs {
		marker := " "
		if r.ID == last {
			marker = "*"
		}
		fmt.Printf("%s %s  %-20s %4dx%-4d z%-2d %s placed, %d unplaced, %s\n",
			marker, r.ID, r.Name, r.Width, r.Height, r.Zoom,
			humanize.Comma(int64(r.Placed)), r.Unplaced, humanize.Time(r.Created()))
	}
	return nil
}
