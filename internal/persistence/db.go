// Package persistence provides SQLite-based storage for generated map runs.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/campaign-hexmap/internal/geo"
	"github.com/talgya/campaign-hexmap/internal/world"
)

// ErrNotFound is returned when a run id is not in the database.
var ErrNotFound = errors.New("map run not found")

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// DB wraps a SQLite connection for map run persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS map_runs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		west REAL NOT NULL,
		east REAL NOT NULL,
		south REAL NOT NULL,
		north REAL NOT NULL,
		zoom INTEGER NOT NULL,
		hex_size_km REAL NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		collisions INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS placements (
		run_id TEXT NOT NULL REFERENCES map_runs(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		priority REAL NOT NULL,
		raw_col INTEGER NOT NULL,
		raw_row INTEGER NOT NULL,
		final_col INTEGER NOT NULL,
		final_row INTEGER NOT NULL,
		displacement INTEGER NOT NULL,
		hex_steps INTEGER NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE TABLE IF NOT EXISTS unplaced (
		run_id TEXT NOT NULL REFERENCES map_runs(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		raw_col INTEGER NOT NULL,
		raw_row INTEGER NOT NULL,
		search_radius INTEGER NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_map_runs_name ON map_runs(name);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun stores a generated map under a fresh run id, which is also
// written back to m.ID.
func (db *DB) SaveRun(m *world.Map) (string, error) {
	id := uuid.NewString()

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	g := m.Grid
	_, err = tx.Exec(`INSERT INTO map_runs
		(id, name, created_at, west, east, south, north, zoom, hex_size_km, width, height, collisions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, m.Name, time.Now().UTC().Format(timeLayout),
		g.Bounds.West, g.Bounds.East, g.Bounds.South, g.Bounds.North,
		g.Zoom, g.HexSizeKM, g.Width, g.Height, m.Collisions,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO placements
		(run_id, seq, name, lat, lon, priority, raw_col, raw_row, final_col, final_row, displacement, hex_steps)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, p := range m.Placements {
		_, err := stmt.Exec(
			id, i, p.Feature.Name, p.Feature.Lat, p.Feature.Lon, p.Feature.Priority,
			p.Raw.Col, p.Raw.Row, p.Final.Col, p.Final.Row, p.Displacement, p.HexSteps,
		)
		if err != nil {
			return "", fmt.Errorf("insert placement %s: %w", p.Feature.Name, err)
		}
	}

	for i, w := range m.Unplaced {
		_, err := tx.Exec(
			"INSERT INTO unplaced (run_id, seq, name, raw_col, raw_row, search_radius) VALUES (?, ?, ?, ?, ?, ?)",
			id, i, w.Feature, w.Raw.Col, w.Raw.Row, w.SearchRadius,
		)
		if err != nil {
			return "", fmt.Errorf("insert unplaced %s: %w", w.Feature, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	m.ID = id
	slog.Info("map run saved", "id", id, "name", m.Name, "placed", len(m.Placements), "unplaced", len(m.Unplaced))
	return id, nil
}

type runRow struct {
	ID         string  `db:"id"`
	Name       string  `db:"name"`
	CreatedAt  string  `db:"created_at"`
	West       float64 `db:"west"`
	East       float64 `db:"east"`
	South      float64 `db:"south"`
	North      float64 `db:"north"`
	Zoom       int     `db:"zoom"`
	HexSizeKM  float64 `db:"hex_size_km"`
	Width      int     `db:"width"`
	Height     int     `db:"height"`
	Collisions int     `db:"collisions"`
}

type placementRow struct {
	Name         string  `db:"name"`
	Lat          float64 `db:"lat"`
	Lon          float64 `db:"lon"`
	Priority     float64 `db:"priority"`
	RawCol       int     `db:"raw_col"`
	RawRow       int     `db:"raw_row"`
	FinalCol     int     `db:"final_col"`
	FinalRow     int     `db:"final_row"`
	Displacement int     `db:"displacement"`
	HexSteps     int     `db:"hex_steps"`
}

type unplacedRow struct {
	Name         string `db:"name"`
	RawCol       int    `db:"raw_col"`
	RawRow       int    `db:"raw_row"`
	SearchRadius int    `db:"search_radius"`
}

// LoadRun restores a saved map. The grid is recomputed from the stored
// bounds, zoom and hex size, and must reproduce the stored dimensions.
func (db *DB) LoadRun(id string) (*world.Map, error) {
	var run runRow
	err := db.conn.Get(&run, "SELECT * FROM map_runs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}

	bounds := geo.Bounds{West: run.West, East: run.East, South: run.South, North: run.North}
	grid, err := world.ComputeGrid(bounds, run.Zoom, run.HexSizeKM)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}
	if grid.Width != run.Width || grid.Height != run.Height {
		return nil, fmt.Errorf("load run %s: stored grid %dx%d, recomputed %dx%d",
			id, run.Width, run.Height, grid.Width, grid.Height)
	}

	var prows []placementRow
	if err := db.conn.Select(&prows, `SELECT name, lat, lon, priority, raw_col, raw_row,
		final_col, final_row, displacement, hex_steps
		FROM placements WHERE run_id = ? ORDER BY seq`, id); err != nil {
		return nil, fmt.Errorf("load placements: %w", err)
	}
	var urows []unplacedRow
	if err := db.conn.Select(&urows, `SELECT name, raw_col, raw_row, search_radius
		FROM unplaced WHERE run_id = ? ORDER BY seq`, id); err != nil {
		return nil, fmt.Errorf("load unplaced: %w", err)
	}

	res := world.Resolution{
		Placements: make([]world.Placement, len(prows)),
		Unplaced:   make([]world.PlacementWarning, len(urows)),
		Collisions: run.Collisions,
	}
	for i, r := range prows {
		res.Placements[i] = world.Placement{
			Feature:      world.CityFeature{Name: r.Name, Lat: r.Lat, Lon: r.Lon, Priority: r.Priority},
			Raw:          world.HexPosition{Col: r.RawCol, Row: r.RawRow},
			Final:        world.HexPosition{Col: r.FinalCol, Row: r.FinalRow},
			Displacement: r.Displacement,
			HexSteps:     r.HexSteps,
		}
	}
	for i, r := range urows {
		res.Unplaced[i] = world.PlacementWarning{
			Feature:      r.Name,
			Raw:          world.HexPosition{Col: r.RawCol, Row: r.RawRow},
			SearchRadius: r.SearchRadius,
		}
	}

	m := world.NewMap(grid, res)
	m.ID = run.ID
	m.Name = run.Name
	return m, nil
}

// RunSummary is one row of ListRuns.
type RunSummary struct {
	ID        string  `db:"id"`
	Name      string  `db:"name"`
	CreatedAt string  `db:"created_at"`
	Zoom      int     `db:"zoom"`
	HexSizeKM float64 `db:"hex_size_km"`
	Width     int     `db:"width"`
	Height    int     `db:"height"`
	Placed    int     `db:"placed"`
	Unplaced  int     `db:"unplaced"`
}

// Created parses the stored creation time.
func (s RunSummary) Created() time.Time {
	t, _ := time.Parse(timeLayout, s.CreatedAt)
	return t
}

// ListRuns returns saved runs, newest first. An empty name lists all runs.
func (db *DB) ListRuns(name string) ([]RunSummary, error) {
	var runs []RunSummary
	err := db.conn.Select(&runs, `SELECT r.id, r.name, r.created_at, r.zoom, r.hex_size_km, r.width, r.height,
		(SELECT COUNT(*) FROM placements p WHERE p.run_id = r.id) AS placed,
		(SELECT COUNT(*) FROM unplaced u WHERE u.run_id = r.id) AS unplaced
		FROM map_runs r
		WHERE ? = '' OR r.name = ?
		ORDER BY r.created_at DESC, r.rowid DESC`, name, name)
	return runs, err
}

// DeleteRun removes a run and everything stored with it.
func (db *DB) DeleteRun(id string) error {
	res, err := db.conn.Exec("DELETE FROM map_runs WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// SaveMeta stores a key-value pair in the metadata table.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}
