package persistence

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/talgya/campaign-hexmap/internal/geo"
	"github.com/talgya/campaign-hexmap/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testMap(t *testing.T, name string) *world.Map {
	t.Helper()
	cfg := world.DefaultGenConfig()
	cfg.Name = name
	cfg.Bounds = geo.Bounds{West: -15, East: 45, South: 35, North: 70}
	cfg.Zoom = 6
	cfg.HexSizeKM = 20
	cfg.SearchRadius = 1

	// Ten features on one cell: one keeps it, eight fit in the first ring, one is left over.
	features := []world.CityFeature{{Name: "Paris", Lat: 48.8566, Lon: 2.3522, Priority: 100}}
	for i := 0; i < 10; i++ {
		features = append(features, world.CityFeature{Name: string(rune('a' + i)), Lat: 50, Lon: 10})
	}
	m, err := world.Generate(cfg, features)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(m.Unplaced) != 1 {
		t.Fatalf("expected one unplaced feature, got %s", m)
	}
	return m
}

func TestSaveAndLoadRun(t *testing.T) {
	db := openTestDB(t)
	m := testMap(t, "europe")

	id, err := db.SaveRun(m)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == "" || m.ID != id {
		t.Fatalf("expected id written back, got %q and %q", id, m.ID)
	}

	got, err := db.LoadRun(id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ID != id || got.Name != "europe" {
		t.Errorf("unexpected identity %q %q", got.ID, got.Name)
	}
	if got.Grid.Width != 203 || got.Grid.Height != 210 || got.Grid.Span != m.Grid.Span {
		t.Errorf("unexpected grid %v", got.Grid)
	}
	if got.Collisions != m.Collisions {
		t.Errorf("expected %d collisions, got %d", m.Collisions, got.Collisions)
	}
	if len(got.Placements) != len(m.Placements) {
		t.Fatalf("expected %d placements, got %d", len(m.Placements), len(got.Placements))
	}
	for i := range m.Placements {
		if got.Placements[i] != m.Placements[i] {
			t.Errorf("placement %d: expected %+v, got %+v", i, m.Placements[i], got.Placements[i])
		}
	}
	if len(got.Unplaced) != 1 || got.Unplaced[0] != m.Unplaced[0] {
		t.Errorf("expected %v, got %v", m.Unplaced, got.Unplaced)
	}

	// The lookup indexes are rebuilt.
	paris, ok := got.Lookup("Paris")
	if !ok {
		t.Fatal("Paris missing after load")
	}
	if at, ok := got.At(paris.Final); !ok || at.Feature.Name != "Paris" {
		t.Errorf("expected Paris at %v", paris.Final)
	}
}

func TestLoadRunNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.LoadRun("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := db.DeleteRun("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
}

func TestListAndDeleteRuns(t *testing.T) {
	db := openTestDB(t)
	first, err := db.SaveRun(testMap(t, "europe"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := db.SaveRun(testMap(t, "europe"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := db.SaveRun(testMap(t, "baltic")); err != nil {
		t.Fatalf("save: %v", err)
	}

	all, err := db.ListRuns("")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}

	europe, err := db.ListRuns("europe")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(europe) != 2 || europe[0].ID != second {
		t.Fatalf("expected newest europe run first, got %+v", europe)
	}
	if europe[0].Placed != 10 || europe[0].Unplaced != 1 || europe[0].Width != 203 {
		t.Errorf("unexpected summary %+v", europe[0])
	}
	if europe[0].Created().IsZero() {
		t.Error("expected a parseable creation time")
	}

	if err := db.DeleteRun(first); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.LoadRun(first); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected deleted run to be gone, got %v", err)
	}
	var orphans int
	if err := db.conn.Get(&orphans, "SELECT COUNT(*) FROM placements WHERE run_id = ?", first); err != nil {
		t.Fatalf("count: %v", err)
	}
	if orphans != 0 {
		t.Errorf("expected placements to cascade, %d left", orphans)
	}
}

func TestMeta(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.GetMeta("last_run"); err == nil {
		t.Error("expected error for missing key")
	}
	if err := db.SaveMeta("last_run", "abc"); err != nil {
		t.Fatalf("save meta: %v", err)
	}
	if err := db.SaveMeta("last_run", "def"); err != nil {
		t.Fatalf("save meta: %v", err)
	}
	v, err := db.GetMeta("last_run")
	if err != nil || v != "def" {
		t.Errorf("expected def, got %q (%v)", v, err)
	}
}
