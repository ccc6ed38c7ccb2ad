package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenDBCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "runs", "hexmap.db")
	db, err := openDB(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("expected db directory to exist: %v", err)
	}
}

func TestOpenDBReportsDirectoryError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := openDB(filepath.Join(blocker, "hexmap.db"))
	if err == nil {
		t.Fatal("expected error when the db directory cannot be created")
	}
	if !strings.Contains(err.Error(), "create db dir") {
		t.Errorf("expected a create db dir error, got %v", err)
	}
}

func TestPlanSingleMap(t *testing.T) {
	jobs, err := plan(options{bounds: "-15,35,45,70", zoom: 6, hexSizeKM: 20, searchRadius: 3, output: "out/europe.json"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	cfg := jobs[0].cfg
	if cfg.Name != "europe" || cfg.Bounds.East != 45 || cfg.Bounds.South != 35 || cfg.SearchRadius != 3 {
		t.Errorf("unexpected config %+v", cfg)
	}

	if _, err := plan(options{}); err == nil {
		t.Error("expected error without bounds or definitions")
	}
	if _, err := plan(options{bounds: "1,2,3,4", list: true}); err == nil {
		t.Error("expected error for --list without definitions")
	}
}
