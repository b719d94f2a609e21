package broadcast

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGridMissingFileUsesDefaults(t *testing.T) {
	grid, err := LoadGrid(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if grid != DefaultGrid() {
		t.Errorf("grid = %+v, want defaults", grid)
	}
}

func TestLoadGridPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.yaml")
	data := "full_minute: 15\nmax_headline_items: 3\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	grid, err := LoadGrid(path)
	if err != nil {
		t.Fatalf("LoadGrid: %v", err)
	}
	if grid.FullMinute != 15 {
		t.Errorf("FullMinute = %d, want 15", grid.FullMinute)
	}
	if grid.MaxHeadlineItems != 3 {
		t.Errorf("MaxHeadlineItems = %d, want 3", grid.MaxHeadlineItems)
	}
	if grid.HeadlineMinute != 30 || grid.JingleIntro != DefaultJingleIntro {
		t.Error("omitted fields must keep their defaults")
	}
}

func TestLoadGridRejectsBadMinutes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.yaml")
	if err := os.WriteFile(path, []byte("full_minute: 73\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadGrid(path); err == nil {
		t.Error("out-of-range minute must be rejected")
	}
}
