package catalog

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"ndr-radio/internal/models"
)

// SetupInMemoryDB creates a throwaway DB for testing
func SetupInMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	d.AutoMigrate(&models.MediaItem{})
	return d
}

func TestPlaylistOrderingAndFilter(t *testing.T) {
	db := SetupInMemoryDB(t)
	cat := New(db)

	seed := []models.MediaItem{
		{ID: "1", Name: "zuma.mp3", Key: "k1", Type: models.MediaAudio},
		{ID: "2", Name: "Amaka.mp3", Key: "k2", Type: models.MediaAudio},
		{ID: "3", Name: "Banner.png", Key: "k3", Type: models.MediaImage},
		{ID: "4", Name: "eze.mp3", Key: "k4", Type: models.MediaAudio},
	}
	db.Create(&seed)

	items, err := cat.Playlist()
	if err != nil {
		t.Fatalf("Playlist failed: %v", err)
	}

	// Images must be excluded, ordering must ignore case.
	want := []string{"Amaka.mp3", "eze.mp3", "zuma.mp3"}
	if len(items) != len(want) {
		t.Fatalf("expected %d audio items, got %d", len(want), len(items))
	}
	for i, name := range want {
		if items[i].Name != name {
			t.Errorf("position %d: got %q, want %q", i, items[i].Name, name)
		}
	}
}

func TestLookupFallbacks(t *testing.T) {
	db := SetupInMemoryDB(t)
	cat := New(db)

	db.Create(&models.MediaItem{ID: "abc", Name: "Amaka.mp3", Type: models.MediaAudio})

	if _, err := cat.Lookup("abc"); err != nil {
		t.Errorf("Lookup by id failed: %v", err)
	}
	if _, err := cat.Lookup("missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := cat.LookupByName("Amaka.mp3"); err != nil {
		t.Errorf("LookupByName failed: %v", err)
	}
	if _, err := cat.LookupByName(""); err != ErrNotFound {
		t.Errorf("empty name should be ErrNotFound, got %v", err)
	}
}

func TestUpsertAndRemove(t *testing.T) {
	db := SetupInMemoryDB(t)
	cat := New(db)

	item := &models.MediaItem{ID: "x1", Name: "Track.mp3", Type: models.MediaAudio, URL: "http://a/x1"}
	if err := cat.Upsert(item); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// Second upsert with the same id must update, not duplicate.
	item.URL = "http://b/x1"
	if err := cat.Upsert(item); err != nil {
		t.Fatalf("Upsert update failed: %v", err)
	}

	got, err := cat.Lookup("x1")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got.URL != "http://b/x1" {
		t.Errorf("upsert did not update url: %q", got.URL)
	}

	if err := cat.Remove("x1"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := cat.Remove("x1"); err != ErrNotFound {
		t.Errorf("second Remove should be ErrNotFound, got %v", err)
	}
}
