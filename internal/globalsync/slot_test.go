package globalsync

import (
	"testing"

	"ndr-radio/internal/models"
)

func playlist(names ...string) []models.MediaItem {
	items := make([]models.MediaItem, 0, len(names))
	for i, n := range names {
		items = append(items, models.MediaItem{ID: string(rune('a' + i)), Name: n, Type: models.MediaAudio})
	}
	return items
}

func TestPickSlotDeterminism(t *testing.T) {
	p := playlist("Amaka.mp3", "Eze.mp3", "Zuma.mp3")

	// Any two instants inside the same 3-minute slot must agree.
	base := int64(9_000_000)
	i1, t1 := PickSlot(base, p)
	i2, t2 := PickSlot(base+SlotMillis-1, p)

	if i1 != i2 || t1.ID != t2.ID {
		t.Fatalf("same slot diverged: (%d,%s) vs (%d,%s)", i1, t1.ID, i2, t2.ID)
	}
}

func TestPickSlotCycles(t *testing.T) {
	p := playlist("Amaka.mp3", "Eze.mp3", "Zuma.mp3")

	// Consecutive slots must visit 0,1,2,0,1,2... with no skips.
	for slot := int64(0); slot < 7; slot++ {
		idx, _ := PickSlot(slot*SlotMillis, p)
		want := int(slot % 3)
		if idx != want {
			t.Errorf("slot %d: got index %d, want %d", slot, idx, want)
		}
	}
}

func TestPickSlotEmptyPlaylist(t *testing.T) {
	idx, track := PickSlot(540000, nil)
	if idx != -1 || track != nil {
		t.Errorf("empty playlist should be a no-op, got (%d, %v)", idx, track)
	}
}

func TestPickSlotKnownVector(t *testing.T) {
	// now=540000 is slot 3; 3 mod 2 = 1 -> "Zuma.mp3"
	p := playlist("Amaka.mp3", "Zuma.mp3")
	idx, track := PickSlot(540000, p)
	if idx != 1 || track.Name != "Zuma.mp3" {
		t.Fatalf("got (%d, %q), want (1, Zuma.mp3)", idx, track.Name)
	}
}
