package globalsync

import "ndr-radio/internal/models"

// SlotMillis is the width of one wall-clock slot. Every client that
// shares the same sorted playlist lands on the same track index inside
// a slot, with no coordination — this is the whole "live without a
// server" trick.
const SlotMillis int64 = 3 * 60 * 1000

// PickSlot maps the current time to a deterministic playlist index.
// Pure function: same playlist and same millisecond on any two clients
// yields the identical track. An empty playlist returns (-1, nil); the
// caller must leave its prior state untouched in that case.
func PickSlot(nowMillis int64, playlist []models.MediaItem) (int, *models.MediaItem) {
	if len(playlist) == 0 {
		return -1, nil
	}
	slot := nowMillis / SlotMillis
	idx := int(slot % int64(len(playlist)))
	if idx < 0 { // negative timestamps shouldn't happen, but mod would carry the sign
		idx += len(playlist)
	}
	return idx, &playlist[idx]
}
