package models

// Media types accepted by the catalog.
const (
	MediaAudio = "audio"
	MediaVideo = "video"
	MediaImage = "image"
)

// MediaItem represents one playable file in the station catalog.
// The audio subset, sorted case-insensitively by name, is the shared
// playlist every client derives the "live" track from.
type MediaItem struct {
	ID        string  `gorm:"primaryKey" json:"id"`
	Name      string  `gorm:"index;not null" json:"name"`
	Key       string  `gorm:"uniqueIndex" json:"-"` // storage object key
	URL       string  `json:"url"`                  // resolved playback location
	Type      string  `gorm:"index;default:'audio'" json:"type"`
	Duration  float64 `json:"duration"`
	Likes     int     `gorm:"default:0" json:"likes"`
	Timestamp int64   `gorm:"index" json:"timestamp"` // ingestion time, epoch millis
}

func (MediaItem) TableName() string {
	return "media_items"
}
