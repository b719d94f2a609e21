package models

// StationState represents the live status of the radio.
// There is ONE row in this table (ID=1), owned by whichever client
// currently holds the admin role; every listener mirrors it.
type StationState struct {
	ID        uint    `gorm:"primaryKey" json:"-"`
	IsPlaying bool    `json:"is_playing"`
	TrackID   string  `json:"track_id"`
	TrackName string  `json:"track_name"`
	TrackURL  string  `json:"track_url"`
	StartedAt int64   `json:"started_at"` // epoch millis, resume-adjusted (now - position*1000)
	Duration  float64 `json:"duration"`   // seconds
	UpdatedAt int64   `json:"updated_at"` // epoch millis write marker, observability only
}

// TableName overrides the default pluralization
func (StationState) TableName() string {
	return "station_state"
}

// Elapsed returns the playhead position in seconds implied by StartedAt,
// or 0 if the state is older than the staleness window (protects against
// seeking to a huge offset after a long pause or clock skew).
func (s StationState) Elapsed(nowMillis, stalenessMillis int64) float64 {
	if s.StartedAt <= 0 {
		return 0
	}
	age := nowMillis - s.StartedAt
	if age < 0 || age > stalenessMillis {
		return 0
	}
	return float64(age) / 1000.0
}
