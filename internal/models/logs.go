package models

// BroadcastLog records every aired bulletin and admin action.
// Appends are fire-and-forget; this table is operator-facing only.
type BroadcastLog struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Action    string `json:"action"`
	Timestamp int64  `gorm:"index" json:"timestamp"` // epoch millis
}

func (BroadcastLog) TableName() string {
	return "broadcast_logs"
}
