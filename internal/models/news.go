package models

// NewsItem is one cached story from the news provider.
// Items older than 48 hours are purged on every sync.
type NewsItem struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Category  string `json:"category"`
	Timestamp int64  `gorm:"index" json:"timestamp"` // epoch millis
}

func (NewsItem) TableName() string {
	return "news_items"
}
